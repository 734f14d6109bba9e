package cerrors

import "fmt"

// Span locates a compile error in source text. Mirrors ast.Span so this
// package doesn't need to import ast.
type Span struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// CompileError is a single type-checker or DAG-compiler diagnostic.
type CompileError struct {
	Code    CompileCode
	Message string
	Span    Span
	Details map[string]any
}

func (e *CompileError) Error() string {
	if e.Span.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Span.File, e.Span.StartLine, e.Span.StartCol, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *CompileError) WithDetail(key string, value any) *CompileError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newCompile(code CompileCode, span Span, message string) *CompileError {
	return &CompileError{Code: code, Message: message, Span: span}
}

// FieldNotFound reports access to a record field that doesn't exist.
func FieldNotFound(span Span, name string, available []string) *CompileError {
	return newCompile(CodeFieldNotFound, span, fmt.Sprintf("field %q not found", name)).
		WithDetail("field", name).WithDetail("available", available)
}

// TypeMismatch reports an expression whose type is not assignable where expected.
func TypeMismatch(span Span, expected, actual string) *CompileError {
	return newCompile(CodeTypeMismatch, span, fmt.Sprintf("expected %s, got %s", expected, actual)).
		WithDetail("expected", expected).WithDetail("actual", actual)
}

// InvalidProjection reports a projection naming a field absent from its source.
func InvalidProjection(span Span, field string) *CompileError {
	return newCompile(CodeInvalidProjection, span, fmt.Sprintf("cannot project field %q", field)).
		WithDetail("field", field)
}

// UndefinedVariable reports a reference to an unbound name.
func UndefinedVariable(span Span, name string) *CompileError {
	return newCompile(CodeUndefinedVariable, span, fmt.Sprintf("undefined variable %q", name)).
		WithDetail("name", name)
}

// UndefinedModule reports a call to an unregistered module.
func UndefinedModule(span Span, name string) *CompileError {
	return newCompile(CodeUndefinedModule, span, fmt.Sprintf("undefined module %q", name)).
		WithDetail("module", name)
}

// ArityMismatch reports a module or lambda call with the wrong argument count.
func ArityMismatch(span Span, name string, expected, got int) *CompileError {
	return newCompile(CodeArityMismatch, span, fmt.Sprintf("%q expects %d argument(s), got %d", name, expected, got)).
		WithDetail("name", name).WithDetail("expected", expected).WithDetail("actual", got)
}

// NonExhaustiveMatch reports a match missing arms for some union variants.
func NonExhaustiveMatch(span Span, missing []string) *CompileError {
	return newCompile(CodeNonExhaustiveMatch, span, fmt.Sprintf("match is not exhaustive, missing: %v", missing)).
		WithDetail("missing", missing)
}

// CycleDetected reports a dependency cycle found during DAG compilation.
func CycleDetected(span Span, cycle []string) *CompileError {
	return newCompile(CodeCycleDetected, span, fmt.Sprintf("dependency cycle: %v", cycle)).
		WithDetail("cycle", cycle)
}

// InvalidOptionValue reports a malformed or unrecognized per-call option.
func InvalidOptionValue(span Span, key string, reason string) *CompileError {
	return newCompile(CodeInvalidOptionValue, span, fmt.Sprintf("option %q: %s", key, reason)).
		WithDetail("option", key)
}
