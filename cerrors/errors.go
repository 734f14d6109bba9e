package cerrors

import "fmt"

// Errors accumulates compile errors across an entire program instead of
// short-circuiting on the first failure (spec.md §7: "monadic-validation
// style: accumulate all compile errors ... do not short-circuit").
type Errors struct {
	errs []*CompileError
}

// Add appends a non-nil error to the accumulator.
func (e *Errors) Add(err *CompileError) {
	if err != nil {
		e.errs = append(e.errs, err)
	}
}

// Merge folds another accumulator's errors into this one.
func (e *Errors) Merge(other *Errors) {
	if other == nil {
		return
	}
	e.errs = append(e.errs, other.errs...)
}

// Len reports the number of accumulated errors.
func (e *Errors) Len() int { return len(e.errs) }

// All returns every accumulated error in the order added.
func (e *Errors) All() []*CompileError { return e.errs }

// Err returns nil if no errors were accumulated, or the accumulator itself
// as an error otherwise.
func (e *Errors) Err() error {
	if len(e.errs) == 0 {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	if len(e.errs) == 1 {
		return e.errs[0].Error()
	}
	return fmt.Sprintf("%d compile errors, first: %s", len(e.errs), e.errs[0].Error())
}

// Unwrap supports errors.Is/As over every accumulated error (Go 1.20+
// multi-error unwrapping).
func (e *Errors) Unwrap() []error {
	out := make([]error, len(e.errs))
	for i, err := range e.errs {
		out[i] = err
	}
	return out
}
