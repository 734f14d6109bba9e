package cerrors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestCompileError_Error_WithSpan(t *testing.T) {
	err := TypeMismatch(Span{File: "pipe.yaml", StartLine: 3, StartCol: 5}, "Int", "String")
	s := err.Error()
	if s != `pipe.yaml:3:5: TYPE_MISMATCH: expected Int, got String` {
		t.Errorf("unexpected message: %q", s)
	}
}

func TestCompileError_Error_WithoutSpan(t *testing.T) {
	err := UndefinedModule(Span{}, "transcode")
	s := err.Error()
	if s != `UNDEFINED_MODULE: undefined module "transcode"` {
		t.Errorf("unexpected message: %q", s)
	}
}

func TestCompileError_WithDetail(t *testing.T) {
	err := &CompileError{Code: CodeFieldNotFound, Message: "x"}
	err.WithDetail("a", 1).WithDetail("b", 2)
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("expected both details set, got %v", err.Details)
	}
}

func TestFieldNotFound_Details(t *testing.T) {
	err := FieldNotFound(Span{}, "age", []string{"name", "email"})
	if err.Code != CodeFieldNotFound {
		t.Errorf("expected CodeFieldNotFound, got %s", err.Code)
	}
	if err.Details["field"] != "age" {
		t.Errorf("expected field=age, got %v", err.Details["field"])
	}
}

func TestArityMismatch_Details(t *testing.T) {
	err := ArityMismatch(Span{}, "addOne", 1, 2)
	if err.Details["expected"] != 1 || err.Details["actual"] != 2 {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestCycleDetected_Details(t *testing.T) {
	err := CycleDetected(Span{}, []string{"a", "b", "a"})
	cycle, ok := err.Details["cycle"].([]string)
	if !ok || len(cycle) != 3 {
		t.Errorf("expected cycle detail with 3 entries, got %v", err.Details["cycle"])
	}
}

func TestErrors_AccumulateAndMerge(t *testing.T) {
	var errs Errors
	errs.Add(UndefinedVariable(Span{}, "x"))
	errs.Add(nil) // nil is a no-op
	if errs.Len() != 1 {
		t.Fatalf("expected 1 error after nil no-op, got %d", errs.Len())
	}

	var other Errors
	other.Add(UndefinedModule(Span{}, "y"))
	errs.Merge(&other)
	errs.Merge(nil) // nil merge is a no-op

	if errs.Len() != 2 {
		t.Fatalf("expected 2 errors after merge, got %d", errs.Len())
	}
	if len(errs.All()) != 2 {
		t.Errorf("expected All() to report 2 errors, got %d", len(errs.All()))
	}
}

func TestErrors_Err_NilWhenEmpty(t *testing.T) {
	var errs Errors
	if errs.Err() != nil {
		t.Error("expected Err() to be nil for an empty accumulator")
	}
}

func TestErrors_Err_NonNilWhenPopulated(t *testing.T) {
	var errs Errors
	errs.Add(UndefinedVariable(Span{}, "x"))
	if errs.Err() == nil {
		t.Fatal("expected Err() to be non-nil")
	}
	if errs.Err() != error(&errs) {
		t.Error("expected Err() to return the accumulator itself")
	}
}

func TestErrors_Error_SingleVsMultiple(t *testing.T) {
	var one Errors
	one.Add(UndefinedVariable(Span{}, "x"))
	if one.Error() != one.All()[0].Error() {
		t.Errorf("single-error message should match the underlying error, got %q", one.Error())
	}

	var many Errors
	many.Add(UndefinedVariable(Span{}, "x"))
	many.Add(UndefinedModule(Span{}, "y"))
	msg := many.Error()
	if msg != fmt.Sprintf("2 compile errors, first: %s", many.All()[0].Error()) {
		t.Errorf("unexpected multi-error message: %q", msg)
	}
}

func TestErrors_Unwrap_SupportsErrorsIs(t *testing.T) {
	sentinel := UndefinedVariable(Span{}, "x")
	var errs Errors
	errs.Add(sentinel)
	errs.Add(UndefinedModule(Span{}, "y"))

	if !stderrors.Is(errs.Err(), sentinel) {
		t.Error("expected errors.Is to find the accumulated sentinel via Unwrap() []error")
	}
}

func TestRuntimeError_Error_WithAndWithoutCause(t *testing.T) {
	plain := CancelledError("resize")
	if plain.Error() != "CANCELLED[resize]: execution cancelled" {
		t.Errorf("unexpected message: %q", plain.Error())
	}

	wrapped := ModuleFailureError("resize", fmt.Errorf("boom"))
	if wrapped.Error() != "MODULE_FAILURE[resize]: module evaluator failed (cause: boom)" {
		t.Errorf("unexpected message: %q", wrapped.Error())
	}
}

func TestRuntimeError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := ModuleFailureError("resize", cause)
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the wrapped cause")
	}
	if CancelledError("x").Unwrap() != nil {
		t.Error("expected Unwrap to return nil when there is no cause")
	}
}

func TestTimeoutError_Details(t *testing.T) {
	err := TimeoutError("resize", 2*time.Second)
	if err.Code != CodeTimeout {
		t.Errorf("expected CodeTimeout, got %s", err.Code)
	}
	if err.Details["duration"] != 2*time.Second {
		t.Errorf("unexpected duration detail: %v", err.Details["duration"])
	}
}

func TestRetryExhaustedError_UsesLastAttemptAsCause(t *testing.T) {
	history := []AttemptRecord{
		{Attempt: 1, Err: fmt.Errorf("first failure")},
		{Attempt: 2, Err: fmt.Errorf("second failure")},
	}
	err := RetryExhaustedError("resize", 2, history)
	if err.Cause == nil || err.Cause.Error() != "second failure" {
		t.Errorf("expected cause to be the last attempt's error, got %v", err.Cause)
	}
	if err.Details["attempts"] != 2 {
		t.Errorf("expected attempts=2, got %v", err.Details["attempts"])
	}
}

func TestRetryExhaustedError_EmptyHistory(t *testing.T) {
	err := RetryExhaustedError("resize", 0, nil)
	if err.Cause != nil {
		t.Error("expected nil cause when history is empty")
	}
}

func TestListLengthMismatchError_Details(t *testing.T) {
	err := ListLengthMismatchError("merge", 3, 5)
	if err.Details["a"] != 3 || err.Details["b"] != 5 {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestCacheError_ErrorAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := SerdeFailure(cause)
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return cause")
	}
	if err.Error() != "SERDE_FAILURE: failed to (de)serialize cache entry (cause: disk full)" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	noCause := BackendUnavailable(nil)
	if noCause.Error() != "BACKEND_UNAVAILABLE: cache backend unavailable" {
		t.Errorf("unexpected message: %q", noCause.Error())
	}
}
