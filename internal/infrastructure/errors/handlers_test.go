package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"nil", nil, ErrCodeUnknown},
		{"automation error", HandleControlDisabled("op", "w", "c"), ErrCodeControlDisabled},
		{"wrapped automation error", fmt.Errorf("outer: %w", HandleUnsupported("op", "robotgo")), ErrCodeUnsupported},
		{"window sentinel", fmt.Errorf("lookup: %w", ErrWindowNotFound), ErrCodeWindowNotFound},
		{"control sentinel", ErrControlNotFound, ErrCodeControlNotFound},
		{"disabled sentinel", ErrControlDisabled, ErrCodeControlDisabled},
		{"unsupported sentinel", ErrUnsupported, ErrCodeUnsupported},
		{"dispatch sentinel", ErrDispatchFailed, ErrCodeDispatch},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"cancel", context.Canceled, ErrCodeCancelled},
		{"os permission", os.ErrPermission, ErrCodePermission},
		{"access denied text", errors.New("Access is denied."), ErrCodePermission},
		{"invalid handle text", errors.New("Invalid window handle."), ErrCodeWindowNotFound},
		{"not implemented text", errors.New("not implemented"), ErrCodeUnsupported},
		{"timed out text", errors.New("operation timed out"), ErrCodeTimeout},
		{"anything else", errors.New("boom"), ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.expected {
				t.Errorf("ClassifyError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestWrapPlatformError(t *testing.T) {
	if WrapPlatformError("op", nil) != nil {
		t.Error("Expected nil error to stay nil")
	}

	original := errors.New("Access is denied.")
	err := WrapPlatformError("click", original)
	if !IsPermission(err) {
		t.Errorf("Expected PERMISSION classification, got %v", err)
	}
	if !errors.Is(err, original) {
		t.Error("Expected wrapped error to keep the original in its chain")
	}
	if IsRetryable(err) {
		t.Error("Expected permission failures not to be retryable")
	}
}

func TestHandleControlNotFound_Context(t *testing.T) {
	err := HandleControlNotFound("find_control", "Setup", "&Next >")

	var autoErr *AutomationError
	if !errors.As(err, &autoErr) {
		t.Fatalf("Expected *AutomationError, got %T", err)
	}
	if autoErr.Context["window"] != "Setup" {
		t.Errorf("Expected window context 'Setup', got %q", autoErr.Context["window"])
	}
	if autoErr.Context["control"] != "&Next >" {
		t.Errorf("Expected control context '&Next >', got %q", autoErr.Context["control"])
	}
	if !autoErr.Retryable {
		t.Error("Expected control-not-found to be retryable")
	}
}

func TestHandleDispatchError_KeepsCause(t *testing.T) {
	cause := errors.New("PostMessage: queue full")
	err := HandleDispatchError("click", "OK", cause)

	if !errors.Is(err, ErrDispatchFailed) {
		t.Error("Expected dispatch sentinel in chain")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected cause in chain")
	}
	if IsRetryable(err) {
		t.Error("Expected dispatch failures not to be retryable")
	}
}

func TestHandleInvalidArgs_Message(t *testing.T) {
	err := HandleInvalidArgs("parse_args", 3)

	if !strings.Contains(err.Error(), "accepts at most 2 args, received 3") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestHandleConfigError_Context(t *testing.T) {
	err := HandleConfigError("load_config", "interval", "must be positive")

	var autoErr *AutomationError
	if !errors.As(err, &autoErr) {
		t.Fatalf("Expected *AutomationError, got %T", err)
	}
	if autoErr.Context["field"] != "interval" || autoErr.Context["reason"] != "must be positive" {
		t.Errorf("Unexpected context: %v", autoErr.Context)
	}
}
