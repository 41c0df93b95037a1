package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrWindowNotFound means no top-level window carries the requested title.
	ErrWindowNotFound = errors.New("window not found")

	// ErrControlNotFound means the window has no direct child with the requested label.
	ErrControlNotFound = errors.New("control not found")

	// ErrControlDisabled means the control exists but does not accept input.
	ErrControlDisabled = errors.New("control not enabled")

	// ErrUnsupported means the host windowing backend cannot perform the operation.
	ErrUnsupported = errors.New("operation not supported on this platform")

	// ErrDispatchFailed means the click message could not be delivered.
	ErrDispatchFailed = errors.New("click dispatch failed")
)

// ClassifyError maps an arbitrary error onto an automation error code
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}

	if code := CodeOf(err); code != ErrCodeUnknown {
		return code
	}

	switch {
	case errors.Is(err, ErrWindowNotFound):
		return ErrCodeWindowNotFound
	case errors.Is(err, ErrControlNotFound):
		return ErrCodeControlNotFound
	case errors.Is(err, ErrControlDisabled):
		return ErrCodeControlDisabled
	case errors.Is(err, ErrUnsupported):
		return ErrCodeUnsupported
	case errors.Is(err, ErrDispatchFailed):
		return ErrCodeDispatch
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return ErrCodeCancelled
	case errors.Is(err, os.ErrPermission):
		return ErrCodePermission
	}

	// Win32 errors surface as Errno text, so fall back to the message
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "access is denied"),
		strings.Contains(errStr, "access denied"),
		strings.Contains(errStr, "permission denied"):
		return ErrCodePermission
	case strings.Contains(errStr, "invalid window handle"):
		return ErrCodeWindowNotFound
	case strings.Contains(errStr, "not supported"), strings.Contains(errStr, "not implemented"):
		return ErrCodeUnsupported
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "timed out"):
		return ErrCodeTimeout
	default:
		return ErrCodeUnknown
	}
}

// WrapPlatformError wraps a windowing backend error with automation error context
func WrapPlatformError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewAutomationError(op, err, ClassifyError(err))
}

// HandleWindowNotFound creates a standardized window-not-found error
func HandleWindowNotFound(op string, title string) error {
	return NewAutomationErrorWithContext(op, ErrWindowNotFound, ErrCodeWindowNotFound, map[string]string{
		"window": title,
	})
}

// HandleControlNotFound creates a standardized control-not-found error
func HandleControlNotFound(op string, title string, label string) error {
	return NewAutomationErrorWithContext(op, ErrControlNotFound, ErrCodeControlNotFound, map[string]string{
		"window":  title,
		"control": label,
	})
}

// HandleControlDisabled creates a standardized control-disabled error
func HandleControlDisabled(op string, title string, label string) error {
	return NewAutomationErrorWithContext(op, ErrControlDisabled, ErrCodeControlDisabled, map[string]string{
		"window":  title,
		"control": label,
	})
}

// HandleUnsupported creates a standardized error for operations the backend lacks
func HandleUnsupported(op string, backend string) error {
	return NewAutomationErrorWithContext(op, ErrUnsupported, ErrCodeUnsupported, map[string]string{
		"backend": backend,
	})
}

// HandleDispatchError creates a standardized error for a click that could not be delivered
func HandleDispatchError(op string, label string, cause error) error {
	err := ErrDispatchFailed
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrDispatchFailed, cause)
	}
	return NewAutomationErrorWithContext(op, err, ErrCodeDispatch, map[string]string{
		"control": label,
	})
}

// HandleInvalidArgs creates a standardized error for a bad argument count
func HandleInvalidArgs(op string, got int) error {
	return NewAutomationErrorWithContext(op, fmt.Errorf("accepts at most 2 args, received %d", got), ErrCodeInvalidArgs, map[string]string{
		"args": fmt.Sprintf("%d", got),
	})
}

// HandleConfigError creates a standardized configuration error
func HandleConfigError(op string, field string, reason string) error {
	return NewAutomationErrorWithContext(op, errors.New("invalid configuration"), ErrCodeConfig, map[string]string{
		"field":  field,
		"reason": reason,
	})
}
