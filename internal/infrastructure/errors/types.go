package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode represents different classes of automation failures
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeWindowNotFound
	ErrCodeControlNotFound
	ErrCodeControlDisabled
	ErrCodeUnsupported
	ErrCodeDispatch
	ErrCodeInvalidArgs
	ErrCodeTimeout
	ErrCodeCancelled
	ErrCodePermission
	ErrCodeConfig
	ErrCodeInternal
)

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeWindowNotFound:
		return "WINDOW_NOT_FOUND"
	case ErrCodeControlNotFound:
		return "CONTROL_NOT_FOUND"
	case ErrCodeControlDisabled:
		return "CONTROL_DISABLED"
	case ErrCodeUnsupported:
		return "UNSUPPORTED"
	case ErrCodeDispatch:
		return "DISPATCH"
	case ErrCodeInvalidArgs:
		return "INVALID_ARGS"
	case ErrCodeTimeout:
		return "TIMEOUT"
	case ErrCodeCancelled:
		return "CANCELLED"
	case ErrCodePermission:
		return "PERMISSION"
	case ErrCodeConfig:
		return "CONFIG"
	case ErrCodeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// AutomationError represents a window automation failure with context and retry information
type AutomationError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Retryable bool              // whether the error is transient
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *AutomationError) Error() string {
	if e == nil {
		return "automation error"
	}

	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}

	if e.Retryable {
		parts = append(parts, "retryable=true")
	}

	// Context keys are sorted so messages are stable
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%q", k, e.Context[k]))
		}
	}

	contextStr := ""
	if len(parts) > 0 {
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}

	if e.Err != nil {
		return e.Err.Error() + contextStr
	}
	return strings.ToLower(strings.ReplaceAll(e.Code.String(), "_", " ")) + contextStr
}

func (e *AutomationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *AutomationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*AutomationError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// IsRetryable returns whether the error is transient
func (e *AutomationError) IsRetryable() bool {
	if e == nil {
		return false
	}
	return e.Retryable
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *AutomationError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context (for logging interface compatibility)
func (e *AutomationError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *AutomationError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// WithContext adds context information to the error by mutating the receiver.
// Not safe to call once the error has been shared between goroutines.
func (e *AutomationError) WithContext(key, value string) *AutomationError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewAutomationError creates a new automation error with the given parameters
func NewAutomationError(op string, err error, code ErrorCode) *AutomationError {
	return &AutomationError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableCode(code),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewAutomationErrorWithContext creates a new automation error with additional context
func NewAutomationErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *AutomationError {
	autoErr := NewAutomationError(op, err, code)
	if context != nil {
		autoErr.Context = make(map[string]string, len(context))
		for k, v := range context {
			autoErr.Context[k] = v
		}
	}
	return autoErr
}

// isRetryableCode reports whether a failure class can resolve itself as the desktop changes
func isRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeWindowNotFound, ErrCodeControlNotFound, ErrCodeControlDisabled:
		return true
	default:
		return false
	}
}

// Error classification functions

func hasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns the classification of err, or ErrCodeUnknown
func CodeOf(err error) ErrorCode {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Code
	}
	return ErrCodeUnknown
}

// IsWindowNotFound checks if the error is a "window not found" error
func IsWindowNotFound(err error) bool { return hasCode(err, ErrCodeWindowNotFound) }

// IsControlNotFound checks if the error is a "control not found" error
func IsControlNotFound(err error) bool { return hasCode(err, ErrCodeControlNotFound) }

// IsControlDisabled checks if the error is a "control not enabled" error
func IsControlDisabled(err error) bool { return hasCode(err, ErrCodeControlDisabled) }

// IsUnsupported checks if the operation is not available on this platform
func IsUnsupported(err error) bool { return hasCode(err, ErrCodeUnsupported) }

// IsDispatch checks if delivering the click message failed
func IsDispatch(err error) bool { return hasCode(err, ErrCodeDispatch) }

// IsInvalidArgs checks if the error came from bad command-line input
func IsInvalidArgs(err error) bool { return hasCode(err, ErrCodeInvalidArgs) }

// IsTimeout checks if the error is a "timeout" error
func IsTimeout(err error) bool { return hasCode(err, ErrCodeTimeout) }

// IsCancelled checks if the operation was cancelled by its caller
func IsCancelled(err error) bool { return hasCode(err, ErrCodeCancelled) }

// IsPermission checks if the error is a permission error
func IsPermission(err error) bool { return hasCode(err, ErrCodePermission) }

// IsConfig checks if the error is a configuration error
func IsConfig(err error) bool { return hasCode(err, ErrCodeConfig) }

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Retryable
	}
	return false
}
