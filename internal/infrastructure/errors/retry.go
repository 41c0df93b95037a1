package errors

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

// RetryLogger defines the interface for logging retry operations
type RetryLogger interface {
	Printf(format string, v ...interface{})
}

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts     int           // Maximum number of attempts, 0 means no limit
	InitialDelay    time.Duration // Delay before the second attempt
	MaxDelay        time.Duration // Upper bound for any single delay
	BackoffFactor   float64       // Multiplier applied per attempt, 1 keeps the delay fixed
	Jitter          bool          // Whether to add up to 25% jitter to delays
	RetryableErrors []ErrorCode   // Codes worth another attempt, empty means every retryable code
}

// Package-level logger variable that can be set by callers
var retryLogger RetryLogger

// DefaultPollInterval is the fixed backoff between lookups of a window or control
const DefaultPollInterval = 50 * time.Millisecond

// DefaultRetryConfig returns the polling policy used while waiting for a window:
// unbounded attempts with a fixed 50ms interval.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   0,
		InitialDelay:  DefaultPollInterval,
		MaxDelay:      DefaultPollInterval,
		BackoffFactor: 1.0,
		Jitter:        false,
		RetryableErrors: []ErrorCode{
			ErrCodeWindowNotFound,
			ErrCodeControlNotFound,
			ErrCodeControlDisabled,
		},
	}
}

// RetryableOperation represents one attempt of an operation that can be retried
type RetryableOperation func(attempt int) error

// SetRetryLogger sets the package-level logger for retry operations
func SetRetryLogger(logger RetryLogger) {
	retryLogger = logger
}

func logRetryMessage(format string, v ...interface{}) {
	if retryLogger != nil {
		retryLogger.Printf(format, v...)
	}
}

// withRetryImpl is the core retry implementation used by both public functions
func withRetryImpl(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if operationName == "" {
		operationName = "operation"
	}

	var lastErr error

	for attempt := 0; config.MaxAttempts <= 0 || attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return contextError(operationName, err, attempt, lastErr)
		}

		err := operation(attempt)
		if err == nil {
			if attempt > 0 {
				logRetryMessage("%s succeeded after %d attempts", operationName, attempt+1)
			}
			return nil
		}

		lastErr = err

		if !shouldRetry(err, config) {
			logRetryMessage("%s failed with non-retryable error: %v", operationName, err)
			return err
		}

		if config.MaxAttempts > 0 && attempt == config.MaxAttempts-1 {
			break
		}

		delay := calculateDelay(attempt, config)

		// Unbounded polling would flood the log; report the first few and then every hundredth
		if attempt < 3 || attempt%100 == 0 {
			logRetryMessage("%s failed (attempt %d), retrying in %v: %v", operationName, attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return contextError(operationName, ctx.Err(), attempt+1, lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, config.MaxAttempts, lastErr)
}

// contextError turns a context failure into a classified error that still carries the last transient failure
func contextError(op string, ctxErr error, attempts int, lastErr error) error {
	code := ErrCodeCancelled
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		code = ErrCodeTimeout
	}

	err := ctxErr
	if lastErr != nil {
		err = fmt.Errorf("%w (last failure: %w)", ctxErr, lastErr)
	}

	autoErr := NewAutomationError(op, err, code)
	autoErr.WithContext("attempts", fmt.Sprintf("%d", attempts))
	return autoErr
}

// WithRetryContext executes an operation with retry logic and names it in log output
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	return withRetryImpl(ctx, config, operation, operationName)
}

// shouldRetry determines if an error should be retried based on configuration
func shouldRetry(err error, config *RetryConfig) bool {
	var autoErr *AutomationError
	if !errors.As(err, &autoErr) {
		return false
	}

	if !autoErr.IsRetryable() {
		return false
	}

	if len(config.RetryableErrors) == 0 {
		return true
	}
	return slices.Contains(config.RetryableErrors, autoErr.Code)
}

// calculateDelay calculates the delay for the next retry attempt
func calculateDelay(attempt int, config *RetryConfig) time.Duration {
	delay := config.InitialDelay
	if config.BackoffFactor > 1 {
		grown := float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt))
		// float64(math.MaxInt64) rounds up to 2^63, so clamp before converting
		switch {
		case config.MaxDelay > 0 && grown >= float64(config.MaxDelay):
			delay = config.MaxDelay
		case grown >= float64(math.MaxInt64):
			delay = time.Duration(math.MaxInt64)
		default:
			delay = time.Duration(grown)
		}
	}

	// Jitter is added before the maximum so the cap always holds
	if config.Jitter && delay > 0 {
		jitterAmount := time.Duration(float64(delay) * 0.25)
		if jitterAmount > 0 {
			jitter := time.Duration(time.Now().UnixNano() % int64(jitterAmount))
			if delay > time.Duration(math.MaxInt64)-jitter {
				delay = time.Duration(math.MaxInt64)
			} else {
				delay += jitter
			}
		}
	}

	if config.MaxDelay > 0 {
		delay = min(delay, config.MaxDelay)
	}

	return delay
}
