package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"winclick/internal/config"
	apperrors "winclick/internal/infrastructure/errors"
	"winclick/internal/infrastructure/logging"
	"winclick/internal/platform"
)

const (
	opLocateAndClick = "locate_and_click"
	opListWindows    = "list_windows"
	opListControls   = "list_controls"
)

// State is the phase of a locate-and-click attempt
type State int

const (
	StateSeekingWindow State = iota
	StateSeekingControl
	StateCheckingEnabled
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSeekingWindow:
		return "SeekingWindow"
	case StateSeekingControl:
		return "SeekingControl"
	case StateCheckingEnabled:
		return "CheckingEnabled"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ClickResult describes a successful locate-and-click
type ClickResult struct {
	Window   platform.Handle
	Control  platform.Handle
	Mode     platform.ClickMode
	Attempts int
	Elapsed  time.Duration
}

// Clicker locates windows and controls through a WindowAPI and clicks them
type Clicker struct {
	api    platform.WindowAPI
	cfg    *config.Config
	out    io.Writer // operator diagnostics and listings
	logger logging.Logger

	processName func(pid int) (string, error)
}

// NewClicker creates a Clicker. A nil cfg uses the defaults, a nil out writes to stdout.
func NewClicker(api platform.WindowAPI, cfg *config.Config, out io.Writer, logger logging.Logger) *Clicker {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &Clicker{
		api:         api,
		cfg:         cfg,
		out:         out,
		logger:      logger,
		processName: platform.ProcessName,
	}
}

// LocateAndClick polls until a top-level window titled title has an enabled direct child
// labelled label, then clicks it once. Every attempt resolves both handles from scratch.
//
// With the default configuration it polls until it succeeds or ctx is done. A configured
// timeout or attempt limit ends it early with the last lookup failure.
func (c *Clicker) LocateAndClick(ctx context.Context, title, label string) (*ClickResult, error) {
	start := time.Now()

	if err := c.api.ControlSupport(); err != nil {
		return nil, apperrors.WrapPlatformError(opLocateAndClick, err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	notices := newNoticeSet()
	mode := c.cfg.Mode()
	state := StateSeekingWindow
	var result *ClickResult

	err := apperrors.WithRetryContext(ctx, c.cfg.RetryConfig(), func(attempt int) error {
		c.transition(&state, StateSeekingWindow, attempt)

		window, err := c.api.FindWindow(title)
		if err != nil {
			return c.lookupFailure(notices, err, title, label)
		}

		c.transition(&state, StateSeekingControl, attempt)

		control, err := c.api.FindChild(window, label)
		if err != nil {
			return c.lookupFailure(notices, err, title, label)
		}

		if err := c.api.Activate(window); err != nil {
			c.logger.Debug("Activation failed", "window", title, "error", err)
		}

		c.transition(&state, StateCheckingEnabled, attempt)

		if !c.api.IsEnabled(control) {
			c.notify(notices, apperrors.ErrCodeControlDisabled, title, label)
			return apperrors.HandleControlDisabled(opLocateAndClick, title, label)
		}

		if err := c.api.Click(control, mode); err != nil {
			if apperrors.IsUnsupported(err) {
				return err
			}
			return apperrors.HandleDispatchError(opLocateAndClick, label, err)
		}

		c.transition(&state, StateDone, attempt)
		result = &ClickResult{
			Window:   window,
			Control:  control,
			Mode:     mode,
			Attempts: attempt + 1,
		}
		return nil
	}, opLocateAndClick)

	if err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	logging.LogOperation(c.logger, opLocateAndClick, result.Elapsed, map[string]interface{}{
		"window":   title,
		"control":  label,
		"attempts": result.Attempts,
		"mode":     mode.String(),
	})
	return result, nil
}

// lookupFailure turns a failed window or control lookup into the error that drives the retry loop
func (c *Clicker) lookupFailure(notices noticeSet, err error, title, label string) error {
	code := apperrors.ClassifyError(err)

	switch code {
	case apperrors.ErrCodeWindowNotFound:
		c.notify(notices, code, title, label)
		return apperrors.HandleWindowNotFound(opLocateAndClick, title)
	case apperrors.ErrCodeControlNotFound:
		c.notify(notices, code, title, label)
		return apperrors.HandleControlNotFound(opLocateAndClick, title, label)
	case apperrors.ErrCodeUnsupported:
		return err
	default:
		return apperrors.WrapPlatformError(opLocateAndClick, err)
	}
}

func (c *Clicker) transition(state *State, next State, attempt int) {
	if *state == next {
		return
	}
	c.logger.Debug("State transition", "from", state.String(), "to", next.String(), "attempt", attempt+1)
	*state = next
}

// GaveUp reports whether err ended a bounded locate-and-click that ran out of time or attempts,
// as opposed to a cancellation or a permanent failure
func GaveUp(err error) bool {
	if err == nil || apperrors.IsCancelled(err) {
		return false
	}
	return apperrors.IsTimeout(err) || apperrors.IsRetryable(err)
}
