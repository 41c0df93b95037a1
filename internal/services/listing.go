package services

import (
	"context"
	"fmt"
	"io"
	"iter"

	"winclick/internal/config"
	apperrors "winclick/internal/infrastructure/errors"
	"winclick/internal/platform"
)

// ListWindows prints the title of every top-level window once, skipping blank titles.
// It returns the number of lines written.
func (c *Clicker) ListWindows(ctx context.Context, w io.Writer, verbose bool) (int, error) {
	seq, err := c.api.Windows()
	if err != nil {
		return 0, apperrors.WrapPlatformError(opListWindows, err)
	}

	return c.list(ctx, w, opListWindows, seq, func(h platform.Handle) string {
		if !verbose {
			return ""
		}
		return c.processSuffix(h)
	})
}

// ListControls resolves title once and prints the label of each direct child, skipping blank
// labels. An absent window prints the diagnostic and fails without waiting.
func (c *Clicker) ListControls(ctx context.Context, w io.Writer, title string, verbose bool) (int, error) {
	if err := c.api.ControlSupport(); err != nil {
		return 0, apperrors.WrapPlatformError(opListControls, err)
	}

	window, err := c.api.FindWindow(title)
	if err != nil {
		if apperrors.ClassifyError(err) == apperrors.ErrCodeWindowNotFound {
			c.printf(c.cfg.Messages.ListWindowNotFound, "window", title)
			return 0, apperrors.HandleWindowNotFound(opListControls, title)
		}
		return 0, apperrors.WrapPlatformError(opListControls, err)
	}

	seq, err := c.api.Children(window)
	if err != nil {
		return 0, apperrors.WrapPlatformError(opListControls, err)
	}

	return c.list(ctx, w, opListControls, seq, func(h platform.Handle) string {
		if !verbose {
			return ""
		}
		return c.stateSuffix(h)
	})
}

func (c *Clicker) list(ctx context.Context, w io.Writer, op string, seq iter.Seq2[platform.Handle, string], suffix func(platform.Handle) string) (int, error) {
	count := 0
	for h, title := range seq {
		if err := ctx.Err(); err != nil {
			return count, apperrors.NewAutomationError(op, err, apperrors.ClassifyError(err))
		}
		if title == "" {
			continue
		}

		line := config.Render(c.cfg.Messages.ListEntry, "title", title)
		if _, err := fmt.Fprintln(w, line+suffix(h)); err != nil {
			return count, apperrors.NewAutomationError(op, err, apperrors.ErrCodeInternal)
		}
		count++
	}

	c.logger.Debug("Listing complete", "operation", op, "count", count)
	return count, nil
}

func (c *Clicker) processSuffix(h platform.Handle) string {
	info, err := c.api.Describe(h)
	if err != nil {
		c.logger.Debug("Describe failed", "handle", fmt.Sprintf("%#x", uintptr(h)), "error", err)
		return ""
	}

	name, err := c.processName(info.PID)
	if err != nil {
		c.logger.Debug("Process lookup failed", "pid", info.PID, "error", err)
		name = "?"
	}
	return fmt.Sprintf("\tpid=%d process=%s", info.PID, name)
}

func (c *Clicker) stateSuffix(h platform.Handle) string {
	info, err := c.api.Describe(h)
	if err != nil {
		c.logger.Debug("Describe failed", "handle", fmt.Sprintf("%#x", uintptr(h)), "error", err)
		return ""
	}
	return fmt.Sprintf("\tenabled=%t class=%s", info.Enabled, info.Class)
}
