package services

import (
	"fmt"

	"winclick/internal/config"
	apperrors "winclick/internal/infrastructure/errors"
)

// noticeSet remembers which failure classes were already reported during one run
type noticeSet map[apperrors.ErrorCode]struct{}

func newNoticeSet() noticeSet {
	return make(noticeSet)
}

// first reports whether code is seen for the first time and marks it seen
func (n noticeSet) first(code apperrors.ErrorCode) bool {
	if _, seen := n[code]; seen {
		return false
	}
	n[code] = struct{}{}
	return true
}

// notify prints the diagnostic for code unless this run already printed one for it
func (c *Clicker) notify(notices noticeSet, code apperrors.ErrorCode, title, label string) {
	if !notices.first(code) {
		return
	}

	var tmpl string
	switch code {
	case apperrors.ErrCodeWindowNotFound:
		tmpl = c.cfg.Messages.WindowNotFound
	case apperrors.ErrCodeControlNotFound:
		tmpl = c.cfg.Messages.ControlNotFound
	case apperrors.ErrCodeControlDisabled:
		tmpl = c.cfg.Messages.ControlDisabled
	}

	c.logger.Info("Waiting for target", "reason", code.String(), "window", title, "control", label)
	c.printf(tmpl, "window", title, "control", label)
}

// printf renders a message template and writes it as one line; empty templates print nothing
func (c *Clicker) printf(tmpl string, pairs ...string) {
	if tmpl == "" {
		return
	}
	if _, err := fmt.Fprintln(c.out, config.Render(tmpl, pairs...)); err != nil {
		c.logger.Warn("Failed to write diagnostic", "error", err)
	}
}
