package platform

import (
	"fmt"
	"iter"
	"strings"
)

// Handle identifies a window or control. It is an HWND on Windows and a process ID
// elsewhere. Handles are borrowed from the host and never released.
type Handle uintptr

// ClickMode selects how a synthetic click is delivered
type ClickMode int

const (
	// ClickSend delivers the click synchronously and waits for the control to process it
	ClickSend ClickMode = iota
	// ClickPost queues the click and returns immediately
	ClickPost
)

func (m ClickMode) String() string {
	switch m {
	case ClickSend:
		return "send"
	case ClickPost:
		return "post"
	default:
		return fmt.Sprintf("ClickMode(%d)", int(m))
	}
}

// ParseClickMode converts "send" or "post" into a ClickMode
func ParseClickMode(s string) (ClickMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "send":
		return ClickSend, nil
	case "post":
		return ClickPost, nil
	default:
		return ClickSend, fmt.Errorf("invalid click mode: %q", s)
	}
}

// WindowAPI defines the interface for platform-specific window operations
type WindowAPI interface {
	// FindWindow resolves a top-level window by exact title
	FindWindow(title string) (Handle, error)
	// FindChild resolves a direct child of parent by exact label
	FindChild(parent Handle, label string) (Handle, error)
	// Windows returns a lazy sequence of top-level windows and their titles.
	// Every range over the sequence walks the host's current window list again.
	Windows() (iter.Seq2[Handle, string], error)
	// Children returns a lazy sequence of the direct children of parent
	Children(parent Handle) (iter.Seq2[Handle, string], error)
	IsEnabled(h Handle) bool
	// Activate brings the window to the foreground
	Activate(h Handle) error
	Click(h Handle, mode ClickMode) error
	Describe(h Handle) (*WindowInfo, error)
	// ControlSupport returns an UNSUPPORTED error when the backend cannot reach child controls
	ControlSupport() error
}

// WindowInfo contains information about a window or control
type WindowInfo struct {
	Handle  Handle `json:"handle"`
	Title   string `json:"title"`
	Class   string `json:"class"`
	PID     int    `json:"pid"`
	Enabled bool   `json:"enabled"`
	Visible bool   `json:"visible"`
}

// Entry is one element of an enumeration sequence
type Entry struct {
	Handle Handle
	Title  string
}

// Collect drains an enumeration sequence into a slice
func Collect(seq iter.Seq2[Handle, string]) []Entry {
	var entries []Entry
	for h, title := range seq {
		entries = append(entries, Entry{Handle: h, Title: title})
	}
	return entries
}

// DirectChildren filters an enumeration snapshot down to the direct children of parent,
// keeping first-seen order and dropping repeated handles. A zero parent keeps every handle,
// since top-level enumeration reports nothing else.
func DirectChildren(parent Handle, handles []Handle, parentOf func(Handle) Handle) []Handle {
	seen := make(map[Handle]struct{}, len(handles))
	out := make([]Handle, 0, len(handles))
	for _, h := range handles {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		if parent != 0 && parentOf(h) != parent {
			continue
		}
		out = append(out, h)
	}
	return out
}
