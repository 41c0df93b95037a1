//go:build !windows

package platform

import (
	"fmt"
	"iter"

	apperrors "winclick/internal/infrastructure/errors"
	"winclick/internal/infrastructure/logging"

	"github.com/go-vgo/robotgo"
)

const robotgoBackend = "robotgo"

// RobotgoAPI implements WindowAPI on top of robotgo for Linux and macOS.
// Windows are addressed by the PID that owns them; child controls are not reachable.
type RobotgoAPI struct {
	logger logging.Logger
}

// NewRobotgoAPI creates a new robotgo-backed API instance
func NewRobotgoAPI(logger logging.Logger) *RobotgoAPI {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &RobotgoAPI{logger: logger}
}

// NewWindowAPI creates a new WindowAPI instance for non-Windows platforms
func NewWindowAPI(logger logging.Logger) WindowAPI {
	return NewRobotgoAPI(logger)
}

// FindWindow returns the PID of the first process whose window title matches exactly
func (r *RobotgoAPI) FindWindow(title string) (Handle, error) {
	pids, err := robotgo.Pids()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	for _, pid := range pids {
		if robotgo.GetTitle(pid) == title {
			return Handle(pid), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", apperrors.ErrWindowNotFound, title)
}

func (r *RobotgoAPI) FindChild(parent Handle, label string) (Handle, error) {
	return 0, apperrors.HandleUnsupported("find_child", robotgoBackend)
}

// Windows yields one entry per process. Processes without a window have an empty title.
func (r *RobotgoAPI) Windows() (iter.Seq2[Handle, string], error) {
	if _, err := robotgo.Pids(); err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	return func(yield func(Handle, string) bool) {
		pids, err := robotgo.Pids()
		if err != nil {
			r.logger.Warn("Process list became unavailable", "error", err)
			return
		}
		for _, pid := range pids {
			if !yield(Handle(pid), robotgo.GetTitle(pid)) {
				return
			}
		}
	}, nil
}

func (r *RobotgoAPI) Children(parent Handle) (iter.Seq2[Handle, string], error) {
	return nil, apperrors.HandleUnsupported("children", robotgoBackend)
}

// ControlSupport reports that robotgo cannot address child controls
func (r *RobotgoAPI) ControlSupport() error {
	return apperrors.HandleUnsupported("controls", robotgoBackend)
}

// IsEnabled reports whether the process still owns a titled window
func (r *RobotgoAPI) IsEnabled(h Handle) bool {
	return robotgo.GetTitle(int(h)) != ""
}

func (r *RobotgoAPI) Activate(h Handle) error {
	return robotgo.ActivePid(int(h))
}

func (r *RobotgoAPI) Click(h Handle, mode ClickMode) error {
	return apperrors.HandleUnsupported("click", robotgoBackend)
}

// Describe reports the window title and owning process
func (r *RobotgoAPI) Describe(h Handle) (*WindowInfo, error) {
	title := robotgo.GetTitle(int(h))
	if title == "" {
		return nil, fmt.Errorf("%w: pid %d", apperrors.ErrWindowNotFound, int(h))
	}

	name, err := robotgo.FindName(int(h))
	if err != nil {
		r.logger.Debug("FindName failed", "pid", int(h), "error", err)
	}

	return &WindowInfo{
		Handle:  h,
		Title:   title,
		Class:   name,
		PID:     int(h),
		Enabled: true,
		Visible: true,
	}, nil
}
