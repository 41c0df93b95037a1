//go:build windows

package platform

import (
	"fmt"
	"iter"
	"sync"
	"unsafe"

	apperrors "winclick/internal/infrastructure/errors"
	"winclick/internal/infrastructure/logging"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW         = user32.NewProc("FindWindowW")
	procFindWindowExW       = user32.NewProc("FindWindowExW")
	procGetAncestor         = user32.NewProc("GetAncestor")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procIsWindowEnabled     = user32.NewProc("IsWindowEnabled")
	procSetActiveWindow     = user32.NewProc("SetActiveWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procSendMessageW        = user32.NewProc("SendMessageW")
	procPostMessageW        = user32.NewProc("PostMessageW")
)

const (
	bmClick  = 0x00F5 // BM_CLICK
	gaParent = 1      // GA_PARENT

	maxTextLength = 512
)

// WindowsAPI implements WindowAPI for Windows platform
type WindowsAPI struct {
	logger logging.Logger
}

// NewWindowsAPI creates a new Windows API instance
func NewWindowsAPI(logger logging.Logger) *WindowsAPI {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &WindowsAPI{logger: logger}
}

// NewWindowAPI creates a new WindowAPI instance for Windows
func NewWindowAPI(logger logging.Logger) WindowAPI {
	return NewWindowsAPI(logger)
}

// FindWindow resolves a top-level window by exact title
func (w *WindowsAPI) FindWindow(title string) (Handle, error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, fmt.Errorf("encode title %q: %w", title, err)
	}

	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrWindowNotFound, title)
	}
	return Handle(hwnd), nil
}

// FindChild resolves a direct child of parent by exact window text
func (w *WindowsAPI) FindChild(parent Handle, label string) (Handle, error) {
	labelPtr, err := windows.UTF16PtrFromString(label)
	if err != nil {
		return 0, fmt.Errorf("encode label %q: %w", label, err)
	}

	hwnd, _, _ := procFindWindowExW.Call(uintptr(parent), 0, 0, uintptr(unsafe.Pointer(labelPtr)))
	if hwnd == 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrControlNotFound, label)
	}
	return Handle(hwnd), nil
}

// Windows walks the top-level windows in z-order
func (w *WindowsAPI) Windows() (iter.Seq2[Handle, string], error) {
	return w.siblings(0), nil
}

// Children walks the direct children of parent
func (w *WindowsAPI) Children(parent Handle) (iter.Seq2[Handle, string], error) {
	if !windows.IsWindow(windows.HWND(parent)) {
		return nil, fmt.Errorf("%w: invalid window handle %#x", apperrors.ErrWindowNotFound, uintptr(parent))
	}
	return w.siblings(parent), nil
}

// EnumWindows callbacks cannot be released, so one callback serves every enumeration
// and enumMu serialises access to the handles it collects.
var (
	enumMu      sync.Mutex
	enumHandles []Handle
	enumProc    = sync.OnceValue(func() uintptr {
		return windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
			enumHandles = append(enumHandles, Handle(hwnd))
			return 1
		})
	})
)

// siblings yields every window whose parent is parent, using the desktop when parent is 0.
// Each range takes a fresh snapshot, so windows moving in z-order mid-walk are listed once.
func (w *WindowsAPI) siblings(parent Handle) iter.Seq2[Handle, string] {
	return func(yield func(Handle, string) bool) {
		for _, h := range DirectChildren(parent, w.snapshot(parent), ancestor) {
			if !yield(h, windowText(uintptr(h))) {
				return
			}
		}
	}
}

func (w *WindowsAPI) snapshot(parent Handle) []Handle {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumHandles = nil
	if parent == 0 {
		if err := windows.EnumWindows(enumProc(), nil); err != nil {
			w.logger.Debug("EnumWindows failed", "error", err)
		}
	} else {
		// EnumChildWindows also reports descendants; DirectChildren drops them
		windows.EnumChildWindows(windows.HWND(parent), enumProc(), nil)
	}

	handles := enumHandles
	enumHandles = nil
	return handles
}

func ancestor(h Handle) Handle {
	ret, _, _ := procGetAncestor.Call(uintptr(h), gaParent)
	return Handle(ret)
}

func windowText(hwnd uintptr) string {
	var buf [maxTextLength]uint16
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), maxTextLength)
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// ControlSupport always succeeds; child controls are ordinary windows on Win32
func (w *WindowsAPI) ControlSupport() error {
	return nil
}

// IsEnabled reports whether the window accepts mouse and keyboard input
func (w *WindowsAPI) IsEnabled(h Handle) bool {
	ret, _, _ := procIsWindowEnabled.Call(uintptr(h))
	return ret != 0
}

// Activate brings the window to the foreground
func (w *WindowsAPI) Activate(h Handle) error {
	procSetActiveWindow.Call(uintptr(h))

	ret, _, callErr := procSetForegroundWindow.Call(uintptr(h))
	if ret == 0 {
		return fmt.Errorf("SetForegroundWindow: %w", callErr)
	}
	return nil
}

// Click sends BM_CLICK to the control
func (w *WindowsAPI) Click(h Handle, mode ClickMode) error {
	switch mode {
	case ClickPost:
		ret, _, callErr := procPostMessageW.Call(uintptr(h), bmClick, 0, 0)
		if ret == 0 {
			return fmt.Errorf("%w: PostMessage: %w", apperrors.ErrDispatchFailed, callErr)
		}
	default:
		// BM_CLICK has no meaningful result; the call returns once the control has handled it
		procSendMessageW.Call(uintptr(h), bmClick, 0, 0)
	}

	w.logger.Debug("Click dispatched", "handle", fmt.Sprintf("%#x", uintptr(h)), "mode", mode.String())
	return nil
}

// Describe gathers title, class, owning process and state of a window
func (w *WindowsAPI) Describe(h Handle) (*WindowInfo, error) {
	hwnd := windows.HWND(h)
	if !windows.IsWindow(hwnd) {
		return nil, fmt.Errorf("%w: invalid window handle %#x", apperrors.ErrWindowNotFound, uintptr(h))
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		w.logger.Debug("GetWindowThreadProcessId failed", "handle", fmt.Sprintf("%#x", uintptr(h)), "error", err)
	}

	var class [maxTextLength]uint16
	n, err := windows.GetClassName(hwnd, &class[0], maxTextLength)
	if err != nil {
		w.logger.Debug("GetClassName failed", "handle", fmt.Sprintf("%#x", uintptr(h)), "error", err)
	}

	return &WindowInfo{
		Handle:  h,
		Title:   windowText(uintptr(h)),
		Class:   windows.UTF16ToString(class[:n]),
		PID:     int(pid),
		Enabled: w.IsEnabled(h),
		Visible: windows.IsWindowVisible(hwnd),
	}, nil
}
