package platform

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	apperrors "winclick/internal/infrastructure/errors"
)

// FakeAPI is an in-memory desktop implementing WindowAPI for tests.
// Lookups see the state at the moment they run, so hooks can reshape the desktop between polls.
type FakeAPI struct {
	mu      sync.Mutex
	next    Handle
	windows []*fakeWindow // top-level, in z-order
	byID    map[Handle]*fakeWindow

	clicks      map[Handle]int
	clickModes  []ClickMode
	activations map[Handle]int
	findCalls   int

	// OnFindWindow runs before every FindWindow with the 1-based call count.
	// It runs without the lock held and may mutate the fake.
	OnFindWindow func(call int)

	// ActivateErr and ClickErr are returned by Activate and Click when set
	ActivateErr error
	ClickErr    error
	// ControlsErr is returned by ControlSupport when set
	ControlsErr error
}

type fakeWindow struct {
	handle   Handle
	parent   Handle
	title    string
	class    string
	pid      int
	enabled  bool
	visible  bool
	children []*fakeWindow
}

// NewFakeAPI creates an empty desktop
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		next:        0x1000,
		byID:        make(map[Handle]*fakeWindow),
		clicks:      make(map[Handle]int),
		activations: make(map[Handle]int),
	}
}

func (f *FakeAPI) allocate(parent Handle, title, class string, pid int, enabled bool) *fakeWindow {
	f.next += 0x10
	w := &fakeWindow{
		handle:  f.next,
		parent:  parent,
		title:   title,
		class:   class,
		pid:     pid,
		enabled: enabled,
		visible: true,
	}
	f.byID[w.handle] = w
	return w
}

// AddWindow opens a top-level window and returns its handle
func (f *FakeAPI) AddWindow(title string, pid int) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := f.allocate(0, title, "#32770", pid, true)
	f.windows = append(f.windows, w)
	return w.handle
}

// AddChild adds a button to parent and returns its handle
func (f *FakeAPI) AddChild(parent Handle, label string, enabled bool) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.byID[parent]
	if !ok {
		panic(fmt.Sprintf("fake: unknown parent %#x", uintptr(parent)))
	}
	w := f.allocate(parent, label, "Button", p.pid, enabled)
	p.children = append(p.children, w)
	return w.handle
}

// Remove destroys a window or control together with its children
func (f *FakeAPI) Remove(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.byID[h]
	if !ok {
		return
	}

	if w.parent == 0 {
		f.windows = slices.DeleteFunc(f.windows, func(x *fakeWindow) bool { return x == w })
	} else if p, ok := f.byID[w.parent]; ok {
		p.children = slices.DeleteFunc(p.children, func(x *fakeWindow) bool { return x == w })
	}

	var drop func(*fakeWindow)
	drop = func(x *fakeWindow) {
		delete(f.byID, x.handle)
		for _, c := range x.children {
			drop(c)
		}
	}
	drop(w)
}

// SetEnabled changes the enabled state of a window or control
func (f *FakeAPI) SetEnabled(h Handle, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if w, ok := f.byID[h]; ok {
		w.enabled = enabled
	}
}

// Clicks returns how many clicks h received
func (f *FakeAPI) Clicks(h Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clicks[h]
}

// TotalClicks returns the number of clicks dispatched to any handle
func (f *FakeAPI) TotalClicks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clickModes)
}

// ClickModes returns the delivery mode of every click in order
func (f *FakeAPI) ClickModes() []ClickMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.clickModes)
}

// Activations returns how many times h was brought to the foreground
func (f *FakeAPI) Activations(h Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activations[h]
}

// FindWindowCalls returns how many window lookups ran
func (f *FakeAPI) FindWindowCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCalls
}

func (f *FakeAPI) FindWindow(title string) (Handle, error) {
	f.mu.Lock()
	f.findCalls++
	call := f.findCalls
	hook := f.OnFindWindow
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, w := range f.windows {
		if w.title == title {
			return w.handle, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", apperrors.ErrWindowNotFound, title)
}

func (f *FakeAPI) FindChild(parent Handle, label string) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.byID[parent]
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrControlNotFound, label)
	}
	for _, c := range p.children {
		if c.title == label {
			return c.handle, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", apperrors.ErrControlNotFound, label)
}

func (f *FakeAPI) Windows() (iter.Seq2[Handle, string], error) {
	return f.walk(func() []*fakeWindow { return f.windows }), nil
}

func (f *FakeAPI) Children(parent Handle) (iter.Seq2[Handle, string], error) {
	f.mu.Lock()
	_, ok := f.byID[parent]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: invalid window handle %#x", apperrors.ErrWindowNotFound, uintptr(parent))
	}

	return f.walk(func() []*fakeWindow {
		if p, ok := f.byID[parent]; ok {
			return p.children
		}
		return nil
	}), nil
}

// walk snapshots the list when ranging starts and yields outside the lock
func (f *FakeAPI) walk(list func() []*fakeWindow) iter.Seq2[Handle, string] {
	return func(yield func(Handle, string) bool) {
		f.mu.Lock()
		entries := make([]Entry, 0)
		for _, w := range list() {
			entries = append(entries, Entry{Handle: w.handle, Title: w.title})
		}
		f.mu.Unlock()

		for _, e := range entries {
			if !yield(e.Handle, e.Title) {
				return
			}
		}
	}
}

func (f *FakeAPI) ControlSupport() error {
	return f.ControlsErr
}

func (f *FakeAPI) IsEnabled(h Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.byID[h]
	return ok && w.enabled
}

func (f *FakeAPI) Activate(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.activations[h]++
	return f.ActivateErr
}

func (f *FakeAPI) Click(h Handle, mode ClickMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ClickErr != nil {
		return f.ClickErr
	}
	if _, ok := f.byID[h]; !ok {
		return fmt.Errorf("%w: invalid window handle %#x", apperrors.ErrDispatchFailed, uintptr(h))
	}
	f.clicks[h]++
	f.clickModes = append(f.clickModes, mode)
	return nil
}

func (f *FakeAPI) Describe(h Handle) (*WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.byID[h]
	if !ok {
		return nil, fmt.Errorf("%w: invalid window handle %#x", apperrors.ErrWindowNotFound, uintptr(h))
	}
	return &WindowInfo{
		Handle:  w.handle,
		Title:   w.title,
		Class:   w.class,
		PID:     w.pid,
		Enabled: w.enabled,
		Visible: w.visible,
	}, nil
}
