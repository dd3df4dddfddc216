package window

import (
	"fmt"
	"sync"
)

// FakeWindow is the scripted state behind one handle in a FakeAccess.
type FakeWindow struct {
	Title     string
	Bounds    Rect
	Maximized bool
}

// FakeAccess is an in-memory Access for tests. Handles not present in the
// fake behave like stale handles.
type FakeAccess struct {
	mu       sync.Mutex
	windows  map[Handle]FakeWindow
	monitors []Rect

	// TitleErr, when set, is returned by every Title call. Lets tests force
	// arbitrary property-access failures.
	TitleErr error
}

// NewFakeAccess returns an empty fake backend with a single monitor at
// (0,0)-(1920,1080).
func NewFakeAccess() *FakeAccess {
	return &FakeAccess{
		windows: make(map[Handle]FakeWindow),
		monitors: []Rect{
			{Origin: Point{0, 0}, End: Point{1920, 1080}},
		},
	}
}

// Put creates or replaces the window behind h.
func (f *FakeAccess) Put(h Handle, w FakeWindow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows[h] = w
}

// Remove destroys the window behind h; later access returns ErrStaleHandle.
func (f *FakeAccess) Remove(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, h)
}

// SetMonitors replaces the monitor layout.
func (f *FakeAccess) SetMonitors(monitors ...Rect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.monitors = monitors
}

func (f *FakeAccess) Exists(h Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.windows[h]
	return ok
}

func (f *FakeAccess) Title(h Handle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TitleErr != nil {
		return "", f.TitleErr
	}
	w, ok := f.windows[h]
	if !ok {
		return "", fmt.Errorf("%w: %#x", ErrStaleHandle, uintptr(h))
	}
	return w.Title, nil
}

func (f *FakeAccess) Bounds(h Handle) (Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[h]
	if !ok {
		return Rect{}, fmt.Errorf("%w: %#x", ErrStaleHandle, uintptr(h))
	}
	return w.Bounds, nil
}

func (f *FakeAccess) Maximized(h Handle) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[h]
	if !ok {
		return false, fmt.Errorf("%w: %#x", ErrStaleHandle, uintptr(h))
	}
	return w.Maximized, nil
}

func (f *FakeAccess) Screens(r Rect) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var touched []int
	for i, m := range f.monitors {
		if r.Intersects(m) {
			touched = append(touched, i+1)
		}
	}
	return touched, nil
}
