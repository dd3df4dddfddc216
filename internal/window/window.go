// Package window is the narrow window-system surface the event core and its
// filter predicates consume: handle-based existence, title, geometry and
// monitor membership. Concrete property access lives behind the Access
// interface so the core never binds to a platform directly.
package window

import "errors"

// ErrStaleHandle reports a window handle that stopped being valid between
// the event firing and property access. This is an expected dispatch-time
// condition, not a bug: windows routinely disappear before their events are
// serviced.
var ErrStaleHandle = errors.New("window: stale window handle")

// ErrNotSupported reports that no window backend exists on this platform.
var ErrNotSupported = errors.New("window: not supported on this platform")

// Handle is an opaque native window handle.
type Handle uintptr

// Access is the flat procedural window API a platform backend provides.
type Access interface {
	// Exists reports whether the handle still refers to a live window.
	Exists(h Handle) bool
	// Title returns the window's title text.
	Title(h Handle) (string, error)
	// Bounds returns the window's bounding rectangle in screen coordinates.
	Bounds(h Handle) (Rect, error)
	// Maximized reports whether the window is maximized.
	Maximized(h Handle) (bool, error)
	// Screens returns the numbers of the monitors r overlaps.
	Screens(r Rect) ([]int, error)
}

// Ref is the fluent wrapper over one window handle. A Ref stays valid after
// its window disappears; operations then return ErrStaleHandle.
type Ref struct {
	handle Handle
	sys    Access
}

// FromHandle wraps a native handle with the given backend.
func FromHandle(h Handle, sys Access) *Ref {
	return &Ref{handle: h, sys: sys}
}

// Handle returns the wrapped native handle.
func (r *Ref) Handle() Handle { return r.handle }

// Exists reports whether the window is still alive.
func (r *Ref) Exists() bool { return r.sys.Exists(r.handle) }

// Title returns the window title.
func (r *Ref) Title() (string, error) { return r.sys.Title(r.handle) }

// Bounds returns the window's bounding rectangle.
func (r *Ref) Bounds() (Rect, error) { return r.sys.Bounds(r.handle) }

// Maximized reports whether the window is maximized.
func (r *Ref) Maximized() (bool, error) { return r.sys.Maximized(r.handle) }

// Screens returns the numbers of the monitors the window touches.
func (r *Ref) Screens() ([]int, error) {
	bounds, err := r.sys.Bounds(r.handle)
	if err != nil {
		return nil, err
	}
	return r.sys.Screens(bounds)
}
