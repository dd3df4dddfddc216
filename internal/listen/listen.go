// Package listen offers the high-level subscription surface: a Subscriber
// registers callbacks against a registry store and binds them to common
// window lifecycle events by name, or to arbitrary event ranges.
package listen

import (
	"winwatch/internal/dispatch"
	"winwatch/internal/native"
	"winwatch/internal/registry"
	"winwatch/internal/winevent"
)

// Subscriber wires callbacks into a registry store.
type Subscriber struct {
	store *registry.Store
}

// New returns a Subscriber over store.
func New(store *registry.Store) *Subscriber {
	return &Subscriber{store: store}
}

// Store returns the underlying registry store.
func (s *Subscriber) Store() *registry.Store {
	return s.store
}

// To registers cb and binds it to the given event spec. The returned map
// reports, per range, whether the binding was new for this callback.
func (s *Subscriber) To(spec winevent.Spec, cb registry.Callback) (registry.Token, map[winevent.Range]bool, error) {
	tok, err := s.store.Register(cb)
	if err != nil {
		return 0, nil, err
	}
	bound, err := s.store.Bind(tok, spec)
	if err != nil {
		return 0, nil, err
	}
	return tok, bound, nil
}

// Add binds an additional event spec to an existing subscription.
func (s *Subscriber) Add(tok registry.Token, spec winevent.Spec) (map[winevent.Range]bool, error) {
	return s.store.Bind(tok, spec)
}

func (s *Subscriber) single(id winevent.ID, cb registry.Callback) (registry.Token, error) {
	tok, _, err := s.To(id, cb)
	return tok, err
}

// Creation subscribes cb to object creation events.
func (s *Subscriber) Creation(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.ObjectCreate, cb)
}

// Destruction subscribes cb to object destruction events.
func (s *Subscriber) Destruction(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.ObjectDestroy, cb)
}

// ExistenceChange subscribes cb to both creation and destruction.
func (s *Subscriber) ExistenceChange(cb registry.Callback) (registry.Token, error) {
	tok, _, err := s.To(winevent.Range{Start: winevent.ObjectCreate, End: winevent.ObjectDestroy}, cb)
	return tok, err
}

// Minimization subscribes cb to window minimize events.
func (s *Subscriber) Minimization(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.SystemMinimizeStart, cb)
}

// Restoration subscribes cb to window restore events.
func (s *Subscriber) Restoration(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.SystemMinimizeEnd, cb)
}

// LocationChange subscribes cb to move, size, and shape changes.
func (s *Subscriber) LocationChange(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.ObjectLocationChange, cb)
}

// Maximization subscribes cb to location changes. There is no dedicated
// maximize event; listen to location changes and check the window state in
// the callback.
func (s *Subscriber) Maximization(cb registry.Callback) (registry.Token, error) {
	return s.LocationChange(cb)
}

// MoveOrSizeStart subscribes cb to the start of interactive move or size.
func (s *Subscriber) MoveOrSizeStart(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.SystemMoveSizeStart, cb)
}

// MoveOrSizeEnd subscribes cb to the end of interactive move or size.
func (s *Subscriber) MoveOrSizeEnd(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.SystemMoveSizeEnd, cb)
}

// CaptureStart subscribes cb to mouse capture acquisition.
func (s *Subscriber) CaptureStart(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.SystemCaptureStart, cb)
}

// CaptureEnd subscribes cb to mouse capture release.
func (s *Subscriber) CaptureEnd(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.SystemCaptureEnd, cb)
}

// Foreground subscribes cb to foreground window changes.
func (s *Subscriber) Foreground(cb registry.Callback) (registry.Token, error) {
	return s.single(winevent.SystemForeground, cb)
}

// AnyEvent subscribes cb to the entire event space.
func (s *Subscriber) AnyEvent(cb registry.Callback) (registry.Token, error) {
	tok, _, err := s.To(winevent.Range{Start: winevent.EventMin, End: winevent.EventMax}, cb)
	return tok, err
}

// Idleness subscribes cb to idle periods of at least seconds, firing up to
// repeatLimit consecutive polls per period. Idle time is read from src.
func (s *Subscriber) Idleness(seconds float64, repeatLimit int, src native.IdleSource, cb registry.Callback) (registry.Token, error) {
	tok, err := s.store.Register(cb)
	if err != nil {
		return 0, err
	}
	if err := s.store.BindCheckable(tok, dispatch.NewIdleCheck(seconds, repeatLimit, src)); err != nil {
		return 0, err
	}
	return tok, nil
}
