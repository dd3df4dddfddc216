// Package registry owns callback registrations: which events each callback
// listens to, the current filter-wrapped version of each callback, and the
// native hook handles live while a dispatch loop runs.
//
// Registrations are keyed by an opaque Token handed out at Register time;
// every later operation (bind, wrap, dedup check) takes the token, never the
// raw function value.
//
// The store is mutated from the goroutine doing registration and read from
// the dispatch loop's goroutine. A mutex guards the maps, but registering
// from arbitrary goroutines while the loop runs is not a supported usage
// pattern: callers serialize registration with the loop's goroutine.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"winwatch/internal/winevent"
)

// Callback is a user event handler. A non-nil error terminates the dispatch
// loop when returned on the native event path; poll-path errors are isolated
// per condition (see the dispatch package).
type Callback func(*winevent.Payload) error

// Checkable is a tick-evaluated condition not tied to a native event range.
// Check runs once per loop tick and must be cheap; side effects are limited
// to the condition's own state. Result is called only after Check reported
// true and produces the payload handed to the callback.
type Checkable interface {
	Check() bool
	Result() *winevent.Payload
}

// Token identifies one registered callback.
type Token int

var (
	// ErrNilCallback reports a registration contract violation: the callback
	// must be a non-nil func taking one payload argument.
	ErrNilCallback = errors.New("registry: callback must not be nil")

	// ErrUnknownToken reports an operation against a token the store never
	// issued, or one cleared since.
	ErrUnknownToken = errors.New("registry: unknown token")
)

// HookError is one soft failure from a hook-release sweep.
type HookError struct {
	Handle uintptr
	Err    error
}

func (e HookError) Error() string {
	return fmt.Sprintf("registry: unhook %#x: %v", e.Handle, e.Err)
}

func (e HookError) Unwrap() error { return e.Err }

// entry is the store's record for one registered callback.
type entry struct {
	original   Callback
	derived    Callback
	ranges     []winevent.Range
	checkables []Checkable
	hooks      []uintptr
}

// Entry is a read-only snapshot of one registration.
type Entry struct {
	Token      Token
	Ranges     []winevent.Range
	Checkables []Checkable
}

// Store is the callback registry.
type Store struct {
	mu      sync.Mutex
	next    Token
	order   []Token
	entries map[Token]*entry
	unhook  func(uintptr) error
}

// NewStore returns an empty registry.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.order = nil
	s.entries = make(map[Token]*entry)
}

// Register adds cb to the store and returns its token. The derived callback
// starts out identical to cb.
func (s *Store) Register(cb Callback) (Token, error) {
	if cb == nil {
		return 0, ErrNilCallback
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	tok := s.next
	s.entries[tok] = &entry{original: cb, derived: cb}
	s.order = append(s.order, tok)
	return tok, nil
}

// Bind declares event interest for tok. The spec is normalized first; each
// resulting range maps to true when newly bound, false when that exact range
// was already bound to tok. Duplicates are reported, never merged and never
// an error.
func (s *Store) Bind(tok Token, spec winevent.Spec) (map[winevent.Range]bool, error) {
	ranges, err := winevent.Normalize(spec)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tok]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownToken, tok)
	}
	results := make(map[winevent.Range]bool, len(ranges))
	for _, r := range ranges {
		if containsRange(e.ranges, r) {
			results[r] = false
			continue
		}
		e.ranges = append(e.ranges, r)
		results[r] = true
	}
	return results, nil
}

// BindCheckable attaches a tick-evaluated condition to tok. Distinct
// condition instances are always distinct bindings; there is no dedup.
func (s *Store) BindCheckable(tok Token, c Checkable) error {
	if c == nil {
		return fmt.Errorf("registry: nil checkable for token %d", tok)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tok]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownToken, tok)
	}
	e.checkables = append(e.checkables, c)
	return nil
}

// SetDerived records the current effective (filter-wrapped) callback for
// tok. Idempotent, last write wins. The dispatch path resolves callbacks
// through Derived at fire time, so wrapping after the loop has started takes
// effect on the next delivery.
func (s *Store) SetDerived(tok Token, cb Callback) error {
	if cb == nil {
		return ErrNilCallback
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tok]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownToken, tok)
	}
	e.derived = cb
	return nil
}

// Derived returns the current effective callback for tok, or nil if the
// token is unknown.
func (s *Store) Derived(tok Token) Callback {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[tok]; ok {
		return e.derived
	}
	return nil
}

// IsBound reports whether exactly r is bound to tok.
func (s *Store) IsBound(tok Token, r winevent.Range) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tok]
	return ok && containsRange(e.ranges, r)
}

// Entries returns a snapshot of all registrations in registration order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.order))
	for _, tok := range s.order {
		e := s.entries[tok]
		out = append(out, Entry{
			Token:      tok,
			Ranges:     append([]winevent.Range(nil), e.ranges...),
			Checkables: append([]Checkable(nil), e.checkables...),
		})
	}
	return out
}

// SetUnhook installs the native unregister routine used by ReleaseHooks and
// Clear. The dispatch loop sets this before binding.
func (s *Store) SetUnhook(fn func(uintptr) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unhook = fn
}

// AttachHook records a live native hook handle against tok.
func (s *Store) AttachHook(tok Token, handle uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tok]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownToken, tok)
	}
	e.hooks = append(e.hooks, handle)
	return nil
}

// LiveHookCount returns the number of attached native hook handles.
func (s *Store) LiveHookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		n += len(e.hooks)
	}
	return n
}

// ReleaseHooks unregisters every live hook handle. A handle the OS rejects
// is a soft failure: it is collected and the sweep continues, since one
// lingering hook must not block cleanup of the rest. All handle lists are
// emptied regardless.
func (s *Store) ReleaseHooks() []HookError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseHooksLocked()
}

func (s *Store) releaseHooksLocked() []HookError {
	var failures []HookError
	for _, tok := range s.order {
		e := s.entries[tok]
		for _, h := range e.hooks {
			if s.unhook == nil {
				continue
			}
			if err := s.unhook(h); err != nil {
				failures = append(failures, HookError{Handle: h, Err: err})
			}
		}
		e.hooks = nil
	}
	return failures
}

// Clear releases all native hooks, then resets every in-memory binding.
// The store afterwards behaves as freshly constructed (issued tokens become
// unknown).
func (s *Store) Clear() []HookError {
	s.mu.Lock()
	defer s.mu.Unlock()
	failures := s.releaseHooksLocked()
	s.reset()
	return failures
}

func containsRange(ranges []winevent.Range, r winevent.Range) bool {
	for _, have := range ranges {
		if have == r {
			return true
		}
	}
	return false
}
