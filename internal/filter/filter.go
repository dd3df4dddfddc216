// Package filter builds short-circuiting predicate chains in front of user
// callbacks. A Filter wraps a callback into a new callback that only runs
// the inner one when the built-in guards and the user predicate all pass;
// filters stack by nesting and evaluate outside-in.
package filter

import (
	"errors"

	"winwatch/internal/registry"
	"winwatch/internal/winevent"
	"winwatch/internal/window"
)

// Predicate decides whether a payload is of interest.
type Predicate func(*winevent.Payload) (bool, error)

// Options control the built-in guards evaluated before the user predicate.
type Options struct {
	// RequireExistingWindow short-circuits when the payload carries a window
	// reference whose target no longer exists. Payloads without a window
	// pass this guard; use RequireWindow to reject them.
	RequireExistingWindow bool

	// ExcludeSystemWindows short-circuits events on windows Windows uses
	// internally (OLE marshalling windows, IME helpers, tray plumbing).
	ExcludeSystemWindows bool

	// CaptureStaleHandle swallows window.ErrStaleHandle raised by the user
	// predicate, treating it as a filter failure instead of propagating.
	// Disable it to handle the error yourself, e.g. for cleanup actions.
	CaptureStaleHandle bool
}

// DefaultOptions enables every guard.
func DefaultOptions() Options {
	return Options{
		RequireExistingWindow: true,
		ExcludeSystemWindows:  true,
		CaptureStaleHandle:    true,
	}
}

// Filter pairs a predicate with its guard options.
type Filter struct {
	pred Predicate
	opts Options
}

// New builds a filter from a predicate.
func New(pred Predicate, opts Options) *Filter {
	return &Filter{pred: pred, opts: opts}
}

// Test evaluates the filter as a plain boolean check: guards in fixed order,
// then the user predicate. No inner callback is involved; this is the
// one-layer unwrap the combinators rely on. A nil payload never passes.
func (f *Filter) Test(p *winevent.Payload) (bool, error) {
	if p == nil {
		return false, nil
	}
	if f.opts.RequireExistingWindow && p.Window != nil && !p.Window.Exists() {
		return false, nil
	}
	if f.opts.ExcludeSystemWindows {
		ok, err := excludeSystemWindows(p)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	ok, err := f.pred(p)
	if err != nil {
		if f.opts.CaptureStaleHandle && errors.Is(err, window.ErrStaleHandle) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// Wrap returns a callback that invokes cb only when the filter passes.
// Filtered-out payloads are a silent no-op, not an error.
func (f *Filter) Wrap(cb registry.Callback) registry.Callback {
	return func(p *winevent.Payload) error {
		ok, err := f.Test(p)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return cb(p)
	}
}

// Apply stacks the filter onto the registration identified by tok: the
// store's current derived callback is wrapped and written back, so filters
// applied after registration (even after the loop started) take effect on
// the next delivery.
func (f *Filter) Apply(s *registry.Store, tok registry.Token) error {
	inner := s.Derived(tok)
	if inner == nil {
		return registry.ErrUnknownToken
	}
	return s.SetDerived(tok, f.Wrap(inner))
}

// AnyOf passes when at least one inner filter passes. Evaluation stops at
// the first pass; an inner error stops evaluation and propagates.
func AnyOf(filters ...*Filter) *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		for _, f := range filters {
			ok, err := f.Test(p)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}, DefaultOptions())
}

// AllOf passes when every inner filter passes. Evaluation stops at the
// first failure.
func AllOf(filters ...*Filter) *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		for _, f := range filters {
			ok, err := f.Test(p)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}, DefaultOptions())
}
