package dispatch

import (
	"errors"
	"fmt"

	"winwatch/internal/native"
	"winwatch/internal/registry"
	"winwatch/internal/window"
	"winwatch/internal/winevent"
)

// ErrAlreadyBound is returned when hooks are installed twice without an
// intervening release.
var ErrAlreadyBound = errors.New("dispatch: hooks already bound")

// bindAll installs one native hook per bound range of every registered
// subscription. On a mid-way failure the hooks installed so far are
// released before returning.
func (l *Loop) bindAll() error {
	if l.bound {
		return ErrAlreadyBound
	}

	l.store.SetUnhook(func(h uintptr) error {
		return l.api.UnregisterHook(native.Handle(h))
	})

	var count int
	for _, e := range l.store.Entries() {
		proc := l.trampoline(e.Token)
		for _, r := range e.Ranges {
			h, err := l.api.RegisterHook(r, proc)
			if err != nil {
				l.unbindAll()
				return fmt.Errorf("register hook for %s: %w", r, err)
			}
			l.store.AttachHook(e.Token, uintptr(h))
			count++
		}
	}

	l.bound = true
	if l.metrics != nil {
		l.metrics.HooksBound(count)
		l.metrics.SetSubscriptions(int64(len(l.store.Entries())))
	}
	l.log.Debug("hooks bound", "count", count)
	return nil
}

// unbindAll releases every live hook. Removal failures are logged and
// skipped so one stale handle cannot strand the rest.
func (l *Loop) unbindAll() {
	live := l.store.LiveHookCount()
	failures := l.store.ReleaseHooks()
	for _, f := range failures {
		l.log.Warn("unhook failed", "handle", f.Handle, "error", f.Err)
		if l.metrics != nil {
			l.metrics.RecordUnhookFailure()
		}
	}
	if l.metrics != nil {
		l.metrics.HooksReleased(live - len(failures))
	}
	l.bound = false
}

// trampoline adapts a native hook firing into a payload delivered to the
// subscription's derived callback. It runs on the loop goroutine, inside
// the message pump.
func (l *Loop) trampoline(tok registry.Token) native.Trampoline {
	return func(hook native.Handle, event winevent.ID, hwnd uintptr, objectID, childID int32, thread, timeMS uint32) {
		p := &winevent.Payload{
			Hook:         uintptr(hook),
			Event:        event,
			EventName:    winevent.Name(event),
			WindowHandle: hwnd,
			ObjectID:     objectID,
			ChildID:      childID,
			Thread:       thread,
			TimeMS:       timeMS,
		}
		if hwnd != 0 {
			p.Window = window.FromHandle(window.Handle(hwnd), l.sys)
		}

		cb := l.store.Derived(tok)
		if cb == nil {
			return
		}
		if l.metrics != nil {
			l.metrics.RecordEvent()
		}
		if l.recorder != nil {
			if err := l.recorder.Record(p); err != nil {
				l.log.Warn("record event", "event", p.EventName, "error", err)
			}
		}
		if err := cb(p); err != nil {
			if l.metrics != nil {
				l.metrics.RecordCallbackError()
			}
			if l.dispatchErr == nil {
				l.dispatchErr = fmt.Errorf("dispatch %s: %w", p.EventName, err)
			}
		}
	}
}
