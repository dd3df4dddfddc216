// Package native is the OS event-hook boundary: registering event hooks for
// ID ranges, the blocking wait primitive the dispatch loop ticks on, message
// pumping, and the system idle-time source.
//
// The Windows backend drives SetWinEventHook and the thread message queue;
// other platforms get a stub that fails with ErrNotSupported, and Fake is an
// in-memory implementation for tests.
package native

import (
	"errors"
	"time"

	"winwatch/internal/winevent"
)

var (
	// ErrNotSupported reports that no native hook backend exists on this
	// platform.
	ErrNotSupported = errors.New("native: not supported on this platform")

	// ErrInvalidHandle reports a hook handle the OS rejects as malformed.
	// Unbind sweeps treat it as a soft failure.
	ErrInvalidHandle = errors.New("native: invalid hook handle")
)

// Handle is an opaque native hook handle.
type Handle uintptr

// Trampoline bridges one OS hook invocation into managed code. The OS holds
// only a function-pointer reference; the registering side must keep the
// trampoline reachable for the hook's entire lifetime.
type Trampoline func(hook Handle, event winevent.ID, hwnd uintptr, objectID, childID int32, thread, timeMS uint32)

// WaitResult says why a Wait call returned.
type WaitResult int

const (
	// WaitStop: the stop signal fired.
	WaitStop WaitResult = iota
	// WaitMessage: a native event notification is pending; pump messages.
	WaitMessage
	// WaitTimeout: the tick interval elapsed with nothing to do.
	WaitTimeout
)

func (r WaitResult) String() string {
	switch r {
	case WaitStop:
		return "stop"
	case WaitMessage:
		return "message"
	case WaitTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// API is the native hook surface the dispatch loop consumes.
type API interface {
	// RegisterHook installs proc for every event in r and returns the hook
	// handle. The implementation must keep proc alive until UnregisterHook.
	RegisterHook(r winevent.Range, proc Trampoline) (Handle, error)

	// UnregisterHook removes a previously registered hook.
	UnregisterHook(h Handle) error

	// Wait blocks until the stop signal fires, a native event notification
	// arrives, or timeout elapses, whichever comes first.
	Wait(timeout time.Duration) (WaitResult, error)

	// PumpMessages dispatches pending OS messages, synchronously invoking
	// any registered trampolines. It reports whether a terminal quit
	// message was seen.
	PumpMessages() (quit bool, err error)

	// SignalStop makes the next (or current) Wait return WaitStop. Safe to
	// call from any goroutine.
	SignalStop()
}

// IdleSource reports time elapsed since the last user input.
type IdleSource interface {
	IdleTime() (time.Duration, error)
}

// IdleSourceFunc adapts a plain function to IdleSource.
type IdleSourceFunc func() (time.Duration, error)

func (f IdleSourceFunc) IdleTime() (time.Duration, error) { return f() }
