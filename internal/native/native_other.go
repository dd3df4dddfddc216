//go:build !windows

package native

import (
	"time"

	"winwatch/internal/winevent"
)

// stubAPI is used on platforms without an event-hook backend.
type stubAPI struct{}

// System returns the process-wide native backend.
func System() (API, error) {
	return nil, ErrNotSupported
}

func (stubAPI) RegisterHook(winevent.Range, Trampoline) (Handle, error) {
	return 0, ErrNotSupported
}

func (stubAPI) UnregisterHook(Handle) error { return ErrNotSupported }

func (stubAPI) Wait(time.Duration) (WaitResult, error) {
	return WaitTimeout, ErrNotSupported
}

func (stubAPI) PumpMessages() (bool, error) { return false, ErrNotSupported }

func (stubAPI) SignalStop() {}
