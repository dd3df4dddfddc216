//go:build !windows

package window

import "sync"

// stubAccess is used on platforms without a window backend. Exists reports
// false and property access fails with ErrNotSupported.
type stubAccess struct{}

var (
	system     Access
	systemOnce sync.Once
)

// System returns the process-wide window backend.
func System() Access {
	systemOnce.Do(func() { system = stubAccess{} })
	return system
}

func (stubAccess) Exists(Handle) bool             { return false }
func (stubAccess) Title(Handle) (string, error)   { return "", ErrNotSupported }
func (stubAccess) Bounds(Handle) (Rect, error)    { return Rect{}, ErrNotSupported }
func (stubAccess) Maximized(Handle) (bool, error) { return false, ErrNotSupported }
func (stubAccess) Screens(Rect) ([]int, error)    { return nil, ErrNotSupported }
