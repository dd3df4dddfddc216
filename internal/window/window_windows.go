//go:build windows

package window

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procIsWindow            = user32.NewProc("IsWindow")
	procIsZoomed            = user32.NewProc("IsZoomed")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowTextLength = user32.NewProc("GetWindowTextLengthW")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
)

const errInvalidWindowHandle = 1400 // ERROR_INVALID_WINDOW_HANDLE

type winRect struct {
	Left, Top, Right, Bottom int32
}

type monitorInfo struct {
	Size    uint32
	Monitor winRect
	Work    winRect
	Flags   uint32
}

// winAccess implements Access with user32 calls.
type winAccess struct{}

var (
	system     Access
	systemOnce sync.Once
)

// System returns the process-wide window backend.
func System() Access {
	systemOnce.Do(func() { system = &winAccess{} })
	return system
}

func (winAccess) Exists(h Handle) bool {
	ret, _, _ := procIsWindow.Call(uintptr(h))
	return ret != 0
}

func (a winAccess) Title(h Handle) (string, error) {
	if !a.Exists(h) {
		return "", fmt.Errorf("%w: %#x", ErrStaleHandle, uintptr(h))
	}
	length, _, _ := procGetWindowTextLength.Call(uintptr(h))
	if length == 0 {
		return "", nil
	}
	buf := make([]uint16, length+1)
	n, _, err := procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), length+1)
	if n == 0 {
		if errno, ok := err.(syscall.Errno); ok && errno == errInvalidWindowHandle {
			return "", fmt.Errorf("%w: %#x", ErrStaleHandle, uintptr(h))
		}
		return "", nil
	}
	return windows.UTF16ToString(buf[:n]), nil
}

func (a winAccess) Bounds(h Handle) (Rect, error) {
	var r winRect
	ret, _, err := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		if errno, ok := err.(syscall.Errno); ok && errno == errInvalidWindowHandle {
			return Rect{}, fmt.Errorf("%w: %#x", ErrStaleHandle, uintptr(h))
		}
		return Rect{}, fmt.Errorf("window: GetWindowRect: %w", err)
	}
	return Rect{
		Origin: Point{X: int(r.Left), Y: int(r.Top)},
		End:    Point{X: int(r.Right), Y: int(r.Bottom)},
	}, nil
}

func (a winAccess) Maximized(h Handle) (bool, error) {
	if !a.Exists(h) {
		return false, fmt.Errorf("%w: %#x", ErrStaleHandle, uintptr(h))
	}
	ret, _, _ := procIsZoomed.Call(uintptr(h))
	return ret != 0, nil
}

// Monitor enumeration shares one NewCallback slot: callback slots are
// process-global and never released.
var (
	enumMu       sync.Mutex
	enumMonitors []Rect
	enumProcOnce sync.Once
	enumProc     uintptr
)

func monitorEnumProc(hMonitor, hdc, lprc, lparam uintptr) uintptr {
	var info monitorInfo
	info.Size = uint32(unsafe.Sizeof(info))
	ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&info)))
	if ret != 0 {
		enumMonitors = append(enumMonitors, Rect{
			Origin: Point{X: int(info.Monitor.Left), Y: int(info.Monitor.Top)},
			End:    Point{X: int(info.Monitor.Right), Y: int(info.Monitor.Bottom)},
		})
	}
	return 1 // continue enumeration
}

// Screens enumerates display monitors and returns the 1-based numbers of
// those r overlaps, in enumeration order.
func (a winAccess) Screens(r Rect) ([]int, error) {
	enumProcOnce.Do(func() { enumProc = syscall.NewCallback(monitorEnumProc) })

	enumMu.Lock()
	defer enumMu.Unlock()
	enumMonitors = enumMonitors[:0]

	ret, _, err := procEnumDisplayMonitors.Call(0, 0, enumProc, 0)
	if ret == 0 {
		return nil, fmt.Errorf("window: EnumDisplayMonitors: %w", err)
	}

	var touched []int
	for i, bounds := range enumMonitors {
		if r.Intersects(bounds) {
			touched = append(touched, i+1)
		}
	}
	return touched, nil
}
