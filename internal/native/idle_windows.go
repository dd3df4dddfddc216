//go:build windows

package native

import (
	"fmt"
	"time"
	"unsafe"
)

type lastInputInfo struct {
	Size uint32
	Time uint32
}

// systemIdleSource measures idle time as the distance between the tick
// counter and the last input tick. Both wrap at ~49.7 days; uint32
// subtraction keeps the distance correct across a single wrap.
type systemIdleSource struct{}

// SystemIdleSource returns the platform idle-time source.
func SystemIdleSource() (IdleSource, error) {
	return systemIdleSource{}, nil
}

func (systemIdleSource) IdleTime() (time.Duration, error) {
	var info lastInputInfo
	info.Size = uint32(unsafe.Sizeof(info))
	ret, _, err := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0, fmt.Errorf("native: GetLastInputInfo: %w", err)
	}
	ticks, _, _ := procGetTickCount.Call()
	elapsed := uint32(ticks) - info.Time
	return time.Duration(elapsed) * time.Millisecond, nil
}
