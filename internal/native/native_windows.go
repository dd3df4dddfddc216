//go:build windows

package native

import (
	"fmt"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"winwatch/internal/winevent"
)

const (
	winEventOutOfContext   = 0x0000 // WINEVENT_OUTOFCONTEXT
	winEventSkipOwnProcess = 0x0002 // WINEVENT_SKIPOWNPROCESS

	qsAllInput = 0x04FF // QS_ALLINPUT

	waitObject0 = 0x00000000
	waitTimeout = 0x00000102

	pmRemove = 0x0001
	wmQuit   = 0x0012
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetWinEventHook           = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent            = user32.NewProc("UnhookWinEvent")
	procMsgWaitForMultipleObjects = user32.NewProc("MsgWaitForMultipleObjects")
	procPeekMessageW              = user32.NewProc("PeekMessageW")
	procTranslateMessage          = user32.NewProc("TranslateMessage")
	procDispatchMessageW          = user32.NewProc("DispatchMessageW")
	procGetLastInputInfo          = user32.NewProc("GetLastInputInfo")
	procGetTickCount              = kernel32.NewProc("GetTickCount")
)

type msg struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	PtX     int32
	PtY     int32
}

// winAPI implements API over SetWinEventHook and the thread message queue.
//
// All hooks share one WinEventProc created with syscall.NewCallback and are
// routed to their Go trampoline by hook handle: NewCallback slots are
// process-global and can never be released, so one slot serves every hook
// this process will ever install.
type winAPI struct {
	mu        sync.Mutex
	hooks     map[Handle]Trampoline
	stopEvent windows.Handle
}

var (
	systemAPI  *winAPI
	systemOnce sync.Once

	winEventProcOnce sync.Once
	winEventProcPtr  uintptr
)

// System returns the process-wide native backend.
func System() (API, error) {
	var err error
	systemOnce.Do(func() {
		var stop windows.Handle
		// Auto-reset event: one SignalStop wakes exactly one Wait.
		stop, err = windows.CreateEvent(nil, 0, 0, nil)
		if err != nil {
			err = fmt.Errorf("native: create stop event: %w", err)
			return
		}
		systemAPI = &winAPI{
			hooks:     make(map[Handle]Trampoline),
			stopEvent: stop,
		}
	})
	if systemAPI == nil {
		return nil, err
	}
	return systemAPI, nil
}

func winEventProc(hook, event, hwnd, objectID, childID, thread, timeMS uintptr) uintptr {
	systemAPI.mu.Lock()
	proc := systemAPI.hooks[Handle(hook)]
	systemAPI.mu.Unlock()
	if proc != nil {
		proc(Handle(hook), winevent.ID(event), hwnd,
			int32(objectID), int32(childID), uint32(thread), uint32(timeMS))
	}
	return 0
}

func (a *winAPI) RegisterHook(r winevent.Range, proc Trampoline) (Handle, error) {
	winEventProcOnce.Do(func() {
		winEventProcPtr = syscall.NewCallback(winEventProc)
	})

	// Hold the lock across SetWinEventHook so an event delivered between
	// installation and map insert cannot observe a missing trampoline.
	a.mu.Lock()
	defer a.mu.Unlock()

	h, _, err := procSetWinEventHook.Call(
		uintptr(r.Start),
		uintptr(r.End),
		0,
		winEventProcPtr,
		0,
		0,
		winEventOutOfContext|winEventSkipOwnProcess,
	)
	if h == 0 {
		return 0, fmt.Errorf("native: SetWinEventHook(%s): %w", r, err)
	}
	a.hooks[Handle(h)] = proc
	return Handle(h), nil
}

func (a *winAPI) UnregisterHook(h Handle) error {
	a.mu.Lock()
	delete(a.hooks, h)
	a.mu.Unlock()

	ret, _, err := procUnhookWinEvent.Call(uintptr(h))
	if ret == 0 {
		return fmt.Errorf("%w: UnhookWinEvent(%#x): %v", ErrInvalidHandle, uintptr(h), err)
	}
	return nil
}

func (a *winAPI) Wait(timeout time.Duration) (WaitResult, error) {
	ms := uintptr(timeout / time.Millisecond)
	rc, _, err := procMsgWaitForMultipleObjects.Call(
		1,
		uintptr(unsafe.Pointer(&a.stopEvent)),
		0,
		ms,
		qsAllInput,
	)
	switch rc {
	case waitObject0:
		return WaitStop, nil
	case waitObject0 + 1:
		return WaitMessage, nil
	case waitTimeout:
		return WaitTimeout, nil
	default:
		return WaitTimeout, fmt.Errorf("native: MsgWaitForMultipleObjects rc=%d: %w", rc, err)
	}
}

func (a *winAPI) PumpMessages() (bool, error) {
	var m msg
	for {
		ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if ret == 0 {
			return false, nil
		}
		if m.Message == wmQuit {
			return true, nil
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (a *winAPI) SignalStop() {
	windows.SetEvent(a.stopEvent)
}
