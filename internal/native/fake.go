package native

import (
	"sync"
	"time"

	"winwatch/internal/winevent"
)

// FakeEvent is one scripted native event delivery.
type FakeEvent struct {
	Event    winevent.ID
	HWnd     uintptr
	ObjectID int32
	ChildID  int32
	Thread   uint32
	TimeMS   uint32
}

// Fake is an in-memory API and IdleSource for tests: events queued with
// Fire are delivered to matching hooks on the next PumpMessages, Wait
// resolves from queue state, and idle time follows a script.
type Fake struct {
	mu         sync.Mutex
	nextHandle Handle
	hooks      map[Handle]fakeHook
	pending    []FakeEvent
	quit       bool
	stopCh     chan struct{}

	// UnregisterErrs maps handles whose unregistration should fail, for
	// exercising the soft-failure sweep.
	UnregisterErrs map[Handle]error

	registered   []Handle
	unregistered []Handle

	idleScript []time.Duration
	idleErr    error
}

type fakeHook struct {
	r    winevent.Range
	proc Trampoline
}

// NewFake returns an empty fake backend.
func NewFake() *Fake {
	return &Fake{
		hooks:          make(map[Handle]fakeHook),
		stopCh:         make(chan struct{}, 1),
		UnregisterErrs: make(map[Handle]error),
	}
}

func (f *Fake) RegisterHook(r winevent.Range, proc Trampoline) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHandle++
	h := f.nextHandle
	f.hooks[h] = fakeHook{r: r, proc: proc}
	f.registered = append(f.registered, h)
	return h, nil
}

func (f *Fake) UnregisterHook(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered = append(f.unregistered, h)
	if err, ok := f.UnregisterErrs[h]; ok {
		return err
	}
	delete(f.hooks, h)
	return nil
}

// Wait returns WaitStop if the stop signal is pending, WaitMessage if
// events are queued, and otherwise blocks up to timeout like the real wait
// primitive.
func (f *Fake) Wait(timeout time.Duration) (WaitResult, error) {
	select {
	case <-f.stopCh:
		return WaitStop, nil
	default:
	}

	f.mu.Lock()
	hasWork := len(f.pending) > 0 || f.quit
	f.mu.Unlock()
	if hasWork {
		return WaitMessage, nil
	}

	select {
	case <-f.stopCh:
		return WaitStop, nil
	case <-time.After(timeout):
		return WaitTimeout, nil
	}
}

// PumpMessages delivers every queued event to each hook whose range
// contains it, synchronously, in queue order.
func (f *Fake) PumpMessages() (bool, error) {
	f.mu.Lock()
	events := f.pending
	f.pending = nil
	quit := f.quit
	f.quit = false
	hooks := make(map[Handle]fakeHook, len(f.hooks))
	for h, hook := range f.hooks {
		hooks[h] = hook
	}
	f.mu.Unlock()

	for _, ev := range events {
		for h, hook := range hooks {
			if hook.r.Contains(ev.Event) {
				hook.proc(h, ev.Event, ev.HWnd, ev.ObjectID, ev.ChildID, ev.Thread, ev.TimeMS)
			}
		}
	}
	return quit, nil
}

// SignalStop makes the next Wait return WaitStop. Like the real auto-reset
// stop event, one signal wakes exactly one Wait.
func (f *Fake) SignalStop() {
	select {
	case f.stopCh <- struct{}{}:
	default:
	}
}

// Fire queues a native event for the next pump.
func (f *Fake) Fire(ev FakeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, ev)
}

// PostQuit queues a terminal quit message.
func (f *Fake) PostQuit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quit = true
}

// ScriptIdle sets the idle durations returned by successive IdleTime calls;
// the last value is sticky.
func (f *Fake) ScriptIdle(durations ...time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idleScript = durations
}

// SetIdleErr makes IdleTime fail.
func (f *Fake) SetIdleErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idleErr = err
}

func (f *Fake) IdleTime() (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idleErr != nil {
		return 0, f.idleErr
	}
	if len(f.idleScript) == 0 {
		return 0, nil
	}
	d := f.idleScript[0]
	if len(f.idleScript) > 1 {
		f.idleScript = f.idleScript[1:]
	}
	return d, nil
}

// Registered returns every handle handed out, in order.
func (f *Fake) Registered() []Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Handle(nil), f.registered...)
}

// Unregistered returns every handle passed to UnregisterHook, in order,
// including failed attempts.
func (f *Fake) Unregistered() []Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Handle(nil), f.unregistered...)
}

// ActiveHooks returns the number of currently registered hooks.
func (f *Fake) ActiveHooks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hooks)
}
