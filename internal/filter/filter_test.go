package filter

import (
	"errors"
	"testing"

	"winwatch/internal/registry"
	"winwatch/internal/winevent"
	"winwatch/internal/window"
)

// payloadFor builds a payload whose window reference resolves through sys.
func payloadFor(sys window.Access, h window.Handle) *winevent.Payload {
	return &winevent.Payload{
		WindowHandle: uintptr(h),
		Window:       window.FromHandle(h, sys),
	}
}

func mustPass(t *testing.T, f *Filter, p *winevent.Payload) {
	t.Helper()
	ok, err := f.Test(p)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if !ok {
		t.Fatal("filter rejected payload, want pass")
	}
}

func mustFail(t *testing.T, f *Filter, p *winevent.Payload) {
	t.Helper()
	ok, err := f.Test(p)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if ok {
		t.Fatal("filter passed payload, want reject")
	}
}

func TestTestNilPayload(t *testing.T) {
	mustFail(t, Static(true), nil)
}

func TestRequireExistingWindowGuard(t *testing.T) {
	sys := window.NewFakeAccess()
	sys.Put(1, window.FakeWindow{Title: "Notepad"})

	f := Static(true)
	f.opts.RequireExistingWindow = true

	p := payloadFor(sys, 1)
	mustPass(t, f, p)

	sys.Remove(1)
	mustFail(t, f, p)

	// Payloads without a window pass the guard.
	mustPass(t, f, &winevent.Payload{})
}

func TestExcludeSystemWindowsGuard(t *testing.T) {
	sys := window.NewFakeAccess()
	sys.Put(1, window.FakeWindow{Title: "Default IME"})
	sys.Put(2, window.FakeWindow{Title: "Notepad"})
	sys.Put(3, window.FakeWindow{Title: ""})

	f := ExcludeSystemWindows()
	mustFail(t, f, payloadFor(sys, 1))
	mustPass(t, f, payloadFor(sys, 2))
	mustFail(t, f, payloadFor(sys, 3))
	mustPass(t, f, &winevent.Payload{})
}

func TestCaptureStaleHandle(t *testing.T) {
	stalePred := func(*winevent.Payload) (bool, error) {
		return false, window.ErrStaleHandle
	}

	capturing := New(stalePred, Options{CaptureStaleHandle: true})
	ok, err := capturing.Test(&winevent.Payload{})
	if err != nil {
		t.Fatalf("stale handle propagated despite capture: %v", err)
	}
	if ok {
		t.Fatal("stale predicate passed")
	}

	raw := New(stalePred, Options{})
	if _, err := raw.Test(&winevent.Payload{}); !errors.Is(err, window.ErrStaleHandle) {
		t.Fatalf("err = %v, want ErrStaleHandle", err)
	}

	// Other predicate errors always propagate.
	boom := errors.New("predicate exploded")
	failing := New(func(*winevent.Payload) (bool, error) {
		return false, boom
	}, Options{CaptureStaleHandle: true})
	if _, err := failing.Test(&winevent.Payload{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want predicate error", err)
	}
}

func TestWrapSkipsInnerOnReject(t *testing.T) {
	calls := 0
	cb := Static(false).Wrap(func(p *winevent.Payload) error {
		calls++
		return nil
	})
	if err := cb(&winevent.Payload{}); err != nil {
		t.Fatalf("wrapped callback: %v", err)
	}
	if calls != 0 {
		t.Fatal("inner callback ran for rejected payload")
	}

	cb = Static(true).Wrap(func(p *winevent.Payload) error {
		calls++
		return nil
	})
	if err := cb(&winevent.Payload{}); err != nil {
		t.Fatalf("wrapped callback: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestApplyStacksOnDerived(t *testing.T) {
	s := registry.NewStore()
	calls := 0
	tok, err := s.Register(func(p *winevent.Payload) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := Static(true).Apply(s, tok); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := Static(false).Apply(s, tok); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if err := s.Derived(tok)(&winevent.Payload{}); err != nil {
		t.Fatalf("derived: %v", err)
	}
	if calls != 0 {
		t.Fatal("stacked rejecting filter did not block")
	}

	if err := Static(true).Apply(s, registry.Token(99)); !errors.Is(err, registry.ErrUnknownToken) {
		t.Fatalf("Apply unknown token err = %v", err)
	}
}

func TestAnyOfShortCircuits(t *testing.T) {
	evaluated := 0
	counting := func(pass bool) *Filter {
		return New(func(*winevent.Payload) (bool, error) {
			evaluated++
			return pass, nil
		}, Options{})
	}

	mustPass(t, AnyOf(counting(false), counting(true), counting(true)), &winevent.Payload{})
	if evaluated != 2 {
		t.Fatalf("evaluated = %d, want short-circuit after first pass", evaluated)
	}

	evaluated = 0
	mustFail(t, AnyOf(counting(false), counting(false)), &winevent.Payload{})
	if evaluated != 2 {
		t.Fatalf("evaluated = %d, want 2", evaluated)
	}

	mustFail(t, AnyOf(), &winevent.Payload{})
}

func TestAllOfShortCircuits(t *testing.T) {
	evaluated := 0
	counting := func(pass bool) *Filter {
		return New(func(*winevent.Payload) (bool, error) {
			evaluated++
			return pass, nil
		}, Options{})
	}

	mustFail(t, AllOf(counting(true), counting(false), counting(true)), &winevent.Payload{})
	if evaluated != 2 {
		t.Fatalf("evaluated = %d, want short-circuit after first failure", evaluated)
	}

	evaluated = 0
	mustPass(t, AllOf(counting(true), counting(true)), &winevent.Payload{})
	if evaluated != 2 {
		t.Fatalf("evaluated = %d, want 2", evaluated)
	}

	mustPass(t, AllOf(), &winevent.Payload{})
}

func TestCombinatorErrorPropagates(t *testing.T) {
	boom := errors.New("inner exploded")
	failing := New(func(*winevent.Payload) (bool, error) {
		return false, boom
	}, Options{})

	if _, err := AnyOf(failing).Test(&winevent.Payload{}); !errors.Is(err, boom) {
		t.Fatalf("AnyOf err = %v", err)
	}
	if _, err := AllOf(failing).Test(&winevent.Payload{}); !errors.Is(err, boom) {
		t.Fatalf("AllOf err = %v", err)
	}
}
