package registry

import (
	"errors"
	"testing"

	"winwatch/internal/winevent"
)

func nop(p *winevent.Payload) error { return nil }

func TestRegisterNilCallback(t *testing.T) {
	s := NewStore()
	if _, err := s.Register(nil); !errors.Is(err, ErrNilCallback) {
		t.Fatalf("err = %v, want ErrNilCallback", err)
	}
}

func TestRegisterIssuesDistinctTokens(t *testing.T) {
	s := NewStore()
	a, err := s.Register(nop)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	b, err := s.Register(nop)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if a == b {
		t.Fatal("same token for two registrations of the same func")
	}
}

func TestBindReportsDuplicates(t *testing.T) {
	s := NewStore()
	tok, _ := s.Register(nop)

	r := winevent.Single(winevent.SystemForeground)
	got, err := s.Bind(tok, r)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !got[r] {
		t.Fatal("first bind reported as duplicate")
	}

	got, err = s.Bind(tok, r)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got[r] {
		t.Fatal("second bind of the same range reported as fresh")
	}

	// An overlapping but non-identical range is a fresh binding.
	wide := winevent.Range{Start: winevent.SystemSound, End: winevent.SystemEnd}
	got, err = s.Bind(tok, wide)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !got[wide] {
		t.Fatal("overlapping range treated as duplicate")
	}
}

func TestBindMixedSet(t *testing.T) {
	s := NewStore()
	tok, _ := s.Register(nop)

	fg := winevent.Single(winevent.SystemForeground)
	if _, err := s.Bind(tok, fg); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	create := winevent.Single(winevent.ObjectCreate)
	got, err := s.Bind(tok, winevent.RangeSet{fg, create})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got[fg] || !got[create] {
		t.Fatalf("mixed bind = %v", got)
	}
}

func TestBindUnknownToken(t *testing.T) {
	s := NewStore()
	if _, err := s.Bind(Token(99), winevent.SystemForeground); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("err = %v, want ErrUnknownToken", err)
	}
}

func TestBindInvalidSpec(t *testing.T) {
	s := NewStore()
	tok, _ := s.Register(nop)
	_, err := s.Bind(tok, winevent.Range{Start: winevent.ObjectDestroy, End: winevent.ObjectCreate})
	if !errors.Is(err, winevent.ErrInvalidEventSpec) {
		t.Fatalf("err = %v, want ErrInvalidEventSpec", err)
	}
}

func TestDerivedLastWriteWins(t *testing.T) {
	s := NewStore()
	var trace []string
	tok, _ := s.Register(func(p *winevent.Payload) error {
		trace = append(trace, "original")
		return nil
	})

	if err := s.SetDerived(tok, func(p *winevent.Payload) error {
		trace = append(trace, "first")
		return nil
	}); err != nil {
		t.Fatalf("SetDerived: %v", err)
	}
	if err := s.SetDerived(tok, func(p *winevent.Payload) error {
		trace = append(trace, "second")
		return nil
	}); err != nil {
		t.Fatalf("SetDerived: %v", err)
	}

	cb := s.Derived(tok)
	if cb == nil {
		t.Fatal("Derived returned nil for live token")
	}
	if err := cb(&winevent.Payload{}); err != nil {
		t.Fatalf("derived callback: %v", err)
	}
	if len(trace) != 1 || trace[0] != "second" {
		t.Fatalf("trace = %v", trace)
	}
}

func TestDerivedUnknownToken(t *testing.T) {
	s := NewStore()
	if cb := s.Derived(Token(7)); cb != nil {
		t.Fatal("Derived returned a callback for an unknown token")
	}
}

func TestSetDerivedNil(t *testing.T) {
	s := NewStore()
	tok, _ := s.Register(nop)
	if err := s.SetDerived(tok, nil); !errors.Is(err, ErrNilCallback) {
		t.Fatalf("err = %v, want ErrNilCallback", err)
	}
}

func TestEntriesSnapshotOrder(t *testing.T) {
	s := NewStore()
	a, _ := s.Register(nop)
	b, _ := s.Register(nop)
	s.Bind(b, winevent.SystemForeground)

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Token != a || entries[1].Token != b {
		t.Fatalf("order = %v, %v", entries[0].Token, entries[1].Token)
	}
	if len(entries[1].Ranges) != 1 {
		t.Fatalf("ranges = %v", entries[1].Ranges)
	}

	// Mutating the snapshot must not leak into the store.
	entries[1].Ranges[0] = winevent.Single(winevent.ObjectCreate)
	if !s.IsBound(b, winevent.Single(winevent.SystemForeground)) {
		t.Fatal("snapshot mutation reached the store")
	}
}

func TestReleaseHooksSoftFailures(t *testing.T) {
	s := NewStore()
	tok, _ := s.Register(nop)

	var released []uintptr
	s.SetUnhook(func(h uintptr) error {
		released = append(released, h)
		if h == 2 {
			return errors.New("hook busy")
		}
		return nil
	})

	for _, h := range []uintptr{1, 2, 3} {
		if err := s.AttachHook(tok, h); err != nil {
			t.Fatalf("AttachHook: %v", err)
		}
	}
	if s.LiveHookCount() != 3 {
		t.Fatalf("LiveHookCount = %d", s.LiveHookCount())
	}

	failures := s.ReleaseHooks()
	if len(released) != 3 {
		t.Fatalf("released %v, want all three attempted", released)
	}
	if len(failures) != 1 || failures[0].Handle != 2 {
		t.Fatalf("failures = %v", failures)
	}
	if !errors.Is(failures[0], failures[0].Err) {
		t.Fatal("HookError does not unwrap to its cause")
	}
	if s.LiveHookCount() != 0 {
		t.Fatal("handle lists not emptied after sweep")
	}
}

func TestClearForgetsTokens(t *testing.T) {
	s := NewStore()
	tok, _ := s.Register(nop)
	s.Bind(tok, winevent.SystemForeground)

	var released int
	s.SetUnhook(func(h uintptr) error {
		released++
		return nil
	})
	s.AttachHook(tok, 5)

	if failures := s.Clear(); len(failures) != 0 {
		t.Fatalf("Clear failures = %v", failures)
	}
	if released != 1 {
		t.Fatalf("released = %d, want 1", released)
	}
	if s.Derived(tok) != nil {
		t.Fatal("cleared token still resolves a callback")
	}
	if _, err := s.Bind(tok, winevent.SystemForeground); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("Bind after Clear err = %v, want ErrUnknownToken", err)
	}
}

func TestBindCheckable(t *testing.T) {
	s := NewStore()
	tok, _ := s.Register(nop)

	if err := s.BindCheckable(tok, nil); err == nil {
		t.Fatal("nil checkable accepted")
	}
	if err := s.BindCheckable(Token(42), staticCheck(true)); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("err = %v, want ErrUnknownToken", err)
	}

	// Identical conditions are distinct bindings.
	c := staticCheck(true)
	s.BindCheckable(tok, c)
	s.BindCheckable(tok, c)
	if got := len(s.Entries()[0].Checkables); got != 2 {
		t.Fatalf("checkables = %d, want 2", got)
	}
}

type staticCheck bool

func (c staticCheck) Check() bool               { return bool(c) }
func (c staticCheck) Result() *winevent.Payload { return &winevent.Payload{} }
