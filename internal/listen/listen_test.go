package listen

import (
	"testing"
	"time"

	"winwatch/internal/native"
	"winwatch/internal/registry"
	"winwatch/internal/winevent"
)

func nopCallback(p *winevent.Payload) error { return nil }

func TestToBindsRanges(t *testing.T) {
	sub := New(registry.NewStore())
	spec := winevent.RangeSet{
		winevent.Single(winevent.ObjectCreate),
		winevent.Single(winevent.ObjectDestroy),
	}

	tok, bound, err := sub.To(spec, nopCallback)
	if err != nil {
		t.Fatalf("To: %v", err)
	}
	if len(bound) != 2 {
		t.Fatalf("bound %d ranges, want 2", len(bound))
	}
	for r, fresh := range bound {
		if !fresh {
			t.Fatalf("range %v reported as duplicate on first bind", r)
		}
	}
	if !sub.Store().IsBound(tok, winevent.Single(winevent.ObjectCreate)) {
		t.Fatal("create range not bound")
	}
}

func TestAddReportsDuplicates(t *testing.T) {
	sub := New(registry.NewStore())
	tok, _, err := sub.To(winevent.Single(winevent.SystemForeground), nopCallback)
	if err != nil {
		t.Fatalf("To: %v", err)
	}

	bound, err := sub.Add(tok, winevent.Single(winevent.SystemForeground))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if bound[winevent.Single(winevent.SystemForeground)] {
		t.Fatal("duplicate range reported as fresh")
	}
}

func TestNamedHelperRanges(t *testing.T) {
	cases := []struct {
		name      string
		subscribe func(*Subscriber) (registry.Token, error)
		want      []winevent.Range
	}{
		{"creation", func(s *Subscriber) (registry.Token, error) { return s.Creation(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.ObjectCreate)}},
		{"destruction", func(s *Subscriber) (registry.Token, error) { return s.Destruction(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.ObjectDestroy)}},
		{"existence", func(s *Subscriber) (registry.Token, error) { return s.ExistenceChange(nopCallback) },
			[]winevent.Range{{Start: winevent.ObjectCreate, End: winevent.ObjectDestroy}}},
		{"minimization", func(s *Subscriber) (registry.Token, error) { return s.Minimization(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.SystemMinimizeStart)}},
		{"restoration", func(s *Subscriber) (registry.Token, error) { return s.Restoration(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.SystemMinimizeEnd)}},
		{"location", func(s *Subscriber) (registry.Token, error) { return s.LocationChange(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.ObjectLocationChange)}},
		{"maximization", func(s *Subscriber) (registry.Token, error) { return s.Maximization(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.ObjectLocationChange)}},
		{"movestart", func(s *Subscriber) (registry.Token, error) { return s.MoveOrSizeStart(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.SystemMoveSizeStart)}},
		{"moveend", func(s *Subscriber) (registry.Token, error) { return s.MoveOrSizeEnd(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.SystemMoveSizeEnd)}},
		{"capturestart", func(s *Subscriber) (registry.Token, error) { return s.CaptureStart(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.SystemCaptureStart)}},
		{"captureend", func(s *Subscriber) (registry.Token, error) { return s.CaptureEnd(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.SystemCaptureEnd)}},
		{"foreground", func(s *Subscriber) (registry.Token, error) { return s.Foreground(nopCallback) },
			[]winevent.Range{winevent.Single(winevent.SystemForeground)}},
		{"any", func(s *Subscriber) (registry.Token, error) { return s.AnyEvent(nopCallback) },
			[]winevent.Range{{Start: winevent.EventMin, End: winevent.EventMax}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := New(registry.NewStore())
			tok, err := tc.subscribe(sub)
			if err != nil {
				t.Fatalf("subscribe: %v", err)
			}
			for _, r := range tc.want {
				if !sub.Store().IsBound(tok, r) {
					t.Fatalf("range %v not bound", r)
				}
			}
		})
	}
}

func TestIdlenessBindsCheckable(t *testing.T) {
	src := native.NewFake()
	src.ScriptIdle(10 * time.Second)
	sub := New(registry.NewStore())

	tok, err := sub.Idleness(5, 1, src, nopCallback)
	if err != nil {
		t.Fatalf("Idleness: %v", err)
	}

	entries := sub.Store().Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Token != tok {
		t.Fatalf("entry token = %v, want %v", e.Token, tok)
	}
	if len(e.Checkables) != 1 {
		t.Fatalf("checkables = %d, want 1", len(e.Checkables))
	}
	if !e.Checkables[0].Check() {
		t.Fatal("scripted idle time did not fire the condition")
	}
}
