package winevent

import (
	"errors"
	"testing"
)

func TestNormalizeSingleID(t *testing.T) {
	ranges, err := Normalize(SystemForeground)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(ranges) != 1 || ranges[0] != Single(SystemForeground) {
		t.Fatalf("Normalize(id) = %v", ranges)
	}
}

func TestNormalizeRange(t *testing.T) {
	r := Range{Start: ObjectCreate, End: ObjectDestroy}
	ranges, err := Normalize(r)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(ranges) != 1 || ranges[0] != r {
		t.Fatalf("Normalize(range) = %v", ranges)
	}
}

func TestNormalizeRangeSet(t *testing.T) {
	rs := RangeSet{
		Single(SystemForeground),
		{Start: ObjectCreate, End: ObjectDestroy},
	}
	ranges, err := Normalize(rs)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("Normalize(set) = %v", ranges)
	}
}

func TestNormalizeRejectsReversedRange(t *testing.T) {
	_, err := Normalize(Range{Start: ObjectDestroy, End: ObjectCreate})
	if !errors.Is(err, ErrInvalidEventSpec) {
		t.Fatalf("err = %v, want ErrInvalidEventSpec", err)
	}
}

func TestNormalizeRejectsOutOfSpace(t *testing.T) {
	for _, r := range []Range{
		{Start: 0, End: SystemForeground},
		{Start: SystemForeground, End: EventMax + 1},
	} {
		if _, err := Normalize(r); !errors.Is(err, ErrInvalidEventSpec) {
			t.Fatalf("Normalize(%v) err = %v, want ErrInvalidEventSpec", r, err)
		}
	}
}

func TestNormalizeRejectsNilAndEmpty(t *testing.T) {
	if _, err := Normalize(nil); !errors.Is(err, ErrInvalidEventSpec) {
		t.Fatalf("nil spec err = %v", err)
	}
	if _, err := Normalize(RangeSet{}); !errors.Is(err, ErrInvalidEventSpec) {
		t.Fatalf("empty set err = %v", err)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: ObjectCreate, End: ObjectEnd}
	if !r.Contains(ObjectLocationChange) {
		t.Fatal("object range should contain location change")
	}
	if r.Contains(SystemForeground) {
		t.Fatal("object range should not contain system events")
	}
	if !Single(SystemForeground).Contains(SystemForeground) {
		t.Fatal("degenerate range should contain its own ID")
	}
}

func TestRangeString(t *testing.T) {
	if got := Single(SystemForeground).String(); got != "EVENT_SYSTEM_FOREGROUND" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Range{Start: ObjectCreate, End: ObjectDestroy}).String(); got != "0x8000-0x8001" {
		t.Fatalf("String() = %q", got)
	}
}

func TestNamespacesGlobalFirst(t *testing.T) {
	ns := Namespaces()
	if len(ns) == 0 || ns[0].Name != "global" {
		t.Fatalf("Namespaces() = %v", ns)
	}
	if ns[0].Range != (Range{Start: EventMin, End: EventMax}) {
		t.Fatalf("global range = %v", ns[0].Range)
	}
}

func TestNameLookupRoundtrip(t *testing.T) {
	for _, name := range Names() {
		id, ok := Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) failed", name)
		}
		if got := Name(id); got != name {
			t.Fatalf("Name(Lookup(%q)) = %q", name, got)
		}
	}
	if Name(0x7EEE) != "" {
		t.Fatal("unnamed ID returned a name")
	}
	if _, ok := Lookup("EVENT_NO_SUCH_THING"); ok {
		t.Fatal("Lookup accepted an unknown name")
	}
}

func TestIsSystemTitle(t *testing.T) {
	cases := []struct {
		title string
		want  bool
	}{
		{"Default IME", true},
		{"MSCTFIME UI", true},
		{"System Clock, 10:30 PM", true},
		{"Action Center, no new notifications", true},
		{"Untitled - Notepad", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsSystemTitle(tc.title); got != tc.want {
			t.Errorf("IsSystemTitle(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}
