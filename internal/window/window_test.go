package window

import (
	"errors"
	"testing"
)

func TestRectGeometry(t *testing.T) {
	r := Rect{Origin: Point{10, 20}, End: Point{110, 70}}
	if r.Width() != 100 {
		t.Fatalf("Width = %d", r.Width())
	}
	if r.Height() != 50 {
		t.Fatalf("Height = %d", r.Height())
	}
	if r.Area() != 5000 {
		t.Fatalf("Area = %d", r.Area())
	}
}

func TestRectContainsPoint(t *testing.T) {
	r := Rect{Origin: Point{0, 0}, End: Point{100, 100}}
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{50, 50}, true},
		{Point{0, 0}, true},
		{Point{100, 100}, true},
		{Point{101, 50}, false},
		{Point{50, -1}, false},
	}
	for _, tc := range cases {
		if got := r.ContainsPoint(tc.p); got != tc.want {
			t.Errorf("ContainsPoint(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := Rect{Origin: Point{0, 0}, End: Point{100, 100}}
	if !outer.ContainsRect(Rect{Origin: Point{10, 10}, End: Point{90, 90}}) {
		t.Fatal("inner rect not contained")
	}
	if outer.ContainsRect(Rect{Origin: Point{10, 10}, End: Point{110, 90}}) {
		t.Fatal("overhanging rect reported as contained")
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{Origin: Point{0, 0}, End: Point{100, 100}}
	cases := []struct {
		b    Rect
		want bool
	}{
		{Rect{Origin: Point{50, 50}, End: Point{150, 150}}, true},
		{Rect{Origin: Point{100, 100}, End: Point{200, 200}}, true},
		{Rect{Origin: Point{101, 0}, End: Point{200, 100}}, false},
		{Rect{Origin: Point{0, 101}, End: Point{100, 200}}, false},
	}
	for _, tc := range cases {
		if got := a.Intersects(tc.b); got != tc.want {
			t.Errorf("Intersects(%v) = %v, want %v", tc.b, got, tc.want)
		}
	}
}

func TestFakeAccessStaleHandle(t *testing.T) {
	sys := NewFakeAccess()
	if sys.Exists(1) {
		t.Fatal("empty fake reports a window")
	}
	if _, err := sys.Title(1); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("Title err = %v, want ErrStaleHandle", err)
	}
	if _, err := sys.Bounds(1); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("Bounds err = %v, want ErrStaleHandle", err)
	}
	if _, err := sys.Maximized(1); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("Maximized err = %v, want ErrStaleHandle", err)
	}
}

func TestRefResolvesLazily(t *testing.T) {
	sys := NewFakeAccess()
	ref := FromHandle(7, sys)

	// The handle does not need to exist at construction time.
	if ref.Exists() {
		t.Fatal("ref exists before the window does")
	}

	sys.Put(7, FakeWindow{
		Title:     "Notepad",
		Bounds:    Rect{Origin: Point{0, 0}, End: Point{400, 300}},
		Maximized: true,
	})

	if !ref.Exists() {
		t.Fatal("ref does not see the new window")
	}
	title, err := ref.Title()
	if err != nil || title != "Notepad" {
		t.Fatalf("Title = %q, %v", title, err)
	}
	bounds, err := ref.Bounds()
	if err != nil || bounds.Area() != 120000 {
		t.Fatalf("Bounds = %v, %v", bounds, err)
	}
	max, err := ref.Maximized()
	if err != nil || !max {
		t.Fatalf("Maximized = %v, %v", max, err)
	}
	if ref.Handle() != 7 {
		t.Fatalf("Handle = %v", ref.Handle())
	}

	sys.Remove(7)
	if _, err := ref.Title(); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("Title after destroy err = %v, want ErrStaleHandle", err)
	}
}

func TestRefScreens(t *testing.T) {
	sys := NewFakeAccess()
	sys.SetMonitors(
		Rect{Origin: Point{0, 0}, End: Point{1920, 1080}},
		Rect{Origin: Point{1920, 0}, End: Point{3840, 1080}},
	)
	sys.Put(1, FakeWindow{Bounds: Rect{Origin: Point{1800, 0}, End: Point{2000, 200}}})
	sys.Put(2, FakeWindow{Bounds: Rect{Origin: Point{0, 0}, End: Point{100, 100}}})

	screens, err := FromHandle(1, sys).Screens()
	if err != nil {
		t.Fatalf("Screens: %v", err)
	}
	if len(screens) != 2 || screens[0] != 1 || screens[1] != 2 {
		t.Fatalf("Screens = %v", screens)
	}

	screens, err = FromHandle(2, sys).Screens()
	if err != nil {
		t.Fatalf("Screens: %v", err)
	}
	if len(screens) != 1 || screens[0] != 1 {
		t.Fatalf("Screens = %v", screens)
	}
}

func TestFakeAccessTitleErr(t *testing.T) {
	sys := NewFakeAccess()
	sys.Put(1, FakeWindow{Title: "Notepad"})
	sys.TitleErr = errors.New("access denied")

	if _, err := sys.Title(1); err == nil {
		t.Fatal("scripted title error not returned")
	}
}
