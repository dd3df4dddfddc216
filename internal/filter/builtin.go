package filter

import (
	"path"
	"strings"
	"time"

	"winwatch/internal/winevent"
	"winwatch/internal/window"
)

// IdleFunc reports how long the system has been without user input.
type IdleFunc func() (time.Duration, error)

// excludeSystemWindows is the built-in guard heuristic. Payloads without a
// window pass; windows pass when they have a title that is not one of the
// known internal titles.
func excludeSystemWindows(p *winevent.Payload) (bool, error) {
	if p.Window == nil {
		return true, nil
	}
	title, err := p.Window.Title()
	if err != nil {
		return false, err
	}
	return title != "" && !winevent.IsSystemTitle(title), nil
}

// ExcludeSystemWindows filters out common, probably uninteresting windows
// like "OleMainThreadWndName" or "Default IME".
func ExcludeSystemWindows() *Filter {
	opts := DefaultOptions()
	opts.ExcludeSystemWindows = false // the predicate is the heuristic itself
	return New(excludeSystemWindows, opts)
}

// RequireWindow excludes payloads that carry no window. The default guards
// do not require one, so stack this when your predicate needs a window.
func RequireWindow() *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		return p.Window != nil, nil
	}, DefaultOptions())
}

// RequireTitled filters out windows that have no title.
func RequireTitled() *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		if p.Window == nil {
			return false, nil
		}
		title, err := p.Window.Title()
		if err != nil {
			return false, err
		}
		return title != "", nil
	}, DefaultOptions())
}

// Title filters on window title. Patterns use shell-style wildcards
// ("*Notepad" matches any title ending in "Notepad"); set caseSensitive to
// false for case-folded matching.
func Title(pattern string, caseSensitive bool) *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		if p.Window == nil {
			return false, nil
		}
		title, err := p.Window.Title()
		if err != nil {
			return false, err
		}
		pat := pattern
		if !caseSensitive {
			pat = strings.ToLower(pat)
			title = strings.ToLower(title)
		}
		ok, err := path.Match(pat, title)
		if err != nil {
			return false, err
		}
		return ok, nil
	}, DefaultOptions())
}

// SizeLessThan includes only windows strictly smaller than width x height.
func SizeLessThan(width, height int) *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		if p.Window == nil {
			return false, nil
		}
		bounds, err := p.Window.Bounds()
		if err != nil {
			return false, err
		}
		return bounds.Width() < width && bounds.Height() < height, nil
	}, DefaultOptions())
}

// AreaLessThan includes only windows whose area in pixels is strictly less
// than area.
func AreaLessThan(area int) *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		if p.Window == nil {
			return false, nil
		}
		bounds, err := p.Window.Bounds()
		if err != nil {
			return false, err
		}
		return bounds.Area() < area, nil
	}, DefaultOptions())
}

// TouchesMonitors passes when the window overlaps all the given monitor
// numbers. With exclusive set, the window must touch exactly that set and
// no other monitor.
func TouchesMonitors(exclusive bool, monitors ...int) *Filter {
	want := make(map[int]bool, len(monitors))
	for _, m := range monitors {
		want[m] = true
	}
	return New(func(p *winevent.Payload) (bool, error) {
		if p.Window == nil {
			return false, nil
		}
		touched, err := p.Window.Screens()
		if err != nil {
			return false, err
		}
		have := make(map[int]bool, len(touched))
		for _, m := range touched {
			have[m] = true
		}
		if exclusive {
			if len(have) != len(want) {
				return false, nil
			}
		}
		for m := range want {
			if !have[m] {
				return false, nil
			}
		}
		return true, nil
	}, DefaultOptions())
}

// OriginWithin requires the window's origin (upper left corner) to lie
// within rect.
func OriginWithin(rect window.Rect) *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		if p.Window == nil {
			return false, nil
		}
		bounds, err := p.Window.Bounds()
		if err != nil {
			return false, err
		}
		return rect.ContainsPoint(bounds.Origin), nil
	}, DefaultOptions())
}

// Maximized filters out windows that are not maximized.
func Maximized() *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		if p.Window == nil {
			return false, nil
		}
		max, err := p.Window.Maximized()
		if err != nil {
			return false, err
		}
		return max, nil
	}, DefaultOptions())
}

// IdleAtLeast passes when the system has been idle for at least seconds.
// Resolution is bounded by the dispatch loop's tick interval.
func IdleAtLeast(seconds float64, idle IdleFunc) *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		d, err := idle()
		if err != nil {
			return false, err
		}
		return d.Seconds() >= seconds, nil
	}, DefaultOptions())
}

// WindowEvent names one title-pattern/event pair for ExcludeWindowEvents.
type WindowEvent struct {
	TitlePattern string
	Event        winevent.ID
}

// ExcludeWindowEvents drops the given events when they originate from
// windows whose title matches the paired pattern.
func ExcludeWindowEvents(pairs ...WindowEvent) *Filter {
	return New(func(p *winevent.Payload) (bool, error) {
		if p.Window == nil {
			return true, nil
		}
		title, err := p.Window.Title()
		if err != nil {
			return false, err
		}
		for _, pair := range pairs {
			if p.Event != pair.Event {
				continue
			}
			if ok, err := path.Match(pair.TitlePattern, title); err == nil && ok {
				return false, nil
			}
		}
		return true, nil
	}, DefaultOptions())
}

// Static always evaluates to pass, with no window requirements. It exists
// for wiring and testing filter stacks.
func Static(pass bool) *Filter {
	opts := Options{CaptureStaleHandle: false}
	return New(func(*winevent.Payload) (bool, error) {
		return pass, nil
	}, opts)
}
