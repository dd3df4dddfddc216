package dispatch

import (
	"time"

	"winwatch/internal/native"
	"winwatch/internal/winevent"
)

// IdleCheck fires when the user has been idle for more than a threshold,
// re-firing on consecutive polls up to a repeat limit, then going quiet
// until activity resets the idle period.
//
// With threshold 5s and limit 2, a user idling through nine polls at one
// second apart produces exactly two fires: the poll that crosses the
// threshold and the one after it.
type IdleCheck struct {
	threshold time.Duration
	limit     int
	src       native.IdleSource

	prevIn    bool
	prevBegin bool
	counter   int
	lastIdle  time.Duration
}

// NewIdleCheck returns an IdleCheck that reads idle time from src.
// seconds is the idle threshold; repeatLimit caps how many consecutive
// polls may fire per idle period.
func NewIdleCheck(seconds float64, repeatLimit int, src native.IdleSource) *IdleCheck {
	return &IdleCheck{
		threshold: time.Duration(seconds * float64(time.Second)),
		limit:     repeatLimit,
		src:       src,
	}
}

// Check samples the idle source and reports whether this poll fires.
// A source failure counts as activity.
func (c *IdleCheck) Check() bool {
	idle, err := c.src.IdleTime()
	if err != nil {
		idle = 0
	}
	c.lastIdle = idle

	in := err == nil && idle > c.threshold
	begin := in && !c.prevIn && !c.prevBegin

	var fire bool
	switch {
	case in && begin:
		c.counter = 1
		fire = true
	case in:
		next := c.counter + 1
		if next <= c.limit && !(next == 1 && !begin) {
			c.counter = next
			fire = true
		} else {
			c.counter = 0
		}
	default:
		c.counter = 0
	}

	c.prevIn = in
	c.prevBegin = begin
	return fire
}

// Result builds the payload delivered when Check fires. The observed idle
// duration rides along in the payload context.
func (c *IdleCheck) Result() *winevent.Payload {
	return &winevent.Payload{
		Context: map[string]any{
			winevent.ContextIdleDuration: c.lastIdle,
		},
	}
}
