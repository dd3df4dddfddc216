// Package metrics provides Prometheus-compatible metrics for winwatch.
package metrics

import (
	"time"
)

// WatchMetrics holds all winwatch-specific metrics.
type WatchMetrics struct {
	registry *Registry

	// Counters
	EventsTotal         *Counter
	CallbackErrorsTotal *Counter
	TicksTotal          *Counter
	ChecksTotal         *Counter
	CheckFiresTotal     *Counter
	UnhookFailuresTotal *Counter

	// Gauges
	ActiveHooks   *Gauge
	Subscriptions *Gauge

	// Histograms
	PumpDuration *Histogram
}

// startTime records when metrics were initialized.
var startTime = time.Now()

// NewWatchMetrics creates and registers all winwatch metrics.
func NewWatchMetrics(registry *Registry) *WatchMetrics {
	if registry == nil {
		registry = Default()
	}

	m := &WatchMetrics{
		registry: registry,

		EventsTotal: registry.RegisterCounter(
			"events_total",
			"Total number of hook events delivered",
		),
		CallbackErrorsTotal: registry.RegisterCounter(
			"callback_errors_total",
			"Total number of subscriber callback errors",
		),
		TicksTotal: registry.RegisterCounter(
			"ticks_total",
			"Total number of idle poll ticks",
		),
		ChecksTotal: registry.RegisterCounter(
			"checks_total",
			"Total number of timed condition evaluations",
		),
		CheckFiresTotal: registry.RegisterCounter(
			"check_fires_total",
			"Total number of timed conditions that fired",
		),
		UnhookFailuresTotal: registry.RegisterCounter(
			"unhook_failures_total",
			"Total number of hook removals that failed",
		),

		ActiveHooks: registry.RegisterGauge(
			"active_hooks",
			"Number of currently installed event hooks",
		),
		Subscriptions: registry.RegisterGauge(
			"subscriptions",
			"Number of registered subscriptions",
		),

		PumpDuration: registry.RegisterHistogram(
			"pump_duration_seconds",
			"Duration of message pump passes in seconds",
			DurationBuckets,
		),
	}

	return m
}

// RecordEvent records one delivered hook event.
func (m *WatchMetrics) RecordEvent() {
	m.EventsTotal.Inc()
}

// RecordCallbackError records a subscriber callback failure.
func (m *WatchMetrics) RecordCallbackError() {
	m.CallbackErrorsTotal.Inc()
}

// RecordTick records one idle poll tick.
func (m *WatchMetrics) RecordTick() {
	m.TicksTotal.Inc()
}

// RecordCheck records one timed condition evaluation.
func (m *WatchMetrics) RecordCheck(fired bool) {
	m.ChecksTotal.Inc()
	if fired {
		m.CheckFiresTotal.Inc()
	}
}

// RecordUnhookFailure records a failed hook removal.
func (m *WatchMetrics) RecordUnhookFailure() {
	m.UnhookFailuresTotal.Inc()
}

// HooksBound adjusts the live hook gauge after installation.
func (m *WatchMetrics) HooksBound(n int) {
	m.ActiveHooks.Add(int64(n))
}

// HooksReleased adjusts the live hook gauge after removal.
func (m *WatchMetrics) HooksReleased(n int) {
	m.ActiveHooks.Add(-int64(n))
}

// SetSubscriptions sets the subscription gauge.
func (m *WatchMetrics) SetSubscriptions(count int64) {
	m.Subscriptions.Set(count)
}

// StartPumpTimer returns a timer for one message pump pass.
func (m *WatchMetrics) StartPumpTimer() *HistogramTimer {
	return m.PumpDuration.Timer()
}

// Snapshot returns a snapshot of key metrics.
func (m *WatchMetrics) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"events_total":          m.EventsTotal.Value(),
		"callback_errors_total": m.CallbackErrorsTotal.Value(),
		"ticks_total":           m.TicksTotal.Value(),
		"checks_total":          m.ChecksTotal.Value(),
		"check_fires_total":     m.CheckFiresTotal.Value(),
		"unhook_failures_total": m.UnhookFailuresTotal.Value(),
		"active_hooks":          m.ActiveHooks.Value(),
		"subscriptions":         m.Subscriptions.Value(),
		"pump_avg_seconds":      m.PumpDuration.Mean(),
		"uptime_seconds":        int64(time.Since(startTime).Seconds()),
	}
}

// Global winwatch metrics instance.
var defaultWatchMetrics *WatchMetrics

// GetMetrics returns the global winwatch metrics instance.
func GetMetrics() *WatchMetrics {
	if defaultWatchMetrics == nil {
		defaultWatchMetrics = NewWatchMetrics(Default())
	}
	return defaultWatchMetrics
}
