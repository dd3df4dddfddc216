package metrics

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCounter(t *testing.T) {
	c := NewCounter("test_total", "test counter")
	if c.Value() != 0 {
		t.Fatalf("new counter = %d", c.Value())
	}
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Fatalf("counter = %d, want 5", c.Value())
	}
}

func TestGauge(t *testing.T) {
	g := NewGauge("test_gauge", "test gauge")
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Add(-3)
	if g.Value() != 7 {
		t.Fatalf("gauge = %d, want 7", g.Value())
	}
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("test_seconds", "test histogram", DefaultBuckets)
	for _, v := range []float64{0.1, 0.2, 0.3} {
		h.Observe(v)
	}
	if h.Count() != 3 {
		t.Fatalf("count = %d", h.Count())
	}
	if mean := h.Mean(); mean < 0.19 || mean > 0.21 {
		t.Fatalf("mean = %f", mean)
	}
}

func TestHistogramTimer(t *testing.T) {
	h := NewHistogram("timer_seconds", "timer histogram", DurationBuckets)
	timer := h.Timer()
	time.Sleep(time.Millisecond)
	d := timer.Stop()
	if d <= 0 {
		t.Fatalf("timer duration = %v", d)
	}
	if h.Count() != 1 {
		t.Fatalf("count = %d", h.Count())
	}
}

func TestRegistryFullName(t *testing.T) {
	r := NewRegistry("winwatch", "loop")
	c := r.RegisterCounter("events_total", "events")
	if c.Name() != "winwatch_loop_events_total" {
		t.Fatalf("name = %q", c.Name())
	}

	// Registering the same name twice yields the same metric.
	if r.RegisterCounter("events_total", "events") != c {
		t.Fatal("duplicate registration created a second counter")
	}
}

func TestWritePrometheus(t *testing.T) {
	r := NewRegistry("winwatch", "")
	r.RegisterCounter("events_total", "Total events").Add(3)
	r.RegisterGauge("active_hooks", "Live hooks").Set(2)
	r.RegisterHistogram("pump_duration_seconds", "Pump durations", DurationBuckets).Observe(0.005)

	var buf bytes.Buffer
	if err := r.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# TYPE winwatch_events_total counter",
		"winwatch_events_total 3",
		"# TYPE winwatch_active_hooks gauge",
		"winwatch_active_hooks 2",
		"# TYPE winwatch_pump_duration_seconds histogram",
		"winwatch_pump_duration_seconds_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	r := NewRegistry("winwatch", "")
	r.RegisterCounter("events_total", "Total events").Inc()

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
}

func TestHTTPHandler(t *testing.T) {
	r := NewRegistry("winwatch", "")
	r.RegisterCounter("events_total", "Total events").Inc()

	rec := httptest.NewRecorder()
	r.HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "winwatch_events_total") {
		t.Fatal("handler output missing counter")
	}
}

func TestWatchMetrics(t *testing.T) {
	m := NewWatchMetrics(NewRegistry("winwatch", ""))

	m.RecordEvent()
	m.RecordEvent()
	m.RecordCallbackError()
	m.RecordTick()
	m.RecordCheck(true)
	m.RecordCheck(false)
	m.RecordUnhookFailure()
	m.HooksBound(3)
	m.HooksReleased(2)
	m.SetSubscriptions(4)
	m.StartPumpTimer().Stop()

	snap := m.Snapshot()
	checks := map[string]interface{}{
		"events_total":          uint64(2),
		"callback_errors_total": uint64(1),
		"ticks_total":           uint64(1),
		"checks_total":          uint64(2),
		"check_fires_total":     uint64(1),
		"unhook_failures_total": uint64(1),
		"active_hooks":          int64(1),
		"subscriptions":         int64(4),
	}
	for key, want := range checks {
		if snap[key] != want {
			t.Errorf("%s = %v, want %v", key, snap[key], want)
		}
	}
	if m.PumpDuration.Count() != 1 {
		t.Fatalf("pump observations = %d", m.PumpDuration.Count())
	}
}
