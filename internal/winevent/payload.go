package winevent

import "winwatch/internal/window"

// Context keys used by built-in checkable conditions.
const (
	// ContextIdleDuration carries the measured idle time (time.Duration) in
	// payloads produced by idle detection.
	ContextIdleDuration = "idle_duration"
)

// Payload is the data handed to a user callback when an event fires or a
// checkable condition reports true.
type Payload struct {
	// Raw fields as reported by the OS hook.
	Hook         uintptr
	Event        ID
	EventName    string
	WindowHandle uintptr
	ObjectID     int32
	ChildID      int32
	Thread       uint32
	TimeMS       uint32

	// Window is the resolved window abstraction for WindowHandle, nil when
	// the event has no window target (mouse pointer events, poll-generated
	// payloads).
	Window *window.Ref

	// Context carries auxiliary data for payloads with no native source,
	// e.g. the measured idle duration.
	Context map[string]any
}
