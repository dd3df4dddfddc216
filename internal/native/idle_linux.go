//go:build linux

package native

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverBusName    = "org.freedesktop.ScreenSaver"
	screenSaverObjectPath = "/org/freedesktop/ScreenSaver"
	screenSaverIdleMethod = "org.freedesktop.ScreenSaver.GetSessionIdleTime"
)

// dbusIdleSource queries the session's screensaver service for idle time.
// Most desktop environments (KDE, GNOME via compatibility shims) answer the
// freedesktop ScreenSaver interface; headless sessions do not, in which case
// construction fails and callers fall back to not polling idle conditions.
type dbusIdleSource struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

// SystemIdleSource returns the platform idle-time source.
func SystemIdleSource() (IdleSource, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("native: session bus: %w", err)
	}
	return &dbusIdleSource{conn: conn}, nil
}

func (s *dbusIdleSource) IdleTime() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj := s.conn.Object(screenSaverBusName, screenSaverObjectPath)
	var seconds uint32
	if err := obj.Call(screenSaverIdleMethod, 0).Store(&seconds); err != nil {
		return 0, fmt.Errorf("native: GetSessionIdleTime: %w", err)
	}
	return time.Duration(seconds) * time.Second, nil
}
