//go:build !windows && !linux

package native

// SystemIdleSource returns the platform idle-time source.
func SystemIdleSource() (IdleSource, error) {
	return nil, ErrNotSupported
}
