package internal

import "runtime"

// DefaultTTYDevice is the controlling terminal device of the platform.
func DefaultTTYDevice() string {
	switch runtime.GOOS {
	case `windows`:
		return `CON`
	case `darwin`:
		return `/dev/stdin`
	default:
		return `/dev/tty`
	}
}
