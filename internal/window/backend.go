package window

import (
	"fmt"

	"github.com/fvclaus/winmon/internal/logger"
)

// Backend defines the interface for window discovery backends (exec, X11)
type Backend interface {
	// ListWindows returns all windows currently reported by the
	// windowing environment.
	ListWindows() ([]Window, error)

	// ActiveWindowID returns the id of the focused window, in the same
	// format ListWindows uses. Empty when focus cannot be determined.
	ActiveWindowID() string

	// CurrentDesktop returns the id of the currently active desktop,
	// "0" when it cannot be determined.
	CurrentDesktop() string

	// Close releases any resources held by the backend.
	Close() error

	// Name returns the backend name (e.g., "exec", "x11")
	Name() string
}

// New returns the backend selected by name. The native X11 backend falls
// back to the exec backend when no X connection can be established.
func New(name string, tools Tools) (Backend, error) {
	switch name {
	case "", "exec":
		return NewExecBackend(tools), nil
	case "x11":
		b, err := NewX11Backend()
		if err != nil {
			logger.WithComponent("window").Warn().
				Err(err).
				Msg("X11 backend unavailable, falling back to exec backend")
			return NewExecBackend(tools), nil
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (use 'exec' or 'x11')", name)
	}
}
