package notify

import (
	"fmt"
	"os/exec"

	"github.com/fvclaus/winmon/internal/logger"
)

// Notifier dispatches desktop notifications.
type Notifier interface {
	// Notify sends a notification with the given summary and body.
	Notify(summary, body string) error

	// Name returns the notifier name (e.g., "command", "dbus")
	Name() string
}

// New returns the notifier selected by name. The D-Bus notifier falls
// back to the command notifier when the session bus is unavailable.
func New(name, command string) (Notifier, error) {
	switch name {
	case "", "command":
		return NewCommandNotifier(command), nil
	case "dbus":
		n, err := NewDBusNotifier()
		if err != nil {
			logger.WithComponent("notify").Warn().
				Err(err).
				Msg("D-Bus notifier unavailable, falling back to command notifier")
			return NewCommandNotifier(command), nil
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notifier: %s (use 'command' or 'dbus')", name)
	}
}

// CommandNotifier sends notifications by shelling out to notify-send.
type CommandNotifier struct {
	command string
}

// NewCommandNotifier creates a notifier using the given external command,
// defaulting to notify-send.
func NewCommandNotifier(command string) *CommandNotifier {
	if command == "" {
		command = "notify-send"
	}
	return &CommandNotifier{command: command}
}

// Name returns the notifier name
func (n *CommandNotifier) Name() string {
	return "command"
}

// Notify invokes the notification command with summary and body as
// arguments.
func (n *CommandNotifier) Notify(summary, body string) error {
	if err := exec.Command(n.command, summary, body).Run(); err != nil {
		return fmt.Errorf("%s failed: %w", n.command, err)
	}
	return nil
}
