package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Notifications D-Bus constants
const (
	notificationsService   = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"
)

// DBusNotifier sends notifications over the org.freedesktop.Notifications
// session bus interface, avoiding a process spawn per notification. The
// bus connection lives for the process lifetime.
type DBusNotifier struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewDBusNotifier connects to the session bus
func NewDBusNotifier() (*DBusNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &DBusNotifier{
		conn: conn,
		obj:  conn.Object(notificationsService, notificationsPath),
	}, nil
}

// Name returns the notifier name
func (n *DBusNotifier) Name() string {
	return "dbus"
}

// Notify calls org.freedesktop.Notifications.Notify with the given
// summary and body.
func (n *DBusNotifier) Notify(summary, body string) error {
	call := n.obj.Call(notificationsInterface+".Notify", 0,
		"winmon",                  // app_name
		uint32(0),                 // replaces_id
		"",                        // app_icon
		summary,                   // summary
		body,                      // body
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		int32(-1),                 // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("notifications call failed: %w", call.Err)
	}
	return nil
}
