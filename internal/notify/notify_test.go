package notify

import (
	"testing"
)

func TestNewCommandNotifierDefaults(t *testing.T) {
	n := NewCommandNotifier("")
	if n.command != "notify-send" {
		t.Errorf("command = %q, want %q", n.command, "notify-send")
	}
	if n.Name() != "command" {
		t.Errorf("Name() = %q, want %q", n.Name(), "command")
	}
}

func TestCommandNotifierSuccess(t *testing.T) {
	// `true` ignores its arguments and exits 0
	n := NewCommandNotifier("true")
	if err := n.Notify("summary", "body"); err != nil {
		t.Errorf("Notify() failed: %v", err)
	}
}

func TestCommandNotifierFailure(t *testing.T) {
	tests := []struct {
		name    string
		command string
	}{
		{"command exits non-zero", "false"},
		{"command missing", "winmon-test-no-such-command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewCommandNotifier(tt.command)
			if err := n.Notify("summary", "body"); err == nil {
				t.Error("Notify() succeeded, want error")
			}
		})
	}
}

func TestNewSelectsNotifier(t *testing.T) {
	n, err := New("command", "")
	if err != nil {
		t.Fatalf("New(command) failed: %v", err)
	}
	if n.Name() != "command" {
		t.Errorf("Name() = %q, want %q", n.Name(), "command")
	}

	if _, err := New("growl", ""); err == nil {
		t.Error("New(growl) succeeded, want error")
	}

	// The dbus notifier falls back to the command notifier when no
	// session bus is reachable, so New never fails for "dbus".
	if _, err := New("dbus", ""); err != nil {
		t.Errorf("New(dbus) failed: %v", err)
	}
}
