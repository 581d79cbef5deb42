package monitor

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/fvclaus/winmon/internal/window"
)

type fakeBackend struct {
	windows  []window.Window
	err      error
	activeID string
	desktop  string
}

func (f *fakeBackend) ListWindows() ([]window.Window, error) { return f.windows, f.err }
func (f *fakeBackend) ActiveWindowID() string                { return f.activeID }
func (f *fakeBackend) CurrentDesktop() string                { return f.desktop }
func (f *fakeBackend) Close() error                          { return nil }
func (f *fakeBackend) Name() string                          { return "fake" }

type fakeNotifier struct {
	summaries []string
	bodies    []string
}

func (f *fakeNotifier) Notify(summary, body string) error {
	f.summaries = append(f.summaries, summary)
	f.bodies = append(f.bodies, body)
	return nil
}

func (f *fakeNotifier) Name() string { return "fake" }

func newTestMonitor(t *testing.T, pattern string, backend *fakeBackend, notifier *fakeNotifier) *Monitor {
	t.Helper()
	return New(regexp.MustCompile(pattern), backend, notifier, time.Second, 100)
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func TestDiffTitleChanged(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	previous := []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Bar"}}
	current := []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Baz"}}

	// Another window is focused, so the change is not suppressed.
	events := m.diff(previous, current, "0x2", "0")
	if len(events) != 1 {
		t.Fatalf("diff() returned %d events, want 1: %v", len(events), eventTypes(events))
	}
	ev := events[0]
	if ev.Type != EventTitleChanged {
		t.Errorf("event type = %s, want %s", ev.Type, EventTitleChanged)
	}
	if ev.OldTitle != "Foo - Bar" || ev.Title != "Foo - Baz" {
		t.Errorf("event titles = %q → %q, want %q → %q", ev.OldTitle, ev.Title, "Foo - Bar", "Foo - Baz")
	}
}

func TestDiffTitleChangeSuppressedForActiveWindow(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	previous := []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Bar"}}
	current := []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Baz"}}

	events := m.diff(previous, current, "0x1", "0")
	if len(events) != 1 {
		t.Fatalf("diff() returned %d events, want 1", len(events))
	}
	if events[0].Type != EventSuppressed {
		t.Errorf("event type = %s, want %s", events[0].Type, EventSuppressed)
	}
}

func TestDiffActiveWindowOnOtherDesktopNotSuppressed(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	previous := []window.Window{{ID: "0x1", Desktop: "1", Title: "Foo - Bar"}}
	current := []window.Window{{ID: "0x1", Desktop: "1", Title: "Foo - Baz"}}

	// The window holds focus but lives on a desktop that is not the
	// active one, so the user cannot see the change.
	events := m.diff(previous, current, "0x1", "0")
	if len(events) != 1 {
		t.Fatalf("diff() returned %d events, want 1", len(events))
	}
	if events[0].Type != EventTitleChanged {
		t.Errorf("event type = %s, want %s", events[0].Type, EventTitleChanged)
	}
}

func TestDiffWindowClosed(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	previous := []window.Window{
		{ID: "0x1", Desktop: "0", Title: "Foo - Bar"},
		{ID: "0x2", Desktop: "0", Title: "Unrelated"},
	}
	current := []window.Window{}

	// Only the window matching the pattern is reported as closed.
	events := m.diff(previous, current, "", "0")
	if len(events) != 1 {
		t.Fatalf("diff() returned %d events, want 1: %v", len(events), eventTypes(events))
	}
	if events[0].Type != EventWindowClosed {
		t.Errorf("event type = %s, want %s", events[0].Type, EventWindowClosed)
	}
	if events[0].Title != "Foo - Bar" {
		t.Errorf("event title = %q, want %q", events[0].Title, "Foo - Bar")
	}
}

func TestDiffNewWindow(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	previous := []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Bar"}}
	current := []window.Window{
		{ID: "0x1", Desktop: "0", Title: "Foo - Bar"},
		{ID: "0x3", Desktop: "0", Title: "Foo - New"},
		{ID: "0x4", Desktop: "0", Title: "Unrelated"},
	}

	events := m.diff(previous, current, "", "0")
	if len(events) != 1 {
		t.Fatalf("diff() returned %d events, want 1: %v", len(events), eventTypes(events))
	}
	if events[0].Type != EventNewWindow {
		t.Errorf("event type = %s, want %s", events[0].Type, EventNewWindow)
	}
	if events[0].WindowID != "0x3" {
		t.Errorf("event window id = %s, want 0x3", events[0].WindowID)
	}
}

func TestDiffTitleEditedOutOfPatternIsNotClosure(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	// The window still exists; its title just no longer matches.
	// Closure is checked against the unfiltered current snapshot.
	previous := []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Bar"}}
	current := []window.Window{{ID: "0x1", Desktop: "0", Title: "Renamed"}}

	events := m.diff(previous, current, "", "0")
	if len(events) != 0 {
		t.Fatalf("diff() returned %d events, want 0: %v", len(events), eventTypes(events))
	}
}

func TestDiffEventOrdering(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	previous := []window.Window{
		{ID: "0x1", Desktop: "0", Title: "Foo - Bar"},
		{ID: "0x2", Desktop: "0", Title: "Foo - Gone"},
	}
	current := []window.Window{
		{ID: "0x1", Desktop: "0", Title: "Foo - Baz"},
		{ID: "0x3", Desktop: "0", Title: "Foo - New"},
	}

	events := m.diff(previous, current, "", "0")
	want := []EventType{EventTitleChanged, EventWindowClosed, EventNewWindow}
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("diff() returned %d events, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d type = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPollNotifiesOnTitleChange(t *testing.T) {
	backend := &fakeBackend{
		windows:  []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Baz"}},
		activeID: "0x2",
		desktop:  "0",
	}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)
	m.previous = []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Bar"}}

	m.poll()

	if len(notifier.summaries) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(notifier.summaries))
	}
	if want := "Window Title Changed: Foo"; notifier.summaries[0] != want {
		t.Errorf("summary = %q, want %q", notifier.summaries[0], want)
	}
	if want := "Title changed:\n\"Foo - Bar\" → \"Foo - Baz\""; notifier.bodies[0] != want {
		t.Errorf("body = %q, want %q", notifier.bodies[0], want)
	}
}

func TestNotificationBodyRendersTitlesVerbatim(t *testing.T) {
	backend := &fakeBackend{
		windows:  []window.Window{{ID: "0x1", Desktop: "0", Title: `Files C:\backup "new"`}},
		activeID: "0x2",
		desktop:  "0",
	}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Files", backend, notifier)
	m.previous = []window.Window{{ID: "0x1", Desktop: "0", Title: `Files C:\backup "old"`}}

	m.poll()

	if len(notifier.bodies) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(notifier.bodies))
	}
	// Backslashes and quotes pass through unescaped
	want := "Title changed:\n\"Files C:\\backup \"old\"\" → \"Files C:\\backup \"new\"\""
	if notifier.bodies[0] != want {
		t.Errorf("body = %q, want %q", notifier.bodies[0], want)
	}
}

func TestPollSuppressedChangeDoesNotNotify(t *testing.T) {
	backend := &fakeBackend{
		windows:  []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Baz"}},
		activeID: "0x1",
		desktop:  "0",
	}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)
	m.previous = []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Bar"}}

	m.poll()

	if len(notifier.summaries) != 0 {
		t.Fatalf("notifier called %d times, want 0", len(notifier.summaries))
	}

	events := m.Events()
	if len(events) != 1 || events[0].Type != EventSuppressed {
		t.Fatalf("events = %v, want one suppressed change", eventTypes(events))
	}
}

func TestPollListingFailureReadsAsClosures(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)
	m.previous = []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Bar"}}

	// Transient listing failure: the snapshot goes empty, the tracked
	// window reads as closed, and the next good cycle reports it new.
	backend.err = fmt.Errorf("wmctrl: command not found")
	m.poll()

	backend.err = nil
	backend.windows = []window.Window{{ID: "0x1", Desktop: "0", Title: "Foo - Bar"}}
	m.poll()

	want := []EventType{EventWindowClosed, EventNewWindow}
	got := eventTypes(m.Events())
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d type = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestEventHistoryIsBounded(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := New(regexp.MustCompile("Foo"), backend, notifier, time.Second, 5)

	for i := 0; i < 20; i++ {
		m.record(Event{Type: EventNewWindow, WindowID: fmt.Sprintf("0x%x", i), Time: time.Now()})
	}

	events := m.Events()
	if len(events) != 5 {
		t.Fatalf("history holds %d events, want 5", len(events))
	}
	if events[0].WindowID != "0xf" {
		t.Errorf("oldest retained event = %s, want 0xf", events[0].WindowID)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	m.record(Event{Type: EventNewWindow, WindowID: "0x1", Time: time.Now()})

	select {
	case ev := <-ch:
		if ev.Type != EventNewWindow {
			t.Errorf("received event type = %s, want %s", ev.Type, EventNewWindow)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestRecordDuringSubscribeUnsubscribeChurn(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(t, "Foo", backend, notifier)

	// A subscriber disconnecting mid-delivery must not panic the
	// fan-out with a send on a closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			m.record(Event{Type: EventNewWindow, WindowID: "0x1", Time: time.Now()})
		}
	}()

	for i := 0; i < 1000; i++ {
		ch := m.Subscribe()
		m.Unsubscribe(ch)
	}

	<-done
}

func TestShortLabel(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Foo - Baz", "Foo"},
		{"single", "single"},
		{"", "Unknown"},
		{"   ", "Unknown"},
		{"  leading spaces", "leading"},
	}

	for _, tt := range tests {
		if got := ShortLabel(tt.title); got != tt.want {
			t.Errorf("ShortLabel(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSetInterval(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestMonitor(t, "Foo", backend, &fakeNotifier{})

	m.SetInterval(5 * time.Second)
	if m.Interval() != 5*time.Second {
		t.Errorf("Interval() = %v, want 5s", m.Interval())
	}

	// Non-positive intervals are ignored
	m.SetInterval(0)
	if m.Interval() != 5*time.Second {
		t.Errorf("Interval() = %v after SetInterval(0), want 5s", m.Interval())
	}
}
