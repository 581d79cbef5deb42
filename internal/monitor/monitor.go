package monitor

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fvclaus/winmon/internal/logger"
	"github.com/fvclaus/winmon/internal/notify"
	"github.com/fvclaus/winmon/internal/window"
)

// EventType classifies a detected window state change.
type EventType string

const (
	EventTitleChanged EventType = "title_changed"
	EventSuppressed   EventType = "title_changed_suppressed"
	EventWindowClosed EventType = "window_closed"
	EventNewWindow    EventType = "new_window"
)

// Event is one detected change, written to stdout and served by the
// status API.
type Event struct {
	Type     EventType `json:"type"`
	WindowID string    `json:"window_id"`
	Desktop  string    `json:"desktop"`
	Title    string    `json:"title"`
	OldTitle string    `json:"old_title,omitempty"`
	Time     time.Time `json:"time"`
}

// Monitor polls the window backend at a fixed interval and reports title
// changes, new windows, and closed windows for titles matching the
// pattern. Title changes for the focused window on the active desktop are
// suppressed (logged but not dispatched as notifications).
type Monitor struct {
	pattern     *regexp.Regexp
	backend     window.Backend
	notifier    notify.Notifier
	historySize int

	mu        sync.RWMutex
	interval  time.Duration
	previous  []window.Window
	filtered  []window.Window
	history   []Event
	listeners []chan Event

	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a monitor for windows whose titles match pattern.
func New(pattern *regexp.Regexp, backend window.Backend, notifier notify.Notifier, interval time.Duration, historySize int) *Monitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if historySize <= 0 {
		historySize = 100
	}
	return &Monitor{
		pattern:     pattern,
		backend:     backend,
		notifier:    notifier,
		interval:    interval,
		historySize: historySize,
		listeners:   make([]chan Event, 0),
		stopChan:    make(chan struct{}),
	}
}

// Pattern returns the filter pattern the monitor was created with.
func (m *Monitor) Pattern() string {
	return m.pattern.String()
}

// Interval returns the current poll interval.
func (m *Monitor) Interval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.interval
}

// SetInterval changes the poll interval, taking effect on the next cycle.
func (m *Monitor) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	m.mu.Lock()
	m.interval = interval
	m.mu.Unlock()
}

// Run takes the initial snapshot and then polls until Stop is called.
func (m *Monitor) Run() {
	log := logger.WithComponent("monitor")

	fmt.Printf("Monitoring windows matching pattern: %s\n", m.pattern.String())

	initial, err := m.backend.ListWindows()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list windows")
	}
	filtered := window.Filter(initial, m.pattern)

	fmt.Printf("Found %d windows to monitor:\n", len(filtered))
	for _, w := range filtered {
		fmt.Printf("  - %s (desktop: %s)\n", w.Title, w.Desktop)
	}

	m.mu.Lock()
	m.previous = initial
	m.filtered = filtered
	m.mu.Unlock()

	for {
		timer := time.NewTimer(m.Interval())
		select {
		case <-m.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			m.poll()
		}
	}
}

// Stop terminates the monitor loop.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

// poll runs one monitoring cycle: snapshot, diff against the previous
// snapshot, report, replace.
func (m *Monitor) poll() {
	log := logger.WithComponent("monitor")

	current, err := m.backend.ListWindows()
	if err != nil {
		// An empty snapshot makes every tracked window read as closed
		// until the next successful cycle. Deliberate: the listing tool
		// failing is indistinguishable from all windows being gone.
		log.Error().Err(err).Msg("Failed to list windows")
		current = nil
	}

	activeID := m.backend.ActiveWindowID()
	activeDesktop := m.backend.CurrentDesktop()

	m.mu.RLock()
	previous := m.previous
	m.mu.RUnlock()

	for _, ev := range m.diff(previous, current, activeID, activeDesktop) {
		m.report(ev)
	}

	m.mu.Lock()
	m.previous = current
	m.filtered = window.Filter(current, m.pattern)
	m.mu.Unlock()
}

// diff classifies the changes between two unfiltered snapshots. Order
// matters for the audit trail: title changes first, then closed windows,
// then new windows. Closed and new windows are checked against the
// unfiltered snapshots so a title edited out of the pattern does not
// read as a closure.
func (m *Monitor) diff(previous, current []window.Window, activeID, activeDesktop string) []Event {
	now := time.Now()
	events := make([]Event, 0)

	currentFiltered := window.Filter(current, m.pattern)

	prevByID := make(map[string]window.Window, len(previous))
	for _, w := range previous {
		prevByID[w.ID] = w
	}
	currentIDs := make(map[string]struct{}, len(current))
	for _, w := range current {
		currentIDs[w.ID] = struct{}{}
	}

	for _, cur := range currentFiltered {
		prev, ok := prevByID[cur.ID]
		if !ok || prev.Title == cur.Title {
			continue
		}
		ev := Event{
			Type:     EventTitleChanged,
			WindowID: cur.ID,
			Desktop:  cur.Desktop,
			Title:    cur.Title,
			OldTitle: prev.Title,
			Time:     now,
		}
		if cur.ID == activeID && cur.Desktop == activeDesktop {
			ev.Type = EventSuppressed
		}
		events = append(events, ev)
	}

	for _, prev := range window.Filter(previous, m.pattern) {
		if _, ok := currentIDs[prev.ID]; !ok {
			events = append(events, Event{
				Type:     EventWindowClosed,
				WindowID: prev.ID,
				Desktop:  prev.Desktop,
				Title:    prev.Title,
				Time:     now,
			})
		}
	}

	for _, cur := range currentFiltered {
		if _, ok := prevByID[cur.ID]; !ok {
			events = append(events, Event{
				Type:     EventNewWindow,
				WindowID: cur.ID,
				Desktop:  cur.Desktop,
				Title:    cur.Title,
				Time:     now,
			})
		}
	}

	return events
}

// report writes the event to stdout, dispatches a notification for
// non-suppressed title changes, and records the event for subscribers.
func (m *Monitor) report(ev Event) {
	// Titles are rendered verbatim between plain quotes; %q would
	// escape backslashes.
	switch ev.Type {
	case EventTitleChanged:
		fmt.Printf("Title changed: \"%s\" → \"%s\"\n", ev.OldTitle, ev.Title)
		summary := fmt.Sprintf("Window Title Changed: %s", ShortLabel(ev.Title))
		body := fmt.Sprintf("Title changed:\n\"%s\" → \"%s\"", ev.OldTitle, ev.Title)
		if err := m.notifier.Notify(summary, body); err != nil {
			logger.WithComponent("monitor").Error().Err(err).Msg("Failed to send notification")
		}
	case EventSuppressed:
		fmt.Printf("Title changed (suppressed - active window): \"%s\" → \"%s\"\n", ev.OldTitle, ev.Title)
	case EventWindowClosed:
		fmt.Printf("Window closed: %s\n", ev.Title)
	case EventNewWindow:
		fmt.Printf("New window detected: %s\n", ev.Title)
	}

	m.record(ev)
}

// record appends the event to the bounded history and fans it out to
// subscribers. The sends happen under the read lock so Unsubscribe
// cannot close a channel mid-delivery.
func (m *Monitor) record(ev Event) {
	m.mu.Lock()
	m.history = append(m.history, ev)
	if len(m.history) > m.historySize {
		m.history = m.history[len(m.history)-m.historySize:]
	}
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, listener := range m.listeners {
		select {
		case listener <- ev:
		default:
			// Skip if channel is full
		}
	}
}

// Windows returns the most recent filtered snapshot.
func (m *Monitor) Windows() []window.Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	windows := make([]window.Window, len(m.filtered))
	copy(windows, m.filtered)
	return windows
}

// Events returns the recorded event history, oldest first.
func (m *Monitor) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]Event, len(m.history))
	copy(events, m.history)
	return events
}

// Subscribe adds a listener for events
func (m *Monitor) Subscribe() chan Event {
	ch := make(chan Event, 10)
	m.mu.Lock()
	m.listeners = append(m.listeners, ch)
	m.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener
func (m *Monitor) Unsubscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, listener := range m.listeners {
		if listener == ch {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

// ShortLabel returns the first whitespace-delimited token of a title,
// used as the notification summary label. "Unknown" for empty titles.
func ShortLabel(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return "Unknown"
	}
	return fields[0]
}
