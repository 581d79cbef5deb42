package window

import (
	"fmt"
	"regexp"
)

// Window is one entry from the window list: the opaque window id assigned
// by the windowing system, the desktop it lives on, and its title.
type Window struct {
	ID      string `json:"id"`
	Desktop string `json:"desktop"`
	Title   string `json:"title"`
}

// FormatWindowID converts a decimal window id (as reported by the focus
// query tool) to the 0x-prefixed, zero-padded lowercase hex form used by
// the window list, so the two can be compared by equality.
func FormatWindowID(id uint32) string {
	return fmt.Sprintf("0x%08x", id)
}

// Filter returns the windows whose titles match pattern.
func Filter(windows []Window, pattern *regexp.Regexp) []Window {
	filtered := make([]Window, 0, len(windows))
	for _, w := range windows {
		if pattern.MatchString(w.Title) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}
