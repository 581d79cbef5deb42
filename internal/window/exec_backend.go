package window

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fvclaus/winmon/internal/logger"
)

// Tools holds the external commands the exec backend shells out to.
type Tools struct {
	Wmctrl  string
	Xdotool string
}

// DefaultTools returns the standard tool names, resolved via PATH.
func DefaultTools() Tools {
	return Tools{
		Wmctrl:  "wmctrl",
		Xdotool: "xdotool",
	}
}

// ExecBackend enumerates windows by shelling out to wmctrl and xdotool.
// Every query degrades to an empty or default result when the tool is
// missing or exits non-zero; a transient tool failure must not take the
// monitor loop down.
type ExecBackend struct {
	tools Tools
}

// NewExecBackend creates a backend using the given external tools.
func NewExecBackend(tools Tools) *ExecBackend {
	if tools.Wmctrl == "" {
		tools.Wmctrl = "wmctrl"
	}
	if tools.Xdotool == "" {
		tools.Xdotool = "xdotool"
	}
	return &ExecBackend{tools: tools}
}

// Name returns the backend name
func (b *ExecBackend) Name() string {
	return "exec"
}

// Close is a no-op; the exec backend holds no persistent resources.
func (b *ExecBackend) Close() error {
	return nil
}

// ListWindows runs `wmctrl -l` and parses one window per output line.
func (b *ExecBackend) ListWindows() ([]Window, error) {
	output, err := exec.Command(b.tools.Wmctrl, "-l").Output()
	if err != nil {
		return nil, fmt.Errorf("%s -l failed: %w", b.tools.Wmctrl, err)
	}
	return ParseWindowList(string(output)), nil
}

// ActiveWindowID runs `xdotool getactivewindow` and converts the decimal
// window id to the hex form used by wmctrl.
func (b *ExecBackend) ActiveWindowID() string {
	log := logger.WithComponent("exec-backend")

	output, err := exec.Command(b.tools.Xdotool, "getactivewindow").Output()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to query active window")
		return ""
	}

	id, err := strconv.ParseUint(strings.TrimSpace(string(output)), 10, 32)
	if err != nil {
		log.Debug().Err(err).Msg("Active window query returned non-numeric output")
		return ""
	}

	return FormatWindowID(uint32(id))
}

// CurrentDesktop runs `wmctrl -d` and returns the id of the desktop
// carrying the active marker.
func (b *ExecBackend) CurrentDesktop() string {
	output, err := exec.Command(b.tools.Wmctrl, "-d").Output()
	if err != nil {
		logger.WithComponent("exec-backend").Debug().Err(err).Msg("Failed to list desktops")
		return "0"
	}
	return ParseDesktopList(string(output))
}

// ParseWindowList parses `wmctrl -l` output. Each non-empty line holds
// whitespace-separated fields: window id, desktop id, host, then the
// title tokens. Lines with fewer than four fields are skipped; title
// tokens are rejoined with single spaces.
func ParseWindowList(output string) []Window {
	windows := make([]Window, 0)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		windows = append(windows, Window{
			ID:      fields[0],
			Desktop: fields[1],
			Title:   strings.Join(fields[3:], " "),
		})
	}

	return windows
}

// ParseDesktopList scans `wmctrl -d` output for the line marked with `*`
// (the active desktop) and returns its first token. Defaults to "0" when
// no line carries the marker.
func ParseDesktopList(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			return fields[0]
		}
	}
	return "0"
}
