package window

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/fvclaus/winmon/internal/logger"
)

// X11Backend implements the Backend interface by speaking EWMH to the X
// server directly instead of shelling out. It reports window ids in the
// same 0x%08x form as the exec backend so snapshots from either backend
// diff identically.
type X11Backend struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewX11Backend connects to the X server
func NewX11Backend() (*X11Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	return &X11Backend{
		conn: conn,
		root: root,
	}, nil
}

// Name returns the backend name
func (b *X11Backend) Name() string {
	return "x11"
}

// Close closes the X11 connection
func (b *X11Backend) Close() error {
	b.conn.Close()
	return nil
}

// ListWindows returns all client windows from _NET_CLIENT_LIST, falling
// back to QueryTree when the window manager does not maintain the list.
func (b *X11Backend) ListWindows() ([]Window, error) {
	log := logger.WithComponent("x11-backend")

	windows, err := b.listWindowsEWMH()
	if err == nil && len(windows) > 0 {
		return windows, nil
	}
	if err != nil {
		log.Debug().Err(err).Msg("EWMH client list failed, falling back to QueryTree")
	}

	return b.listWindowsQueryTree()
}

func (b *X11Backend) listWindowsEWMH() ([]Window, error) {
	clientListAtom, err := b.getAtom("_NET_CLIENT_LIST")
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST atom: %w", err)
	}

	reply, err := xproto.GetProperty(
		b.conn, false, b.root, clientListAtom,
		xproto.GetPropertyTypeAny, 0, (1<<32)-1,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST property: %w", err)
	}
	if reply.ValueLen == 0 {
		return nil, fmt.Errorf("_NET_CLIENT_LIST is empty")
	}

	windows := make([]Window, 0, reply.ValueLen)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		winID := xproto.Window(uint32(reply.Value[i]) |
			uint32(reply.Value[i+1])<<8 |
			uint32(reply.Value[i+2])<<16 |
			uint32(reply.Value[i+3])<<24)

		if w, ok := b.getWindow(winID); ok {
			windows = append(windows, w)
		}
	}

	return windows, nil
}

func (b *X11Backend) listWindowsQueryTree() ([]Window, error) {
	tree, err := xproto.QueryTree(b.conn, b.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}

	windows := make([]Window, 0, len(tree.Children))
	for _, child := range tree.Children {
		if w, ok := b.getWindow(child); ok {
			windows = append(windows, w)
		}
	}

	return windows, nil
}

// getWindow builds a Window record for one X window. Windows without a
// title are skipped (usually not user windows).
func (b *X11Backend) getWindow(win xproto.Window) (Window, bool) {
	title := b.getTitle(win)
	if title == "" {
		return Window{}, false
	}

	return Window{
		ID:      FormatWindowID(uint32(win)),
		Desktop: b.getWindowDesktop(win),
		Title:   title,
	}, true
}

func (b *X11Backend) getTitle(win xproto.Window) string {
	if atom, err := b.getAtom("_NET_WM_NAME"); err == nil {
		if title, err := b.getStringProperty(win, atom); err == nil && title != "" {
			return title
		}
	}
	// Legacy fallback
	if atom, err := b.getAtom("WM_NAME"); err == nil {
		if title, err := b.getStringProperty(win, atom); err == nil {
			return title
		}
	}
	return ""
}

// getWindowDesktop reads _NET_WM_DESKTOP. 0xFFFFFFFF means the window
// is sticky (shown on all desktops), reported as "-1" like wmctrl does.
func (b *X11Backend) getWindowDesktop(win xproto.Window) string {
	atom, err := b.getAtom("_NET_WM_DESKTOP")
	if err != nil {
		return "0"
	}
	desktop, err := b.getCardinalProperty(win, atom)
	if err != nil {
		return "0"
	}
	if desktop == 0xFFFFFFFF {
		return "-1"
	}
	return strconv.FormatUint(uint64(desktop), 10)
}

// ActiveWindowID returns the focused window from _NET_ACTIVE_WINDOW,
// falling back to the X input focus.
func (b *X11Backend) ActiveWindowID() string {
	if atom, err := b.getAtom("_NET_ACTIVE_WINDOW"); err == nil {
		if id, err := b.getCardinalProperty(b.root, atom); err == nil && id != 0 {
			return FormatWindowID(id)
		}
	}

	focusReply, err := xproto.GetInputFocus(b.conn).Reply()
	if err != nil {
		logger.WithComponent("x11-backend").Debug().Err(err).Msg("Failed to query input focus")
		return ""
	}
	return FormatWindowID(uint32(focusReply.Focus))
}

// CurrentDesktop returns the active desktop from _NET_CURRENT_DESKTOP.
func (b *X11Backend) CurrentDesktop() string {
	atom, err := b.getAtom("_NET_CURRENT_DESKTOP")
	if err != nil {
		return "0"
	}
	desktop, err := b.getCardinalProperty(b.root, atom)
	if err != nil {
		return "0"
	}
	return strconv.FormatUint(uint64(desktop), 10)
}

// getAtom gets an atom ID by name
func (b *X11Backend) getAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

// getStringProperty gets a property value as a string
func (b *X11Backend) getStringProperty(win xproto.Window, atom xproto.Atom) (string, error) {
	reply, err := xproto.GetProperty(
		b.conn, false, win, atom,
		xproto.GetPropertyTypeAny, 0, (1<<32)-1,
	).Reply()
	if err != nil {
		return "", err
	}
	if reply.ValueLen == 0 {
		return "", fmt.Errorf("empty property")
	}
	return string(reply.Value), nil
}

// getCardinalProperty gets a 32-bit property value (CARDINAL or WINDOW)
func (b *X11Backend) getCardinalProperty(win xproto.Window, atom xproto.Atom) (uint32, error) {
	reply, err := xproto.GetProperty(
		b.conn, false, win, atom,
		xproto.GetPropertyTypeAny, 0, 1,
	).Reply()
	if err != nil {
		return 0, err
	}
	if len(reply.Value) < 4 {
		return 0, fmt.Errorf("cardinal property too short")
	}
	return uint32(reply.Value[0]) |
		uint32(reply.Value[1])<<8 |
		uint32(reply.Value[2])<<16 |
		uint32(reply.Value[3])<<24, nil
}
