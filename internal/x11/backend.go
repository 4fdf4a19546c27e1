// Package x11 implements the platform backend on top of X11 via
// xgb/xgbutil, using EWMH hints wherever the window manager supports
// them.
package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/tilewm/internal/platform"
)

// Backend talks to the X server and implements platform.Backend.
type Backend struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var _ platform.Backend = (*Backend)(nil)

// Connect opens a connection to the X server.
func Connect() (*Backend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	// Required for global hotkey registration.
	keybind.Initialize(xu)

	return &Backend{xu: xu, root: xu.RootWin()}, nil
}

// Close disconnects from the X server.
func (b *Backend) Close() {
	if b != nil && b.xu != nil {
		b.xu.Conn().Close()
	}
}

// XUtil exposes the underlying connection for X11-specific callers
// (hotkeys, event wiring).
func (b *Backend) XUtil() *xgbutil.XUtil { return b.xu }

// RootWindow returns the X11 root window.
func (b *Backend) RootWindow() xproto.Window { return b.root }

// Clients enumerates the window manager's client list, filtered to
// normal application windows. Used by the daemon to adopt windows that
// existed before it started.
func (b *Backend) Clients() ([]platform.WindowID, error) {
	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	out := make([]platform.WindowID, 0, len(clients))
	for _, win := range clients {
		if !b.isNormalWindow(win) {
			continue
		}
		out = append(out, platform.WindowID(win))
	}
	return out, nil
}

// ScreenCount reports the number of active monitors.
func (b *Backend) ScreenCount() (int, error) {
	monitors, err := b.monitors()
	if err != nil {
		return 0, err
	}
	return len(monitors), nil
}

// WorkingArea returns the usable area of a monitor, clamped to the
// desktop work area so panels and docks stay uncovered.
func (b *Backend) WorkingArea(screen int) (platform.Rect, error) {
	monitors, err := b.monitors()
	if err != nil {
		return platform.Rect{}, err
	}
	if screen < 0 || screen >= len(monitors) {
		return platform.Rect{}, fmt.Errorf("no such screen: %d", screen)
	}
	return b.clampToWorkArea(monitors[screen]), nil
}

// WindowClass returns the window's ICCCM resource class.
func (b *Backend) WindowClass(id platform.WindowID) (string, error) {
	wmClass, err := icccm.WmClassGet(b.xu, xproto.Window(id))
	if err != nil {
		return "", fmt.Errorf("failed to get class of window %d: %w", id, err)
	}
	return strings.TrimSpace(wmClass.Class), nil
}

// WindowGeometry returns the window's live geometry in root
// coordinates.
func (b *Backend) WindowGeometry(id platform.WindowID) (platform.Rect, error) {
	win := xproto.Window(id)

	geom, err := xproto.GetGeometry(b.xu.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return platform.Rect{}, fmt.Errorf("failed to get geometry of window %d: %w", id, err)
	}

	translate, err := xproto.TranslateCoordinates(b.xu.Conn(), win, b.root, 0, 0).Reply()
	if err != nil {
		return platform.Rect{}, fmt.Errorf("failed to translate coordinates of window %d: %w", id, err)
	}

	return platform.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// SetWindowGeometry moves and resizes a window. Maximized state is
// removed first; a maximized window silently ignores move/resize
// requests on most window managers.
func (b *Backend) SetWindowGeometry(id platform.WindowID, bounds platform.Rect) error {
	win := xproto.Window(id)
	b.unmaximize(win)

	err := ewmh.MoveresizeWindow(b.xu, win, bounds.X, bounds.Y, bounds.Width, bounds.Height)
	if err != nil {
		// Fallback for window managers without _NET_MOVERESIZE_WINDOW.
		xwindow.New(b.xu, win).MoveResize(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	}
	return nil
}

// WindowVisible reports whether the window qualifies for display on the
// given screen: not hidden, on the current desktop (or sticky), and
// centered inside the screen's bounds.
func (b *Backend) WindowVisible(id platform.WindowID, screen int) (bool, error) {
	win := xproto.Window(id)

	monitors, err := b.monitors()
	if err != nil {
		return false, err
	}
	if screen < 0 || screen >= len(monitors) {
		return false, fmt.Errorf("no such screen: %d", screen)
	}

	states, err := ewmh.WmStateGet(b.xu, win)
	if err != nil {
		return false, fmt.Errorf("failed to get state of window %d: %w", id, err)
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return false, nil
		}
	}

	if desktop, err := ewmh.WmDesktopGet(b.xu, win); err == nil && desktop != stickyDesktop {
		current, err := ewmh.CurrentDesktopGet(b.xu)
		if err == nil && desktop != current {
			return false, nil
		}
	}

	geom, err := b.WindowGeometry(id)
	if err != nil {
		return false, err
	}
	cx, cy := geom.Center()
	return monitors[screen].Contains(cx, cy), nil
}

// stickyDesktop marks windows visible on all desktops (_NET_WM_DESKTOP).
const stickyDesktop = 0xFFFFFFFF

// WindowFullScreen reports the _NET_WM_STATE_FULLSCREEN state. Unknown
// state reads as not full-screen.
func (b *Backend) WindowFullScreen(id platform.WindowID) bool {
	states, err := ewmh.WmStateGet(b.xu, xproto.Window(id))
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_FULLSCREEN" {
			return true
		}
	}
	return false
}

// ActiveWindow returns the focused window, or platform.None.
func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	win, err := ewmh.ActiveWindowGet(b.xu)
	if err != nil {
		return platform.None, fmt.Errorf("failed to get active window: %w", err)
	}
	return platform.WindowID(win), nil
}

// SetActiveWindow activates and raises a window via _NET_ACTIVE_WINDOW.
// The client message is built manually; the xgbutil ewmh helper panics
// on this library version (uint vs int type assertion).
func (b *Backend) SetActiveWindow(id platform.WindowID) error {
	atomReply, err := xproto.InternAtom(b.xu.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(id),
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		b.xu.Conn(),
		false,
		b.root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// SetKeepAbove sets or clears _NET_WM_STATE_ABOVE.
func (b *Backend) SetKeepAbove(id platform.WindowID, above bool) error {
	return b.setState(xproto.Window(id), "_NET_WM_STATE_ABOVE", above)
}

// SetKeepBelow sets or clears _NET_WM_STATE_BELOW.
func (b *Backend) SetKeepBelow(id platform.WindowID, below bool) error {
	return b.setState(xproto.Window(id), "_NET_WM_STATE_BELOW", below)
}

// _NET_WM_STATE client message actions.
const (
	stateRemove = 0
	stateAdd    = 1
)

func (b *Backend) setState(win xproto.Window, atom string, set bool) error {
	action := stateRemove
	if set {
		action = stateAdd
	}
	return ewmh.WmStateReq(b.xu, win, action, atom)
}

func (b *Backend) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(b.xu, win)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(b.xu, win, stateRemove, state)
		}
	}
}

// isNormalWindow filters out desktops, docks, splashes and
// notifications. Windows without an explicit type count as normal.
func (b *Backend) isNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(b.xu, win)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}
