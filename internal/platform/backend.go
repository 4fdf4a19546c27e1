package platform

// WindowID is a platform-neutral window identifier. The zero value means
// "no window". Window handles are owned by the window system; the engine
// only ever compares them for identity.
type WindowID uint32

// None is the absent-window sentinel.
const None WindowID = 0

// Rect describes a rectangular region in screen coordinates (device
// pixels). Rect is a plain value type: assignment copies it.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Center returns the rectangle's center point.
func (r Rect) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Shrink insets the rectangle by the given amount on every side. The
// result is clamped to a minimum size of 1x1.
func (r Rect) Shrink(inset int) Rect {
	out := Rect{
		X:      r.X + inset,
		Y:      r.Y + inset,
		Width:  r.Width - 2*inset,
		Height: r.Height - 2*inset,
	}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}

// Backend abstracts the host window system. The tiling engine calls it
// for every read and write of real window state; implementations live
// outside the engine (internal/x11 for X11, fakes for tests).
//
// All calls are synchronous. A failed call never aborts an arrangement
// pass: the engine degrades to "not visible / not present" and logs.
type Backend interface {
	// ScreenCount reports the number of attached screens.
	ScreenCount() (int, error)

	// WorkingArea returns the usable area of the given screen,
	// excluding panels and docks.
	WorkingArea(screen int) (Rect, error)

	// WindowClass returns the window's resource class name.
	WindowClass(id WindowID) (string, error)

	// WindowGeometry returns the window's current live geometry.
	WindowGeometry(id WindowID) (Rect, error)

	// SetWindowGeometry moves and resizes a window.
	SetWindowGeometry(id WindowID, bounds Rect) error

	// WindowVisible reports whether the window currently qualifies for
	// display on the given screen (desktop match, not hidden, on-screen).
	WindowVisible(id WindowID, screen int) (bool, error)

	// WindowFullScreen reports whether the window is in full-screen
	// state. Implementations return false when the state is unknown.
	WindowFullScreen(id WindowID) bool

	// ActiveWindow returns the focused window, or None.
	ActiveWindow() (WindowID, error)

	// SetActiveWindow focuses and raises a window.
	SetActiveWindow(id WindowID) error

	// SetKeepAbove sets or clears the window's always-on-top marker.
	SetKeepAbove(id WindowID, above bool) error

	// SetKeepBelow sets or clears the window's always-below marker.
	SetKeepBelow(id WindowID, below bool) error
}
