package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/tilewm/internal/platform"
)

// monitors enumerates the active RandR CRTCs as rectangles in root
// coordinates, sorted left to right (ties broken top to bottom) so the
// same physical layout always yields the same screen numbering.
func (b *Backend) monitors() ([]platform.Rect, error) {
	if err := randr.Init(b.xu.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(b.xu.Conn(), b.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var out []platform.Rect
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(b.xu.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		out = append(out, platform.Rect{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out, nil
}

// clampToWorkArea shrinks a monitor rectangle so panels and docks stay
// uncovered. Dock struts are preferred; window managers that publish
// none fall back to the desktop work area intersection.
func (b *Backend) clampToWorkArea(mon platform.Rect) platform.Rect {
	if clamped, ok := b.applyDockStruts(mon); ok {
		return clamped
	}

	workArea, err := ewmh.WorkareaGet(b.xu)
	if err != nil || len(workArea) == 0 {
		return mon
	}

	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(b.xu); err == nil && int(current) >= 0 && int(current) < len(workArea) {
		desktop = int(current)
	}
	wa := workArea[desktop]

	isect := intersect(mon, platform.Rect{
		X:      int(wa.X),
		Y:      int(wa.Y),
		Width:  int(wa.Width),
		Height: int(wa.Height),
	})
	if isect.Width <= 0 || isect.Height <= 0 {
		return mon
	}
	return isect
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

// applyDockStruts subtracts the strut reservations of dock windows that
// overlap the monitor. Returns false when no dock reserves space there.
func (b *Backend) applyDockStruts(mon platform.Rect) (platform.Rect, bool) {
	rootGeom, err := xproto.GetGeometry(b.xu.Conn(), xproto.Drawable(b.root)).Reply()
	if err != nil {
		return mon, false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		return mon, false
	}

	var struts dockStruts
	for _, win := range clients {
		types, err := ewmh.WmWindowTypeGet(b.xu, win)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(b.xu, win); err == nil {
			accumulateStruts(mon, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(b.xu, win); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			}
			accumulateStruts(mon, rootWidth, rootHeight, sp, &struts)
		}
	}

	if struts.left == 0 && struts.right == 0 && struts.top == 0 && struts.bottom == 0 {
		return mon, false
	}

	mon.X += struts.left
	mon.Y += struts.top
	mon.Width -= struts.left + struts.right
	mon.Height -= struts.top + struts.bottom
	if mon.Width < 1 {
		mon.Width = 1
	}
	if mon.Height < 1 {
		mon.Height = 1
	}
	return mon, true
}

// accumulateStruts records the largest reservation of each edge that
// actually overlaps the monitor. Struts span the root screen, so a dock
// on one monitor must not shrink its neighbors.
func accumulateStruts(mon platform.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	if sp.Top > 0 {
		band := platform.Rect{X: int(sp.TopStartX), Y: 0,
			Width: int(sp.TopEndX) + 1 - int(sp.TopStartX), Height: int(sp.Top)}
		if isect := intersect(mon, band); isect.Height > 0 && isect.Width > 0 {
			acc.top = max(acc.top, isect.Height)
		}
	}
	if sp.Bottom > 0 {
		band := platform.Rect{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom),
			Width: int(sp.BottomEndX) + 1 - int(sp.BottomStartX), Height: int(sp.Bottom)}
		if isect := intersect(mon, band); isect.Height > 0 && isect.Width > 0 {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}
	if sp.Left > 0 {
		band := platform.Rect{X: 0, Y: int(sp.LeftStartY),
			Width: int(sp.Left), Height: int(sp.LeftEndY) + 1 - int(sp.LeftStartY)}
		if isect := intersect(mon, band); isect.Height > 0 && isect.Width > 0 {
			acc.left = max(acc.left, isect.Width)
		}
	}
	if sp.Right > 0 {
		band := platform.Rect{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY),
			Width: int(sp.Right), Height: int(sp.RightEndY) + 1 - int(sp.RightStartY)}
		if isect := intersect(mon, band); isect.Height > 0 && isect.Width > 0 {
			acc.right = max(acc.right, isect.Width)
		}
	}
}

// intersect returns the overlap of two rectangles; a zero-size result
// means they are disjoint.
func intersect(a, b platform.Rect) platform.Rect {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return platform.Rect{}
	}
	return platform.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
