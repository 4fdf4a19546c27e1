package tiling

import (
	"log/slog"

	"github.com/1broseidon/tilewm/internal/platform"
)

// maxArrangeAttempts bounds consecutive unhonored geometry writes for a
// single tile during full arrangement passes. When the window system
// keeps reporting a different live geometry (size constraints, a
// compositor rewriting our request), the engine gives up on that tile
// instead of fighting it.
const maxArrangeAttempts = 5

// Options configures an Engine.
type Options struct {
	// Layouts builds the layout set for each added screen. A nil
	// factory yields screens without layouts, which arrangement skips.
	Layouts LayoutFactory

	// Rules is the initial window rule list.
	Rules []Rule

	// Logger receives advisory diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine is the tiling decision core. It owns all tiles, screens and
// rules, and turns window-system events and user commands into target
// geometries.
//
// The engine is not safe for concurrent use: it assumes a single
// event-dispatch context, which the daemon provides. Adapter faults
// never escape an operation; they degrade to per-tile exclusion.
type Engine struct {
	backend platform.Backend
	layouts LayoutFactory
	logger  *slog.Logger

	tiles   []*Tile
	screens []*Screen
	rules   []Rule
}

// NewEngine creates an engine bound to the given backend.
func NewEngine(backend platform.Backend, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	factory := opts.Layouts
	if factory == nil {
		factory = func(int) []Layout { return nil }
	}
	return &Engine{
		backend: backend,
		layouts: factory,
		logger:  logger,
		rules:   append([]Rule(nil), opts.Rules...),
	}
}

// Screens returns the engine's screen list for introspection. Callers
// must not mutate it.
func (e *Engine) Screens() []*Screen {
	return e.screens
}

// ScreenCount reports the number of tracked screens.
func (e *Engine) ScreenCount() int {
	return len(e.screens)
}

// TileCount reports the number of managed tiles.
func (e *Engine) TileCount() int {
	return len(e.tiles)
}

// ManageClient starts tracking a window unless a rule ignores its
// class. It reports whether a tile now exists for the window, which
// tells the adapter to subscribe to further per-window events. Managing
// an already-tracked window is a no-op returning true.
func (e *Engine) ManageClient(w platform.WindowID) bool {
	if e.findTile(w) != nil {
		return true
	}

	class, err := e.backend.WindowClass(w)
	if err != nil {
		e.logger.Debug("window class lookup failed", "window", w, "error", err)
	}
	ignore, floating := e.matchRules(class)
	if ignore {
		e.logger.Debug("window ignored by rule", "window", w, "class", class)
		return false
	}

	geom, err := e.backend.WindowGeometry(w)
	if err != nil {
		e.logger.Debug("window geometry read failed", "window", w, "error", err)
	}

	t := &Tile{Client: w, Geometry: geom, FloatGeometry: geom}
	e.tiles = append(e.tiles, t)
	e.logger.Info("managing window", "window", w, "class", class, "floating", floating)

	if floating {
		e.setFloating(t, true, &geom)
	}
	e.Arrange()
	return true
}

// UnmanageClient stops tracking a window. Previously faulted tiles are
// swept out on the same pass. Unmanaging an untracked window is not an
// error.
func (e *Engine) UnmanageClient(w platform.WindowID) {
	kept := make([]*Tile, 0, len(e.tiles))
	for _, t := range e.tiles {
		if t.Client == w || t.faulted {
			e.logger.Info("unmanaging window", "window", t.Client, "faulted", t.faulted)
			continue
		}
		kept = append(kept, t)
	}
	e.tiles = kept
	e.Arrange()
}

// AddScreen appends a screen with a fresh layout set. Adding an
// already-tracked id is a no-op; screen ids stay unique.
func (e *Engine) AddScreen(id int) {
	for _, s := range e.screens {
		if s.ID == id {
			return
		}
	}
	e.screens = append(e.screens, NewScreen(id, e.layouts(id)))
	e.logger.Info("screen added", "screen", id)
}

// RemoveScreen drops the screen with the given id, if tracked.
func (e *Engine) RemoveScreen(id int) {
	for i, s := range e.screens {
		if s.ID == id {
			e.screens = append(e.screens[:i], e.screens[i+1:]...)
			e.logger.Info("screen removed", "screen", id)
			return
		}
	}
}

// UpdateRules replaces the rule list wholesale. Already-managed tiles
// are not re-evaluated.
func (e *Engine) UpdateRules(rules []Rule) {
	e.rules = append([]Rule(nil), rules...)
}

// Arrange recomputes target geometries for every screen with an active
// layout and reconciles them against live window state. It is
// idempotent: when nothing changed, no adapter writes are issued.
func (e *Engine) Arrange() {
	for _, s := range e.screens {
		e.arrangeScreen(s)
	}
}

func (e *Engine) arrangeScreen(s *Screen) {
	layout := s.Layout()
	if layout == nil {
		return
	}

	area, err := e.backend.WorkingArea(s.ID)
	if err != nil {
		e.logger.Warn("working area unavailable", "screen", s.ID, "error", err)
		return
	}

	tileables := make([]*Tile, 0, len(e.tiles))
	var floating []*Tile
	for _, t := range e.visibleTiles(s.ID) {
		if e.backend.WindowFullScreen(t.Client) {
			// Full-screen windows keep their list slot but are left
			// alone geometrically until they leave full-screen.
			e.clearMarkers(t.Client)
			continue
		}
		if t.Floating {
			floating = append(floating, t)
		} else {
			tileables = append(tileables, t)
		}
	}

	layout.Apply(tileables, area)

	for _, t := range tileables {
		e.reconcile(t, false)
		e.markBelow(t.Client)
	}
	for _, t := range floating {
		e.markAbove(t.Client)
	}
}

// ArrangeClient is the single-tile fast path for an externally reported
// geometry change. Untracked, floating and full-screen windows are left
// alone.
func (e *Engine) ArrangeClient(w platform.WindowID) {
	t := e.findTile(w)
	if t == nil || t.Floating {
		return
	}
	if e.backend.WindowFullScreen(w) {
		return
	}
	e.reconcile(t, true)
}

// reconcile compares the live geometry against the tile's target and
// writes only on mismatch. external marks reconciliation triggered by a
// window-system notification, which resets the loop guard; full
// arrangement passes count toward it instead.
func (e *Engine) reconcile(t *Tile, external bool) {
	live, err := e.backend.WindowGeometry(t.Client)
	if err != nil {
		e.logger.Debug("geometry read failed", "window", t.Client, "error", err)
		return
	}
	if live == t.Geometry {
		t.arrangeCount = 0
		return
	}

	if external {
		t.arrangeCount = 0
	} else if t.arrangeCount > maxArrangeAttempts {
		e.logger.Warn("window keeps rejecting assigned geometry, giving up",
			"window", t.Client, "attempts", t.arrangeCount)
		return
	} else {
		t.arrangeCount++
	}

	if err := e.backend.SetWindowGeometry(t.Client, t.Geometry); err != nil {
		e.logger.Debug("geometry write failed", "window", t.Client, "error", err)
	}
}

// HandleInput interprets an abstract user command. The active screen's
// layout gets first refusal; the engine handles focus movement, tile
// shifting, master promotion, float toggling and layout cycling itself.
// A full arrangement always follows.
//
// With no focused window there is no active screen and the input is
// dropped.
func (e *Engine) HandleInput(in Input) {
	screen := e.activeScreen()
	if screen == nil {
		e.logger.Debug("input dropped, no active screen", "input", in)
		return
	}

	if l := screen.Layout(); l != nil && l.HandleInput(in) {
		e.Arrange()
		return
	}

	switch in {
	case InputUp:
		e.moveFocus(screen, -1)
	case InputDown:
		e.moveFocus(screen, +1)
	case InputShiftUp:
		e.shiftFocused(screen, -1)
	case InputShiftDown:
		e.shiftFocused(screen, +1)
	case InputSetMaster:
		e.promoteFocused()
	case InputFloat:
		if t := e.focusedTile(); t != nil {
			e.setFloating(t, !t.Floating, nil)
		}
	case InputCycleLayout:
		screen.CycleLayout()
	}
	e.Arrange()
}

// SetClientFloating sets the floating mode of a tracked window. No-op
// for untracked windows or when the mode is unchanged.
func (e *Engine) SetClientFloating(w platform.WindowID, floating bool) {
	t := e.findTile(w)
	if t == nil {
		return
	}
	e.setFloating(t, floating, nil)
	e.Arrange()
}

// ToggleClientFloating flips the floating mode of a tracked window.
func (e *Engine) ToggleClientFloating(w platform.WindowID) {
	t := e.findTile(w)
	if t == nil {
		return
	}
	e.setFloating(t, !t.Floating, nil)
	e.Arrange()
}

// setFloating switches a tile's mode. Entering floating mode restores
// the given geometry (or the remembered one) immediately; leaving it
// captures the given geometry (or the live one) for next time and lets
// the following arrangement place the tile.
func (e *Engine) setFloating(t *Tile, floating bool, geom *platform.Rect) {
	if t.Floating == floating {
		return
	}
	t.Floating = floating

	if floating {
		target := t.FloatGeometry
		if geom != nil {
			target = *geom
		}
		t.FloatGeometry = target
		if err := e.backend.SetWindowGeometry(t.Client, target); err != nil {
			e.logger.Debug("float geometry write failed", "window", t.Client, "error", err)
		}
		return
	}

	if geom != nil {
		t.FloatGeometry = *geom
	} else if live, err := e.backend.WindowGeometry(t.Client); err == nil {
		t.FloatGeometry = live
	}
	t.arrangeCount = 0
}

// visibleTiles returns the tiles visible on the given screen, in global
// list order. A fault during the visibility check marks the tile
// faulted and excludes it from this and all future sets.
func (e *Engine) visibleTiles(screen int) []*Tile {
	out := make([]*Tile, 0, len(e.tiles))
	for _, t := range e.tiles {
		if t.faulted {
			continue
		}
		visible, err := e.backend.WindowVisible(t.Client, screen)
		if err != nil {
			t.faulted = true
			e.logger.Warn("visibility check faulted, excluding tile",
				"window", t.Client, "screen", screen, "error", err)
			continue
		}
		if visible {
			out = append(out, t)
		}
	}
	return out
}

// activeScreen resolves the screen owning the focused window, or nil.
func (e *Engine) activeScreen() *Screen {
	w, err := e.backend.ActiveWindow()
	if err != nil || w == platform.None {
		return nil
	}
	for _, s := range e.screens {
		if visible, err := e.backend.WindowVisible(w, s.ID); err == nil && visible {
			return s
		}
	}
	return nil
}

func (e *Engine) moveFocus(s *Screen, delta int) {
	visible := e.visibleTiles(s.ID)
	if len(visible) == 0 {
		return
	}
	active, err := e.backend.ActiveWindow()
	if err != nil {
		return
	}
	idx := -1
	for i, t := range visible {
		if t.Client == active {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	next := visible[(idx+delta+len(visible))%len(visible)]
	if err := e.backend.SetActiveWindow(next.Client); err != nil {
		e.logger.Debug("focus change failed", "window", next.Client, "error", err)
	}
}

// shiftFocused swaps the focused tile with its nearest neighbor in the
// global tile list that is visible on the given screen, preserving the
// order of everything else.
func (e *Engine) shiftFocused(s *Screen, delta int) {
	t := e.focusedTile()
	if t == nil {
		return
	}
	cur := e.indexOf(t)
	if cur < 0 {
		return
	}
	for i := cur + delta; i >= 0 && i < len(e.tiles); i += delta {
		other := e.tiles[i]
		if other.faulted {
			continue
		}
		visible, err := e.backend.WindowVisible(other.Client, s.ID)
		if err != nil {
			other.faulted = true
			continue
		}
		if !visible {
			continue
		}
		e.tiles[cur], e.tiles[i] = e.tiles[i], e.tiles[cur]
		return
	}
}

// promoteFocused moves the focused tile to global index 0 (master),
// shifting the tiles before it down by one.
func (e *Engine) promoteFocused() {
	t := e.focusedTile()
	if t == nil {
		return
	}
	idx := e.indexOf(t)
	if idx <= 0 {
		return
	}
	copy(e.tiles[1:idx+1], e.tiles[:idx])
	e.tiles[0] = t
}

func (e *Engine) focusedTile() *Tile {
	w, err := e.backend.ActiveWindow()
	if err != nil || w == platform.None {
		return nil
	}
	return e.findTile(w)
}

func (e *Engine) findTile(w platform.WindowID) *Tile {
	for _, t := range e.tiles {
		if t.Client == w {
			return t
		}
	}
	return nil
}

func (e *Engine) indexOf(t *Tile) int {
	for i, other := range e.tiles {
		if other == t {
			return i
		}
	}
	return -1
}

// matchRules scans the rule list for the class. Any matching ignore
// rule wins; any matching floating rule makes the window start
// floating.
func (e *Engine) matchRules(class string) (ignore, floating bool) {
	for _, r := range e.rules {
		if !r.Matches(class) {
			continue
		}
		ignore = ignore || r.Ignore
		floating = floating || r.Floating
	}
	return ignore, floating
}

func (e *Engine) markBelow(w platform.WindowID) {
	if err := e.backend.SetKeepAbove(w, false); err != nil {
		e.logger.Debug("clear keep-above failed", "window", w, "error", err)
	}
	if err := e.backend.SetKeepBelow(w, true); err != nil {
		e.logger.Debug("set keep-below failed", "window", w, "error", err)
	}
}

func (e *Engine) markAbove(w platform.WindowID) {
	if err := e.backend.SetKeepBelow(w, false); err != nil {
		e.logger.Debug("clear keep-below failed", "window", w, "error", err)
	}
	if err := e.backend.SetKeepAbove(w, true); err != nil {
		e.logger.Debug("set keep-above failed", "window", w, "error", err)
	}
}

func (e *Engine) clearMarkers(w platform.WindowID) {
	if err := e.backend.SetKeepAbove(w, false); err != nil {
		e.logger.Debug("clear keep-above failed", "window", w, "error", err)
	}
	if err := e.backend.SetKeepBelow(w, false); err != nil {
		e.logger.Debug("clear keep-below failed", "window", w, "error", err)
	}
}
