package tiling

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/1broseidon/tilewm/internal/platform"
)

// fakeBackend is an in-memory window system. Geometry writes are
// honored by default; honorWrites=false simulates a window manager that
// keeps rejecting assigned geometries.
type fakeBackend struct {
	screens     int
	workArea    platform.Rect
	classes     map[platform.WindowID]string
	geometries  map[platform.WindowID]platform.Rect
	visible     map[platform.WindowID]map[int]bool
	visibleErr  map[platform.WindowID]error
	fullScreen  map[platform.WindowID]bool
	above       map[platform.WindowID]bool
	below       map[platform.WindowID]bool
	active      platform.WindowID
	activeErr   error
	writes      map[platform.WindowID]int
	honorWrites bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		screens:     1,
		workArea:    platform.Rect{X: 0, Y: 0, Width: 1200, Height: 800},
		classes:     make(map[platform.WindowID]string),
		geometries:  make(map[platform.WindowID]platform.Rect),
		visible:     make(map[platform.WindowID]map[int]bool),
		visibleErr:  make(map[platform.WindowID]error),
		fullScreen:  make(map[platform.WindowID]bool),
		above:       make(map[platform.WindowID]bool),
		below:       make(map[platform.WindowID]bool),
		writes:      make(map[platform.WindowID]int),
		honorWrites: true,
	}
}

func (b *fakeBackend) addWindow(id platform.WindowID, class string, geom platform.Rect) {
	b.classes[id] = class
	b.geometries[id] = geom
	b.visible[id] = map[int]bool{0: true}
}

func (b *fakeBackend) ScreenCount() (int, error) { return b.screens, nil }

func (b *fakeBackend) WorkingArea(screen int) (platform.Rect, error) {
	return b.workArea, nil
}

func (b *fakeBackend) WindowClass(id platform.WindowID) (string, error) {
	return b.classes[id], nil
}

func (b *fakeBackend) WindowGeometry(id platform.WindowID) (platform.Rect, error) {
	geom, ok := b.geometries[id]
	if !ok {
		return platform.Rect{}, fmt.Errorf("no such window: %d", id)
	}
	return geom, nil
}

func (b *fakeBackend) SetWindowGeometry(id platform.WindowID, bounds platform.Rect) error {
	b.writes[id]++
	if b.honorWrites {
		b.geometries[id] = bounds
	}
	return nil
}

func (b *fakeBackend) WindowVisible(id platform.WindowID, screen int) (bool, error) {
	if err := b.visibleErr[id]; err != nil {
		return false, err
	}
	return b.visible[id][screen], nil
}

func (b *fakeBackend) WindowFullScreen(id platform.WindowID) bool { return b.fullScreen[id] }

func (b *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	return b.active, b.activeErr
}

func (b *fakeBackend) SetActiveWindow(id platform.WindowID) error {
	b.active = id
	return nil
}

func (b *fakeBackend) SetKeepAbove(id platform.WindowID, above bool) error {
	b.above[id] = above
	return nil
}

func (b *fakeBackend) SetKeepBelow(id platform.WindowID, below bool) error {
	b.below[id] = below
	return nil
}

func (b *fakeBackend) totalWrites() int {
	total := 0
	for _, n := range b.writes {
		total += n
	}
	return total
}

// columnsLayout places tiles left to right in equal columns.
type columnsLayout struct{ name string }

func (l columnsLayout) Name() string {
	if l.name != "" {
		return l.name
	}
	return "columns"
}

func (l columnsLayout) HandleInput(in Input) bool { return false }

func (l columnsLayout) Apply(tiles []*Tile, area platform.Rect) {
	if len(tiles) == 0 {
		return
	}
	width := area.Width / len(tiles)
	for i, t := range tiles {
		t.Geometry = platform.Rect{
			X:      area.X + i*width,
			Y:      area.Y,
			Width:  width,
			Height: area.Height,
		}
	}
}

// greedyLayout consumes every input it is offered.
type greedyLayout struct {
	columnsLayout
	handled []Input
}

func (l *greedyLayout) HandleInput(in Input) bool {
	l.handled = append(l.handled, in)
	return true
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestEngine(b *fakeBackend, rules ...Rule) *Engine {
	e := NewEngine(b, Options{
		Layouts: func(int) []Layout { return []Layout{columnsLayout{}} },
		Rules:   rules,
		Logger:  quietLogger(),
	})
	e.AddScreen(0)
	return e
}

func TestManageClient_CreatesSingleTilePerWindow(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "xterm", platform.Rect{X: 5, Y: 5, Width: 100, Height: 100})
	e := newTestEngine(b)

	if !e.ManageClient(1) {
		t.Fatalf("expected window 1 to be managed")
	}
	if !e.ManageClient(1) {
		t.Fatalf("expected repeat manage to report the window as tracked")
	}
	if e.TileCount() != 1 {
		t.Fatalf("expected exactly one tile, got %d", e.TileCount())
	}
}

func TestManageClient_IgnoreRuleRejects(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "krunner", platform.Rect{Width: 100, Height: 100})
	e := newTestEngine(b, Rule{Class: "krunner", Ignore: true})

	if e.ManageClient(1) {
		t.Fatalf("expected ignore rule to reject the window")
	}
	if e.TileCount() != 0 {
		t.Fatalf("expected empty tile list, got %d tiles", e.TileCount())
	}
}

func TestManageClient_IgnoreWinsOverOtherMatches(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "krunner", platform.Rect{Width: 100, Height: 100})
	e := newTestEngine(b,
		Rule{Class: "krunner", Floating: true},
		Rule{Class: "krunner", Ignore: true},
	)

	if e.ManageClient(1) {
		t.Fatalf("expected ignore rule to win regardless of rule order")
	}
}

func TestManageClient_FloatingRuleStartsFloating(t *testing.T) {
	b := newFakeBackend()
	geom := platform.Rect{X: 30, Y: 40, Width: 500, Height: 300}
	b.addWindow(1, "Pavucontrol", geom)
	e := newTestEngine(b, Rule{Class: "pavucontrol", Floating: true})

	if !e.ManageClient(1) {
		t.Fatalf("expected window to be managed")
	}
	tile := e.findTile(1)
	if tile == nil || !tile.Floating {
		t.Fatalf("expected a floating tile")
	}
	if tile.FloatGeometry != geom {
		t.Fatalf("expected float geometry %+v, got %+v", geom, tile.FloatGeometry)
	}
}

func TestUnmanageClient_RemovesTileAndToleratesUntracked(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "xterm", platform.Rect{Width: 100, Height: 100})
	e := newTestEngine(b)
	e.ManageClient(1)

	e.UnmanageClient(1)
	if e.TileCount() != 0 {
		t.Fatalf("expected tile removed, got %d tiles", e.TileCount())
	}

	// Never tracked: must be a benign no-op.
	e.UnmanageClient(99)
}

func TestUnmanageClient_SweepsFaultedTiles(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "xterm", platform.Rect{Width: 100, Height: 100})
	b.addWindow(2, "xterm", platform.Rect{Width: 100, Height: 100})
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)

	b.visibleErr[1] = errors.New("window gone")
	e.Arrange()

	// Unmanaging an unrelated window sweeps the faulted tile too.
	e.UnmanageClient(99)
	if e.TileCount() != 1 {
		t.Fatalf("expected faulted tile swept, got %d tiles", e.TileCount())
	}
	if e.findTile(2) == nil {
		t.Fatalf("expected healthy tile to survive the sweep")
	}
}

func TestArrange_EqualColumns(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{Width: 10, Height: 10})
	b.addWindow(2, "b", platform.Rect{Width: 10, Height: 10})
	b.addWindow(3, "c", platform.Rect{Width: 10, Height: 10})
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)
	e.ManageClient(3)

	want := map[platform.WindowID]platform.Rect{
		1: {X: 0, Y: 0, Width: 400, Height: 800},
		2: {X: 400, Y: 0, Width: 400, Height: 800},
		3: {X: 800, Y: 0, Width: 400, Height: 800},
	}
	for id, rect := range want {
		if got := b.geometries[id]; got != rect {
			t.Fatalf("window %d: expected %+v, got %+v", id, rect, got)
		}
	}
}

func TestArrange_IsIdempotent(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{Width: 10, Height: 10})
	b.addWindow(2, "b", platform.Rect{Width: 10, Height: 10})
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)

	before := b.totalWrites()
	e.Arrange()
	e.Arrange()
	if b.totalWrites() != before {
		t.Fatalf("expected no further writes once geometry converged, got %d extra",
			b.totalWrites()-before)
	}
}

func TestArrange_FloatingStaysAboveTiledStaysBelow(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{Width: 10, Height: 10})
	b.addWindow(2, "b", platform.Rect{X: 7, Y: 7, Width: 300, Height: 200})
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)
	e.SetClientFloating(2, true)

	if !b.below[1] || b.above[1] {
		t.Fatalf("expected tiled window marked always-below")
	}
	if !b.above[2] || b.below[2] {
		t.Fatalf("expected floating window marked always-above")
	}

	// The floating tile must not be touched by the tiling write path.
	if got := b.geometries[2]; got != (platform.Rect{X: 7, Y: 7, Width: 300, Height: 200}) {
		t.Fatalf("expected floating window to keep its geometry, got %+v", got)
	}
}

func TestArrange_FullScreenExcludedButKeepsSlot(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{Width: 10, Height: 10})
	b.addWindow(2, "b", platform.Rect{Width: 10, Height: 10})
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)

	b.fullScreen[1] = true
	fsGeom := b.geometries[1]
	e.Arrange()

	if b.above[1] || b.below[1] {
		t.Fatalf("expected full-screen window's markers cleared")
	}
	if b.geometries[1] != fsGeom {
		t.Fatalf("expected full-screen window left alone geometrically")
	}
	// The remaining tile gets the whole area to itself.
	if got := b.geometries[2]; got != b.workArea {
		t.Fatalf("expected remaining tile to fill the area, got %+v", got)
	}

	// Leaving full-screen restores the original slot: window 1 is still
	// first in the list and becomes the left column again.
	b.fullScreen[1] = false
	e.Arrange()
	if got := b.geometries[1]; got != (platform.Rect{X: 0, Y: 0, Width: 600, Height: 800}) {
		t.Fatalf("expected window 1 back in the master slot, got %+v", got)
	}
}

func TestArrange_VisibilityFaultExcludesTileForGood(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{Width: 10, Height: 10})
	b.addWindow(2, "b", platform.Rect{Width: 10, Height: 10})
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)

	b.visibleErr[1] = errors.New("bad window")
	e.Arrange()
	if got := b.geometries[2]; got != b.workArea {
		t.Fatalf("expected surviving tile to fill the area, got %+v", got)
	}

	// The fault is sticky: clearing the error does not resurrect the tile.
	delete(b.visibleErr, 1)
	e.Arrange()
	if got := b.geometries[2]; got != b.workArea {
		t.Fatalf("expected faulted tile to stay excluded, got %+v", got)
	}
}

func TestReconcile_GivesUpAfterBoundedRetries(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{Width: 10, Height: 10})
	b.honorWrites = false
	e := newTestEngine(b)
	e.ManageClient(1)

	for i := 0; i < 20; i++ {
		e.Arrange()
	}

	// Initial attempt plus maxArrangeAttempts retries, then silence.
	if got := b.writes[1]; got != maxArrangeAttempts+1 {
		t.Fatalf("expected %d geometry writes, got %d", maxArrangeAttempts+1, got)
	}
}

func TestReconcile_ExternalUpdateResetsLoopGuard(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{Width: 10, Height: 10})
	b.honorWrites = false
	e := newTestEngine(b)
	e.ManageClient(1)

	for i := 0; i < 20; i++ {
		e.Arrange()
	}
	exhausted := b.writes[1]

	// An externally reported geometry change resets the guard and the
	// engine tries again.
	e.ArrangeClient(1)
	if b.writes[1] != exhausted+1 {
		t.Fatalf("expected external update to re-attempt the write")
	}
	e.Arrange()
	if b.writes[1] != exhausted+2 {
		t.Fatalf("expected arrangement retries to resume after the reset")
	}
}

func TestArrangeClient_GuardsUntrackedFloatingFullScreen(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{Width: 10, Height: 10})
	b.addWindow(2, "b", platform.Rect{Width: 10, Height: 10})
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)
	e.SetClientFloating(2, true)

	before := b.totalWrites()

	e.ArrangeClient(99) // untracked
	e.ArrangeClient(2)  // floating
	b.fullScreen[1] = true
	e.ArrangeClient(1) // full-screen
	if b.totalWrites() != before {
		t.Fatalf("expected no writes from guarded fast paths")
	}
}

func TestSetClientFloating_SecondCallIsNoop(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "a", platform.Rect{X: 3, Y: 4, Width: 200, Height: 100})
	e := newTestEngine(b)
	e.ManageClient(1)

	e.SetClientFloating(1, true)
	writes := b.writes[1]
	e.SetClientFloating(1, true)
	if b.writes[1] != writes {
		t.Fatalf("expected repeated float request to issue no further writes")
	}
}

func TestToggleClientFloating_RoundTripRestoresGeometry(t *testing.T) {
	b := newFakeBackend()
	start := platform.Rect{X: 25, Y: 35, Width: 400, Height: 250}
	b.addWindow(1, "a", start)
	b.addWindow(2, "b", platform.Rect{Width: 10, Height: 10})
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)

	e.ToggleClientFloating(1)
	if got := b.geometries[1]; got == b.geometries[2] {
		t.Fatalf("expected floating window out of the tiling grid")
	}

	e.ToggleClientFloating(1)
	tile := e.findTile(1)
	if tile.Floating {
		t.Fatalf("expected tile back in tiled mode")
	}

	e.ToggleClientFloating(1)
	if got := b.geometries[1]; got != tile.FloatGeometry {
		t.Fatalf("expected float geometry restored, got %+v want %+v", got, tile.FloatGeometry)
	}
}

func TestHandleInput_FocusWrapsAround(t *testing.T) {
	b := newFakeBackend()
	for id := platform.WindowID(1); id <= 3; id++ {
		b.addWindow(id, "term", platform.Rect{Width: 10, Height: 10})
	}
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)
	e.ManageClient(3)
	b.active = 2

	for i := 0; i < 3; i++ {
		e.HandleInput(InputDown)
	}
	if b.active != 2 {
		t.Fatalf("expected focus back at window 2 after wrapping, got %d", b.active)
	}

	e.HandleInput(InputUp)
	if b.active != 1 {
		t.Fatalf("expected focus at window 1, got %d", b.active)
	}
	e.HandleInput(InputUp)
	if b.active != 3 {
		t.Fatalf("expected focus to wrap to window 3, got %d", b.active)
	}
}

func TestHandleInput_SetMasterPreservesOtherOrder(t *testing.T) {
	b := newFakeBackend()
	for id := platform.WindowID(1); id <= 4; id++ {
		b.addWindow(id, "term", platform.Rect{Width: 10, Height: 10})
	}
	e := newTestEngine(b)
	for id := platform.WindowID(1); id <= 4; id++ {
		e.ManageClient(id)
	}
	b.active = 3

	e.HandleInput(InputSetMaster)

	var order []platform.WindowID
	for _, tile := range e.tiles {
		order = append(order, tile.Client)
	}
	want := []platform.WindowID{3, 1, 2, 4}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}

	// Already master: no-op.
	e.HandleInput(InputSetMaster)
	if e.tiles[0].Client != 3 {
		t.Fatalf("expected master unchanged, got %d", e.tiles[0].Client)
	}
}

func TestHandleInput_ShiftSkipsInvisibleTiles(t *testing.T) {
	b := newFakeBackend()
	for id := platform.WindowID(1); id <= 3; id++ {
		b.addWindow(id, "term", platform.Rect{Width: 10, Height: 10})
	}
	e := newTestEngine(b)
	e.ManageClient(1)
	e.ManageClient(2)
	e.ManageClient(3)

	// Window 2 lives on another desktop: invisible on screen 0.
	b.visible[2][0] = false
	b.active = 3

	e.HandleInput(InputShiftUp)

	var order []platform.WindowID
	for _, tile := range e.tiles {
		order = append(order, tile.Client)
	}
	want := []platform.WindowID{3, 2, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}

	e.HandleInput(InputShiftDown)
	if e.tiles[0].Client != 1 || e.tiles[2].Client != 3 {
		t.Fatalf("expected shift-down to undo the swap")
	}
}

func TestHandleInput_CycleLayoutWraps(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "term", platform.Rect{Width: 10, Height: 10})
	layouts := []Layout{
		columnsLayout{name: "one"},
		columnsLayout{name: "two"},
		columnsLayout{name: "three"},
	}
	e := NewEngine(b, Options{
		Layouts: func(int) []Layout { return layouts },
		Logger:  quietLogger(),
	})
	e.AddScreen(0)
	e.ManageClient(1)
	b.active = 1

	for i := 0; i < len(layouts); i++ {
		e.HandleInput(InputCycleLayout)
	}
	if got := e.screens[0].Layout().Name(); got != "one" {
		t.Fatalf("expected cycling to wrap back to the first layout, got %q", got)
	}
}

func TestHandleInput_LayoutInterceptsFirst(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "term", platform.Rect{Width: 10, Height: 10})
	b.addWindow(2, "term", platform.Rect{Width: 10, Height: 10})
	greedy := &greedyLayout{}
	e := NewEngine(b, Options{
		Layouts: func(int) []Layout { return []Layout{greedy} },
		Logger:  quietLogger(),
	})
	e.AddScreen(0)
	e.ManageClient(1)
	e.ManageClient(2)
	b.active = 1

	e.HandleInput(InputDown)
	if b.active != 1 {
		t.Fatalf("expected the layout to consume the input before focus handling")
	}
	if len(greedy.handled) == 0 || greedy.handled[len(greedy.handled)-1] != InputDown {
		t.Fatalf("expected the layout to see the input, got %v", greedy.handled)
	}
}

func TestHandleInput_NoFocusedWindowIsNoop(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "term", platform.Rect{Width: 10, Height: 10})
	e := newTestEngine(b)
	e.ManageClient(1)
	b.active = platform.None

	before := b.totalWrites()
	e.HandleInput(InputDown)
	e.HandleInput(InputCycleLayout)
	if b.totalWrites() != before {
		t.Fatalf("expected input with no focused window to change nothing")
	}
	if b.active != platform.None {
		t.Fatalf("expected focus untouched")
	}
}

func TestUpdateRules_DoesNotReevaluateExistingTiles(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(1, "xterm", platform.Rect{Width: 10, Height: 10})
	e := newTestEngine(b)
	e.ManageClient(1)

	e.UpdateRules([]Rule{{Class: "xterm", Ignore: true}})
	if e.TileCount() != 1 {
		t.Fatalf("expected existing tile to survive a rule change")
	}

	// New windows of that class are rejected from now on.
	b.addWindow(2, "xterm", platform.Rect{Width: 10, Height: 10})
	if e.ManageClient(2) {
		t.Fatalf("expected new rule to apply to new windows")
	}
}

func TestAddRemoveScreen_KeepsIDsUnique(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)

	e.AddScreen(0) // duplicate of the one newTestEngine added
	e.AddScreen(1)
	if e.ScreenCount() != 2 {
		t.Fatalf("expected 2 screens, got %d", e.ScreenCount())
	}

	e.RemoveScreen(1)
	e.RemoveScreen(1)
	if e.ScreenCount() != 1 || e.screens[0].ID != 0 {
		t.Fatalf("expected only screen 0 to remain")
	}
}
