package layouts

import (
	"testing"

	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
)

func makeTiles(n int) []*tiling.Tile {
	tiles := make([]*tiling.Tile, n)
	for i := range tiles {
		tiles[i] = &tiling.Tile{Client: platform.WindowID(i + 1)}
	}
	return tiles
}

func TestTiled_MasterAndStack(t *testing.T) {
	l := &Tiled{ratio: 0.5}
	tiles := makeTiles(3)
	area := platform.Rect{X: 0, Y: 0, Width: 1200, Height: 800}

	l.Apply(tiles, area)

	if got := tiles[0].Geometry; got != (platform.Rect{X: 0, Y: 0, Width: 600, Height: 800}) {
		t.Fatalf("unexpected master geometry: %+v", got)
	}
	if got := tiles[1].Geometry; got != (platform.Rect{X: 600, Y: 0, Width: 600, Height: 400}) {
		t.Fatalf("unexpected first stack geometry: %+v", got)
	}
	if got := tiles[2].Geometry; got != (platform.Rect{X: 600, Y: 400, Width: 600, Height: 400}) {
		t.Fatalf("unexpected second stack geometry: %+v", got)
	}
}

func TestTiled_SingleTileFillsArea(t *testing.T) {
	l := &Tiled{ratio: 0.5}
	tiles := makeTiles(1)
	area := platform.Rect{X: 100, Y: 50, Width: 800, Height: 600}

	l.Apply(tiles, area)

	if got := tiles[0].Geometry; got != area {
		t.Fatalf("expected lone tile to fill the area, got %+v", got)
	}
}

func TestTiled_GapsInsetEverySide(t *testing.T) {
	l := &Tiled{ratio: 0.5, gap: 10}
	tiles := makeTiles(2)
	area := platform.Rect{X: 0, Y: 0, Width: 1000, Height: 600}

	l.Apply(tiles, area)

	master := tiles[0].Geometry
	if master.X != 10 || master.Y != 10 || master.Height != 580 {
		t.Fatalf("expected master inset by the gap, got %+v", master)
	}
	stack := tiles[1].Geometry
	if stack.X != master.X+master.Width+10 {
		t.Fatalf("expected a gap between master and stack, got %+v", stack)
	}
}

func TestTiled_RatioAdjustsAndClamps(t *testing.T) {
	l := &Tiled{ratio: 0.75}
	if !l.HandleInput(tiling.InputIncrease) {
		t.Fatalf("expected tiled layout to consume Increase")
	}
	if !l.HandleInput(tiling.InputIncrease) {
		t.Fatalf("expected tiled layout to consume Increase at the clamp")
	}
	if l.ratio != maxRatio {
		t.Fatalf("expected ratio clamped to %v, got %v", maxRatio, l.ratio)
	}
	if l.HandleInput(tiling.InputSetMaster) {
		t.Fatalf("expected non-resize input to pass through")
	}
}

func TestMonocle_EveryTileGetsFullArea(t *testing.T) {
	l := &Monocle{}
	tiles := makeTiles(3)
	area := platform.Rect{X: 5, Y: 5, Width: 640, Height: 480}

	l.Apply(tiles, area)

	for i, tile := range tiles {
		if tile.Geometry != area {
			t.Fatalf("tile %d: expected full area, got %+v", i, tile.Geometry)
		}
	}
}

func TestSpread_CascadesToTheRightEdge(t *testing.T) {
	l := &Spread{}
	tiles := makeTiles(4)
	area := platform.Rect{X: 0, Y: 0, Width: 800, Height: 600}

	l.Apply(tiles, area)

	right := area.X + area.Width
	lastX := -1
	for i, tile := range tiles {
		g := tile.Geometry
		if g.X+g.Width != right {
			t.Fatalf("tile %d: expected right edge at %d, got %d", i, right, g.X+g.Width)
		}
		if g.X <= lastX {
			t.Fatalf("tile %d: expected strictly increasing X, got %d after %d", i, g.X, lastX)
		}
		lastX = g.X
	}
}

func TestStacked_MasterOnTop(t *testing.T) {
	l := &Stacked{ratio: 0.5}
	tiles := makeTiles(3)
	area := platform.Rect{X: 0, Y: 0, Width: 1000, Height: 800}

	l.Apply(tiles, area)

	if got := tiles[0].Geometry; got != (platform.Rect{X: 0, Y: 0, Width: 1000, Height: 400}) {
		t.Fatalf("unexpected master geometry: %+v", got)
	}
	if got := tiles[1].Geometry; got != (platform.Rect{X: 0, Y: 400, Width: 500, Height: 400}) {
		t.Fatalf("unexpected first column geometry: %+v", got)
	}
	if got := tiles[2].Geometry; got != (platform.Rect{X: 500, Y: 400, Width: 500, Height: 400}) {
		t.Fatalf("unexpected second column geometry: %+v", got)
	}
}

func TestNew_BuildsRequestedOrderAndSkipsUnknown(t *testing.T) {
	set := New([]string{"monocle", "bogus", "tiled"}, Options{})
	if len(set) != 2 {
		t.Fatalf("expected 2 layouts, got %d", len(set))
	}
	if set[0].Name() != "monocle" || set[1].Name() != "tiled" {
		t.Fatalf("unexpected layout order: %s, %s", set[0].Name(), set[1].Name())
	}
}

func TestFactory_InstancesAreNotShared(t *testing.T) {
	factory := Factory([]string{"tiled"}, Options{})
	a := factory(0)[0].(*Tiled)
	b := factory(1)[0].(*Tiled)

	a.HandleInput(tiling.InputIncrease)
	if a.ratio == b.ratio {
		t.Fatalf("expected per-screen layout state to be independent")
	}
}
