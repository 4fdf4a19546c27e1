// Package layouts provides the built-in layout strategies: tiled,
// monocle, spread and stacked. Each satisfies the tiling.Layout
// contract; the engine stays ignorant of their geometry math.
package layouts

import (
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
)

// DefaultOrder is the stock layout rotation for new screens.
var DefaultOrder = []string{"tiled", "monocle", "spread", "stacked"}

const (
	defaultRatio = 0.55
	minRatio     = 0.20
	maxRatio     = 0.80
	ratioStep    = 0.05
)

// Options carries the knobs shared by the built-in layouts.
type Options struct {
	// Gap is the inner gap in pixels between tiles and around the area
	// edge.
	Gap int

	// MasterRatio is the initial share of the area given to the master
	// tile by the tiled and stacked layouts. Clamped to [0.20, 0.80];
	// zero means the default of 0.55.
	MasterRatio float64
}

func (o Options) ratio() float64 {
	if o.MasterRatio == 0 {
		return defaultRatio
	}
	return clampRatio(o.MasterRatio)
}

func clampRatio(r float64) float64 {
	if r < minRatio {
		return minRatio
	}
	if r > maxRatio {
		return maxRatio
	}
	return r
}

// New builds fresh layout instances for the given names, skipping
// unknown ones. Instances are not shared: per-layout state (the master
// ratio) stays with whichever screen owns them.
func New(order []string, opts Options) []tiling.Layout {
	out := make([]tiling.Layout, 0, len(order))
	for _, name := range order {
		switch name {
		case "tiled":
			out = append(out, &Tiled{gap: opts.Gap, ratio: opts.ratio()})
		case "monocle":
			out = append(out, &Monocle{gap: opts.Gap})
		case "spread":
			out = append(out, &Spread{gap: opts.Gap})
		case "stacked":
			out = append(out, &Stacked{gap: opts.Gap, ratio: opts.ratio()})
		}
	}
	return out
}

// Factory adapts New into a per-screen tiling.LayoutFactory.
func Factory(order []string, opts Options) tiling.LayoutFactory {
	return func(int) []tiling.Layout {
		return New(order, opts)
	}
}

// KnownLayout reports whether name refers to a built-in layout.
func KnownLayout(name string) bool {
	switch name {
	case "tiled", "monocle", "spread", "stacked":
		return true
	}
	return false
}

// Tiled places the master tile in a left pane and stacks the rest in
// equal rows on the right. Increase/Decrease adjust the master ratio.
type Tiled struct {
	gap   int
	ratio float64
}

func (l *Tiled) Name() string { return "tiled" }

func (l *Tiled) HandleInput(in tiling.Input) bool {
	switch in {
	case tiling.InputIncrease:
		l.ratio = clampRatio(l.ratio + ratioStep)
		return true
	case tiling.InputDecrease:
		l.ratio = clampRatio(l.ratio - ratioStep)
		return true
	}
	return false
}

func (l *Tiled) Apply(tiles []*tiling.Tile, area platform.Rect) {
	n := len(tiles)
	if n == 0 {
		return
	}
	inner := area.Shrink(l.gap)
	if n == 1 {
		tiles[0].Geometry = inner
		return
	}

	masterWidth := int(float64(inner.Width) * l.ratio)
	tiles[0].Geometry = platform.Rect{
		X:      inner.X,
		Y:      inner.Y,
		Width:  masterWidth,
		Height: inner.Height,
	}

	stackX := inner.X + masterWidth + l.gap
	stackWidth := inner.Width - masterWidth - l.gap
	if stackWidth < 1 {
		stackWidth = 1
	}
	rows := n - 1
	rowHeight := (inner.Height - (rows-1)*l.gap) / rows
	if rowHeight < 1 {
		rowHeight = 1
	}
	for i, t := range tiles[1:] {
		t.Geometry = platform.Rect{
			X:      stackX,
			Y:      inner.Y + i*(rowHeight+l.gap),
			Width:  stackWidth,
			Height: rowHeight,
		}
	}
}

// Monocle gives every tile the whole area; the stacking order decides
// which one shows.
type Monocle struct {
	gap int
}

func (l *Monocle) Name() string { return "monocle" }

func (l *Monocle) HandleInput(tiling.Input) bool { return false }

func (l *Monocle) Apply(tiles []*tiling.Tile, area platform.Rect) {
	inner := area.Shrink(l.gap)
	for _, t := range tiles {
		t.Geometry = inner
	}
}

// Spread cascades tiles horizontally: each successive tile starts
// further right and runs to the area's right edge, so every title edge
// stays visible.
type Spread struct {
	gap int
}

func (l *Spread) Name() string { return "spread" }

func (l *Spread) HandleInput(tiling.Input) bool { return false }

func (l *Spread) Apply(tiles []*tiling.Tile, area platform.Rect) {
	n := len(tiles)
	if n == 0 {
		return
	}
	inner := area.Shrink(l.gap)
	step := inner.Width / (2 * n)
	for i, t := range tiles {
		offset := i * step
		t.Geometry = platform.Rect{
			X:      inner.X + offset,
			Y:      inner.Y,
			Width:  inner.Width - offset,
			Height: inner.Height,
		}
	}
}

// Stacked puts the master tile in a full-width top pane and splits the
// rest into equal columns below it.
type Stacked struct {
	gap   int
	ratio float64
}

func (l *Stacked) Name() string { return "stacked" }

func (l *Stacked) HandleInput(in tiling.Input) bool {
	switch in {
	case tiling.InputIncrease:
		l.ratio = clampRatio(l.ratio + ratioStep)
		return true
	case tiling.InputDecrease:
		l.ratio = clampRatio(l.ratio - ratioStep)
		return true
	}
	return false
}

func (l *Stacked) Apply(tiles []*tiling.Tile, area platform.Rect) {
	n := len(tiles)
	if n == 0 {
		return
	}
	inner := area.Shrink(l.gap)
	if n == 1 {
		tiles[0].Geometry = inner
		return
	}

	masterHeight := int(float64(inner.Height) * l.ratio)
	tiles[0].Geometry = platform.Rect{
		X:      inner.X,
		Y:      inner.Y,
		Width:  inner.Width,
		Height: masterHeight,
	}

	stackY := inner.Y + masterHeight + l.gap
	stackHeight := inner.Height - masterHeight - l.gap
	if stackHeight < 1 {
		stackHeight = 1
	}
	cols := n - 1
	colWidth := (inner.Width - (cols-1)*l.gap) / cols
	if colWidth < 1 {
		colWidth = 1
	}
	for i, t := range tiles[1:] {
		t.Geometry = platform.Rect{
			X:      inner.X + i*(colWidth+l.gap),
			Y:      stackY,
			Width:  colWidth,
			Height: stackHeight,
		}
	}
}
