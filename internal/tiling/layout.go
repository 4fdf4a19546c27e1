package tiling

import "github.com/1broseidon/tilewm/internal/platform"

// Layout is a pluggable geometry-assignment strategy. Implementations
// live outside the engine (internal/layouts for the built-ins).
type Layout interface {
	// Name identifies the layout in status output and config.
	Name() string

	// Apply assigns a target Geometry to every tile in the ordered
	// tileable list. Index 0 is the master tile. Apply must not touch
	// the window system; the engine reconciles and writes afterwards.
	Apply(tiles []*Tile, area platform.Rect)

	// HandleInput lets the layout intercept a user command for
	// layout-specific behavior (e.g. resize ratios). Returning true
	// consumes the input; the engine then re-arranges and stops.
	HandleInput(in Input) bool
}

// LayoutFactory builds the layout set for a newly added screen. Each
// screen gets its own instances so per-layout state (ratios) stays
// per-screen.
type LayoutFactory func(screen int) []Layout
