package tiling

import "github.com/1broseidon/tilewm/internal/platform"

// Tile binds one managed window to its engine-assigned geometry and
// mode. Tiles are created by ManageClient and removed by UnmanageClient;
// they are never reused for another window.
type Tile struct {
	// Client is the adapter-owned window this tile is a view over. The
	// engine does not manage the window's lifetime.
	Client platform.WindowID

	// Geometry is the target geometry last computed for the tile while
	// tiled. Layouts write it; the engine reconciles it against the
	// live geometry before issuing adapter writes.
	Geometry platform.Rect

	// FloatGeometry is the geometry remembered for floating mode. It is
	// stale while the tile is tiled and restored when it floats again.
	FloatGeometry platform.Rect

	// Floating excludes the tile from layout-driven placement.
	Floating bool

	// arrangeCount tracks consecutive geometry writes that the window
	// system did not honor; past maxArrangeAttempts the engine stops
	// writing to avoid a write/notify feedback loop.
	arrangeCount int

	// faulted is set when an adapter call for this tile raised a fault.
	// A faulted tile is excluded from all visible sets and removed on
	// the next UnmanageClient pass.
	faulted bool
}
