package tiling

// Screen is one physical display slot with its own layout selection.
// The layout set is fixed at construction; only the active index moves.
type Screen struct {
	ID int

	layouts []Layout
	active  int
}

// NewScreen creates a screen with the given layout set. The first
// layout is active. A nil or empty layout set is allowed; such a screen
// is skipped by arrangement passes.
func NewScreen(id int, layouts []Layout) *Screen {
	return &Screen{ID: id, layouts: layouts}
}

// Layout returns the currently active layout, or nil when the screen
// has none.
func (s *Screen) Layout() Layout {
	if len(s.layouts) == 0 {
		return nil
	}
	return s.layouts[s.active]
}

// Layouts returns the screen's available layouts in cycling order.
func (s *Screen) Layouts() []Layout {
	return s.layouts
}

// CycleLayout advances to the next layout, wrapping around.
func (s *Screen) CycleLayout() {
	if len(s.layouts) == 0 {
		return
	}
	s.active = (s.active + 1) % len(s.layouts)
}
