package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	ScreenCount   int    `json:"screen_count"`
	TileCount     int    `json:"tile_count"`
	ActiveLayout  string `json:"active_layout"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// ListScreensInput is the input for the list_screens tool.
type ListScreensInput struct{}

// ScreenInfo describes a single managed screen.
type ScreenInfo struct {
	ID           int      `json:"id"`
	ActiveLayout string   `json:"active_layout"`
	Layouts      []string `json:"layouts"`
	X            int      `json:"x"`
	Y            int      `json:"y"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
}

// ListScreensOutput is the output for the list_screens tool.
type ListScreensOutput struct {
	Screens []ScreenInfo `json:"screens"`
}

// SendInputInput is the input for the send_input tool.
type SendInputInput struct {
	Input string `json:"input" jsonschema:"required,Input command name (up, down, left, right, shift-up, shift-down, shift-left, shift-right, increase, decrease, set-master, float, cycle-layout)"`
}

// SendInputOutput is the output for the send_input tool.
type SendInputOutput struct {
	Sent bool `json:"sent"`
}

// SetFloatingInput is the input for the set_floating tool.
type SetFloatingInput struct {
	Floating *bool `json:"floating,omitempty" jsonschema:"Desired floating state for the focused window. Omit to toggle."`
}

// SetFloatingOutput is the output for the set_floating tool.
type SetFloatingOutput struct {
	Applied bool `json:"applied"`
}

// RetileInput is the input for the retile tool.
type RetileInput struct{}

// RetileOutput is the output for the retile tool.
type RetileOutput struct {
	Retiled bool `json:"retiled"`
}
