// Package ipc implements the JSON-over-unix-socket protocol between
// the tilewm daemon and its command line clients.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload     CommandType = "RELOAD"
	CommandGetStatus  CommandType = "GET_STATUS"
	CommandGetScreens CommandType = "GET_SCREENS"
	CommandSendInput  CommandType = "SEND_INPUT"
	CommandSetFloat   CommandType = "SET_FLOAT"
	CommandRetile     CommandType = "RETILE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	ScreenCount   int    `json:"screen_count"`
	TileCount     int    `json:"tile_count"`
	ActiveLayout  string `json:"active_layout"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// ScreenInfo represents one managed screen
type ScreenInfo struct {
	ID           int      `json:"id"`
	ActiveLayout string   `json:"active_layout"`
	Layouts      []string `json:"layouts"`
	X            int      `json:"x"`
	Y            int      `json:"y"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
}

// ScreensData represents the data returned by GET_SCREENS
type ScreensData struct {
	Screens []ScreenInfo `json:"screens"`
}

// SendInputPayload represents the payload for SEND_INPUT
type SendInputPayload struct {
	Input string `json:"input"`
}

// SetFloatPayload represents the payload for SET_FLOAT. A nil Floating
// toggles the focused window's floating state.
type SetFloatPayload struct {
	Floating *bool `json:"floating,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
