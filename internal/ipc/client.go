package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tilewm/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Reload asks the daemon to re-read the window rules from configuration
func (c *Client) Reload() error {
	req := &Request{
		Command: CommandReload,
	}

	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetScreens retrieves the managed screens
func (c *Client) GetScreens() (*ScreensData, error) {
	req := &Request{
		Command: CommandGetScreens,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var screens ScreensData
	if err := json.Unmarshal(resp.Data, &screens); err != nil {
		return nil, fmt.Errorf("failed to parse screens data: %w", err)
	}

	return &screens, nil
}

// SendInput injects a user input by name (e.g. "up", "cycle-layout")
func (c *Client) SendInput(input string) error {
	payload, err := json.Marshal(SendInputPayload{Input: input})
	if err != nil {
		return fmt.Errorf("failed to marshal input payload: %w", err)
	}

	req := &Request{
		Command: CommandSendInput,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// SetFloat sets the floating state of the focused window. A nil
// floating toggles.
func (c *Client) SetFloat(floating *bool) error {
	payload, err := json.Marshal(SetFloatPayload{Floating: floating})
	if err != nil {
		return fmt.Errorf("failed to marshal float payload: %w", err)
	}

	req := &Request{
		Command: CommandSetFloat,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// Retile forces a full re-arrangement of all screens
func (c *Client) Retile() error {
	req := &Request{
		Command: CommandRetile,
	}

	_, err := c.sendRequest(req)
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
