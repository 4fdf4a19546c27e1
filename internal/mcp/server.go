// Package mcp exposes the running tilewm daemon to MCP clients. Every
// tool forwards to the daemon over its IPC socket, so the MCP server
// works as a separate process and requires a running daemon.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tilewm/internal/ipc"
)

const (
	ServerName    = "tilewm"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for tilewm introspection and control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates an MCP server backed by the daemon's IPC socket.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get the tiling daemon's status: screen count, managed tile count, active layout and uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_screens",
		Description: "List all managed screens with their working area geometry, active layout and available layouts.",
	}, s.handleListScreens)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_input",
		Description: "Send a user input command to the tiling engine, exactly as a hotkey would: focus movement, window shifting, master resize, set-master, float toggle or layout cycling.",
	}, s.handleSendInput)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_floating",
		Description: "Set or toggle the floating state of the currently focused window. Floating windows keep their geometry and stay above tiled ones.",
	}, s.handleSetFloating)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "retile",
		Description: "Force a full re-arrangement of every screen with the active layouts.",
	}, s.handleRetile)
}
