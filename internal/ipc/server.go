package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/runtimepath"
	"github.com/1broseidon/tilewm/internal/tiling"
)

// Engine is the slice of the tiling engine the IPC server drives.
type Engine interface {
	ScreenCount() int
	TileCount() int
	Screens() []*tiling.Screen
	HandleInput(in tiling.Input)
	Arrange()
	SetClientFloating(w platform.WindowID, floating bool)
	ToggleClientFloating(w platform.WindowID)
	UpdateRules(rules []tiling.Rule)
}

// Dispatch serializes a function with the daemon's other engine access.
type Dispatch func(fn func())

// RuleLoader returns the current window rules from configuration.
// Called on RELOAD.
type RuleLoader func() ([]tiling.Rule, error)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	backend      platform.Backend
	dispatch     Dispatch
	loadRules    RuleLoader
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(engine Engine, backend platform.Backend, dispatch Dispatch, loadRules RuleLoader, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}

	return &Server{
		socketPath: socketPath,
		engine:     engine,
		backend:    backend,
		dispatch:   dispatch,
		loadRules:  loadRules,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Error("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Error("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Error("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetScreens:
		return s.handleGetScreens()
	case CommandSendInput:
		return s.handleSendInput(req.Payload)
	case CommandSetFloat:
		return s.handleSetFloat(req.Payload)
	case CommandRetile:
		return s.handleRetile()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload re-reads the window rules from configuration and
// re-arranges.
func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD command")

	rules, err := s.loadRules()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.dispatch(func() {
		s.engine.UpdateRules(rules)
		s.engine.Arrange()
	})

	s.logger.Info("IPC: rules reloaded", "rules", len(rules))

	resp, _ := NewOKResponse(nil)
	return resp
}

// layoutName reports a screen's active layout name, or "" for a
// screen with no layouts.
func layoutName(screen *tiling.Screen) string {
	if l := screen.Layout(); l != nil {
		return l.Name()
	}
	return ""
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	var status StatusData
	s.dispatch(func() {
		status = StatusData{
			ScreenCount:   s.engine.ScreenCount(),
			TileCount:     s.engine.TileCount(),
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			DaemonRunning: true,
		}
		if screens := s.engine.Screens(); len(screens) > 0 {
			status.ActiveLayout = layoutName(screens[0])
		}
	})

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetScreens returns information about all managed screens
func (s *Server) handleGetScreens() *Response {
	var infos []ScreenInfo
	s.dispatch(func() {
		screens := s.engine.Screens()
		infos = make([]ScreenInfo, 0, len(screens))
		for _, screen := range screens {
			names := make([]string, 0, len(screen.Layouts()))
			for _, l := range screen.Layouts() {
				names = append(names, l.Name())
			}
			info := ScreenInfo{
				ID:           screen.ID,
				ActiveLayout: layoutName(screen),
				Layouts:      names,
			}
			if area, err := s.backend.WorkingArea(screen.ID); err == nil {
				info.X = area.X
				info.Y = area.Y
				info.Width = area.Width
				info.Height = area.Height
			}
			infos = append(infos, info)
		}
	})

	resp, _ := NewOKResponse(ScreensData{Screens: infos})
	return resp
}

// handleSendInput injects a user input into the engine
func (s *Server) handleSendInput(payload json.RawMessage) *Response {
	var req SendInputPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid input payload: %v", err))
	}

	in, err := tiling.ParseInput(req.Input)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	s.logger.Debug("IPC: input", "input", req.Input)
	s.dispatch(func() {
		s.engine.HandleInput(in)
	})

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleSetFloat sets or toggles the floating state of the focused
// window.
func (s *Server) handleSetFloat(payload json.RawMessage) *Response {
	var req SetFloatPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid float payload: %v", err))
		}
	}

	win, err := s.backend.ActiveWindow()
	if err != nil || win == platform.None {
		return NewErrorResponse("no focused window")
	}

	s.dispatch(func() {
		if req.Floating == nil {
			s.engine.ToggleClientFloating(win)
		} else {
			s.engine.SetClientFloating(win, *req.Floating)
		}
	})

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleRetile forces a full re-arrangement
func (s *Server) handleRetile() *Response {
	s.dispatch(func() {
		s.engine.Arrange()
	})

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
