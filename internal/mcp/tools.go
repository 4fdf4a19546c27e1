package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}

	return nil, GetStatusOutput{
		ScreenCount:   status.ScreenCount,
		TileCount:     status.TileCount,
		ActiveLayout:  status.ActiveLayout,
		UptimeSeconds: status.UptimeSeconds,
		DaemonRunning: status.DaemonRunning,
	}, nil
}

func (s *Server) handleListScreens(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListScreensInput) (*mcpsdk.CallToolResult, ListScreensOutput, error) {
	screens, err := s.client.GetScreens()
	if err != nil {
		return nil, ListScreensOutput{}, err
	}

	out := ListScreensOutput{Screens: make([]ScreenInfo, 0, len(screens.Screens))}
	for _, screen := range screens.Screens {
		out.Screens = append(out.Screens, ScreenInfo{
			ID:           screen.ID,
			ActiveLayout: screen.ActiveLayout,
			Layouts:      screen.Layouts,
			X:            screen.X,
			Y:            screen.Y,
			Width:        screen.Width,
			Height:       screen.Height,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSendInput(_ context.Context, _ *mcpsdk.CallToolRequest, args SendInputInput) (*mcpsdk.CallToolResult, SendInputOutput, error) {
	if err := s.client.SendInput(args.Input); err != nil {
		return nil, SendInputOutput{}, err
	}
	return nil, SendInputOutput{Sent: true}, nil
}

func (s *Server) handleSetFloating(_ context.Context, _ *mcpsdk.CallToolRequest, args SetFloatingInput) (*mcpsdk.CallToolResult, SetFloatingOutput, error) {
	if err := s.client.SetFloat(args.Floating); err != nil {
		return nil, SetFloatingOutput{}, err
	}
	return nil, SetFloatingOutput{Applied: true}, nil
}

func (s *Server) handleRetile(_ context.Context, _ *mcpsdk.CallToolRequest, _ RetileInput) (*mcpsdk.CallToolResult, RetileOutput, error) {
	if err := s.client.Retile(); err != nil {
		return nil, RetileOutput{}, err
	}
	return nil, RetileOutput{Retiled: true}, nil
}
