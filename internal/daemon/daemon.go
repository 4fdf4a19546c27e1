// Package daemon wires the tiling engine to the X11 backend, the IPC
// server and the hotkey handler, and runs the event loop.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/hotkeys"
	"github.com/1broseidon/tilewm/internal/ipc"
	"github.com/1broseidon/tilewm/internal/layouts"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/x11"
)

// Dispatch serializes a function with all other engine access. The
// engine itself is not safe for concurrent use; everything that touches
// it (IPC handlers, hotkeys, X events, screen sync) goes through one of
// these.
type Dispatch func(fn func())

// Daemon owns the engine and every adapter feeding it.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	mu      sync.Mutex
	backend *x11.Backend
	engine  *tiling.Engine
	screens *ScreenSync
}

// New creates a daemon from a validated configuration.
func New(cfg *config.Config, logger *slog.Logger) *Daemon {
	return &Daemon{cfg: cfg, logger: logger}
}

// Do runs fn while holding the engine lock.
func (d *Daemon) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// Run connects to the X server, adopts existing windows and blocks in
// the event loop until the context is cancelled or a termination signal
// arrives.
func (d *Daemon) Run(ctx context.Context) error {
	backend, err := x11.Connect()
	if err != nil {
		return err
	}
	defer backend.Close()
	d.backend = backend

	// All geometry the engine sees has the configured padding applied.
	padded := paddedBackend{Backend: backend, padding: d.cfg.ScreenPadding}

	d.engine = tiling.NewEngine(padded, tiling.Options{
		Layouts: layouts.Factory(d.cfg.LayoutOrder, d.cfg.LayoutOptions()),
		Rules:   d.cfg.Rules,
		Logger:  d.logger,
	})

	d.screens = NewScreenSync(ScreenSyncConfig{
		Interval: 10 * time.Second,
		Logger:   d.logger,
	}, d.engine, backend.ScreenCount, d.Do)

	// Bring the screen set up before adopting windows so every adopted
	// client has a screen to land on.
	d.screens.SyncNow()
	d.adoptExistingClients()

	hotkeyHandler, err := hotkeys.NewHandler(backend, func(in tiling.Input) {
		d.Do(func() { d.engine.HandleInput(in) })
	}, d.logger)
	if err != nil {
		return fmt.Errorf("failed to create hotkey handler: %w", err)
	}
	if err := hotkeyHandler.Bind(d.cfg.Hotkeys); err != nil {
		return fmt.Errorf("failed to register hotkeys: %w", err)
	}

	ipcServer, err := ipc.NewServer(d.engine, padded, ipc.Dispatch(d.Do), loadRules, d.logger)
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer ipcServer.Stop()

	if err := backend.WatchWindows(d); err != nil {
		return fmt.Errorf("failed to subscribe to window events: %w", err)
	}

	syncCtx, cancelSync := context.WithCancel(ctx)
	defer cancelSync()
	go d.screens.Run(syncCtx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				backend.StopEventLoop()
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					d.reloadRules()
				case os.Interrupt, syscall.SIGTERM:
					d.logger.Info("shutting down tilewm daemon", "signal", sig.String())
					backend.StopEventLoop()
					return
				}
			}
		}
	}()

	d.logger.Info("tilewm daemon started", "screens", d.engine.ScreenCount(), "tiles", d.engine.TileCount())
	backend.EventLoop()
	return nil
}

// adoptExistingClients manages windows that were already open when the
// daemon started.
func (d *Daemon) adoptExistingClients() {
	clients, err := d.backend.Clients()
	if err != nil {
		d.logger.Warn("failed to list existing clients", "error", err)
		return
	}

	adopted := 0
	d.Do(func() {
		for _, win := range clients {
			if d.engine.ManageClient(win) {
				adopted++
			}
		}
	})
	d.logger.Info("adopted existing clients", "count", adopted, "seen", len(clients))
}

// reloadRules re-reads the window rules from configuration, leaving the
// rest of the running setup untouched. Layout and hotkey changes take a
// restart.
func (d *Daemon) reloadRules() {
	rules, err := loadRules()
	if err != nil {
		d.logger.Error("config reload failed", "error", err)
		return
	}
	d.Do(func() {
		d.engine.UpdateRules(rules)
		d.engine.Arrange()
	})
	d.logger.Info("rules reloaded", "rules", len(rules))
}

func loadRules() ([]tiling.Rule, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg.Rules, nil
}

// WindowMapped implements x11.WindowEvents.
func (d *Daemon) WindowMapped(id platform.WindowID) {
	d.Do(func() {
		if d.engine.ManageClient(id) {
			d.logger.Debug("window managed", "window", id)
		}
	})
}

// WindowDestroyed implements x11.WindowEvents.
func (d *Daemon) WindowDestroyed(id platform.WindowID) {
	d.Do(func() {
		d.engine.UnmanageClient(id)
	})
}

// WindowConfigured implements x11.WindowEvents.
func (d *Daemon) WindowConfigured(id platform.WindowID) {
	d.Do(func() {
		d.engine.ArrangeClient(id)
	})
}

// ScreensChanged implements x11.WindowEvents.
func (d *Daemon) ScreensChanged() {
	d.logger.Info("screen change notified")
	d.screens.SyncNow()
}

// paddedBackend shrinks every working area by the configured screen
// padding before the engine sees it.
type paddedBackend struct {
	platform.Backend
	padding config.Padding
}

func (p paddedBackend) WorkingArea(screen int) (platform.Rect, error) {
	area, err := p.Backend.WorkingArea(screen)
	if err != nil {
		return platform.Rect{}, err
	}
	return p.padding.Apply(area), nil
}
