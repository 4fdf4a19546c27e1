package daemon

import (
	"context"
	"log/slog"
	"time"
)

// ScreenCounter is a function that reports how many screens the
// platform currently has.
type ScreenCounter func() (int, error)

// screenEngine is the slice of the tiling engine the synchronizer
// drives.
type screenEngine interface {
	ScreenCount() int
	AddScreen(id int)
	RemoveScreen(id int)
	Arrange()
}

// ScreenSyncConfig holds configuration for the screen synchronizer.
type ScreenSyncConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// ScreenSync keeps the engine's screen set aligned with the monitors
// the platform reports. Screens are added and removed one at a time so
// ids stay dense: additions take the next free id, removals drop the
// highest.
type ScreenSync struct {
	interval time.Duration
	engine   screenEngine
	count    ScreenCounter
	dispatch Dispatch
	logger   *slog.Logger
}

// NewScreenSync creates a synchronizer. The dispatch function
// serializes engine access with the rest of the daemon.
func NewScreenSync(cfg ScreenSyncConfig, engine screenEngine, count ScreenCounter, dispatch Dispatch) *ScreenSync {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}

	return &ScreenSync{
		interval: interval,
		engine:   engine,
		count:    count,
		dispatch: dispatch,
		logger:   cfg.Logger,
	}
}

// Run starts the synchronization loop. Blocks until context is
// cancelled.
func (s *ScreenSync) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("screen sync started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("screen sync stopped")
			return
		case <-ticker.C:
			s.syncOnce()
		}
	}
}

// SyncNow triggers an immediate synchronization pass.
func (s *ScreenSync) SyncNow() {
	s.syncOnce()
}

func (s *ScreenSync) syncOnce() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			s.logger.Error("screen sync panic recovered", "error", err)
		}
	}()

	want, err := s.count()
	if err != nil {
		s.logger.Error("screen sync: failed to count screens", "error", err)
		return
	}
	if want < 1 {
		// A daemon with zero screens cannot place anything; keep the
		// last known screen until the platform reports monitors again.
		want = 1
	}

	s.dispatch(func() {
		changed := false
		for s.engine.ScreenCount() < want {
			id := s.engine.ScreenCount()
			s.engine.AddScreen(id)
			s.logger.Info("screen attached", "screen", id)
			changed = true
		}
		for s.engine.ScreenCount() > want {
			id := s.engine.ScreenCount() - 1
			s.engine.RemoveScreen(id)
			s.logger.Info("screen detached", "screen", id)
			changed = true
		}
		if changed {
			s.engine.Arrange()
		}
	})
}
