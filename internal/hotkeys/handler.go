// Package hotkeys registers global keyboard shortcuts and translates
// them into tiling inputs.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	send   func(tiling.Input)
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. The send function receives every
// triggered input; callers serialize engine access inside it.
func NewHandler(backend platform.Backend, send func(tiling.Input), logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("backend does not expose an X11 connection")
	}
	xu := accessor.XUtil()
	root := accessor.RootWindow()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   root,
		send:   send,
		logger: logger,
	}, nil
}

// Bind registers one global hotkey per entry in bindings, mapping an
// input name to its key sequence. Unknown input names were rejected at
// config validation; they are skipped here with a warning in case the
// map arrived unvalidated.
func (h *Handler) Bind(bindings map[string]string) error {
	for name, sequence := range bindings {
		if sequence == "" {
			h.logger.Info("hotkey disabled", "input", name)
			continue
		}
		in, err := tiling.ParseInput(name)
		if err != nil {
			h.logger.Warn("skipping hotkey with unknown input", "input", name, "key", sequence)
			continue
		}
		input := in
		if err := h.RegisterFunc(sequence, func() {
			h.logger.Debug("hotkey triggered", "input", input.String())
			h.send(input)
		}); err != nil {
			return fmt.Errorf("failed to bind %q to %s: %w", sequence, name, err)
		}
		h.logger.Info("hotkey registered", "input", name, "key", sequence)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes hotkeys fire regardless of lock-key state
// by listing every combination of CapsLock, NumLock and ScrollLock as
// ignorable modifiers.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
