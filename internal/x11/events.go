package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/tilewm/internal/platform"
)

// WindowEvents receives window lifecycle notifications from the X
// server. Callbacks run on the event loop goroutine.
type WindowEvents interface {
	WindowMapped(id platform.WindowID)
	WindowDestroyed(id platform.WindowID)
	WindowConfigured(id platform.WindowID)
	ScreensChanged()
}

// WatchWindows subscribes to child window lifecycle events on the root
// window and RandR screen changes, dispatching them to handler once
// EventLoop runs.
func (b *Backend) WatchWindows(handler WindowEvents) error {
	err := xproto.ChangeWindowAttributesChecked(
		b.xu.Conn(),
		b.root,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureNotify},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to subscribe to root window events: %w", err)
	}

	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		if ev.OverrideRedirect {
			return
		}
		if !b.isNormalWindow(ev.Window) {
			return
		}
		handler.WindowMapped(platform.WindowID(ev.Window))
	}).Connect(b.xu, b.root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		handler.WindowDestroyed(platform.WindowID(ev.Window))
	}).Connect(b.xu, b.root)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if ev.OverrideRedirect {
			return
		}
		handler.WindowConfigured(platform.WindowID(ev.Window))
	}).Connect(b.xu, b.root)

	// Monitor hotplug. RandR notify events are extension events, so they
	// only surface through the generic hook.
	if err := randr.Init(b.xu.Conn()); err == nil {
		if err := randr.SelectInputChecked(b.xu.Conn(), b.root, randr.NotifyMaskScreenChange).Check(); err == nil {
			xevent.HookFun(func(xu *xgbutil.XUtil, event interface{}) bool {
				if _, ok := event.(randr.ScreenChangeNotifyEvent); ok {
					handler.ScreensChanged()
				}
				return true
			}).Connect(b.xu)
		}
	}

	return nil
}

// EventLoop runs the X11 event loop. Blocks until StopEventLoop.
func (b *Backend) EventLoop() {
	xevent.Main(b.xu)
}

// StopEventLoop asks the event loop to exit after the current event.
func (b *Backend) StopEventLoop() {
	xevent.Quit(b.xu)
}
