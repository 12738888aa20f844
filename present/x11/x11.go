//go:build !windows && !android && !darwin && !js

// Package x11 presents frames in an X11 window and forwards its keyboard,
// pointer and resize events.
package x11

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/jezek/xgb/xproto"
	"github.com/srlehn/xgbutil"
	"github.com/srlehn/xgbutil/ewmh"
	"github.com/srlehn/xgbutil/keybind"
	"github.com/srlehn/xgbutil/xevent"
	"github.com/srlehn/xgbutil/xgraphics"
	"github.com/srlehn/xgbutil/xwindow"

	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/present"
)

const eventMask = xproto.EventMaskKeyPress | xproto.EventMaskButtonPress |
	xproto.EventMaskStructureNotify | xproto.EventMaskExposure

// Window is a top-level X11 window.
type Window struct {
	xu     *xgbutil.XUtil
	win    *xwindow.Window
	logger *slog.Logger

	mu    sync.Mutex
	img   *xgraphics.Image
	title string
	size  image.Point

	forward   chan func()
	done      chan struct{}
	closeOnce sync.Once
}

var (
	_ present.Presenter = (*Window)(nil)
	_ present.Titler    = (*Window)(nil)
	_ present.Source    = (*Window)(nil)
)

// Open connects to the display named by $DISPLAY and maps a window of the
// given pixel size.
func Open(width, height int, logger *slog.Logger) (_ *Window, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Recovered(r)
		}
	}()
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf(`invalid window size %dx%d`, width, height)
	}
	if logger == nil {
		logger = logx.Discard()
	}
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, errors.New(err)
	}
	win, err := xwindow.Generate(xu)
	if err != nil {
		xu.Conn().Close()
		return nil, errors.New(err)
	}
	err = win.CreateChecked(xu.RootWin(), 0, 0, width, height,
		xproto.CwBackPixel|xproto.CwEventMask, 0, eventMask)
	if err != nil {
		xu.Conn().Close()
		return nil, errors.New(err)
	}
	keybind.Initialize(xu)
	w := &Window{
		xu:      xu,
		win:     win,
		logger:  logger,
		size:    image.Pt(width, height),
		forward: make(chan func(), 64),
		done:    make(chan struct{}),
	}
	win.Map()
	return w, nil
}

func (w *Window) Logger() *slog.Logger { return w.logger }

// Size is the current window size in pixels.
func (w *Window) Size() image.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Attach connects the window events to sink and starts the event loop.
// Callbacks of the X event loop never block on the sink.
func (w *Window) Attach(sink present.Sink) error {
	if w == nil {
		return errors.NilReceiver()
	}
	if sink == nil {
		return errors.NilParam()
	}
	post := func(ev device.Event) {
		w.send(func() {
			err := sink.Post(context.Background(), ev)
			logx.IsErr(err, w, slog.LevelDebug)
		})
	}
	w.win.WMGracefulClose(func(*xwindow.Window) { post(device.CloseEvent()) })
	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		sym := keybind.KeysymGet(xu, ev.Detail, 0)
		text := keybind.LookupString(xu, ev.State, ev.Detail)
		if kev, ok := keyEvent(uint32(sym), text, ev.State); ok {
			post(kev)
		}
	}).Connect(w.xu, w.win.Id)
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if bev, ok := buttonEvent(uint8(ev.Detail), ev.EventX, ev.EventY, ev.State); ok {
			post(bev)
		}
	}).Connect(w.xu, w.win.Id)
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		size := image.Pt(int(ev.Width), int(ev.Height))
		w.mu.Lock()
		changed := size != w.size
		w.size = size
		w.mu.Unlock()
		if changed {
			logx.Debug(`window resized`, w, `size`, size)
			w.send(func() { sink.Resize(size.X, size.Y) })
		}
	}).Connect(w.xu, w.win.Id)
	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count > 0 {
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.img != nil {
			w.img.XPaint(w.win.Id)
		}
	}).Connect(w.xu, w.win.Id)

	go func() {
		for {
			select {
			case fn := <-w.forward:
				fn()
			case <-w.done:
				return
			}
		}
	}()
	go xevent.Main(w.xu)
	return nil
}

func (w *Window) send(fn func()) {
	select {
	case w.forward <- fn:
	case <-w.done:
	default:
		logx.Warn(`window event dropped`, w)
	}
}

// Present copies the dirty pixels to the window surface and paints them.
// The surface is recreated when the frame size changes.
func (w *Window) Present(frame *image.RGBA, dirty image.Rectangle) error {
	if w == nil {
		return errors.NilReceiver()
	}
	if frame == nil {
		return errors.NilParam()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	bounds := frame.Bounds()
	if w.img == nil || w.img.Rect != bounds {
		if w.img != nil {
			w.img.Destroy()
		}
		w.img = xgraphics.New(w.xu, bounds)
		if err := w.img.XSurfaceSet(w.win.Id); err != nil {
			w.img = nil
			return errors.New(err)
		}
		dirty = bounds
	}
	dirty = dirty.Intersect(bounds)
	if dirty.Empty() {
		return nil
	}
	for y := dirty.Min.Y; y < dirty.Max.Y; y++ {
		src := frame.Pix[frame.PixOffset(dirty.Min.X, y):]
		dst := w.img.Pix[(y-bounds.Min.Y)*w.img.Stride+(dirty.Min.X-bounds.Min.X)*4:]
		for x := 0; x < dirty.Dx(); x++ {
			i := x * 4
			dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], 0xFF
		}
	}
	w.img.XDraw()
	w.img.XPaintRects(w.win.Id, dirty)
	return nil
}

// SetTitle sets _NET_WM_NAME.
func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if title == w.title {
		return
	}
	w.title = title
	err := ewmh.WmNameSet(w.xu, w.win.Id, title)
	logx.IsErr(err, w, slog.LevelDebug)
}

// Close ends the event loop and destroys the window.
func (w *Window) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() {
		close(w.done)
		xevent.Quit(w.xu)
		w.mu.Lock()
		if w.img != nil {
			w.img.Destroy()
			w.img = nil
		}
		w.mu.Unlock()
		w.win.Destroy()
		w.xu.Conn().Close()
	})
	return nil
}
