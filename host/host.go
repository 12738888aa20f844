// Package host is the in-process pixel host: it renders the cell matrix of
// an application into an RGBA framebuffer through a tile cache and hands
// finished frames to a presenter.
//
// Application calls only queue operations; a single render goroutine owns
// the framebuffer, the tile cache and the presenter.
package host

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/glyph"
	"github.com/srlehn/cellmatrix/internal"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/matrix"
	"github.com/srlehn/cellmatrix/present"
	"github.com/srlehn/cellmatrix/resize"
	"github.com/srlehn/cellmatrix/tilecache"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
	queueLength   = 64
)

type Host struct {
	*device.Session
	handoff *device.Handoff
	logger  *slog.Logger
	closer  internal.Closer

	fontPath  string
	fontPx    float64
	padding   [2]float64
	scale     float64
	size      image.Point
	cacheCfg  tilecache.Config
	resizer   resize.Resizer
	presenter present.Presenter

	// surface geometry, changed by the platform side
	geoMu sync.Mutex
	faces *glyph.Faces
	ins   matrix.Inscription

	// application side
	invalid   device.Invalidations
	resources *glyph.Resources

	ops       chan op
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// owned by the render goroutine
	render renderState

	frameMu sync.Mutex
	visible *image.RGBA
	frames  uint64
}

var (
	_ device.Device       = (*Host)(nil)
	_ present.Sink        = (*Host)(nil)
	_ logx.LoggerProvider = (*Host)(nil)
)

// New creates a host and starts its render goroutine.
func New(opts ...Option) (*Host, error) {
	h := &Host{
		handoff:  device.NewHandoff(),
		closer:   internal.NewCloser(),
		fontPx:   matrix.FontPixelsFromEnv(),
		scale:    1,
		size:     image.Pt(defaultWidth, defaultHeight),
		cacheCfg: tilecache.DefaultConfig(),
		ops:      make(chan op, queueLength),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if err := h.setOptions(opts...); err != nil {
		return nil, err
	}
	if h.logger == nil {
		h.logger = logx.Discard()
	}
	if h.presenter == nil {
		h.presenter = present.Discard{}
	}
	faces, err := glyph.LoadFaces(h.fontPath, h.fontPx)
	if err != nil {
		return nil, err
	}
	h.closer.AddClosers(faces)
	h.faces = faces
	h.ins = h.inscription(faces)

	params := h.parameters(h.ins, h.size)
	h.Session = device.NewSession(params, h.logger)
	h.logger = h.Session.Logger()
	h.resources = glyph.NewResources(params.CellPixels(), h.resizer)
	if err := h.render.configure(h, faces, h.ins, params); err != nil {
		_ = h.closer.Close()
		return nil, err
	}
	h.visible = image.NewRGBA(h.render.working.Bounds())

	if src, ok := h.presenter.(present.Source); ok {
		if err := src.Attach(h); err != nil {
			_ = h.closer.Close()
			return nil, err
		}
	}
	h.closer.AddClosers(h.presenter)

	go h.loop()
	logx.Info(`pixel host started`, h, `lines`, params.YCells, `span`, params.XCells, `cell`, params.CellPixels())
	return h, nil
}

func (h *Host) Logger() *slog.Logger { return h.logger }

func (h *Host) inscription(faces *glyph.Faces) matrix.Inscription {
	ins := faces.Metrics()
	ins.HorizontalPad = h.padding[0]
	ins.VerticalPad = h.padding[1]
	return ins
}

func (h *Host) parameters(ins matrix.Inscription, size image.Point) matrix.Parameters {
	return matrix.NewParameters(ins, h.scale, float64(size.X)/h.scale, float64(size.Y)/h.scale)
}

// Run drives app on the calling goroutine and closes the host when app
// returns. A panicking application is reported as error.
func (h *Host) Run(app device.Application) (err error) {
	if h == nil {
		return errors.NilReceiver()
	}
	if app == nil {
		return errors.NilParam()
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Recovered(r)
		}
		err = errors.Join(err, h.Close())
	}()
	return app(h)
}

// Close stops the render goroutine, releases the presenter and delivers
// session close events to the application.
func (h *Host) Close() error {
	if h == nil {
		return nil
	}
	var err error
	h.closeOnce.Do(func() {
		h.handoff.Close()
		close(h.done)
		<-h.stopped
		err = h.closer.Close()
		logx.Info(`pixel host closed`, h, `frames`, h.Frames())
	})
	return err
}

// Done is closed once the host is closed.
func (h *Host) Done() <-chan struct{} { return h.done }

// fail closes the session after an unrecoverable render failure.
func (h *Host) fail(err error) {
	logx.Error(`render failure, closing session`, h, `err`, err)
	h.handoff.Close()
}

func (h *Host) enqueue(o op) bool {
	select {
	case <-h.stopped:
		return false
	default:
	}
	select {
	case h.ops <- o:
		return true
	case <-h.stopped:
		return false
	case <-h.done:
		return false
	}
}

// TransferEvent waits for the next event. Resize events are forwarded to
// the render goroutine after the session applied them.
func (h *Host) TransferEvent() uint16 {
	ev := h.handoff.Take()
	h.Session.Apply(ev)
	if ev.Status.Is(control.ScreenResize) {
		h.geoMu.Lock()
		o := op{kind: opGeometry, params: *h.Dimensions(), faces: h.faces, ins: h.ins}
		h.geoMu.Unlock()
		if o.params.CellPixels() != h.resources.CellSize() {
			logx.IsErr(h.resources.SetCellSize(o.params.CellPixels()), h, slog.LevelWarn)
		}
		h.enqueue(o)
	}
	return 1
}

func (h *Host) Integrate(resource string, lines, span uint16) int32 {
	id, err := h.resources.Integrate(resource, lines, span)
	if logx.IsErr(err, h, slog.LevelWarn, `resource`, resource) {
		return -1
	}
	logx.Debug(`integrated resource`, h, `resource`, resource, `identity`, id, `lines`, lines, `span`, span)
	return id
}

func (h *Host) InvalidateCells(area matrix.Area) {
	h.invalid.Add(h.Screen().Area(), area)
}

// RenderPixels copies the invalidated cells and queues their rendering.
func (h *Host) RenderPixels() {
	areas := h.invalid.Drain()
	if len(areas) == 0 {
		return
	}
	screen := h.Screen()
	patches := make([]patch, 0, len(areas))
	for _, a := range areas {
		a = matrix.Intersect(screen.Area(), a)
		if a.Empty() {
			continue
		}
		patches = append(patches, patch{area: a, cells: screen.Select(a)})
	}
	if len(patches) > 0 {
		h.enqueue(op{kind: opRender, patches: patches})
	}
}

// ReplicateCells renders pending invalidations before copying so that the
// source pixels are current.
func (h *Host) ReplicateCells(dst, src matrix.Area) {
	h.RenderPixels()
	dst, src = matrix.ConstrainReplication(h.Screen().Area(), dst, src)
	if src.Empty() {
		return
	}
	h.enqueue(op{kind: opReplicate, dst: dst, src: src})
}

func (h *Host) DispatchFrame() {
	h.RenderPixels()
	h.enqueue(op{kind: opPresent})
}

// Synchronize waits until the render goroutine processed everything queued
// before the call.
func (h *Host) Synchronize() {
	done := make(chan struct{})
	if !h.enqueue(op{kind: opBarrier, done: done}) {
		return
	}
	select {
	case <-done:
	case <-h.stopped:
	}
}

func (h *Host) SynchronizeIO() {
	h.Synchronize()
	h.handoff.PostAsync(device.InstructionEvent(control.SessionSynchronize, 1))
}

func (h *Host) FrameStatus(current, last uint16) {
	h.Session.SetFrameStatus(current, last)
	h.enqueue(op{kind: opTitle, title: h.Session.Title()})
}

func (h *Host) FrameList(titles ...string) {
	h.Session.SetFrameList(titles...)
	h.enqueue(op{kind: opTitle, title: h.Session.Title()})
}

// Post delivers an input event to the application, blocking until it was
// taken.
func (h *Host) Post(ctx context.Context, ev device.Event) error {
	return h.handoff.Post(ctx, ev)
}

// Resize recalculates the matrix for a surface of width x height pixels
// and posts a resize event.
func (h *Host) Resize(width, height int) {
	h.geoMu.Lock()
	h.size = image.Pt(width, height)
	params := h.parameters(h.ins, h.size)
	h.geoMu.Unlock()
	err := h.Post(context.Background(), device.ResizeEvent(params))
	logx.IsErr(err, h, slog.LevelDebug, `width`, width, `height`, height)
}

// Reconfigure switches the font and scale. The tile cache is rebuilt once
// the application received the resulting resize event.
func (h *Host) Reconfigure(fontPath string, px, scale float64) error {
	faces, err := glyph.LoadFaces(fontPath, px)
	if err != nil {
		return err
	}
	h.closer.AddClosers(faces)
	h.geoMu.Lock()
	if scale > 0 {
		h.scale = scale
	}
	h.fontPath, h.fontPx = fontPath, faces.Pixels()
	h.faces = faces
	h.ins = h.inscription(faces)
	params := h.parameters(h.ins, h.size)
	h.geoMu.Unlock()
	logx.Info(`reconfigured font`, h, `font`, fontPath, `px`, faces.Pixels(), `scale`, scale)
	return h.Post(context.Background(), device.ResizeEvent(params))
}

// Frame returns a copy of the visible frame.
func (h *Host) Frame() *image.RGBA {
	h.frameMu.Lock()
	defer h.frameMu.Unlock()
	ret := image.NewRGBA(h.visible.Bounds())
	copy(ret.Pix, h.visible.Pix)
	return ret
}

// Frames is the number of presented frames.
func (h *Host) Frames() uint64 {
	h.frameMu.Lock()
	defer h.frameMu.Unlock()
	return h.frames
}

// CacheStats returns the tile cache counters after synchronizing.
func (h *Host) CacheStats() tilecache.Stats {
	res := make(chan tilecache.Stats, 1)
	if !h.enqueue(op{kind: opStats, stats: res}) {
		return tilecache.Stats{}
	}
	select {
	case st := <-res:
		return st
	case <-h.stopped:
		return tilecache.Stats{}
	}
}
