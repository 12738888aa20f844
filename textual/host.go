// Package textual is a host showing the cell matrix of an application on a
// character terminal through tcell.
//
// Glyph cells map to tcell content and styles. Image tiles are drawn as
// upper half blocks, each cell showing two pixels of the fitted image.
// Device calls are applied synchronously on the application goroutine;
// tcell events are translated on a polling goroutine.
package textual

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/glyph"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/matrix"
	"github.com/srlehn/cellmatrix/resize"
)

// Cells are measured in units of one half block: a character cell is one
// unit wide and two units high.
var inscription = matrix.Inscription{StrokeWidth: 1, CellWidth: 1, CellHeight: 2}

type Host struct {
	*device.Session
	screen  tcell.Screen
	handoff *device.Handoff
	logger  *slog.Logger
	resizer resize.Resizer
	mouse   bool

	invalid   device.Invalidations
	resources *glyph.Resources

	ctx       context.Context
	cancel    context.CancelFunc
	polled    chan struct{}
	closeOnce sync.Once
}

var (
	_ device.Device       = (*Host)(nil)
	_ device.Poster       = (*Host)(nil)
	_ logx.LoggerProvider = (*Host)(nil)
)

// New initializes the tcell screen and starts translating its events.
func New(opts ...Option) (*Host, error) {
	h := &Host{
		handoff: device.NewHandoff(),
		mouse:   true,
		polled:  make(chan struct{}),
	}
	if err := h.setOptions(opts...); err != nil {
		return nil, err
	}
	if h.logger == nil {
		h.logger = logx.Discard()
	}
	if h.resizer == nil {
		h.resizer = resize.Default()
	}
	if h.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, errors.New(err)
		}
		h.screen = s
	}
	if err := h.screen.Init(); err != nil {
		return nil, errors.New(err)
	}
	h.screen.EnablePaste()
	if h.mouse {
		h.screen.EnableMouse(tcell.MouseButtonEvents)
	}
	h.screen.HideCursor()

	cols, rows := h.screen.Size()
	params := parameters(cols, rows)
	h.Session = device.NewSession(params, h.logger)
	h.logger = h.Session.Logger()
	h.resources = glyph.NewResources(params.CellPixels(), h.resizer)
	h.ctx, h.cancel = context.WithCancel(context.Background())

	go h.poll(cols, rows)
	logx.Info(`text host started`, h, `lines`, rows, `span`, cols)
	return h, nil
}

func parameters(cols, rows int) matrix.Parameters {
	return matrix.NewParameters(inscription, 1, float64(cols)*inscription.CellWidth, float64(rows)*inscription.CellHeight)
}

func (h *Host) Logger() *slog.Logger { return h.logger }

// Run drives app on the calling goroutine and closes the host when app
// returns.
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

// Close restores the terminal and delivers session close events.
func (h *Host) Close() error {
	if h == nil {
		return nil
	}
	h.closeOnce.Do(func() {
		h.cancel()
		h.handoff.Close()
		h.screen.Fini()
		<-h.polled
		logx.Info(`text host closed`, h)
	})
	return nil
}

// Post delivers an event to the application, blocking until it was taken.
func (h *Host) Post(ctx context.Context, ev device.Event) error {
	return h.handoff.Post(ctx, ev)
}

func (h *Host) TransferEvent() uint16 {
	ev := h.handoff.Take()
	h.Session.Apply(ev)
	if ev.Status.Is(control.ScreenResize) {
		h.invalid.Drain()
	}
	return 1
}

func (h *Host) Integrate(resource string, lines, span uint16) int32 {
	id, err := h.resources.Integrate(resource, lines, span)
	if logx.IsErr(err, h, slog.LevelWarn, `resource`, resource) {
		return -1
	}
	return id
}

func (h *Host) InvalidateCells(area matrix.Area) {
	h.invalid.Add(h.Screen().Area(), area)
}

func (h *Host) RenderPixels() {
	screen := h.Screen()
	for _, a := range h.invalid.Drain() {
		a = matrix.Intersect(screen.Area(), a)
		a.Each(func(y, x uint16) bool {
			h.setCell(int(x), int(y), screen.Cell(y, x))
			return true
		})
	}
}

type content struct {
	mainc rune
	combc []rune
	style tcell.Style
}

// ReplicateCells copies the tcell contents of src to dst after rendering
// the pending invalidations.
func (h *Host) ReplicateCells(dst, src matrix.Area) {
	h.RenderPixels()
	dst, src = matrix.ConstrainReplication(h.Screen().Area(), dst, src)
	if src.Empty() {
		return
	}
	buf := make([]content, 0, src.Volume())
	src.Each(func(y, x uint16) bool {
		mainc, combc, style, _ := h.screen.GetContent(int(x), int(y))
		buf = append(buf, content{mainc: mainc, combc: combc, style: style})
		return true
	})
	i := 0
	dst.Each(func(y, x uint16) bool {
		c := buf[i]
		h.screen.SetContent(int(x), int(y), c.mainc, c.combc, c.style)
		i++
		return true
	})
}

func (h *Host) DispatchFrame() {
	h.RenderPixels()
	h.screen.Show()
}

// Synchronize returns right away: all operations were already applied.
func (h *Host) Synchronize() {}

func (h *Host) SynchronizeIO() {
	h.handoff.PostAsync(device.InstructionEvent(control.SessionSynchronize, 1))
}

type titler interface{ SetTitle(title string) }

func (h *Host) FrameStatus(current, last uint16) {
	h.Session.SetFrameStatus(current, last)
	h.setTitle()
}

func (h *Host) FrameList(titles ...string) {
	h.Session.SetFrameList(titles...)
	h.setTitle()
}

func (h *Host) setTitle() {
	if t, ok := h.screen.(titler); ok {
		t.SetTitle(h.Session.Title())
	}
}

// Size is the terminal size in character cells.
func (h *Host) Size() image.Point {
	cols, rows := h.screen.Size()
	return image.Pt(cols, rows)
}
