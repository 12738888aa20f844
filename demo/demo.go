// Package demo is a small terminal application echoing its input events.
// It runs unchanged on every host.
package demo

import (
	"log/slog"
	"strconv"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/matrix"
)

const (
	title     = `cellmatrix demo`
	sample    = "wide \u4e2d\u6587 combined e\u0301 flag \U0001F1E9\U0001F1EA"
	logTop    = 3
	maxLogLen = 512
)

var (
	headerGlyph = matrix.NewGlyph().Update(
		matrix.WithFill(matrix.RGB(0x1F, 0x3A, 0x5F)),
		matrix.WithStroke(matrix.RGB(0xFF, 0xFF, 0xFF)),
		matrix.WithBold(true),
	)
	sampleGlyph = matrix.NewGlyph().Update(
		matrix.WithStroke(matrix.RGB(0xE0, 0xC0, 0x60)),
		matrix.WithItalic(true),
	)
	logGlyph = matrix.NewGlyph().Update(
		matrix.WithStroke(matrix.RGB(0xC8, 0xC8, 0xC8)),
	)
)

// App echoes every event on its own line below a header.
type App struct {
	logger *slog.Logger
	image  string
	tile   matrix.ImageTile
	log    []string
}

// Option configures an App.
type Option func(*App)

// WithLogger logs the received events.
func WithLogger(l *slog.Logger) Option { return func(a *App) { a.logger = l } }

// WithImage shows the image resource at path in the header.
func WithImage(path string) Option { return func(a *App) { a.image = path } }

func New(opts ...Option) *App {
	a := &App{logger: logx.Discard(), tile: matrix.ImageTile{Identity: -1}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Logger() *slog.Logger { return a.logger }

// Run is a device.Application. It returns when the session closes or quits
// or when Escape is pressed.
func (a *App) Run(d device.Device) error {
	d.FrameList(title)
	d.FrameStatus(0, 0)
	if a.image != `` {
		a.tile.Identity = d.Integrate(a.image, 2, 4)
		if a.tile.Identity < 0 {
			logx.Warn(`image not available`, a, `path`, a.image)
		}
	}
	a.redraw(d)
	for {
		d.TransferEvent()
		st := *d.Status()
		switch {
		case st.Closed(), st.Is(control.SessionQuit):
			return nil
		case st.Dispatch == int32(control.KeyEscape):
			return nil
		case st.Is(control.ScreenResize):
			a.redraw(d)
			continue
		}
		line := control.Describe(st, ``)
		if st.TextLength > 0 {
			line += ` ` + strconv.Quote(string(d.TransferText()))
		}
		logx.Debug(`event`, a, `event`, line)
		a.append(d, line)
	}
}

func (a *App) append(d device.Device, line string) {
	a.log = append(a.log, line)
	if len(a.log) > maxLogLen {
		a.log = a.log[len(a.log)-maxLogLen:]
	}
	bounds := d.Screen().Area()
	if bounds.Lines <= logTop {
		return
	}
	visible := int(bounds.Lines) - logTop
	y := logTop + uint16(len(a.log)-1)
	if len(a.log) > visible {
		// scroll the log up by one line
		src := matrix.NewArea(logTop+1, 0, uint16(visible-1), bounds.Span)
		dst := matrix.NewArea(logTop, 0, uint16(visible-1), bounds.Span)
		d.Screen().ReplicateCells(dst, src)
		d.ReplicateCells(dst, src)
		y = bounds.Lines - 1
	}
	a.logLine(d, y, line)
	d.DispatchFrame()
}

func (a *App) logLine(d device.Device, y uint16, line string) {
	span := d.Screen().Area().Span
	row := matrix.NewArea(y, 0, 1, span)
	d.Screen().Fill(row, logGlyph.Cell())
	Print(d, y, 0, span, line, logGlyph)
	d.InvalidateCells(row)
}

func (a *App) redraw(d device.Device) {
	scr := d.Screen()
	bounds := scr.Area()
	scr.Fill(bounds, matrix.Blank)

	header := matrix.NewArea(0, 0, 1, bounds.Span)
	scr.Fill(header, headerGlyph.Cell())
	Print(d, 0, 1, bounds.Span-min(bounds.Span, 1), title+`  (Escape quits)`, headerGlyph)
	n := Print(d, 1, 1, bounds.Span-min(bounds.Span, 1), sample, sampleGlyph)

	if a.tile.Identity >= 0 {
		left := n + 2
		for ty := uint16(0); ty < 2; ty++ {
			for tx := uint16(0); tx < 4; tx++ {
				scr.Set(1+ty, left+tx, a.tile.Switch(ty, tx).Cell())
			}
		}
	}

	if bounds.Lines > logTop {
		visible := int(bounds.Lines) - logTop
		lines := a.log[max(0, len(a.log)-visible):]
		for i, line := range lines {
			Print(d, logTop+uint16(i), 0, bounds.Span, line, logGlyph)
		}
	}
	d.InvalidateCells(bounds)
	d.DispatchFrame()
}
