package sixel

import (
	"context"
	"image"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/containerd/console"

	"github.com/srlehn/cellmatrix/internal"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/present"
	"github.com/srlehn/cellmatrix/ttyin"
)

// fallback cell size when the terminal does not report pixels
var defaultCell = image.Pt(10, 20)

// Terminal is a sixel presenter on the controlling terminal in raw mode.
// Attached to a host it forwards the decoded terminal input and resizes.
type Terminal struct {
	*Encoder
	console  console.Console
	fileName string
	logger   *slog.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var (
	_ present.Presenter = (*Terminal)(nil)
	_ present.Source    = (*Terminal)(nil)
)

// Open switches the terminal device, internal.DefaultTTYDevice when empty,
// into raw mode and the alternate screen.
func Open(ttyFile string, logger *slog.Logger) (_ *Terminal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Recovered(r)
		}
	}()
	if ttyFile == `` {
		ttyFile = internal.DefaultTTYDevice()
	}
	if logger == nil {
		logger = logx.Discard()
	}
	f, err := os.OpenFile(ttyFile, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.New(err)
	}
	c, err := console.ConsoleFromFile(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.New(err)
	}
	if err := c.SetRaw(); err != nil {
		_ = c.Close()
		return nil, errors.New(err)
	}
	t := &Terminal{console: c, fileName: ttyFile, logger: logger}
	enc, err := NewEncoder(c, t.cellSize())
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	t.Encoder = enc
	if _, err := io.WriteString(c, enterScreen); err != nil {
		_ = t.Close()
		return nil, errors.New(err)
	}
	return t, nil
}

func (t *Terminal) Logger() *slog.Logger { return t.logger }

// Size is the terminal size in pixels.
func (t *Terminal) Size() image.Point {
	ws, err := t.console.Size()
	if err != nil {
		return image.Point{}
	}
	c := t.cellSize()
	return image.Pt(int(ws.Width)*c.X, int(ws.Height)*c.Y)
}

// cellSize asks the terminal for the pixel size of its character cells.
func (t *Terminal) cellSize() image.Point {
	ws, err := t.console.Size()
	if err != nil || ws.Width == 0 || ws.Height == 0 {
		return defaultCell
	}
	px, ok := pixelSize(t.console.Fd())
	if !ok || px.X < int(ws.Width) || px.Y < int(ws.Height) {
		return defaultCell
	}
	return image.Pt(px.X/int(ws.Width), px.Y/int(ws.Height))
}

// Attach starts reading terminal input and watching for resizes.
func (t *Terminal) Attach(sink present.Sink) error {
	if sink == nil {
		return errors.NilParam()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(2)
	go func() {
		defer t.wg.Done()
		err := ttyin.Run(ctx, t.console, sink, t.logger)
		logx.IsErr(err, t, slog.LevelDebug)
	}()
	go func() {
		defer t.wg.Done()
		watchResize(ctx, func() {
			t.setCell(t.cellSize())
			size := t.Size()
			logx.Debug(`terminal resized`, t, `size`, size)
			sink.Resize(size.X, size.Y)
		})
	}()
	return nil
}

// Close restores the terminal. A pending input read ends with the
// console.
func (t *Terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.cancel != nil {
			t.cancel()
		}
		t.wg.Wait()
		if t.Encoder != nil {
			err = t.Encoder.Close()
		}
		_, errLeave := io.WriteString(t.console, leaveScreen)
		err = errors.Join(err, errLeave, t.console.Reset(), t.console.Close())
	})
	return err
}
