package mirror

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/matrix"
)

// Device is the application side of the pipe transport: events are read
// from in, the display stream is written to out.
//
// Nothing is rendered locally; RenderPixels transmits the invalidated cells.
// Read or write failures turn into a session close event.
type Device struct {
	*device.Session
	in      *bufio.Reader
	out     *DisplayWriter
	invalid device.Invalidations
	closed  bool

	// resource identities handed out by Integrate
	identity int32
}

var (
	_ device.Device       = (*Device)(nil)
	_ logx.LoggerProvider = (*Device)(nil)
)

// NewDevice creates a device with an empty screen. The host is expected to
// send a resize event first.
func NewDevice(in io.Reader, out io.Writer, logger *slog.Logger) *Device {
	return &Device{
		Session: device.NewSession(matrix.Parameters{}, logger),
		in:      bufio.NewReader(in),
		out:     NewDisplayWriter(out),
	}
}

// Serve runs app on a device over in and out after receiving the initial
// event, usually the screen dimensions.
func Serve(in io.Reader, out io.Writer, app device.Application, logger *slog.Logger) (err error) {
	if app == nil {
		return errors.NilParam()
	}
	d := NewDevice(in, out, logger)
	d.TransferEvent()
	if d.Status().Closed() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Recovered(r)
		}
		if ferr := d.out.Flush(); ferr != nil && !d.closed {
			err = errors.Join(err, ferr)
		}
	}()
	return app(d)
}

func (d *Device) close(err error) {
	if !d.closed {
		d.closed = true
		if !errors.Is(err, io.EOF) {
			logx.Warn(`mirror connection lost`, d, `err`, err)
		} else {
			logx.Debug(`mirror input closed`, d)
		}
	}
	d.Apply(device.CloseEvent())
}

// TransferEvent flushes the display stream and reads the next event.
func (d *Device) TransferEvent() uint16 {
	if d.closed {
		d.Apply(device.CloseEvent())
		return 1
	}
	if err := d.out.Flush(); err != nil {
		d.close(err)
		return 1
	}
	ev, err := ReadEvent(d.in)
	if err != nil {
		d.close(err)
		return 1
	}
	d.Apply(ev)
	return 1
}

// Define maps the expression locally and announces new identifiers to the
// host.
func (d *Device) Define(expression string) int32 {
	exprs := d.Expressions()
	n := exprs.Len()
	id := exprs.Define(expression)
	if exprs.Len() > n {
		logx.IsErr(d.out.Define(id, expression), d, slog.LevelDebug)
	}
	return id
}

// Integrate announces the resource; the host resolves it. The returned
// identity is only meaningful on this device.
func (d *Device) Integrate(resource string, lines, span uint16) int32 {
	if lines == 0 || span == 0 {
		return -1
	}
	d.identity++
	if logx.IsErr(d.out.Integrate(d.identity, resource, lines, span), d, slog.LevelDebug) {
		return -1
	}
	return d.identity
}

func (d *Device) InvalidateCells(area matrix.Area) {
	d.invalid.Add(d.Screen().Area(), area)
}

// RenderPixels transmits the cells of all invalidated areas.
func (d *Device) RenderPixels() {
	screen := d.Screen()
	for _, a := range d.invalid.Drain() {
		a = matrix.Intersect(screen.Area(), a)
		for _, b := range bands(a) {
			if logx.IsErr(d.out.Cells(b, screen.Select(b)), d, slog.LevelDebug) {
				return
			}
		}
	}
}

func (d *Device) ReplicateCells(dst, src matrix.Area) {
	d.RenderPixels()
	dst, src = matrix.ConstrainReplication(d.Screen().Area(), dst, src)
	if src.Empty() {
		return
	}
	logx.IsErr(d.out.Replicate(dst, src), d, slog.LevelDebug)
}

func (d *Device) DispatchFrame() {
	d.RenderPixels()
	logx.IsErr(d.out.Dispatch(), d, slog.LevelDebug)
}

// Synchronize hands everything written so far to the host.
func (d *Device) Synchronize() {
	logx.IsErr(d.out.Flush(), d, slog.LevelDebug)
}

// SynchronizeIO asks the host for a session/synchronize event.
func (d *Device) SynchronizeIO() {
	if logx.IsErr(d.out.Synchronize(), d, slog.LevelDebug) {
		return
	}
	d.Synchronize()
}

func (d *Device) FrameStatus(current, last uint16) {
	d.SetFrameStatus(current, last)
	logx.IsErr(d.out.FrameStatus(current, last), d, slog.LevelDebug)
}

func (d *Device) FrameList(titles ...string) {
	d.SetFrameList(titles...)
	logx.IsErr(d.out.FrameList(titles...), d, slog.LevelDebug)
}
