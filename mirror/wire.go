// Package mirror implements the pipe transport of the device protocol.
//
// The application side reads input events and writes a display stream, the
// host side does the opposite. Both streams are little-endian fixed layouts:
//
//	event   = status (control.StatusSize) | text length (u16) | text
//	display = area header (matrix.AreaSize) | cells (matrix.CellSize each)
//
// A display header with an empty area introduces a signal; the header that
// follows selects it. An all zero signal header dispatches the frame.
package mirror

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
)

// Signal values carried in the Span of the header following an empty one.
const (
	SignalDispatch    uint16 = 0
	SignalSynchronize uint16 = 0xFFFE
	SignalReplicate   uint16 = 0xFFFD
	SignalFrameStatus uint16 = 0xFFFC
	SignalFrameList   uint16 = 0xFFFB
	SignalDefine      uint16 = 0xFFFA
	SignalIntegrate   uint16 = 0xFFF9
)

const (
	// MaxText is the longest text carried by a single event or signal.
	MaxText = math.MaxUint16
	// MaxCells is the largest area volume of a single cells message. Larger
	// areas are sent in bands of whole lines.
	MaxCells = math.MaxUint16
)

var le = binary.LittleEndian

// WriteEvent writes ev in the event framing.
func WriteEvent(w io.Writer, ev device.Event) error {
	if w == nil {
		return errors.NilParam()
	}
	if len(ev.Text) > MaxText {
		return errors.WrapPrefix(consts.ErrProtocol, `event text too long`, 0)
	}
	st := ev.Status
	st.TextLength = uint32(len(ev.Text))
	b := make([]byte, 0, control.StatusSize+2+len(ev.Text))
	b, _ = st.AppendBinary(b)
	b = le.AppendUint16(b, uint16(len(ev.Text)))
	b = append(b, ev.Text...)
	if _, err := w.Write(b); err != nil {
		return errors.New(err)
	}
	return nil
}

// ReadEvent reads one event. A stream ending between events yields io.EOF,
// one ending inside an event io.ErrUnexpectedEOF.
func ReadEvent(r io.Reader) (device.Event, error) {
	if r == nil {
		return device.Event{}, errors.NilParam()
	}
	var hdr [control.StatusSize + 2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return device.Event{}, errors.New(err)
	}
	st, err := control.DecodeStatus(hdr[:control.StatusSize])
	if err != nil {
		return device.Event{}, err
	}
	n := le.Uint16(hdr[control.StatusSize:])
	st.TextLength = uint32(n)
	ev := device.Event{Status: st}
	if n == 0 {
		return ev, nil
	}
	ev.Text = make([]byte, n)
	if _, err := io.ReadFull(r, ev.Text); err != nil {
		return device.Event{}, errors.New(unexpected(err))
	}
	return ev, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// DisplayWriter encodes a display stream. The first write error is kept and
// returned by all following calls.
type DisplayWriter struct {
	w   *bufio.Writer
	buf []byte
	err error
}

func NewDisplayWriter(w io.Writer) *DisplayWriter {
	return &DisplayWriter{w: bufio.NewWriter(w)}
}

func (dw *DisplayWriter) write(b []byte) error {
	if dw.err != nil {
		return dw.err
	}
	if _, err := dw.w.Write(b); err != nil {
		dw.err = errors.New(err)
	}
	return dw.err
}

func (dw *DisplayWriter) header(areas ...matrix.Area) error {
	dw.buf = dw.buf[:0]
	for _, a := range areas {
		dw.buf, _ = a.AppendBinary(dw.buf)
	}
	return dw.write(dw.buf)
}

func (dw *DisplayWriter) signal(sig matrix.Area, payload ...[]byte) error {
	dw.buf = dw.buf[:0]
	dw.buf, _ = matrix.Area{}.AppendBinary(dw.buf)
	dw.buf, _ = sig.AppendBinary(dw.buf)
	for _, p := range payload {
		dw.buf = append(dw.buf, p...)
	}
	return dw.write(dw.buf)
}

func appendText(b []byte, s string) ([]byte, error) {
	if len(s) > MaxText {
		return b, errors.WrapPrefix(consts.ErrProtocol, `signal text too long`, 0)
	}
	b = le.AppendUint16(b, uint16(len(s)))
	return append(b, s...), nil
}

// Cells writes the cells of a non-empty area in row-major order.
func (dw *DisplayWriter) Cells(area matrix.Area, cells []matrix.Cell) error {
	if area.Empty() {
		return nil
	}
	if len(cells) != area.Volume() {
		return errors.WrapPrefix(consts.ErrLayoutSize, area.String(), 0)
	}
	if area.Volume() > MaxCells {
		return errors.WrapPrefix(consts.ErrProtocol, `cells message too large `+area.String(), 0)
	}
	if err := dw.header(area); err != nil {
		return err
	}
	dw.buf = matrix.AppendCells(dw.buf[:0], cells)
	return dw.write(dw.buf)
}

// bands splits a into areas of whole lines holding at most MaxCells cells.
func bands(a matrix.Area) []matrix.Area {
	if a.Empty() {
		return nil
	}
	step := max(MaxCells/int(a.Span), 1)
	out := make([]matrix.Area, 0, (int(a.Lines)+step-1)/step)
	for top := 0; top < int(a.Lines); top += step {
		b := a
		b.TopOffset = a.TopOffset + uint16(top)
		b.Lines = uint16(min(step, int(a.Lines)-top))
		out = append(out, b)
	}
	return out
}

func (dw *DisplayWriter) Dispatch() error {
	return dw.signal(matrix.Area{Span: SignalDispatch})
}

func (dw *DisplayWriter) Synchronize() error {
	return dw.signal(matrix.Area{Span: SignalSynchronize})
}

func (dw *DisplayWriter) Replicate(dst, src matrix.Area) error {
	var b []byte
	b, _ = dst.AppendBinary(b)
	b, _ = src.AppendBinary(b)
	return dw.signal(matrix.Area{Span: SignalReplicate}, b)
}

func (dw *DisplayWriter) FrameStatus(current, last uint16) error {
	return dw.signal(matrix.Area{TopOffset: current, LeftOffset: last, Span: SignalFrameStatus})
}

func (dw *DisplayWriter) FrameList(titles ...string) error {
	if len(titles) > MaxText {
		return errors.WrapPrefix(consts.ErrProtocol, `too many frames`, 0)
	}
	var b []byte
	for _, t := range titles {
		var err error
		if b, err = appendText(b, t); err != nil {
			return err
		}
	}
	return dw.signal(matrix.Area{Lines: uint16(len(titles)), Span: SignalFrameList}, b)
}

// Define announces the text of an expression identifier.
func (dw *DisplayWriter) Define(id int32, expression string) error {
	b := le.AppendUint32(nil, uint32(id))
	b, err := appendText(b, expression)
	if err != nil {
		return err
	}
	return dw.signal(matrix.Area{Span: SignalDefine}, b)
}

// Integrate announces a resource used by image tiles of identity id.
func (dw *DisplayWriter) Integrate(id int32, resource string, lines, span uint16) error {
	b := le.AppendUint32(nil, uint32(id))
	b = le.AppendUint16(b, lines)
	b = le.AppendUint16(b, span)
	b, err := appendText(b, resource)
	if err != nil {
		return err
	}
	return dw.signal(matrix.Area{Span: SignalIntegrate}, b)
}

func (dw *DisplayWriter) Flush() error {
	if dw.err != nil {
		return dw.err
	}
	if err := dw.w.Flush(); err != nil {
		dw.err = errors.New(err)
	}
	return dw.err
}

// Err is the first write error.
func (dw *DisplayWriter) Err() error { return dw.err }
