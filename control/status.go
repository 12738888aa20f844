// Package control describes the input side of a cell matrix device: the
// event record handed from a host to a terminal application and the key
// codes it carries.
package control

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
)

// StatusSize is the size of the fixed little-endian Status layout.
const StatusSize = 24

// Status is the single input event record of a device. It is overwritten in
// place by every event.
type Status struct {
	// Dispatch is a key codepoint when non-negative, otherwise a function
	// key, screen cursor key or instruction key.
	Dispatch int32
	// Quantity is the number of occurrences or the magnitude of the event.
	Quantity int32
	// Keys is the tracked modifier state.
	Keys Modifiers
	// TextLength is the byte length of the inserted text; zero guarantees
	// empty text.
	TextLength uint32
	// Top and Left are the screen cursor position in pixels relative to
	// the outer edge of the top-left cell.
	Top  int32
	Left int32
}

// SessionCloseStatus is the event synthesized when a session ends or its
// transport fails.
func SessionCloseStatus() Status {
	return Status{Dispatch: InstructionKey(SessionClose), Quantity: 1}
}

// Instruction returns the instruction when the dispatch is an instruction
// key.
func (s Status) Instruction() (Instruction, bool) {
	i := InstructionKeyNumber(s.Dispatch)
	return i, s.Dispatch < 0 && i.Valid()
}

// Is reports whether the event dispatches instruction i.
func (s Status) Is(i Instruction) bool {
	got, ok := s.Instruction()
	return ok && got == i
}

// Closed reports whether the event is a session close.
func (s Status) Closed() bool { return s.Is(SessionClose) }

// CursorCell converts the cursor pixel position to a cell position.
func (s Status) CursorCell(p matrix.Parameters) (line, cell uint16) {
	yu := p.YCellUnits * p.ScaleFactor
	xu := p.XCellUnits * p.ScaleFactor
	if yu > 0 {
		line = uint16(matrix.Clamp(float64(s.Top)/yu, 0, math.MaxUint16))
	}
	if xu > 0 {
		cell = uint16(matrix.Clamp(float64(s.Left)/xu, 0, math.MaxUint16))
	}
	return line, cell
}

// TranslateCursor makes the cursor position relative to area.
func (s *Status) TranslateCursor(area matrix.Area, p matrix.Parameters) {
	if s == nil {
		return
	}
	s.Top -= int32(float64(area.TopOffset) * p.YCellUnits * p.ScaleFactor)
	s.Left -= int32(float64(area.LeftOffset) * p.XCellUnits * p.ScaleFactor)
}

// Snapshot returns the layout of the status with Dispatch replaced.
func (s Status) Snapshot(dispatch int32) []byte {
	s.Dispatch = dispatch
	b, _ := s.AppendBinary(make([]byte, 0, StatusSize))
	return b
}

// Integrate overwrites the status with a snapshot.
func (s *Status) Integrate(snapshot []byte) error {
	if s == nil {
		return errors.NilReceiver()
	}
	if len(snapshot) < StatusSize {
		return errors.WrapPrefix(consts.ErrLayoutSize, `snapshot too small`, 0)
	}
	st, err := DecodeStatus(snapshot[:StatusSize])
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// AppendBinary appends the StatusSize byte layout.
func (s Status) AppendBinary(b []byte) ([]byte, error) {
	le := binary.LittleEndian
	b = le.AppendUint32(b, uint32(s.Dispatch))
	b = le.AppendUint32(b, uint32(s.Quantity))
	b = le.AppendUint32(b, uint32(s.Keys))
	b = le.AppendUint32(b, s.TextLength)
	b = le.AppendUint32(b, uint32(s.Top))
	b = le.AppendUint32(b, uint32(s.Left))
	return b, nil
}

// DecodeStatus reads a status from exactly StatusSize bytes.
func DecodeStatus(b []byte) (Status, error) {
	if len(b) != StatusSize {
		return Status{}, errors.WrapPrefix(consts.ErrLayoutSize, `controller status`, 0)
	}
	le := binary.LittleEndian
	return Status{
		Dispatch:   int32(le.Uint32(b[0:])),
		Quantity:   int32(le.Uint32(b[4:])),
		Keys:       Modifiers(le.Uint32(b[8:])),
		TextLength: le.Uint32(b[12:]),
		Top:        int32(le.Uint32(b[16:])),
		Left:       int32(le.Uint32(b[20:])),
	}, nil
}

// Describe renders the event key with its modifiers and ext appended to the
// modifier field:
//
//	[c][mods]           key codepoint
//	(class/op)[mods]    instruction
//	[F1][mods]          function key
//	[M1][mods]          screen cursor button
//	[-17][mods]         anything else
func Describe(s Status, ext string) string {
	mods := s.Keys.String() + ext
	if s.Dispatch >= 0 {
		return fmt.Sprintf("[%c][%s]", rune(s.Dispatch), mods)
	}
	if i, ok := s.Instruction(); ok {
		return fmt.Sprintf("(%s)[%s]", i, mods)
	}
	switch s.Dispatch {
	case -3:
		return `(screen/resize)[-]`
	case -2:
		return fmt.Sprintf("(session/synchronize)[%s]", mods)
	}
	if fn := FunctionKeyNumber(s.Dispatch); fn > 0 && fn <= rangeSize {
		return fmt.Sprintf("[F%d][%s]", fn, mods)
	}
	if mb := CursorKeyNumber(s.Dispatch); mb > 0 && mb <= rangeSize {
		return fmt.Sprintf("[M%d][%s]", mb, mods)
	}
	return fmt.Sprintf("[%d][%s]", s.Dispatch, mods)
}

func (s Status) String() string { return Describe(s, ``) }
