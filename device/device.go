// Package device defines the contract between a terminal application and
// the host that renders its cell matrix and produces its input events.
package device

import (
	"context"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/matrix"
)

// Device is bound to one session of one host.
//
// TransferEvent is the only call that suspends the application. All other
// calls may be queued by the host; Synchronize and SynchronizeIO return only
// after everything queued before them has been rendered.
//
// Failures are never returned as errors: a failing host delivers a
// session close event (control.Status.Closed) through TransferEvent, after
// which the application stops using the device.
type Device interface {
	// Screen is the cell image of the application. It is replaced on
	// resize events.
	Screen() *matrix.Screen
	// Dimensions are the current matrix parameters.
	Dimensions() *matrix.Parameters
	// Status is the current event.
	Status() *control.Status

	// TransferEvent waits for the next event and stores it in Status.
	// It returns 1.
	TransferEvent() uint16
	// TransferText returns the text inserted by the current event,
	// zero length when Status().TextLength is zero.
	TransferText() []byte
	// Define maps an expression to a codepoint: itself for a single
	// codepoint, otherwise a stable negative identifier.
	Define(expression string) int32
	// Integrate loads an image resource to be shown in lines x span
	// image tiles. It returns the identity for matrix.ImageTile cells or
	// -1 when the resource cannot be used.
	Integrate(resource string, lines, span uint16) int32

	// InvalidateCells marks an area for the next RenderPixels.
	InvalidateCells(area matrix.Area)
	// ReplicateCells copies the pixels of src to dst after rendering the
	// pending invalidations.
	ReplicateCells(dst, src matrix.Area)
	// RenderPixels renders all invalidated areas.
	RenderPixels()
	// DispatchFrame renders and presents the frame.
	DispatchFrame()
	// Synchronize waits for all queued operations.
	Synchronize()
	// SynchronizeIO is Synchronize followed by a session/synchronize event
	// once the host has caught up with its own input.
	SynchronizeIO()

	// FrameStatus reports the selected frame and the last frame index.
	FrameStatus(current, last uint16)
	// FrameList reports the frame titles.
	FrameList(titles ...string)
}

// Poster is implemented by hosts accepting events from other goroutines.
// Post returns once the application took the event.
type Poster interface {
	Post(ctx context.Context, ev Event) error
}

// Application is a terminal application driving a device until the
// session closes.
type Application func(d Device) error

// Event is an input event with its inserted text.
type Event struct {
	Status control.Status
	Text   []byte
}

// CloseEvent is the synthetic session close.
func CloseEvent() Event { return Event{Status: control.SessionCloseStatus()} }

// ResizeEvent carries new matrix parameters.
func ResizeEvent(p matrix.Parameters) Event {
	b, _ := p.AppendBinary(make([]byte, 0, matrix.ParametersSize))
	return Event{
		Status: control.Status{
			Dispatch:   control.InstructionKey(control.ScreenResize),
			Quantity:   1,
			TextLength: uint32(len(b)),
		},
		Text: b,
	}
}

// InstructionEvent dispatches an application instruction.
func InstructionEvent(i control.Instruction, quantity int32) Event {
	return Event{Status: control.Status{Dispatch: control.InstructionKey(i), Quantity: quantity}}
}

// KeyEvent dispatches a key with its text.
func KeyEvent(dispatch int32, mods control.Modifiers, text string) Event {
	return Event{
		Status: control.Status{Dispatch: dispatch, Quantity: 1, Keys: mods, TextLength: uint32(len(text))},
		Text:   []byte(text),
	}
}
