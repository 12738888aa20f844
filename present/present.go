// Package present defines how a pixel host hands finished frames to an
// output surface and how surfaces feed input back.
package present

import (
	"image"

	"github.com/srlehn/cellmatrix/device"
)

// Presenter shows frames. Present is called from a single goroutine with
// the complete visible frame and the rectangle changed since the last call.
// The frame must not be retained after Present returns.
type Presenter interface {
	Present(frame *image.RGBA, dirty image.Rectangle) error
	Close() error
}

// Titler is implemented by presenters that can show a title.
type Titler interface {
	SetTitle(title string)
}

// Sink receives input produced by a surface.
type Sink interface {
	device.Poster
	// Resize reports the new surface size in pixels.
	Resize(width, height int)
}

// Source is implemented by presenters that produce input. Attach is called
// once before the first frame.
type Source interface {
	Attach(sink Sink) error
}

// Discard drops all frames.
type Discard struct{}

var _ Presenter = Discard{}

func (Discard) Present(*image.RGBA, image.Rectangle) error { return nil }
func (Discard) Close() error                                { return nil }
