// Package sixel presents frames on a terminal supporting sixel graphics
// and reads the terminal input for the host.
package sixel

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"sync"

	gosixel "github.com/mattn/go-sixel"

	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/present"
)

const (
	// keep the cursor right of the image to avoid scrolling
	sixelCursorRight = "\033[?8452h"
	enterScreen      = "\033[?1049h\033[?25l\033[?2004h\033[2J"
	leaveScreen      = "\033[?2004l\033[?25h\033[?1049l"
)

// Encoder writes dirty rectangles as sixel images positioned on terminal
// character cells. Rectangles are widened to whole terminal cells.
type Encoder struct {
	mu     sync.Mutex
	w      *bufio.Writer
	cell   image.Point
	dither bool
	title  string
}

var (
	_ present.Presenter = (*Encoder)(nil)
	_ present.Titler    = (*Encoder)(nil)
)

// NewEncoder writes to w for a terminal with cells of the given pixel size.
func NewEncoder(w io.Writer, cell image.Point) (*Encoder, error) {
	if w == nil {
		return nil, errors.NilParam()
	}
	if cell.X <= 0 || cell.Y <= 0 {
		return nil, errors.Errorf(`invalid terminal cell size %v`, cell)
	}
	return &Encoder{w: bufio.NewWriter(w), cell: cell}, nil
}

// SetDither enables dithering of the reduced palette.
func (e *Encoder) SetDither(dither bool) {
	e.mu.Lock()
	e.dither = dither
	e.mu.Unlock()
}

func (e *Encoder) setCell(cell image.Point) {
	e.mu.Lock()
	e.cell = cell
	e.mu.Unlock()
}

// align widens r to terminal cell boundaries within bounds and returns the
// top-left cell.
func (e *Encoder) align(r, bounds image.Rectangle) (image.Rectangle, image.Point) {
	c := e.cell
	cellMin := image.Pt(r.Min.X/c.X, r.Min.Y/c.Y)
	aligned := image.Rectangle{
		Min: image.Pt(cellMin.X*c.X, cellMin.Y*c.Y),
		Max: image.Pt((r.Max.X+c.X-1)/c.X*c.X, (r.Max.Y+c.Y-1)/c.Y*c.Y),
	}
	return aligned.Intersect(bounds), cellMin
}

func (e *Encoder) Present(frame *image.RGBA, dirty image.Rectangle) error {
	if e == nil {
		return errors.NilReceiver()
	}
	if frame == nil {
		return errors.NilParam()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	r, cell := e.align(dirty.Intersect(frame.Bounds()), frame.Bounds())
	if r.Empty() {
		return nil
	}
	fmt.Fprintf(e.w, "\033[%d;%dH%s", cell.Y+1, cell.X+1, sixelCursorRight)
	enc := gosixel.NewEncoder(e.w)
	enc.Dither = e.dither
	if err := enc.Encode(crop(frame, r)); err != nil {
		return errors.New(err)
	}
	if err := e.w.Flush(); err != nil {
		return errors.New(err)
	}
	return nil
}

// crop copies r to an image at the origin.
func crop(frame *image.RGBA, r image.Rectangle) *image.RGBA {
	ret := image.NewRGBA(image.Rectangle{Max: r.Size()})
	for y := 0; y < r.Dy(); y++ {
		i := frame.PixOffset(r.Min.X, r.Min.Y+y)
		copy(ret.Pix[y*ret.Stride:(y+1)*ret.Stride], frame.Pix[i:i+4*r.Dx()])
	}
	return ret
}

// SetTitle sets the window title with OSC 2.
func (e *Encoder) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if title == e.title {
		return
	}
	e.title = title
	fmt.Fprintf(e.w, "\033]2;%s\033\\", title)
	_ = e.w.Flush()
}

func (e *Encoder) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.w.Flush(); err != nil {
		return errors.New(err)
	}
	return nil
}
