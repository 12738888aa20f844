// Package resize scales integrated images to cell grids.
package resize

import (
	"image"
	"image/draw"
	"runtime"
	"slices"
	"strings"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
)

// Resizer scales img to exactly size pixels.
type Resizer interface {
	Resize(img image.Image, size image.Point) (image.Image, error)
}

// ResizerFunc adapts a function to Resizer.
type ResizerFunc func(img image.Image, size image.Point) (image.Image, error)

func (f ResizerFunc) Resize(img image.Image, size image.Point) (image.Image, error) {
	return f(img, size)
}

var resizers = map[string]func() Resizer{
	`default`:    func() Resizer { return Default() },
	`imaging`:    func() Resizer { return &Imaging{} },
	`nfnt`:       func() Resizer { return &NFNT{} },
	`gift`:       func() Resizer { return &GIFT{} },
	`bild`:       func() Resizer { return &Bild{} },
	`rez`:        func() Resizer { return &Rez{} },
	`bilinear`:   func() Resizer { return BiLinear() },
	`approx`:     func() Resizer { return ApproxBiLinear() },
	`catmullrom`: func() Resizer { return CatmullRom() },
}

// ByName returns the resizer registered under name, case insensitive.
// The empty name selects Default.
func ByName(name string) (Resizer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == `` {
		return Default(), nil
	}
	mk, ok := resizers[name]
	if !ok {
		return nil, errors.Errorf(`unknown resizer %q`, name)
	}
	return mk(), nil
}

// Names lists the registered resizer names.
func Names() []string {
	ret := make([]string, 0, len(resizers))
	for n := range resizers {
		ret = append(ret, n)
	}
	slices.Sort(ret)
	return ret
}

type defaultResizer struct{}

// Default uses rez on amd64 for the image types it converts natively and
// x/image/draw otherwise.
func Default() Resizer { return defaultResizer{} }

func (defaultResizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if img == nil {
		return nil, errors.New(consts.ErrNilImage)
	}
	if runtime.GOARCH == `amd64` {
		switch img.(type) {
		case *image.YCbCr, *image.RGBA, *image.NRGBA, *image.Gray:
			if m, err := (&Rez{}).Resize(img, size); err == nil {
				return m, nil
			}
		}
	}
	return ApproxBiLinear().Resize(img, size)
}

// Fit scales img into a grid of cells keeping the aspect ratio. The result
// covers exactly grid*cell pixels with the scaled image centered on a
// transparent background.
func Fit(img image.Image, grid, cell image.Point, r Resizer) (*image.RGBA, error) {
	if img == nil {
		return nil, errors.New(consts.ErrNilImage)
	}
	if grid.X <= 0 || grid.Y <= 0 || cell.X <= 0 || cell.Y <= 0 {
		return nil, errors.WrapPrefix(consts.ErrCellSize, `fit `+grid.String()+` `+cell.String(), 0)
	}
	if r == nil {
		r = Default()
	}
	target := image.Pt(grid.X*cell.X, grid.Y*cell.Y)
	size := scaledSize(img.Bounds().Size(), target)
	dst := image.NewRGBA(image.Rectangle{Max: target})
	if size.X == 0 || size.Y == 0 {
		return dst, nil
	}
	scaled := img
	if size != img.Bounds().Size() {
		var err error
		scaled, err = r.Resize(img, size)
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}
	}
	offset := target.Sub(size).Div(2)
	draw.Draw(dst, image.Rectangle{Min: offset, Max: offset.Add(size)}, scaled, scaled.Bounds().Min, draw.Over)
	return dst, nil
}

// scaledSize fits src into target preserving the aspect ratio.
func scaledSize(src, target image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 {
		return image.Point{}
	}
	// compare target.X/src.X with target.Y/src.Y without floats
	if target.X*src.Y <= target.Y*src.X {
		return image.Pt(target.X, max(1, src.Y*target.X/src.X))
	}
	return image.Pt(max(1, src.X*target.Y/src.Y), target.Y)
}
