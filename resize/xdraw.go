package resize

import (
	"image"

	"golang.org/x/image/draw"
)

// scaler uses "golang.org/x/image/draw".
type scaler struct {
	s draw.Scaler
}

var _ Resizer = (*scaler)(nil)

// ApproxBiLinear balances speed and quality.
func ApproxBiLinear() Resizer { return &scaler{s: draw.ApproxBiLinear} }

func BiLinear() Resizer { return &scaler{s: draw.BiLinear} }

// CatmullRom is the slowest and sharpest x/image/draw kernel.
func CatmullRom() Resizer { return &scaler{s: draw.CatmullRom} }

func (r *scaler) Resize(img image.Image, size image.Point) (image.Image, error) {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	r.s.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst, nil
}
