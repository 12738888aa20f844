package resize

import (
	"image"

	"github.com/disintegration/imaging"
)

// Imaging uses "github.com/disintegration/imaging" with Lanczos resampling.
type Imaging struct{}

var _ Resizer = (*Imaging)(nil)

func (r *Imaging) Resize(img image.Image, size image.Point) (image.Image, error) {
	return imaging.Resize(img, size.X, size.Y, imaging.Lanczos), nil
}
