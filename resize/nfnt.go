package resize

import (
	"image"

	"github.com/nfnt/resize"
)

// NFNT uses "github.com/nfnt/resize" with Lanczos3 interpolation.
type NFNT struct{}

var _ Resizer = (*NFNT)(nil)

func (r *NFNT) Resize(img image.Image, size image.Point) (image.Image, error) {
	return resize.Resize(uint(size.X), uint(size.Y), img, resize.Lanczos3), nil
}
