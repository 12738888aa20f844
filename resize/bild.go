package resize

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// Bild uses "github.com/anthonynsimon/bild/transform".
type Bild struct{}

var _ Resizer = (*Bild)(nil)

func (r *Bild) Resize(img image.Image, size image.Point) (image.Image, error) {
	return transform.Resize(img, size.X, size.Y, transform.Lanczos), nil
}
