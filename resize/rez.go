package resize

import (
	"image"

	"github.com/bamiaux/rez"

	"github.com/srlehn/cellmatrix/internal/errors"
)

// Rez uses "github.com/bamiaux/rez". Source and destination share the
// image type, so only the types rez supports natively succeed.
type Rez struct{}

var _ Resizer = (*Rez)(nil)

func (r *Rez) Resize(img image.Image, size image.Point) (image.Image, error) {
	var m image.Image
	switch src := img.(type) {
	case *image.YCbCr:
		m = image.NewYCbCr(image.Rectangle{Max: size}, src.SubsampleRatio)
	case *image.Gray:
		m = image.NewGray(image.Rectangle{Max: size})
	case *image.RGBA:
		m = image.NewRGBA(image.Rectangle{Max: size})
	default:
		m = image.NewNRGBA(image.Rectangle{Max: size})
	}
	if err := rez.Convert(m, img, rez.NewBilinearFilter()); err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return m, nil
}
