package resize

import (
	"image"

	"github.com/disintegration/gift"
)

// GIFT uses "github.com/disintegration/gift".
type GIFT struct{}

var _ Resizer = (*GIFT)(nil)

func (r *GIFT) Resize(img image.Image, size image.Point) (image.Image, error) {
	m := image.NewNRGBA(image.Rectangle{Max: size})
	gift.New(gift.Resize(size.X, size.Y, gift.LanczosResampling)).Draw(m, img)
	return m, nil
}
