//go:build cgo && caire

package resize

import (
	"image"
	"image/draw"

	"github.com/esimov/caire"

	"github.com/srlehn/cellmatrix/internal/errors"
)

// Seam resizes content aware by seam carving ("github.com/esimov/caire").
// It is slow and meant for images whose aspect ratio should be changed
// without distorting the salient parts.
type Seam struct {
	BlurRadius     int
	SobelThreshold int
}

var _ Resizer = (*Seam)(nil)

func init() { resizers[`seam`] = func() Resizer { return &Seam{} } }

func (r *Seam) Resize(img image.Image, size image.Point) (image.Image, error) {
	blur, sobel := r.BlurRadius, r.SobelThreshold
	if blur <= 0 {
		blur = 1
	}
	if sobel <= 0 {
		sobel = 4
	}
	p := &caire.Processor{
		BlurRadius:     blur,
		SobelThreshold: sobel,
		NewWidth:       size.X,
		NewHeight:      size.Y,
	}
	nimg, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		nimg = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nimg, nimg.Bounds(), img, b.Min, draw.Src)
	}
	m, err := p.Resize(nimg)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return m, nil
}
