//go:build !linux || android

package framebuffer

import (
	"image"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/present"
)

type Presenter struct{}

var _ present.Presenter = (*Presenter)(nil)

func Open(dev string) (*Presenter, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (p *Presenter) Size() image.Point                          { return image.Point{} }
func (p *Presenter) Present(*image.RGBA, image.Rectangle) error { return errors.NotImplemented() }
func (p *Presenter) Close() error                               { return nil }
