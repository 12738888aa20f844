package host

import (
	"image"
	"log/slog"

	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/present"
	"github.com/srlehn/cellmatrix/resize"
	"github.com/srlehn/cellmatrix/tilecache"
)

type Option interface {
	ApplyOption(h *Host) error
}

var _ Option = (OptFunc)(nil)

type OptFunc func(*Host) error

func (o OptFunc) ApplyOption(h *Host) error { return o(h) }

var _ Option = (Options)(nil)

type Options []Option

func (o Options) ApplyOption(h *Host) error { return h.setOptions(o...) }

func (h *Host) setOptions(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(h); err != nil {
			return errors.New(err)
		}
	}
	return nil
}

// SetLogger sets the logger of the host and its session.
func SetLogger(logger *slog.Logger) Option {
	return OptFunc(func(h *Host) error {
		h.logger = logger
		return nil
	})
}

// SetFont selects a TrueType file and its pixel size. An empty path keeps
// the embedded Go Mono family, a size <= 0 keeps the default size.
func SetFont(path string, px float64) Option {
	return OptFunc(func(h *Host) error {
		h.fontPath = path
		if px > 0 {
			h.fontPx = px
		}
		return nil
	})
}

// SetPadding adds horizontal and vertical padding to every cell.
func SetPadding(horizontal, vertical float64) Option {
	return OptFunc(func(h *Host) error {
		if horizontal < 0 || vertical < 0 {
			return errors.Errorf(`negative cell padding %vx%v`, horizontal, vertical)
		}
		h.padding = [2]float64{horizontal, vertical}
		return nil
	})
}

// SetScale sets the pixels per system unit.
func SetScale(scale float64) Option {
	return OptFunc(func(h *Host) error {
		if scale <= 0 {
			return errors.Errorf(`invalid scale factor %v`, scale)
		}
		h.scale = scale
		return nil
	})
}

// SetSize sets the initial surface size in pixels.
func SetSize(width, height int) Option {
	return OptFunc(func(h *Host) error {
		if width <= 0 || height <= 0 {
			return errors.Errorf(`invalid surface size %dx%d`, width, height)
		}
		h.size = image.Pt(width, height)
		return nil
	})
}

func SetCacheConfig(cfg tilecache.Config) Option {
	return OptFunc(func(h *Host) error {
		h.cacheCfg = cfg
		return nil
	})
}

// SetResizer selects the resizer fitting integrated images to cells.
func SetResizer(r resize.Resizer) Option {
	return OptFunc(func(h *Host) error {
		if r == nil {
			return errors.NilParam()
		}
		h.resizer = r
		return nil
	})
}

// SetPresenter selects the output surface. Presenters implementing
// present.Source are attached as input source.
func SetPresenter(p present.Presenter) Option {
	return OptFunc(func(h *Host) error {
		if p == nil {
			return errors.NilParam()
		}
		h.presenter = p
		return nil
	})
}
