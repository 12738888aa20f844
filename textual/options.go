package textual

import (
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/resize"
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

func SetLogger(logger *slog.Logger) Option {
	return OptFunc(func(h *Host) error {
		h.logger = logger
		return nil
	})
}

// SetScreen uses an existing tcell screen instead of the terminal. The
// host initializes it and finalizes it on close.
func SetScreen(s tcell.Screen) Option {
	return OptFunc(func(h *Host) error {
		if s == nil {
			return errors.NilParam()
		}
		h.screen = s
		return nil
	})
}

// SetResizer selects the resizer fitting integrated images to half block
// cells.
func SetResizer(r resize.Resizer) Option {
	return OptFunc(func(h *Host) error {
		if r == nil {
			return errors.NilParam()
		}
		h.resizer = r
		return nil
	})
}

// SetMouse enables reporting of mouse buttons and the wheel.
func SetMouse(enable bool) Option {
	return OptFunc(func(h *Host) error {
		h.mouse = enable
		return nil
	})
}
