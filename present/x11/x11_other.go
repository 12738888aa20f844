//go:build windows || android || darwin || js

package x11

import (
	"image"
	"log/slog"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/present"
)

type Window struct{}

func Open(width, height int, logger *slog.Logger) (*Window, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}

func (w *Window) Size() image.Point                                      { return image.Point{} }
func (w *Window) Attach(present.Sink) error                              { return errors.New(consts.ErrPlatformNotSupported) }
func (w *Window) Present(frame *image.RGBA, dirty image.Rectangle) error { return errors.New(consts.ErrPlatformNotSupported) }
func (w *Window) SetTitle(string)                                        {}
func (w *Window) Close() error                                           { return nil }
