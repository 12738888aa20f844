package main

import (
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/host"
	"github.com/srlehn/cellmatrix/internal/config"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/present"
	"github.com/srlehn/cellmatrix/present/framebuffer"
	"github.com/srlehn/cellmatrix/present/pngseq"
	"github.com/srlehn/cellmatrix/present/sixel"
	"github.com/srlehn/cellmatrix/present/x11"
	"github.com/srlehn/cellmatrix/resize"
	"github.com/srlehn/cellmatrix/textual"
)

var (
	hostFlag    string
	presentFlag string
)

func addHostFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&hostFlag, `host`, ``, `local host: text or pixels`)
	cmd.Flags().StringVar(&presentFlag, `present`, ``, `presenter of the pixel host: png, sixel, x11 or fb`)
}

// runner is a local host driving one application.
type runner interface {
	Run(app device.Application) error
	Close() error
}

// hostName selects the host from the flag, the configuration file or,
// without either, by whether stdout is a terminal.
func (e *env) hostName() string {
	switch {
	case hostFlag != ``:
		return hostFlag
	case e.cfgPath != ``:
		return e.cfg.Host
	case term.IsTerminal(int(os.Stdout.Fd())):
		return `text`
	default:
		return `pixels`
	}
}

func openHost(e *env) (runner, error) {
	resizer, err := resize.ByName(e.cfg.Resizer)
	if err != nil {
		return nil, err
	}
	switch name := e.hostName(); name {
	case `text`:
		h, err := textual.New(textual.SetLogger(e.logger), textual.SetResizer(resizer))
		if err != nil {
			return nil, err
		}
		return h, nil
	case `pixels`:
		return openPixelHost(e, resizer)
	default:
		return nil, errors.Errorf(`unknown host %q`, name)
	}
}

func openPixelHost(e *env, resizer resize.Resizer) (runner, error) {
	name := presentFlag
	if name == `` {
		name = e.cfg.Presenter
	}
	p, size, err := openPresenter(e, name)
	if err != nil {
		return nil, err
	}
	h, err := host.New(
		host.SetLogger(e.logger),
		host.SetFont(e.cfg.Font.Path, e.cfg.Font.Size),
		host.SetPadding(e.cfg.Font.PaddingX, e.cfg.Font.PaddingY),
		host.SetScale(e.cfg.Scale),
		host.SetSize(size.X, size.Y),
		host.SetCacheConfig(e.cfg.Cache.TileCache()),
		host.SetResizer(resizer),
		host.SetPresenter(p),
	)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	if e.cfgPath != `` {
		go watchConfig(e, h)
	}
	return h, nil
}

// openPresenter returns the presenter with its surface size.
func openPresenter(e *env, name string) (present.Presenter, image.Point, error) {
	window := image.Pt(e.cfg.Window.Width, e.cfg.Window.Height)
	switch name {
	case `png`:
		p, err := pngseq.New(filepath.Clean(e.cfg.Output))
		if err != nil {
			return nil, image.Point{}, err
		}
		return p, window, nil
	case `sixel`:
		t, err := sixel.Open(``, e.logger)
		if err != nil {
			return nil, image.Point{}, err
		}
		size := t.Size()
		if size.X <= 0 || size.Y <= 0 {
			size = window
		}
		return t, size, nil
	case `x11`:
		w, err := x11.Open(window.X, window.Y, e.logger)
		if err != nil {
			return nil, image.Point{}, err
		}
		return w, window, nil
	case `fb`:
		fb, err := framebuffer.Open(``)
		if err != nil {
			return nil, image.Point{}, err
		}
		return fb, fb.Size(), nil
	default:
		return nil, image.Point{}, errors.Errorf(`unknown presenter %q`, name)
	}
}

// watchConfig applies font and scale changes of the configuration file to
// the pixel host until it is closed.
func watchConfig(e *env, h *host.Host) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-h.Done()
		cancel()
	}()
	err := config.Watch(ctx, e.cfgPath, func(cfg config.Config, err error) {
		if logx.IsErr(err, e, slog.LevelWarn) {
			return
		}
		logx.Info(`configuration changed`, e, `path`, e.cfgPath)
		err = h.Reconfigure(cfg.Font.Path, cfg.Font.Size, cfg.Scale)
		logx.IsErr(err, e, slog.LevelWarn)
	})
	logx.IsErr(err, e, slog.LevelWarn)
}
