// Package config loads the cellmatrix configuration file.
//
// The file is looked up as config.toml or config.yaml in the cellmatrix
// directory below the XDG configuration directories. The environment
// overrides the font: TERMINAL_FONT the size, CELLMATRIX_FONT the file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rkoesters/xdg/basedir"
	"gopkg.in/yaml.v3"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
	"github.com/srlehn/cellmatrix/resize"
	"github.com/srlehn/cellmatrix/tilecache"
)

// file names in lookup order
var fileNames = []string{`config.toml`, `config.yaml`, `config.yml`}

var (
	Hosts      = []string{`text`, `pixels`}
	Presenters = []string{`png`, `sixel`, `x11`, `fb`}
)

type Config struct {
	Host      string  `toml:"host" yaml:"host"`
	Presenter string  `toml:"presenter" yaml:"presenter"`
	Resizer   string  `toml:"resizer" yaml:"resizer"`
	Scale     float64 `toml:"scale" yaml:"scale"`
	Font      Font    `toml:"font" yaml:"font"`
	Window    Window  `toml:"window" yaml:"window"`
	Cache     Cache   `toml:"cache" yaml:"cache"`
	// Output is the directory of the png presenter.
	Output string `toml:"output" yaml:"output"`
}

type Font struct {
	Path     string  `toml:"path" yaml:"path"`
	Size     float64 `toml:"size" yaml:"size"`
	PaddingX float64 `toml:"padding_x" yaml:"padding_x"`
	PaddingY float64 `toml:"padding_y" yaml:"padding_y"`
}

// Window is the surface size in pixels for presenters without an own
// size.
type Window struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

type Cache struct {
	Root            int `toml:"root" yaml:"root"`
	SampleThreshold int `toml:"sample_threshold" yaml:"sample_threshold"`
	SwapMargin      int `toml:"swap_margin" yaml:"swap_margin"`
	ReclaimDivisor  int `toml:"reclaim_divisor" yaml:"reclaim_divisor"`
}

// TileCache converts to the tile cache configuration.
func (c Cache) TileCache() tilecache.Config {
	return tilecache.Config{
		Root:            c.Root,
		SampleThreshold: c.SampleThreshold,
		SwapMargin:      c.SwapMargin,
		ReclaimDivisor:  c.ReclaimDivisor,
	}
}

func Default() Config {
	cc := tilecache.DefaultConfig()
	return Config{
		Host:      `pixels`,
		Presenter: `png`,
		Resizer:   `default`,
		Scale:     1,
		Font:      Font{Size: matrix.DefaultFontPixels},
		Window:    Window{Width: 800, Height: 600},
		Cache: Cache{
			Root:            cc.Root,
			SampleThreshold: cc.SampleThreshold,
			SwapMargin:      cc.SwapMargin,
			ReclaimDivisor:  cc.ReclaimDivisor,
		},
		Output: `frames`,
	}
}

// Dirs are the configuration directories in lookup order.
func Dirs() []string {
	var dirs []string
	for _, d := range append([]string{basedir.ConfigHome}, basedir.ConfigDirs...) {
		if d == `` {
			continue
		}
		dirs = append(dirs, filepath.Join(d, consts.LibraryName))
	}
	return dirs
}

// Locate returns the first existing configuration file.
func Locate() (string, bool) { return locate(Dirs()) }

func locate(dirs []string) (string, bool) {
	for _, dir := range dirs {
		for _, name := range fileNames {
			p := filepath.Join(dir, name)
			if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
				return p, true
			}
		}
	}
	return ``, false
}

// Load reads the file at path over the defaults. An empty path loads the
// located file, or only the defaults when there is none. Environment
// overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == `` {
		path, _ = Locate()
	}
	if path != `` {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.New(err)
		}
		if err := cfg.decode(path, b); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, b []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case `.toml`:
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return errors.WrapPrefix(err, path, 0)
		}
	case `.yaml`, `.yml`:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		// an empty document keeps the defaults
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return errors.WrapPrefix(err, path, 0)
		}
	default:
		return errors.Errorf(`unknown configuration format %q`, path)
	}
	return nil
}

func (c *Config) applyEnv() {
	if _, px, ok := matrix.ParseFontSpec(os.Getenv(consts.EnvFont)); ok {
		c.Font.Size = px
	}
	if p := os.Getenv(consts.EnvFontFile); p != `` {
		c.Font.Path = p
	}
}

func (c Config) Validate() error {
	if !slices.Contains(Hosts, c.Host) {
		return errors.Errorf(`unknown host %q, want one of %v`, c.Host, Hosts)
	}
	if !slices.Contains(Presenters, c.Presenter) {
		return errors.Errorf(`unknown presenter %q, want one of %v`, c.Presenter, Presenters)
	}
	if _, err := resize.ByName(c.Resizer); err != nil {
		return err
	}
	if c.Scale <= 0 {
		return errors.Errorf(`invalid scale %v`, c.Scale)
	}
	if c.Font.Size <= 0 || c.Font.PaddingX < 0 || c.Font.PaddingY < 0 {
		return errors.Errorf(`invalid font settings %+v`, c.Font)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf(`invalid window size %dx%d`, c.Window.Width, c.Window.Height)
	}
	return nil
}
