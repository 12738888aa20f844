// Package pngseq presents frames as numbered image files.
package pngseq

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/srlehn/cellmatrix/internal"
	"github.com/srlehn/cellmatrix/internal/encoder"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/present"
)

// DefaultPattern names frames frame-000001.png, frame-000002.png, ...
const DefaultPattern = `frame-%06d.png`

// Presenter writes every presented frame to a new file in a directory.
// The format follows the extension of the pattern.
type Presenter struct {
	dir     string
	pattern string
	enc     internal.ImageEncoder

	mu    sync.Mutex
	count int
	last  string
}

var _ present.Presenter = (*Presenter)(nil)

type Option func(*Presenter)

// WithPattern sets the fmt pattern of the file names; it receives the
// frame number starting at 1.
func WithPattern(pattern string) Option {
	return func(p *Presenter) {
		if pattern != `` {
			p.pattern = pattern
		}
	}
}

// WithEncoder replaces the image encoder.
func WithEncoder(enc internal.ImageEncoder) Option {
	return func(p *Presenter) {
		if enc != nil {
			p.enc = enc
		}
	}
}

// New creates dir if necessary.
func New(dir string, opts ...Option) (*Presenter, error) {
	if dir == `` {
		return nil, errors.NilParam(`directory`)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(err)
	}
	p := &Presenter{
		dir:     dir,
		pattern: DefaultPattern,
		enc:     &encoder.Encoder{Compression: png.BestSpeed},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if _, err := encoder.Format(p.pattern); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Presenter) Present(frame *image.RGBA, dirty image.Rectangle) error {
	if p == nil {
		return errors.NilReceiver()
	}
	if frame == nil {
		return errors.NilParam()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	name := filepath.Join(p.dir, fmt.Sprintf(p.pattern, p.count))
	f, err := os.Create(name)
	if err != nil {
		return errors.New(err)
	}
	if err := p.enc.Encode(f, frame, name); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.New(err)
	}
	p.last = name
	return nil
}

// Last is the file of the latest frame, empty before the first.
func (p *Presenter) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Count is the number of written frames.
func (p *Presenter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *Presenter) Close() error { return nil }
