package pngseq

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), `frames`)
	p, err := New(dir)
	require.NoError(t, err)
	assert.Empty(t, p.Last())

	frame := image.NewRGBA(image.Rect(0, 0, 6, 4))
	frame.SetRGBA(5, 3, color.RGBA{G: 0xFF, A: 0xFF})
	require.NoError(t, p.Present(frame, frame.Bounds()))
	require.NoError(t, p.Present(frame, image.Rect(5, 3, 6, 4)))
	require.NoError(t, p.Close())

	assert.Equal(t, 2, p.Count())
	assert.Equal(t, filepath.Join(dir, `frame-000002.png`), p.Last())

	f, err := os.Open(filepath.Join(dir, `frame-000001.png`))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), img.Bounds())
	_, g, _, _ := img.At(5, 3).RGBA()
	assert.Equal(t, uint32(0xFFFF), g)
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		dir  string
		opts []Option
	}{
		`no directory`:   {``, nil},
		`no extension`:   {`x`, []Option{WithPattern(`frame-%d`)}},
		`unknown format`: {`x`, []Option{WithPattern(`frame-%d.xyz`)}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := tc.dir
			if dir != `` {
				dir = filepath.Join(t.TempDir(), dir)
			}
			_, err := New(dir, tc.opts...)
			assert.Error(t, err)
		})
	}

	p, err := New(t.TempDir(), WithPattern(`%03d.bmp`))
	require.NoError(t, err)
	require.NoError(t, p.Present(image.NewRGBA(image.Rect(0, 0, 2, 2)), image.Rectangle{}))
	assert.Equal(t, `001.bmp`, filepath.Base(p.Last()))
}
