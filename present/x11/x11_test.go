//go:build !windows && !android && !darwin && !js

package x11

import (
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	if os.Getenv(`DISPLAY`) == `` {
		t.Skip(`no X display`)
	}
	w, err := Open(64, 32, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, image.Pt(64, 32), w.Size())

	frame := image.NewRGBA(image.Rect(0, 0, 64, 32))
	frame.SetRGBA(1, 2, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF})
	require.NoError(t, w.Present(frame, image.Rect(0, 0, 4, 4)))
	i := w.img.PixOffset(1, 2)
	assert.Equal(t, []uint8{0x30, 0x20, 0x10, 0xFF}, w.img.Pix[i:i+4])
	w.SetTitle(`cellmatrix`)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestOpenInvalidSize(t *testing.T) {
	_, err := Open(0, 10, nil)
	assert.Error(t, err)
}
