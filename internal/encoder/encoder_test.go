package encoder

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := map[string]string{
		`frame.PNG`:    `png`,
		`png`:          `png`,
		`.jpg`:         `jpeg`,
		`out/0001.tif`: `tiff`,
		`a.b.bmp`:      `bmp`,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := Format(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
	_, err := Format(`frame.xcf`)
	assert.Error(t, err)
	_, err = Format(``)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	enc := &Encoder{Compression: png.BestSpeed}
	require.NoError(t, enc.Encode(&buf, img, `x.png`))
	back, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), back.Bounds())

	for _, ext := range []string{`bmp`, `gif`, `tiff`, `jpeg`} {
		buf.Reset()
		assert.NoError(t, enc.Encode(&buf, img, ext), ext)
		assert.Positive(t, buf.Len(), ext)
	}
	assert.Error(t, enc.Encode(nil, img, `png`))
}
