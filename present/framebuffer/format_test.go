package framebuffer

import (
	"image"
	"image/color"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenInfoLayout(t *testing.T) {
	assert.Equal(t, uintptr(160), unsafe.Sizeof(variableScreenInfo{}))
	if unsafe.Sizeof(uintptr(0)) == 8 {
		assert.Equal(t, uintptr(80), unsafe.Sizeof(fixedScreenInfo{}))
		assert.Equal(t, uintptr(48), unsafe.Offsetof(fixedScreenInfo{}.LineLength))
	}
}

func bgra32() variableScreenInfo {
	return variableScreenInfo{
		XRes: 4, YRes: 3, BitsPerPixel: 32,
		Red:    bitfield{Offset: 16, Length: 8},
		Green:  bitfield{Offset: 8, Length: 8},
		Blue:   bitfield{Offset: 0, Length: 8},
		Transp: bitfield{Offset: 24, Length: 8},
	}
}

func TestPack(t *testing.T) {
	tests := map[string]struct {
		vinfo variableScreenInfo
		want  uint32
	}{
		`bgra32`: {bgra32(), 0xFF102030},
		`rgb565`: {variableScreenInfo{
			XRes: 1, YRes: 1, BitsPerPixel: 16,
			Red:   bitfield{Offset: 11, Length: 5},
			Green: bitfield{Offset: 5, Length: 6},
			Blue:  bitfield{Offset: 0, Length: 5},
		}, 0x10>>3<<11 | 0x20>>2<<5 | 0x30>>3},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := newLayout(fixedScreenInfo{LineLength: 64}, tc.vinfo)
			require.NoError(t, err)
			assert.Equal(t, tc.want, l.pack(0x10, 0x20, 0x30, 0xFF))
		})
	}
}

func TestNewLayoutErrors(t *testing.T) {
	_, err := newLayout(fixedScreenInfo{LineLength: 64}, variableScreenInfo{XRes: 1, YRes: 1, BitsPerPixel: 8})
	assert.Error(t, err)
	_, err = newLayout(fixedScreenInfo{LineLength: 8}, bgra32())
	assert.Error(t, err)
}

func TestCopyRect(t *testing.T) {
	vinfo := bgra32()
	vinfo.XOffset, vinfo.YOffset = 1, 1
	l, err := newLayout(fixedScreenInfo{LineLength: 24}, vinfo)
	require.NoError(t, err)
	data := make([]byte, l.mapped())

	frame := image.NewRGBA(image.Rect(0, 0, 4, 3))
	frame.SetRGBA(2, 1, color.RGBA{R: 0xAA, G: 0xBB, B: 0xCC, A: 0xFF})
	frame.SetRGBA(0, 0, color.RGBA{R: 1, A: 0xFF})
	l.copyRect(data, frame, image.Rect(2, 1, 10, 2))

	o := (1+1)*24 + (1+2)*4
	assert.Equal(t, []byte{0xCC, 0xBB, 0xAA, 0xFF}, data[o:o+4])
	// outside of the dirty rectangle
	o = 1*24 + 1*4
	assert.Equal(t, []byte{0, 0, 0, 0}, data[o:o+4])
}
