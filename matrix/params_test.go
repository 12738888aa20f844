package matrix

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultInscription(t *testing.T) {
	ip := DefaultInscription(16)
	// 16 + 16/5.15 = 19.1
	assert.Equal(t, 10.0, ip.CellWidth)
	assert.Equal(t, 20.0, ip.CellHeight)
	assert.Equal(t, ip, DefaultInscription(0))
}

func TestParametersTileTheScreen(t *testing.T) {
	p := NewParameters(Inscription{CellWidth: 9.5, CellHeight: 19, HorizontalPad: 0.2, VerticalPad: 1}, 2, 1000, 500)
	assert.Equal(t, 10.0, p.XCellUnits)
	assert.Equal(t, 20.0, p.YCellUnits)
	assert.Equal(t, 200.0, p.VCellUnits)
	assert.Equal(t, uint16(100), p.XCells)
	assert.Equal(t, uint16(25), p.YCells)
	assert.Equal(t, uint64(p.XCells)*uint64(p.YCells), p.VCells)
	assert.Equal(t, image.Pt(20, 40), p.CellPixels())

	p.CalculateDimensions(1015, 519)
	assert.Equal(t, 1010.0, p.XScreenUnits)
	assert.Equal(t, 500.0, p.YScreenUnits)
	assert.Equal(t, uint64(101*25), p.VCells)
}

func TestParametersSnapshot(t *testing.T) {
	p := NewParameters(DefaultInscription(16), 1, 800, 600)
	snap := p.Snapshot(NewArea(3, 4, 5, 6))
	assert.Equal(t, uint16(6), snap.XCells)
	assert.Equal(t, uint16(5), snap.YCells)
	assert.Equal(t, uint64(30), snap.VCells)
	assert.Equal(t, 60.0, snap.XScreenUnits)

	b, err := snap.AppendBinary(nil)
	require.NoError(t, err)
	require.Len(t, b, ParametersSize)
	got, err := DecodeParameters(b)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestParseFontSpec(t *testing.T) {
	tests := map[string]struct {
		family string
		px     float64
		ok     bool
	}{
		`Monospace 12`:         {`Monospace`, 12 * 1.3333, true},
		`/fonts/mono.ttf 15px`: {`/fonts/mono.ttf`, 15, true},
		`Monospace`:            {`Monospace`, 0, false},
		``:                     {``, 0, false},
		`Mono 0`:               {`Mono 0`, 0, false},
	}
	for spec, tc := range tests {
		t.Run(spec, func(t *testing.T) {
			family, px, ok := ParseFontSpec(spec)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.family, family)
			assert.InDelta(t, tc.px, px, 0.0001)
		})
	}
}
