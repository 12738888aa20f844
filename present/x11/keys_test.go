package x11

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
)

func TestKeyEvent(t *testing.T) {
	tests := map[string]struct {
		sym   uint32
		text  string
		state uint16
		want  device.Event
	}{
		`letter`:       {'a', `a`, 0, device.KeyEvent('a', 0, `a`)},
		`shifted`:      {'a', `A`, modShift, device.KeyEvent('A', control.NewModifiers(control.ModShift), `A`)},
		`control`:      {'c', "\x03", modControl, device.KeyEvent('c', control.NewModifiers(control.ModControl), ``)},
		`alt`:          {'x', `x`, mod1, device.KeyEvent('x', control.NewModifiers(control.ModMeta), ``)},
		`latin1`:       {0xE9, "\u00e9", 0, device.KeyEvent(0xE9, 0, "\u00e9")},
		`unicode`:      {xkUnicode | 0x20AC, "\u20ac", 0, device.KeyEvent(0x20AC, 0, "\u20ac")},
		`no text`:      {'q', ``, 0, device.KeyEvent('q', 0, `q`)},
		`return`:       {0xFF0D, "\r", 0, device.KeyEvent(int32(control.KeyReturn), 0, ``)},
		`keypad enter`: {0xFF8D, "\r", 0, device.KeyEvent(int32(control.KeyEnter), 0, ``)},
		`super arrow`:  {0xFF52, ``, mod4, device.KeyEvent(int32(control.KeyUpArrow), control.NewModifiers(control.ModSystem), ``)},
		`left tab`:     {xkISOLeftTab, ``, modShift, device.KeyEvent(int32(control.KeyTab), control.NewModifiers(control.ModShift), ``)},
		`f1`:           {xkF1, ``, 0, device.KeyEvent(control.FunctionKey(1), 0, ``)},
		`f12`:          {xkF1 + 11, ``, 0, device.KeyEvent(control.FunctionKey(12), 0, ``)},
		`delete`:       {0xFFFF, ``, 0, device.KeyEvent(int32(control.KeyDeleteForwards), 0, ``)},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := keyEvent(tc.sym, tc.text, tc.state)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, sym := range []uint32{0, 0xFFE1, 0xFE03} {
		_, ok := keyEvent(sym, ``, 0)
		assert.False(t, ok, `keysym %#x`, sym)
	}
}

func TestButtonEvent(t *testing.T) {
	ev, ok := buttonEvent(3, 12, 40, modControl)
	require.True(t, ok)
	assert.Equal(t, control.CursorKey(3), ev.Status.Dispatch)
	assert.True(t, ev.Status.Keys.Has(control.ModControl))
	assert.Equal(t, [2]int32{40, 12}, [2]int32{ev.Status.Top, ev.Status.Left})

	ev, ok = buttonEvent(5, 0, 0, 0)
	require.True(t, ok)
	assert.True(t, ev.Status.Is(control.ViewScroll))
	assert.Equal(t, int32(-3), ev.Status.Quantity)

	ev, ok = buttonEvent(6, 0, 0, 0)
	require.True(t, ok)
	assert.True(t, ev.Status.Is(control.ViewPan))
	assert.Equal(t, int32(-3), ev.Status.Quantity)

	_, ok = buttonEvent(8, 0, 0, 0)
	assert.False(t, ok)
}
