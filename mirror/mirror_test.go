package mirror

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
)

func testParameters() matrix.Parameters {
	return matrix.NewParameters(matrix.DefaultInscription(16), 1, 100, 100)
}

func TestEventRoundTrip(t *testing.T) {
	ev := device.KeyEvent('x', control.ModControl.Bit(), "a\u00e9")
	ev.Status.Top, ev.Status.Left = 7, -3
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, ev))
	assert.Equal(t, control.StatusSize+2+3, buf.Len())

	got, err := ReadEvent(&buf)
	require.NoError(t, err)
	assert.Equal(t, ev.Status, got.Status)
	assert.Equal(t, ev.Text, got.Text)
	assert.Equal(t, uint32(3), got.Status.TextLength)

	_, err = ReadEvent(&buf)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestReadEventTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, device.KeyEvent('x', 0, `xyz`)))
	for name, n := range map[string]int{
		`status`: control.StatusSize - 1,
		`length`: control.StatusSize + 1,
		`text`:   buf.Len() - 1,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadEvent(bytes.NewReader(buf.Bytes()[:n]))
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), err)
		})
	}
	assert.Error(t, WriteEvent(io.Discard, device.Event{Text: make([]byte, MaxText+1)}))
}

func TestResizeEventCarriesParameters(t *testing.T) {
	p := testParameters()
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, device.ResizeEvent(p)))
	ev, err := ReadEvent(&buf)
	require.NoError(t, err)
	s := device.NewSession(matrix.Parameters{}, nil)
	s.Apply(ev)
	assert.Equal(t, p, *s.Dimensions())
	assert.Equal(t, matrix.NewArea(0, 0, p.YCells, p.XCells), s.Screen().Area())
}

func TestDisplayStream(t *testing.T) {
	cells := []matrix.Cell{
		matrix.NewGlyph().Inscribe('a', 0).Cell(),
		matrix.NewGlyph().Inscribe(-2, 1).Update(matrix.WithBold(true)).Cell(),
		matrix.ImageTile{Identity: 3, XTile: 1, YTile: 2}.Cell(),
	}
	area := matrix.NewArea(1, 2, 1, 3)
	dst, src := matrix.NewArea(2, 0, 2, 2), matrix.NewArea(0, 0, 2, 2)

	var buf bytes.Buffer
	dw := NewDisplayWriter(&buf)
	require.NoError(t, dw.Define(-2, "e\u0301"))
	require.NoError(t, dw.Integrate(1, `/tmp/x.png`, 2, 3))
	require.NoError(t, dw.Cells(area, cells))
	require.NoError(t, dw.Cells(matrix.NewArea(0, 0, 0, 4), nil), `empty areas are skipped`)
	require.NoError(t, dw.Replicate(dst, src))
	require.NoError(t, dw.FrameStatus(1, 4))
	require.NoError(t, dw.FrameList(`one`, ``, `three`))
	require.NoError(t, dw.Synchronize())
	require.NoError(t, dw.Dispatch())
	require.NoError(t, dw.Flush())
	assert.Error(t, dw.Cells(area, cells[:1]))

	want := []Message{
		{Kind: KindDefine, Identity: -2, Text: "e\u0301"},
		{Kind: KindIntegrate, Identity: 1, Text: `/tmp/x.png`, Area: matrix.Area{Lines: 2, Span: 3}},
		{Kind: KindCells, Area: area, Cells: cells},
		{Kind: KindReplicate, Area: dst, Source: src},
		{Kind: KindFrameStatus, Current: 1, Last: 4},
		{Kind: KindFrameList, Titles: []string{`one`, ``, `three`}},
		{Kind: KindSynchronize},
		{Kind: KindDispatch},
	}
	dec := NewDecoder(&buf)
	for _, w := range want {
		m, err := dec.Next()
		require.NoError(t, err, w.Kind.String())
		assert.Equal(t, w, m)
	}
	_, err := dec.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestDispatchFraming(t *testing.T) {
	var buf bytes.Buffer
	dw := NewDisplayWriter(&buf)
	require.NoError(t, dw.Dispatch())
	require.NoError(t, dw.Synchronize())
	require.NoError(t, dw.Flush())
	assert.Equal(t, append(make([]byte, 3*matrix.AreaSize+6), 0xFE, 0xFF), buf.Bytes())
}

func TestDecoderErrors(t *testing.T) {
	var unknown bytes.Buffer
	hdr, _ := matrix.Area{}.AppendBinary(nil)
	hdr, _ = matrix.Area{Span: 0x1234}.AppendBinary(hdr)
	unknown.Write(hdr)
	_, err := NewDecoder(&unknown).Next()
	assert.True(t, errors.Is(err, consts.ErrUnknownSignal), err)

	var short bytes.Buffer
	dw := NewDisplayWriter(&short)
	require.NoError(t, dw.Cells(matrix.NewArea(0, 0, 1, 2), []matrix.Cell{matrix.Blank, matrix.Blank}))
	require.NoError(t, dw.Flush())
	_, err = NewDecoder(bytes.NewReader(short.Bytes()[:short.Len()-1])).Next()
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), err)

	// the header alone must not allocate the announced cells
	huge, _ := matrix.NewArea(0, 0, 0xFFFF, 0xFFFF).AppendBinary(nil)
	_, err = NewDecoder(bytes.NewReader(huge)).Next()
	assert.True(t, errors.Is(err, consts.ErrProtocol), err)

	cells := make([]matrix.Cell, 2*MaxCells)
	err = NewDisplayWriter(io.Discard).Cells(matrix.NewArea(0, 0, 2, MaxCells), cells)
	assert.True(t, errors.Is(err, consts.ErrProtocol), err)
}

func TestBands(t *testing.T) {
	tests := map[string]struct {
		area matrix.Area
		want []matrix.Area
	}{
		`empty`: {matrix.Area{}, nil},
		`small`: {matrix.NewArea(2, 3, 4, 5), []matrix.Area{matrix.NewArea(2, 3, 4, 5)}},
		`split`: {matrix.NewArea(1, 0, 5, 0x8000), []matrix.Area{
			matrix.NewArea(1, 0, 1, 0x8000),
			matrix.NewArea(2, 0, 1, 0x8000),
			matrix.NewArea(3, 0, 1, 0x8000),
			matrix.NewArea(4, 0, 1, 0x8000),
			matrix.NewArea(5, 0, 1, 0x8000),
		}},
		`wide`: {matrix.NewArea(0, 0, 3, 0x4000), []matrix.Area{
			matrix.NewArea(0, 0, 3, 0x4000),
		}},
		`full width`: {matrix.NewArea(0, 0, 2, 0xFFFF), []matrix.Area{
			matrix.NewArea(0, 0, 1, 0xFFFF),
			matrix.NewArea(1, 0, 1, 0xFFFF),
		}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := bands(tc.area)
			assert.Equal(t, tc.want, got)
			for _, b := range got {
				assert.LessOrEqual(t, b.Volume(), MaxCells)
			}
		})
	}
}

func TestRelayOversizedHeader(t *testing.T) {
	huge, _ := matrix.NewArea(0, 0, 0xFFFF, 0xFFFF).AppendBinary(nil)
	local := newLocalDevice()
	relayed := make(chan error, 1)
	go func() { relayed <- NewRelay(bytes.NewReader(huge), io.Discard).Run(local) }()
	select {
	case err := <-relayed:
		assert.True(t, errors.Is(err, consts.ErrProtocol), err)
	case <-time.After(5 * time.Second):
		t.Fatal(`relay did not end on a corrupt display stream`)
	}
}

func TestServe(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, WriteEvent(&in, device.ResizeEvent(testParameters())))
	require.NoError(t, WriteEvent(&in, device.KeyEvent('k', 0, `k`)))
	var out bytes.Buffer

	var events []int32
	err := Serve(&in, &out, func(d device.Device) error {
		require.Equal(t, matrix.NewArea(0, 0, 5, 10), d.Screen().Area())
		for {
			d.TransferEvent()
			if d.Status().Closed() {
				return nil
			}
			events = append(events, d.Status().Dispatch)
			id := d.Define("e\u0301")
			d.Screen().Set(0, 0, matrix.NewGlyph().Inscribe(id, 0).Cell())
			d.InvalidateCells(matrix.NewArea(0, 0, 1, 1))
			d.InvalidateCells(matrix.NewArea(0, 0, 1, 1))
			d.ReplicateCells(matrix.NewArea(1, 0, 1, 1), matrix.NewArea(0, 0, 1, 1))
			d.DispatchFrame()
			d.SynchronizeIO()
		}
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int32{'k'}, events)

	var kinds []Kind
	dec := NewDecoder(&out)
	for {
		m, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []Kind{KindDefine, KindCells, KindReplicate, KindDispatch, KindSynchronize}, kinds)
}

func TestServeWithoutInput(t *testing.T) {
	ran := false
	err := Serve(bytes.NewReader(nil), io.Discard, func(device.Device) error {
		ran = true
		return nil
	}, nil)
	assert.NoError(t, err)
	assert.False(t, ran)
}

// localDevice is a device recording the calls of a relay.
type localDevice struct {
	*device.Session
	handoff    *device.Handoff
	dispatched chan struct{}
	syncs      int
	titles     []string
	integrated []string
}

func newLocalDevice() *localDevice {
	return &localDevice{
		Session:    device.NewSession(testParameters(), nil),
		handoff:    device.NewHandoff(),
		dispatched: make(chan struct{}, 16),
	}
}

func (l *localDevice) Post(ctx context.Context, ev device.Event) error {
	return l.handoff.Post(ctx, ev)
}

func (l *localDevice) TransferEvent() uint16 {
	l.Apply(l.handoff.Take())
	return 1
}

func (l *localDevice) Integrate(resource string, lines, span uint16) int32 {
	l.integrated = append(l.integrated, resource)
	return int32(len(l.integrated) + 10)
}

func (l *localDevice) InvalidateCells(matrix.Area)         {}
func (l *localDevice) ReplicateCells(dst, src matrix.Area) {}
func (l *localDevice) RenderPixels()                       {}
func (l *localDevice) DispatchFrame()                      { l.dispatched <- struct{}{} }
func (l *localDevice) Synchronize()                        {}
func (l *localDevice) SynchronizeIO()                      { l.syncs++ }
func (l *localDevice) FrameStatus(current, last uint16)    { l.SetFrameStatus(current, last) }
func (l *localDevice) FrameList(titles ...string)          { l.titles = titles }

func TestRelay(t *testing.T) {
	evR, evW := io.Pipe()
	dispR, dispW := io.Pipe()
	served := make(chan error, 1)
	go func() {
		served <- Serve(evR, dispW, func(d device.Device) error {
			combined := d.Define("e\u0301")
			tile := d.Integrate(`picture.png`, 1, 1)
			d.Screen().Set(0, 0, matrix.NewGlyph().Inscribe('a', 0).Cell())
			d.Screen().Set(0, 1, matrix.NewGlyph().Inscribe(combined, 0).Cell())
			d.Screen().Set(0, 2, matrix.ImageTile{Identity: tile}.Cell())
			d.InvalidateCells(matrix.NewArea(0, 0, 1, 3))
			d.ReplicateCells(matrix.NewArea(1, 0, 1, 3), matrix.NewArea(0, 0, 1, 3))
			d.FrameList(`main`)
			d.DispatchFrame()
			for {
				d.TransferEvent()
				if d.Status().Closed() || d.Status().Dispatch == 'q' {
					return nil
				}
			}
		}, nil)
		_ = dispW.Close()
	}()

	local := newLocalDevice()
	local.Define(`xy`)
	rl := NewRelay(dispR, evW)
	relayed := make(chan error, 1)
	go func() { relayed <- rl.Run(local) }()

	select {
	case <-local.dispatched:
	case <-time.After(5 * time.Second):
		t.Fatal(`no frame relayed`)
	}
	screen := local.Screen()
	assert.Equal(t, int32('a'), screen.Cell(0, 0).Codepoint())
	assert.Equal(t, int32(-3), screen.Cell(0, 1).Codepoint(), `expression mapped to the local identifier`)
	assert.Equal(t, int32(11), screen.Cell(0, 2).Codepoint(), `resource mapped to the local identity`)
	assert.Equal(t, screen.Select(matrix.NewArea(0, 0, 1, 3)), screen.Select(matrix.NewArea(1, 0, 1, 3)))
	assert.Equal(t, []string{`main`}, local.titles)
	assert.Equal(t, []string{`picture.png`}, local.integrated)

	require.NoError(t, local.Post(context.Background(), device.KeyEvent('q', 0, `q`)))
	select {
	case err := <-relayed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal(`relay did not end with the display stream`)
	}
	assert.NoError(t, <-served)
}

func TestCommand(t *testing.T) {
	_, err := Command(context.Background(), `echo "unterminated`, nil)
	assert.Error(t, err)
	_, err = Command(context.Background(), `  `, nil)
	assert.Error(t, err)

	if _, err := exec.LookPath(`true`); err != nil {
		t.Skip(`no true(1)`)
	}
	t.Setenv(`CELLMATRIX_TEST_ARG`, `x y`)
	p, err := Command(context.Background(), `true "$CELLMATRIX_TEST_ARG" z`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`true`, `x y`, `z`}, p.Args())
	_, _ = io.Copy(io.Discard, p.Display)
	assert.NoError(t, p.Wait())
}
