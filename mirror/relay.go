package mirror

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/matrix"
)

// wakeDispatch never reaches applications: the void instruction is not a
// valid instruction.
var wakeDispatch = control.InstructionKey(control.InstructionVoid)

func wakeEvent() device.Event {
	return device.Event{Status: control.Status{Dispatch: wakeDispatch}}
}

// Relay connects a mirror application, usually a child process, to a local
// device. Events of the local device are forwarded to the application and
// its display stream is applied to the local screen.
//
// The display stream is decoded on its own goroutine; decoded messages are
// applied by the application goroutine of the local device after it was
// woken with an event only the relay sees.
type Relay struct {
	display io.Reader
	events  io.Writer
	logger  *slog.Logger

	mu     sync.Mutex
	queue  []Message
	ended  bool
	endErr error
	waking atomic.Bool

	// remote identifiers to local ones
	expressions map[int32]int32
	resources   map[int32]int32
}

var _ logx.LoggerProvider = (*Relay)(nil)

type RelayOption func(*Relay)

// WithLogger sets the relay logger.
func WithLogger(l *slog.Logger) RelayOption {
	return func(rl *Relay) {
		if l != nil {
			rl.logger = l
		}
	}
}

// WithRecorder copies the raw display stream to w.
func WithRecorder(w io.Writer) RelayOption {
	return func(rl *Relay) {
		if w != nil {
			rl.display = io.TeeReader(rl.display, w)
		}
	}
}

// NewRelay relays between the display stream and the event stream of a
// mirror application. events is closed when the local session ends if it
// is an io.Closer.
func NewRelay(display io.Reader, events io.Writer, opts ...RelayOption) *Relay {
	rl := &Relay{
		display:     display,
		events:      events,
		logger:      logx.Discard(),
		expressions: make(map[int32]int32),
		resources:   make(map[int32]int32),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rl)
		}
	}
	return rl
}

func (rl *Relay) Logger() *slog.Logger { return rl.logger }

// Run is a device.Application. It returns when the display stream ends or
// the local session closes.
func (rl *Relay) Run(d device.Device) error {
	if rl == nil {
		return errors.NilReceiver()
	}
	if d == nil {
		return errors.NilParam()
	}
	poster, ok := d.(device.Poster)
	if !ok {
		return errors.New(`relay: device does not accept posted events`)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer rl.closeEvents()
	go rl.decode(ctx, poster)

	rl.forward(device.ResizeEvent(*d.Dimensions()))
	for {
		d.TransferEvent()
		st := *d.Status()
		switch {
		case st.Dispatch == wakeDispatch:
			if done, err := rl.apply(d); done {
				return err
			}
		case st.Closed():
			logx.Debug(`local session closed`, rl)
			return nil
		case st.Is(control.ScreenResize):
			rl.forward(device.ResizeEvent(*d.Dimensions()))
		default:
			text := d.TransferText()
			rl.forward(device.Event{Status: st, Text: append([]byte(nil), text...)})
		}
	}
}

// forward failures are only logged: a departed application also ends the
// display stream.
func (rl *Relay) forward(ev device.Event) {
	logx.IsErr(WriteEvent(rl.events, ev), rl, slog.LevelDebug, `event`, ev.Status)
}

func (rl *Relay) closeEvents() {
	if c, ok := rl.events.(io.Closer); ok {
		logx.IsErr(c.Close(), rl, slog.LevelDebug)
	}
}

func (rl *Relay) decode(ctx context.Context, p device.Poster) {
	dec := NewDecoder(rl.display)
	for {
		m, err := dec.Next()
		rl.mu.Lock()
		if err != nil {
			rl.ended = true
			if !errors.Is(err, io.EOF) {
				rl.endErr = err
			}
		} else {
			rl.queue = append(rl.queue, m)
		}
		rl.mu.Unlock()
		if err != nil || m.Kind != KindCells {
			rl.wake(ctx, p)
		}
		if err != nil {
			return
		}
	}
}

// wake keeps at most one wake event in flight. Posting happens on its own
// goroutine so that decoding never waits for the application.
func (rl *Relay) wake(ctx context.Context, p device.Poster) {
	if !rl.waking.CompareAndSwap(false, true) {
		return
	}
	go func() {
		if err := p.Post(ctx, wakeEvent()); err != nil {
			rl.waking.Store(false)
			logx.Debug(`relay wake dropped`, rl, `err`, err)
		}
	}()
}

// apply runs the queued messages against d. It reports whether the display
// stream ended.
func (rl *Relay) apply(d device.Device) (bool, error) {
	rl.waking.Store(false)
	rl.mu.Lock()
	queue := rl.queue
	rl.queue = nil
	ended, endErr := rl.ended, rl.endErr
	rl.mu.Unlock()

	for _, m := range queue {
		rl.applyMessage(d, m)
	}
	if ended {
		if endErr != nil {
			logx.Warn(`display stream failed`, rl, `err`, endErr)
		} else {
			logx.Debug(`display stream ended`, rl)
		}
	}
	return ended, endErr
}

func (rl *Relay) applyMessage(d device.Device, m Message) {
	switch m.Kind {
	case KindCells:
		for i, c := range m.Cells {
			m.Cells[i] = rl.translate(c)
		}
		d.Screen().Rewrite(m.Area, m.Cells)
		d.InvalidateCells(m.Area)
	case KindDispatch:
		d.DispatchFrame()
	case KindSynchronize:
		d.SynchronizeIO()
	case KindReplicate:
		d.Screen().ReplicateCells(m.Area, m.Source)
		d.ReplicateCells(m.Area, m.Source)
	case KindFrameStatus:
		d.FrameStatus(m.Current, m.Last)
	case KindFrameList:
		d.FrameList(m.Titles...)
	case KindDefine:
		rl.expressions[m.Identity] = d.Define(m.Text)
	case KindIntegrate:
		rl.resources[m.Identity] = d.Integrate(m.Text, m.Area.Lines, m.Area.Span)
	}
}

// translate maps identifiers of the application to the local device.
// Unknown expressions become empty glyphs, unknown resources identity -1.
func (rl *Relay) translate(c matrix.Cell) matrix.Cell {
	if g, ok := c.Glyph(); ok {
		if g.Codepoint >= device.NoExpression {
			return c
		}
		local, ok := rl.expressions[g.Codepoint]
		if !ok {
			local = device.NoExpression
		}
		g.Codepoint = local
		return g.Cell()
	}
	t, _ := c.ImageTile()
	local, ok := rl.resources[t.Identity]
	if !ok {
		local = -1
	}
	t.Identity = local
	return t.Cell()
}
