package device

import (
	"context"
	"sync"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
)

// Handoff passes events from host producers to the application one at a
// time. Post returns only once the application took the event.
type Handoff struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func NewHandoff() *Handoff {
	return &Handoff{
		events: make(chan Event),
		done:   make(chan struct{}),
	}
}

// Post blocks until the event is taken, the handoff is closed or ctx ends.
func (h *Handoff) Post(ctx context.Context, ev Event) error {
	if h == nil {
		return errors.NilReceiver()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-h.done:
		return errors.New(consts.ErrClosed)
	default:
	}
	select {
	case h.events <- ev:
		return nil
	case <-h.done:
		return errors.New(consts.ErrClosed)
	case <-ctx.Done():
		return errors.New(ctx.Err())
	}
}

// PostAsync posts from a new goroutine; the result is dropped.
func (h *Handoff) PostAsync(ev Event) {
	go func() { _ = h.Post(context.Background(), ev) }()
}

// Take waits for the next event. A closed handoff yields session close
// events.
func (h *Handoff) Take() Event {
	if h == nil {
		return CloseEvent()
	}
	select {
	case <-h.done:
		return CloseEvent()
	default:
	}
	select {
	case ev := <-h.events:
		return ev
	case <-h.done:
		return CloseEvent()
	}
}

// Close releases waiting producers and the consumer.
func (h *Handoff) Close() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
}

// Done is closed by Close.
func (h *Handoff) Done() <-chan struct{} { return h.done }
