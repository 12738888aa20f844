package ttyin

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
)

// EscapeDelay is how long an incomplete escape sequence waits for more
// input before it is decoded as escape key.
const EscapeDelay = 25 * time.Millisecond

// Run reads terminal input from r and posts the decoded events to sink
// until ctx ends or reading fails. The reading goroutine only returns once
// r returns; closing r unblocks it.
func Run(ctx context.Context, r io.Reader, sink device.Poster, logger *slog.Logger) error {
	if r == nil || sink == nil {
		return errors.NilParam()
	}
	type chunk struct {
		b   []byte
		err error
	}
	chunks := make(chan chunk)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			b := append([]byte(nil), buf[:n]...)
			select {
			case chunks <- chunk{b: b, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var dec Decoder
	var timeout <-chan time.Time
	post := func(evs []device.Event) error {
		for _, ev := range evs {
			if err := sink.Post(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			timeout = nil
			if err := post(dec.Flush()); err != nil {
				return err
			}
		case c := <-chunks:
			if err := post(dec.Decode(c.b)); err != nil {
				return err
			}
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					logx.Debug(`tty input closed`, logx.Prov(logger))
					return post(dec.Flush())
				}
				return errors.New(c.err)
			}
			timeout = nil
			if dec.Pending() {
				timeout = time.After(EscapeDelay)
			}
		}
	}
}
