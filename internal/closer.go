package internal

import (
	"reflect"
	"sync"

	"github.com/srlehn/cellmatrix/internal/errors"
)

// Closer releases registered resources in reverse order of registration.
type Closer interface {
	Close() error
	OnClose(onClose func() error)
	AddClosers(closers ...interface{ Close() error })
}

var _ Closer = (*lifoCloser)(nil)

type lifoCloser struct {
	mu     sync.Mutex
	funcs  []func() error
	added  map[closerKey]struct{}
	closed bool
}

type closerKey struct {
	p uintptr
	t string
}

func NewCloser() Closer { return &lifoCloser{added: make(map[closerKey]struct{})} }

// Close runs the registered functions once, last registered first.
func (c *lifoCloser) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	funcs := c.funcs
	c.funcs = nil
	c.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *lifoCloser) OnClose(onClose func() error) {
	if c == nil || onClose == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// too late, release right away
		go func() { _ = onClose() }()
		return
	}
	c.funcs = append(c.funcs, onClose)
}

// AddClosers registers each closer once; pointers are compared by identity.
func (c *lifoCloser) AddClosers(closers ...interface{ Close() error }) {
	if c == nil {
		return
	}
	for _, cl := range closers {
		if cl == nil {
			continue
		}
		key, ok := keyOf(cl)
		if ok {
			c.mu.Lock()
			_, dup := c.added[key]
			c.added[key] = struct{}{}
			c.mu.Unlock()
			if dup {
				continue
			}
		}
		c.OnClose(func() error {
			if err := cl.Close(); err != nil {
				return errors.New(err)
			}
			return nil
		})
	}
}

func keyOf(cl any) (closerKey, bool) {
	v := reflect.ValueOf(cl)
	switch v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return closerKey{}, false
		}
		return closerKey{p: v.Pointer(), t: v.Type().String()}, true
	default:
		return closerKey{}, false
	}
}
