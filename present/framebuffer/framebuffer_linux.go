//go:build linux && !android

package framebuffer

import (
	"image"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/present"
)

const (
	getVariableScreenInfo = 0x4600 // FBIOGET_VSCREENINFO
	getFixedScreenInfo    = 0x4602 // FBIOGET_FSCREENINFO
)

// Presenter draws frames into the mapped memory of a framebuffer device
// starting at its top-left pixel.
type Presenter struct {
	dev    *os.File
	data   []byte
	layout layout
}

var _ present.Presenter = (*Presenter)(nil)

// Open maps a framebuffer device, DefaultDevice when dev is empty.
func Open(dev string) (*Presenter, error) {
	if dev == `` {
		dev = DefaultDevice
	}
	f, err := os.OpenFile(dev, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, errors.New(err)
	}
	p := &Presenter{dev: f}
	var (
		fix   fixedScreenInfo
		vinfo variableScreenInfo
	)
	if err := ioctl(f.Fd(), getFixedScreenInfo, unsafe.Pointer(&fix)); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := ioctl(f.Fd(), getVariableScreenInfo, unsafe.Pointer(&vinfo)); err != nil {
		_ = f.Close()
		return nil, err
	}
	p.layout, err = newLayout(fix, vinfo)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	length := int(fix.SmemLen)
	if length < p.layout.mapped() {
		_ = f.Close()
		return nil, errors.Errorf(`framebuffer memory of %d bytes does not cover %v`, length, p.layout.size)
	}
	p.data, err = unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, errors.New(err)
	}
	return p, nil
}

func ioctl(fd uintptr, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errors.New(os.NewSyscallError(`ioctl`, errno))
	}
	return nil
}

// Size is the visible resolution in pixels.
func (p *Presenter) Size() image.Point { return p.layout.size }

func (p *Presenter) Present(frame *image.RGBA, dirty image.Rectangle) error {
	if p == nil || p.data == nil {
		return errors.NilReceiver()
	}
	if frame == nil {
		return errors.NilParam()
	}
	p.layout.copyRect(p.data, frame, dirty)
	return nil
}

func (p *Presenter) Close() error {
	if p == nil || p.data == nil {
		return nil
	}
	err := errors.Join(unix.Munmap(p.data), p.dev.Close())
	p.data = nil
	return err
}
