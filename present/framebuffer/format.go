// Package framebuffer presents frames on a Linux framebuffer device.
package framebuffer

import (
	"encoding/binary"
	"image"

	"github.com/srlehn/cellmatrix/internal/errors"
)

// DefaultDevice is the first framebuffer.
const DefaultDevice = `/dev/fb0`

// bitfield is struct fb_bitfield.
type bitfield struct {
	Offset   uint32
	Length   uint32
	MsbRight uint32
}

// fixedScreenInfo is struct fb_fix_screeninfo.
type fixedScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// variableScreenInfo is struct fb_var_screeninfo.
type variableScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          bitfield
	Green        bitfield
	Blue         bitfield
	Transp       bitfield
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	PixClock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HSyncLen     uint32
	VSyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

// layout describes mapped framebuffer memory.
type layout struct {
	size       image.Point
	offset     image.Point
	bytes      int
	lineLength int
	red        bitfield
	green      bitfield
	blue       bitfield
	transp     bitfield
}

func newLayout(fix fixedScreenInfo, vinfo variableScreenInfo) (layout, error) {
	l := layout{
		size:       image.Pt(int(vinfo.XRes), int(vinfo.YRes)),
		offset:     image.Pt(int(vinfo.XOffset), int(vinfo.YOffset)),
		bytes:      int(vinfo.BitsPerPixel) / 8,
		lineLength: int(fix.LineLength),
		red:        vinfo.Red,
		green:      vinfo.Green,
		blue:       vinfo.Blue,
		transp:     vinfo.Transp,
	}
	switch vinfo.BitsPerPixel {
	case 16, 24, 32:
	default:
		return layout{}, errors.Errorf(`unsupported framebuffer depth: %d bits per pixel`, vinfo.BitsPerPixel)
	}
	if l.lineLength < l.size.X*l.bytes {
		return layout{}, errors.Errorf(`framebuffer line length %d too short for %d pixels`, l.lineLength, l.size.X)
	}
	return l, nil
}

// mapped is the number of bytes the layout addresses.
func (l layout) mapped() int {
	return (l.offset.Y+l.size.Y)*l.lineLength + l.offset.X*l.bytes
}

func channel(v uint8, f bitfield) uint32 {
	if f.Length == 0 {
		return 0
	}
	return uint32(v) >> (8 - min(f.Length, 8)) << f.Offset
}

// pack converts a color to the pixel value of the layout.
func (l layout) pack(r, g, b, a uint8) uint32 {
	return channel(r, l.red) | channel(g, l.green) | channel(b, l.blue) | channel(a, l.transp)
}

// copyRect writes the rectangle r of frame into data.
func (l layout) copyRect(data []byte, frame *image.RGBA, r image.Rectangle) {
	r = r.Intersect(frame.Bounds()).Intersect(image.Rectangle{Max: l.size})
	var px [4]byte
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := (l.offset.Y + y) * l.lineLength
		for x := r.Min.X; x < r.Max.X; x++ {
			i := frame.PixOffset(x, y)
			c := frame.Pix[i : i+4 : i+4]
			binary.LittleEndian.PutUint32(px[:], l.pack(c[0], c[1], c[2], c[3]))
			o := row + (l.offset.X+x)*l.bytes
			copy(data[o:o+l.bytes], px[:l.bytes])
		}
	}
}
