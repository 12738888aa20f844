package internal

import (
	"image"
	"io"
)

// ImageEncoder writes a frame in the format named by the file extension.
type ImageEncoder interface {
	Encode(w io.Writer, img image.Image, fileExt string) error
}
