// Package encoder writes frames as image files.
package encoder

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/srlehn/cellmatrix/internal"
	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
)

var _ internal.ImageEncoder = (*Encoder)(nil)

// Encoder selects the format by file extension. PNG is compressed with
// Compression; the zero value is the png default.
type Encoder struct {
	Compression png.CompressionLevel
}

// Format normalizes a file name or extension to a supported format name.
func Format(fileExt string) (string, error) {
	ext := filepath.Ext(fileExt)
	if ext == `` {
		ext = fileExt
	}
	f := strings.ToLower(strings.TrimPrefix(ext, `.`))
	switch f {
	case `bmp`, `gif`, `png`, `tiff`:
		return f, nil
	case `tif`:
		return `tiff`, nil
	case `jpg`, `jpeg`:
		return `jpeg`, nil
	case ``:
		return ``, errors.New(`no file format specified`)
	default:
		return ``, errors.Errorf(`unsupported file format: %q`, f)
	}
}

func (e *Encoder) Encode(w io.Writer, img image.Image, fileExt string) error {
	if w == nil || img == nil {
		return errors.New(consts.ErrNilParam)
	}
	f, err := Format(fileExt)
	if err != nil {
		return err
	}
	switch f {
	case `bmp`:
		err = bmp.Encode(w, img)
	case `gif`:
		err = gif.Encode(w, img, nil)
	case `png`:
		enc := &png.Encoder{CompressionLevel: e.Compression}
		err = enc.Encode(w, img)
	case `tiff`:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case `jpeg`:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return errors.New(err)
	}
	return nil
}
