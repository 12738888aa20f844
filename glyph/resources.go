package glyph

import (
	"image"
	"os"
	"sync"

	// decoders for integrated images
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/resize"
)

// Resources holds the images integrated into a session. Each integration
// of a path at a grid size has an identity; image tile cells refer to it.
type Resources struct {
	mu       sync.RWMutex
	cell     image.Point
	resizer  resize.Resizer
	decoded  map[string]image.Image
	keys     map[resourceKey]int32
	entries  map[int32]*resource
	identity int32
}

type resourceKey struct {
	path        string
	lines, span uint16
}

type resource struct {
	key    resourceKey
	fitted *image.RGBA
}

// NewResources creates an empty set for cells of the given pixel size.
// A nil resizer selects resize.Default.
func NewResources(cell image.Point, r resize.Resizer) *Resources {
	if r == nil {
		r = resize.Default()
	}
	return &Resources{
		cell:    cell,
		resizer: r,
		decoded: make(map[string]image.Image),
		keys:    make(map[resourceKey]int32),
		entries: make(map[int32]*resource),
	}
}

// Integrate decodes the image file at path and fits it to span x lines
// cells. Repeated integration of the same path and size returns the same
// identity.
func (rs *Resources) Integrate(path string, lines, span uint16) (int32, error) {
	if rs == nil {
		return -1, errors.NilReceiver()
	}
	if lines == 0 || span == 0 {
		return -1, errors.WrapPrefix(consts.ErrCellSize, `empty resource grid`, 0)
	}
	key := resourceKey{path: path, lines: lines, span: span}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if id, ok := rs.keys[key]; ok {
		return id, nil
	}
	img, ok := rs.decoded[path]
	if !ok {
		var err error
		img, err = decodeFile(path)
		if err != nil {
			return -1, err
		}
		rs.decoded[path] = img
	}
	fitted, err := resize.Fit(img, image.Pt(int(span), int(lines)), rs.cell, rs.resizer)
	if err != nil {
		return -1, err
	}
	rs.identity++
	rs.keys[key] = rs.identity
	rs.entries[rs.identity] = &resource{key: key, fitted: fitted}
	return rs.identity, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.WrapPrefix(err, path, 0)
	}
	if img == nil {
		return nil, errors.New(consts.ErrNilImage)
	}
	return img, nil
}

// Tile returns the image holding the tile and the tile rectangle inside of
// it.
func (rs *Resources) Tile(identity int32, xtile, ytile uint16) (*image.RGBA, image.Rectangle, bool) {
	if rs == nil {
		return nil, image.Rectangle{}, false
	}
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	e, ok := rs.entries[identity]
	if !ok || xtile >= e.key.span || ytile >= e.key.lines {
		return nil, image.Rectangle{}, false
	}
	origin := image.Pt(int(xtile)*rs.cell.X, int(ytile)*rs.cell.Y)
	return e.fitted, image.Rectangle{Min: origin, Max: origin.Add(rs.cell)}, true
}

// Grid returns the size in cells of an integrated resource.
func (rs *Resources) Grid(identity int32) (lines, span uint16, ok bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	e, ok := rs.entries[identity]
	if !ok {
		return 0, 0, false
	}
	return e.key.lines, e.key.span, true
}

// SetCellSize refits all resources to a new cell size. Identities stay
// valid.
func (rs *Resources) SetCellSize(cell image.Point) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if cell == rs.cell {
		return nil
	}
	rs.cell = cell
	var errs []error
	for _, e := range rs.entries {
		fitted, err := resize.Fit(rs.decoded[e.key.path], image.Pt(int(e.key.span), int(e.key.lines)), cell, rs.resizer)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.fitted = fitted
	}
	return errors.Join(errs...)
}

// CellSize is the pixel size resources are fitted to.
func (rs *Resources) CellSize() image.Point {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.cell
}

// Len is the number of integrated resources.
func (rs *Resources) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.entries)
}
