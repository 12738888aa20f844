package host

import (
	"image"
	"image/draw"
	"log/slog"

	"github.com/srlehn/cellmatrix/glyph"
	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/matrix"
	"github.com/srlehn/cellmatrix/present"
	"github.com/srlehn/cellmatrix/tilecache"
)

type opKind uint8

const (
	opRender opKind = iota
	opReplicate
	opPresent
	opBarrier
	opGeometry
	opTitle
	opStats
)

type op struct {
	kind     opKind
	patches  []patch
	dst, src matrix.Area
	params   matrix.Parameters
	faces    *glyph.Faces
	ins      matrix.Inscription
	title    string
	done     chan struct{}
	stats    chan<- tilecache.Stats
}

// patch is a copy of the cells of an area taken when it was rendered.
type patch struct {
	area  matrix.Area
	cells []matrix.Cell
}

type renderState struct {
	faces    *glyph.Faces
	ins      matrix.Inscription
	params   matrix.Parameters
	cell     image.Point
	renderer *glyph.Renderer
	cache    *tilecache.Cache
	working  *image.RGBA
	dirty    image.Rectangle
}

// configure adopts new geometry. The tile cache is rebuilt when the cell
// pixels or the faces changed; the framebuffer keeps its overlapping
// pixels.
func (rs *renderState) configure(h *Host, faces *glyph.Faces, ins matrix.Inscription, params matrix.Parameters) error {
	cell := params.CellPixels()
	if rs.cache == nil || cell != rs.cell || faces != rs.faces || ins != rs.ins {
		renderer := glyph.NewRenderer(faces, ins, h.Expressions(), h.resources, h.logger)
		cache, err := tilecache.New(cell, renderer, h.cacheCfg)
		if err != nil {
			return err
		}
		if rs.cache != nil {
			logx.Debug(`tile cache rebuilt`, h, `cell`, cell, `previous`, rs.cache.Stats())
		}
		rs.renderer, rs.cache = renderer, cache
		rs.faces, rs.ins, rs.cell = faces, ins, cell
	}
	rs.params = params
	size := params.ScreenPixels()
	if rs.working == nil || rs.working.Bounds().Size() != size {
		working := image.NewRGBA(image.Rectangle{Max: size})
		if rs.working != nil {
			draw.Draw(working, working.Bounds(), rs.working, image.Point{}, draw.Src)
		}
		rs.working = working
		rs.dirty = working.Bounds()
	}
	return nil
}

func (h *Host) loop() {
	defer close(h.stopped)
	defer func() {
		if r := recover(); r != nil {
			h.fail(errors.Recovered(r))
		}
	}()
	for {
		select {
		case <-h.done:
			return
		case o := <-h.ops:
			if err := h.apply(o); err != nil {
				h.fail(err)
				return
			}
		}
	}
}

func (h *Host) apply(o op) error {
	rs := &h.render
	switch o.kind {
	case opRender:
		for _, p := range o.patches {
			rs.draw(p)
		}
	case opReplicate:
		dst, src := matrix.ConstrainReplication(rs.params.Bounds(), o.dst, o.src)
		if src.Empty() {
			return nil
		}
		dr := dst.Rect(rs.cell)
		draw.Draw(rs.working, dr, rs.working, src.Rect(rs.cell).Min, draw.Src)
		rs.dirty = rs.dirty.Union(dr)
	case opPresent:
		return h.present()
	case opBarrier:
		close(o.done)
	case opGeometry:
		if err := rs.configure(h, o.faces, o.ins, o.params); err != nil {
			return err
		}
		h.frameMu.Lock()
		visible := image.NewRGBA(rs.working.Bounds())
		draw.Draw(visible, visible.Bounds(), h.visible, image.Point{}, draw.Src)
		h.visible = visible
		h.frameMu.Unlock()
		logx.Debug(`framebuffer resized`, h, `size`, rs.working.Bounds().Size())
	case opTitle:
		if t, ok := h.presenter.(present.Titler); ok {
			t.SetTitle(o.title)
		}
	case opStats:
		o.stats <- rs.cache.Stats()
	}
	return nil
}

func (rs *renderState) draw(p patch) {
	bounds := rs.params.Bounds()
	i := 0
	p.area.Each(func(y, x uint16) bool {
		if i >= len(p.cells) {
			return false
		}
		c := p.cells[i]
		i++
		cell := matrix.Area{TopOffset: y, LeftOffset: x, Lines: 1, Span: 1}
		if !bounds.Contains(cell) {
			return true
		}
		t := rs.cache.Acquire(c)
		draw.Draw(rs.working, cell.Rect(rs.cell), t.Image, t.Rect.Min, draw.Src)
		return true
	})
	rs.dirty = rs.dirty.Union(matrix.Intersect(bounds, p.area).Rect(rs.cell))
}

func (h *Host) present() error {
	rs := &h.render
	dirty := rs.dirty.Intersect(rs.working.Bounds())
	rs.dirty = image.Rectangle{}
	if dirty.Empty() {
		return nil
	}
	h.frameMu.Lock()
	draw.Draw(h.visible, dirty, rs.working, dirty.Min, draw.Src)
	h.frames++
	visible := h.visible
	h.frameMu.Unlock()

	err := logx.TimeIt(func() error {
		return h.presenter.Present(visible, dirty)
	}, `frame presented`, h, `dirty`, dirty)
	if errors.Is(err, consts.ErrClosed) {
		return err
	}
	logx.IsErr(err, h, slog.LevelWarn, `dirty`, dirty)
	return nil
}
