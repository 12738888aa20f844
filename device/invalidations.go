package device

import (
	"github.com/srlehn/cellmatrix/matrix"
)

// Invalidations accumulates dirty areas between renders.
//
// Areas are clamped to the bounds given to Add. An area covered by a
// pending one is dropped, pending areas covered by a new one are removed.
type Invalidations struct {
	areas []matrix.Area
}

// Add queues area constrained to bounds. It reports whether the queue
// changed.
func (q *Invalidations) Add(bounds, area matrix.Area) bool {
	if q == nil {
		return false
	}
	area = matrix.Intersect(bounds, area)
	if area.Empty() {
		return false
	}
	for _, a := range q.areas {
		if a.Contains(area) {
			return false
		}
	}
	kept := q.areas[:0]
	for _, a := range q.areas {
		if !area.Contains(a) {
			kept = append(kept, a)
		}
	}
	q.areas = append(kept, area)
	return true
}

// Pending is the number of queued areas.
func (q *Invalidations) Pending() int {
	if q == nil {
		return 0
	}
	return len(q.areas)
}

// Drain returns and clears the queued areas in insertion order.
func (q *Invalidations) Drain() []matrix.Area {
	if q == nil || len(q.areas) == 0 {
		return nil
	}
	ret := q.areas
	q.areas = nil
	return ret
}
