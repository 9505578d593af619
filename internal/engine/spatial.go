package engine

import (
	"math"

	"github.com/1studio/SpaceHuggers/internal/entity"
	"github.com/1studio/SpaceHuggers/internal/mathx"
)

// Spatial queries over the registry, used by the resolver's callers and by
// gameplay code. All three visit either the full live list or the
// collidable subset, skip destroyed entities, and tolerate the callback
// destroying entities mid-scan: removal is deferred to the compaction
// point, so the backing storage never mutates under the iteration.

// ForEach visits every live entity.
func (w *World) ForEach(collidableOnly bool, visit func(*entity.Entity)) {
	w.scan(collidableOnly, func(e *entity.Entity) bool { return true }, visit)
}

// ForEachInBox visits entities whose AABB overlaps the given box
// (center + full size).
func (w *World) ForEachInBox(center, size mathx.Vector2, collidableOnly bool, visit func(*entity.Entity)) {
	w.scan(collidableOnly, func(e *entity.Entity) bool {
		return mathx.IsOverlapping(center, size, e.Pos, e.Size)
	}, visit)
}

// ForEachInRadius visits entities whose center lies within radius of the
// given point.
func (w *World) ForEachInRadius(center mathx.Vector2, radius float64, collidableOnly bool, visit func(*entity.Entity)) {
	r2 := radius * radius
	w.scan(collidableOnly, func(e *entity.Entity) bool {
		d := e.Pos.Sub(center)
		return d.LengthSquared() <= r2
	}, visit)
}

// Nearest returns the closest live entity to pos accepted by the filter
// (nil filter accepts all), or nil if the world is empty.
func (w *World) Nearest(pos mathx.Vector2, collidableOnly bool, filter func(*entity.Entity) bool) *entity.Entity {
	var best *entity.Entity
	bestD := math.Inf(1)
	w.scan(collidableOnly, func(e *entity.Entity) bool { return true }, func(e *entity.Entity) {
		if filter != nil && !filter(e) {
			return
		}
		if d := e.Pos.Sub(pos).LengthSquared(); d < bestD {
			bestD = d
			best = e
		}
	})
	return best
}

func (w *World) scan(collidableOnly bool, match func(*entity.Entity) bool, visit func(*entity.Entity)) {
	list := w.reg.All()
	if collidableOnly {
		list = w.reg.Collidable()
	}
	n := len(list)
	for i := 0; i < n; i++ {
		e := list[i]
		if e.Destroyed() {
			continue
		}
		// The collidable list defers removals to Compact; entries toggled
		// off since then are still present and get skipped here.
		if collidableOnly && !e.CollideSolidObjects() {
			continue
		}
		if match(e) {
			visit(e)
		}
	}
}
