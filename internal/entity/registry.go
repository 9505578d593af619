package entity

// Handle is a weak reference to a registry slot: a 32-bit index in the
// lower bits and a generation in the upper bits. The generation increments
// when the slot is freed, so stale handles resolve to nil instead of to
// whatever reused the slot. Zero is never a valid handle.
type Handle uint64

func makeHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) index() uint32      { return uint32(h) }
func (h Handle) generation() uint32 { return uint32(h >> 32) }

type slot struct {
	e          *Entity
	generation uint32
}

// Registry owns entity lifecycle. It keeps two parallel views: all live
// entities and the collidable subset scanned by the broad phase. Entities
// flagged destroyed stay in both until Compact, which runs only at tick
// boundaries — never mid-iteration.
type Registry struct {
	slots []slot
	free  []uint32

	all        []*Entity
	collidable []*Entity
}

func NewRegistry() *Registry {
	return &Registry{
		slots:      make([]slot, 0, 256),
		all:        make([]*Entity, 0, 256),
		collidable: make([]*Entity, 0, 64),
	}
}

// Add registers e and assigns its handle. now is the simulation time
// recorded as the entity's spawn time.
func (r *Registry) Add(e *Entity, now float64) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		// Generation starts at 1 so the zero Handle is always invalid.
		r.slots = append(r.slots, slot{generation: 1})
	}
	r.slots[idx].e = e
	e.handle = makeHandle(idx, r.slots[idx].generation)
	e.reg = r
	e.SpawnTime = now
	r.all = append(r.all, e)
	if e.collideSolidObjects {
		r.collidable = append(r.collidable, e)
		e.inCollidable = true
	}
	return e.handle
}

// Resolve returns the live entity for a handle, or nil if the handle is
// zero, stale, or the entity is flagged destroyed.
func (r *Registry) Resolve(h Handle) *Entity {
	idx := h.index()
	if h == 0 || int(idx) >= len(r.slots) {
		return nil
	}
	s := r.slots[idx]
	if s.e == nil || s.generation != h.generation() || s.e.destroyed {
		return nil
	}
	return s.e
}

// All returns the live-entity list. Valid until the next Compact; callers
// must tolerate destroyed flags when iterating.
func (r *Registry) All() []*Entity { return r.all }

// Collidable returns the broad-phase subset under the same rules as All:
// it may retain entries whose flag was cleared since the last Compact, so
// callers skip those the same way they skip destroyed flags.
func (r *Registry) Collidable() []*Entity { return r.collidable }

func (r *Registry) Len() int { return len(r.all) }

func (r *Registry) setCollidable(e *Entity, v bool) {
	// Removal is deferred to Compact, like destroys, so a broad-phase scan
	// in flight never sees the backing array shift. The membership flag
	// keeps a re-enable before compaction from appending a duplicate.
	if !v || e.inCollidable {
		return
	}
	r.collidable = append(r.collidable, e)
	e.inCollidable = true
}

// Compact physically removes destroyed entities from both views (and
// toggled-off entries from the collidable view) and frees their slots.
// Called once per tick, after traversal — a destroyed entity's registry
// slot is never reused mid-tick.
func (r *Registry) Compact() {
	r.all = compactList(r.all)
	out := r.collidable[:0]
	for _, e := range r.collidable {
		if !e.destroyed && e.collideSolidObjects {
			out = append(out, e)
		} else {
			e.inCollidable = false
		}
	}
	for i := len(out); i < len(r.collidable); i++ {
		r.collidable[i] = nil
	}
	r.collidable = out
	for i := range r.slots {
		s := &r.slots[i]
		if s.e != nil && s.e.destroyed {
			s.e = nil
			s.generation++
			r.free = append(r.free, uint32(i))
		}
	}
}

func compactList(list []*Entity) []*Entity {
	out := list[:0]
	for _, e := range list {
		if !e.destroyed {
			out = append(out, e)
		}
	}
	// Drop trailing pointers so removed entities can be collected.
	for i := len(out); i < len(list); i++ {
		list[i] = nil
	}
	return out
}
