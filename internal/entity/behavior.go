package entity

import (
	"github.com/1studio/SpaceHuggers/internal/input"
	"github.com/1studio/SpaceHuggers/internal/mathx"
)

// Context is what a behavior may reach during its update: the simulation
// clock, the tick's input snapshot, and the advisory audio trigger. The
// engine's World implements it.
type Context interface {
	Time() float64
	Tick() uint64
	Input() *input.State
	// PlaySound fires a one-shot audio trigger. Advisory only: it never
	// blocks and has no result.
	PlaySound(name string, pos mathx.Vector2, volume float64)
}

// Behavior is the per-kind hook set. The resolver and scheduler stay
// kind-agnostic: anything entity-specific happens behind these four hooks.
// Kinds may be implemented in Go or loaded from Lua scripts.
type Behavior interface {
	// Update runs once per tick before physics, parent before children.
	Update(e *Entity, ctx Context)
	// CollideWithObject may veto object-object resolution. Both sides are
	// asked; either veto skips the pair.
	CollideWithObject(e, other *Entity) bool
	// CollideWithTile decides whether a tile code blocks this entity.
	CollideWithTile(e *Entity, code int, cell mathx.Vector2) bool
	// RaycastHitTile decides whether a tile code stops a ray cast on this
	// entity's behalf.
	RaycastHitTile(e *Entity, code int, cell mathx.Vector2) bool
}

// Base provides the default hooks: no update, resolve every contact,
// collide with any positive tile code. Embed it to override selectively.
type Base struct{}

func (Base) Update(e *Entity, ctx Context) {}

func (Base) CollideWithObject(e, other *Entity) bool { return true }

func (Base) CollideWithTile(e *Entity, code int, cell mathx.Vector2) bool {
	return code > 0
}

func (Base) RaycastHitTile(e *Entity, code int, cell mathx.Vector2) bool {
	return code > 0
}

var defaultBehavior Behavior = Base{}
