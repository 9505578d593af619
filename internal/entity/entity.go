// Package entity holds the simulation's base unit: hierarchical game
// objects with transform and physics state, and the registry that owns
// their lifecycle. All mutation happens on the game loop goroutine.
package entity

import (
	"github.com/1studio/SpaceHuggers/internal/mathx"
	"github.com/1studio/SpaceHuggers/internal/tile"
)

// Color is an RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// White is the default primary render color.
var White = Color{1, 1, 1, 1}

// Entity is one simulated object. Position and Size describe an AABB as
// center + full size. An entity with a parent never integrates its own
// physics: its world transform is derived from the parent each tick.
type Entity struct {
	// spatial
	Pos    mathx.Vector2
	Size   mathx.Vector2
	Angle  float64
	Mirror bool

	// physics
	Velocity            mathx.Vector2
	AngleVelocity       float64
	Mass                float64 // 0 = fixed, never pushed by collisions
	Damping             float64 // in [0,1]
	AngleDamping        float64 // in [0,1]
	Elasticity          float64 // restitution
	Friction            float64
	GravityScale        float64
	IsSolid             bool
	CollideTiles        bool
	collideSolidObjects bool
	inCollidable        bool // present in the registry's collidable list

	// render state, consumed by the view collaborator
	Color         Color
	AdditiveColor Color
	TileIndex     int
	RenderOrder   float64

	// hierarchy
	parent     *Entity
	children   []*Entity
	LocalPos   mathx.Vector2
	LocalAngle float64

	// transient collision state, cleared and re-established each tick
	groundObject Handle
	groundTile   bool
	prevPos      mathx.Vector2

	Behavior  Behavior
	SpawnTime float64

	handle    Handle
	reg       *Registry
	destroyed bool
}

// New returns an entity with the engine defaults. It is not simulated
// until added to a registry.
func New(pos, size mathx.Vector2) *Entity {
	return &Entity{
		Pos:           pos,
		Size:          size,
		prevPos:       pos,
		Mass:          1,
		Damping:       0.99,
		AngleDamping:  0.96,
		Friction:      0.8,
		GravityScale:  1,
		CollideTiles:  true,
		Color:         White,
		AdditiveColor: Color{0, 0, 0, 0},
	}
}

// Handle returns the registry handle, or zero if the entity was never
// added to a registry.
func (e *Entity) Handle() Handle { return e.handle }

func (e *Entity) Destroyed() bool { return e.destroyed }

// Destroy flags the entity for removal at the next compaction point and
// transitively destroys every descendant, clearing their parent links.
// The entity stays in the registry until end of tick so in-progress
// iteration is never invalidated.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	if e.parent != nil {
		e.parent.dropChild(e)
		e.parent = nil
	}
	for len(e.children) > 0 {
		c := e.children[len(e.children)-1]
		e.children = e.children[:len(e.children)-1]
		c.parent = nil
		c.Destroy()
	}
}

func (e *Entity) Parent() *Entity { return e.parent }

// Children returns the owned child list. Callers must not mutate it;
// AddChild and RemoveChild are the only mutators of the parent link.
func (e *Entity) Children() []*Entity { return e.children }

// AddChild rigidly attaches c at the given offset in e's local frame.
// No-op if c already has a parent: re-parenting without RemoveChild first
// violates the hierarchy contract.
func (e *Entity) AddChild(c *Entity, localPos mathx.Vector2, localAngle float64) {
	if c == nil || c == e || c.parent != nil {
		return
	}
	c.parent = e
	c.LocalPos = localPos
	c.LocalAngle = localAngle
	e.children = append(e.children, c)
}

// RemoveChild detaches c, making it a root entity again.
func (e *Entity) RemoveChild(c *Entity) {
	if c == nil || c.parent != e {
		return
	}
	e.dropChild(c)
	c.parent = nil
}

func (e *Entity) dropChild(c *Entity) {
	for i, x := range e.children {
		if x == c {
			e.children = append(e.children[:i], e.children[i+1:]...)
			return
		}
	}
}

// CollideSolidObjects reports whether the entity takes part in the
// object-object broad phase.
func (e *Entity) CollideSolidObjects() bool { return e.collideSolidObjects }

// SetCollideSolidObjects toggles broad-phase membership. The registry's
// collidable subset is maintained incrementally so the broad phase stays
// O(collidable count). Like destroys, removal from the backing list is
// deferred to the compaction point, so a scan in flight never sees the
// list shift; scans skip entries whose flag is off.
func (e *Entity) SetCollideSolidObjects(v bool) {
	if e.collideSolidObjects == v {
		return
	}
	e.collideSolidObjects = v
	if e.reg != nil {
		e.reg.setCollidable(e, v)
	}
}

// BeginStep records the current position as the previous-step position.
// The physics resolver calls this before integrating.
func (e *Entity) BeginStep() { e.prevPos = e.Pos }

// PrevPos is the entity's position at the start of its most recent physics
// step. Collision resolution resolves against it to decide blocked axes.
func (e *Entity) PrevPos() mathx.Vector2 { return e.prevPos }

// SetGroundEntity records the entity currently supporting this one. The
// reference is weak: it is validated against the registry on every read.
func (e *Entity) SetGroundEntity(o *Entity) {
	if o != nil {
		e.groundObject = o.handle
	}
}

// SetGroundTile records resting on solid tile geometry, which has no
// identity to reference.
func (e *Entity) SetGroundTile() { e.groundTile = true }

// ClearGround drops the ground contact; it must be freshly re-established
// each tick if contact persists.
func (e *Entity) ClearGround() {
	e.groundObject = 0
	e.groundTile = false
}

// OnGround reports a live ground contact from the previous resolution.
func (e *Entity) OnGround() bool {
	return e.groundTile || e.GroundEntity() != nil
}

// GroundEntity returns the supporting entity, or nil when grounded on
// tiles, ungrounded, or the reference went stale (entity destroyed).
func (e *Entity) GroundEntity() *Entity {
	if e.groundObject == 0 || e.reg == nil {
		return nil
	}
	g := e.reg.Resolve(e.groundObject)
	if g == nil {
		e.groundObject = 0
	}
	return g
}

// behavior dispatch helpers; a nil Behavior gets the defaults.

func (e *Entity) behavior() Behavior {
	if e.Behavior == nil {
		return defaultBehavior
	}
	return e.Behavior
}

// RunUpdate invokes the entity's update hook.
func (e *Entity) RunUpdate(ctx Context) {
	e.behavior().Update(e, ctx)
}

// AcceptsObject asks the entity's collision-accept hook whether to resolve
// a contact with other.
func (e *Entity) AcceptsObject(other *Entity) bool {
	return e.behavior().CollideWithObject(e, other)
}

// TileAccept adapts the entity's tile-collision predicate to a grid query
// callback.
func (e *Entity) TileAccept() tile.AcceptFunc {
	b := e.behavior()
	return func(code, x, y int) bool {
		return b.CollideWithTile(e, code, mathx.Vec2(float64(x), float64(y)))
	}
}

// RaycastAccept adapts the entity's raycast predicate to a grid query
// callback.
func (e *Entity) RaycastAccept() tile.AcceptFunc {
	b := e.behavior()
	return func(code, x, y int) bool {
		return b.RaycastHitTile(e, code, mathx.Vec2(float64(x), float64(y)))
	}
}
