// Package physics integrates entity motion and resolves object-object and
// object-tile collisions. Everything runs inside the tick on the game loop
// goroutine; nothing here is fallible in the I/O sense, so degenerate
// geometry gets fallback branches instead of errors.
package physics

import (
	"math"

	"go.uber.org/zap"

	"github.com/1studio/SpaceHuggers/internal/entity"
	"github.com/1studio/SpaceHuggers/internal/mathx"
	"github.com/1studio/SpaceHuggers/internal/tile"
)

// Params are the global physics constants, per tick.
type Params struct {
	// Gravity is the vertical velocity delta applied each tick, scaled by
	// the entity's gravity scale. Negative is down.
	Gravity float64
	// MaxSpeed clamps each velocity component before integration so no
	// single tick can tunnel through a full grid cell.
	MaxSpeed float64
	// Epsilon is added to every snap distance so resolved objects never
	// end a tick exactly touching.
	Epsilon float64
	// PushAwayAccel is the separation acceleration for pairs that begin
	// the tick already interpenetrating.
	PushAwayAccel float64
}

func DefaultParams() Params {
	return Params{
		Gravity:       -0.01,
		MaxSpeed:      1,
		Epsilon:       1e-3,
		PushAwayAccel: 1e-3,
	}
}

// SoundFunc receives advisory one-shot collision sounds.
type SoundFunc func(name string, pos mathx.Vector2, volume float64)

// soundThreshold is the minimum impact speed that fires a trigger.
const soundThreshold = 0.1

// Resolver steps entities through integration and collision resolution.
type Resolver struct {
	grid *tile.Grid
	reg  *entity.Registry
	p    Params
	log  *zap.Logger

	// Sound, when set, receives impact triggers. Never blocks.
	Sound SoundFunc
}

func NewResolver(grid *tile.Grid, reg *entity.Registry, p Params, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{grid: grid, reg: reg, p: p, log: log}
}

func (r *Resolver) Params() Params { return r.p }

// Step advances one entity by one tick. Root entities run the full
// integrate-and-resolve sequence; parented entities only derive their
// world transform from the parent (rigid attachment) and are done.
func (r *Resolver) Step(e *entity.Entity) {
	if e.Destroyed() {
		return
	}
	if e.Parent() != nil {
		propagateTransform(e)
		return
	}

	e.BeginStep()

	// Clamp before integrating: the anti-tunneling guarantee.
	e.Velocity.X = mathx.Clamp(e.Velocity.X, -r.p.MaxSpeed, r.p.MaxSpeed)
	e.Velocity.Y = mathx.Clamp(e.Velocity.Y, -r.p.MaxSpeed, r.p.MaxSpeed)

	// Integrate. Gravity only pulls on entities with mass; fixed entities
	// still move kinematically by whatever velocity they carry.
	gravity := 0.0
	if e.Mass != 0 {
		gravity = r.p.Gravity * e.GravityScale
	}
	e.Velocity.Y = (e.Velocity.Y + gravity) * e.Damping
	e.Velocity.X *= e.Damping
	e.Pos = e.Pos.Add(e.Velocity)
	e.AngleVelocity *= e.AngleDamping
	e.Angle += e.AngleVelocity

	if !e.Pos.Valid() || !e.Velocity.Valid() {
		// Contract violation upstream; keep the entity recoverable.
		r.log.Warn("entity state went non-finite, resetting",
			zap.Uint64("handle", uint64(e.Handle())))
		e.Pos = e.PrevPos()
		e.Velocity = mathx.Vector2{}
		return
	}

	// Fixed entities are never pushed back by anything.
	if e.Mass == 0 {
		return
	}

	// Ground friction from last tick's contact. The reference is cleared
	// here and must be freshly re-established below if contact persists.
	if e.OnGround() {
		groundSpeed := 0.0
		if g := e.GroundEntity(); g != nil {
			groundSpeed = g.Velocity.X
		}
		e.Velocity.X = groundSpeed + (e.Velocity.X-groundSpeed)*e.Friction
		e.ClearGround()
	}

	if e.CollideSolidObjects() {
		r.collideObjects(e)
	}
	if e.CollideTiles && r.grid != nil {
		r.collideTiles(e)
	}
}

// propagateTransform derives a child's world transform from its parent:
// local offset mirrored and rotated into the parent frame, local angle
// sign-flipped when mirrored.
func propagateTransform(e *entity.Entity) {
	p := e.Parent()
	local := e.LocalPos
	la := e.LocalAngle
	if p.Mirror {
		local.X = -local.X
		la = -la
	}
	e.Pos = p.Pos.Add(local.Rotate(p.Angle))
	e.Angle = p.Angle + la
}

func (r *Resolver) collideObjects(e *entity.Entity) {
	for _, o := range r.reg.Collidable() {
		if o == e || o.Destroyed() || o.Parent() != nil || !o.CollideSolidObjects() {
			continue
		}
		if !e.IsSolid && !o.IsSolid {
			continue
		}
		if !mathx.IsOverlapping(e.Pos, e.Size, o.Pos, o.Size) {
			continue
		}
		// Either side may veto the contact.
		if !e.AcceptsObject(o) || !o.AcceptsObject(e) {
			continue
		}

		if mathx.IsOverlapping(e.PrevPos(), e.Size, o.PrevPos(), o.Size) {
			// The pair began the tick interpenetrating. Normal snap
			// resolution would fling them apart, so nudge instead.
			r.pushApart(e, o)
			continue
		}

		prev := e.PrevPos()
		sx := e.Size.X + o.Size.X
		sy := e.Size.Y + o.Size.Y
		wasMovingDown := e.Velocity.Y < 0

		// Tie-break: if the vertical gap at the old position suggests the
		// entity can step onto o rather than be stopped by it, prefer
		// vertical resolution. Tuned against the gravity constant; see
		// DESIGN.md before changing gravity.
		smallStepUp := (prev.Y-o.Pos.Y)*2 > sy+r.p.Gravity
		blockedX := math.Abs(prev.Y-o.Pos.Y)*2 < sy
		blockedY := math.Abs(prev.X-o.Pos.X)*2 < sx

		if smallStepUp || blockedY || !blockedX {
			// Snap to touching distance on the side the entity came from.
			e.Pos.Y = o.Pos.Y + (sy/2+r.p.Epsilon)*mathx.Sign(prev.Y-o.Pos.Y)
			if o.Mass == 0 || (o.OnGround() && wasMovingDown) {
				// Other side is immovable or itself grounded: bounce.
				if wasMovingDown {
					e.SetGroundEntity(o)
				}
				r.impact(e, math.Abs(e.Velocity.Y))
				e.Velocity.Y *= -e.Elasticity
			} else {
				// Momentum-weighted inelastic merge.
				avg := (e.Mass*e.Velocity.Y + o.Mass*o.Velocity.Y) / (e.Mass + o.Mass)
				r.impact(e, math.Abs(e.Velocity.Y-avg))
				e.Velocity.Y = avg
				o.Velocity.Y = avg
			}
		}
		if !smallStepUp && blockedX {
			e.Pos.X = o.Pos.X + (sx/2+r.p.Epsilon)*mathx.Sign(prev.X-o.Pos.X)
			if o.Mass != 0 {
				avg := (e.Mass*e.Velocity.X + o.Mass*o.Velocity.X) / (e.Mass + o.Mass)
				r.impact(e, math.Abs(e.Velocity.X-avg))
				e.Velocity.X = avg
				o.Velocity.X = avg
			} else {
				r.impact(e, math.Abs(e.Velocity.X))
				e.Velocity.X *= -e.Elasticity
			}
		}
	}
}

// pushApart applies a gentle separation acceleration along the vector
// between previous positions, growing as the centers get closer. A
// zero-length separation gets a random direction instead of a division by
// zero.
func (r *Resolver) pushApart(e, o *entity.Entity) {
	d := e.PrevPos().Sub(o.PrevPos())
	dist := d.Length()
	var push mathx.Vector2
	if dist < 0.01 {
		push = mathx.RandVector(r.p.PushAwayAccel)
	} else {
		push = d.Scale(r.p.PushAwayAccel / (dist * dist))
	}
	e.Velocity = e.Velocity.Add(push)
	if o.Mass != 0 {
		o.Velocity = o.Velocity.Sub(push)
	}
}

func (r *Resolver) collideTiles(e *entity.Entity) {
	accept := e.TileAccept()
	if !r.grid.Collides(e.Pos, e.Size, accept) {
		return
	}
	// An entity that was already embedded at the old position is left
	// alone until it moves clear; retroactive ejection would explode.
	if r.grid.Collides(e.PrevPos(), e.Size, accept) {
		return
	}

	prev := e.PrevPos()
	wasMovingDown := e.Velocity.Y < 0
	blockedY := r.grid.Collides(mathx.Vec2(prev.X, e.Pos.Y), e.Size, accept)
	blockedX := r.grid.Collides(mathx.Vec2(e.Pos.X, prev.Y), e.Size, accept)

	if blockedY || !blockedX {
		if wasMovingDown {
			e.SetGroundTile()
		}
		r.impact(e, math.Abs(e.Velocity.Y))
		e.Pos.Y = prev.Y
		e.Velocity.Y *= -e.Elasticity
	}
	if blockedX {
		r.impact(e, math.Abs(e.Velocity.X))
		e.Pos.X = prev.X
		e.Velocity.X *= -e.Elasticity
	}
}

// impact fires the advisory audio trigger for a collision of the given
// speed.
func (r *Resolver) impact(e *entity.Entity, speed float64) {
	if r.Sound == nil || speed < soundThreshold {
		return
	}
	r.Sound("impact", e.Pos, mathx.Clamp(speed, 0, 1))
}
