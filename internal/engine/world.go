// Package engine ties the simulation together: the World context object
// owning the tile grid, the entity registry and the resolver, the phased
// per-tick scheduler, and the fixed-timestep frame driver.
//
// The whole simulation is single-threaded and cooperative: one tick runs
// to completion before the next begins, and all shared state is mutated
// only from within a tick. Tests construct isolated Worlds; there are no
// hidden globals.
package engine

import (
	"go.uber.org/zap"

	"github.com/1studio/SpaceHuggers/internal/entity"
	"github.com/1studio/SpaceHuggers/internal/input"
	"github.com/1studio/SpaceHuggers/internal/mathx"
	"github.com/1studio/SpaceHuggers/internal/physics"
	"github.com/1studio/SpaceHuggers/internal/tile"
)

// SoundSink receives fire-and-forget audio triggers. Purely advisory:
// implementations must not block the simulation.
type SoundSink interface {
	Play(name string, pos mathx.Vector2, volume float64)
}

// NopSound discards all triggers. The default sink.
type NopSound struct{}

func (NopSound) Play(name string, pos mathx.Vector2, volume float64) {}

// World is the explicit simulation context: grid, registries, resolver,
// clock. Everything external code needs flows through it.
type World struct {
	log      *zap.Logger
	grid     *tile.Grid
	reg      *entity.Registry
	resolver *physics.Resolver
	runner   *Runner

	tick     uint64
	tickRate float64 // fixed ticks per second

	source     input.Source
	inputState input.State
	sound      SoundSink
}

// NewWorld builds a world over the given grid. tickRate is the fixed
// simulation rate in ticks per second.
func NewWorld(grid *tile.Grid, params physics.Params, tickRate float64, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	if tickRate <= 0 {
		tickRate = 60
	}
	reg := entity.NewRegistry()
	w := &World{
		log:      log,
		grid:     grid,
		reg:      reg,
		resolver: physics.NewResolver(grid, reg, params, log),
		runner:   NewRunner(),
		tickRate: tickRate,
		source:   input.Null{},
		sound:    NopSound{},
	}
	w.resolver.Sound = w.PlaySound
	w.runner.Register(inputSystem{})
	w.runner.Register(simulationSystem{})
	w.runner.Register(cleanupSystem{})
	return w
}

func (w *World) Grid() *tile.Grid            { return w.grid }
func (w *World) Registry() *entity.Registry  { return w.reg }
func (w *World) Resolver() *physics.Resolver { return w.resolver }
func (w *World) TickRate() float64           { return w.tickRate }

// Tick is the global tick counter.
func (w *World) Tick() uint64 { return w.tick }

// Time is the elapsed simulation time derived from the tick counter.
func (w *World) Time() float64 { return float64(w.tick) / w.tickRate }

// Input is this tick's input snapshot, read-only for behaviors.
func (w *World) Input() *input.State { return &w.inputState }

// PlaySound forwards a one-shot trigger to the audio collaborator.
func (w *World) PlaySound(name string, pos mathx.Vector2, volume float64) {
	w.sound.Play(name, pos, volume)
}

func (w *World) SetInputSource(s input.Source) {
	if s != nil {
		w.source = s
	}
}

func (w *World) SetSoundSink(s SoundSink) {
	if s != nil {
		w.sound = s
	}
}

// Attach registers a collaborator system (render view, gameplay logic)
// with the scheduler.
func (w *World) Attach(s System) { w.runner.Register(s) }

// Spawn adds an entity to the world, stamping its spawn time.
func (w *World) Spawn(e *entity.Entity) entity.Handle {
	return w.reg.Add(e, w.Time())
}

// RunTick advances the simulation by exactly one fixed timestep.
func (w *World) RunTick() {
	w.runner.Tick(w)
	w.tick++
}

// Raycast walks the collision grid from start to end on behalf of e (nil:
// no filter, any nonzero code stops the ray).
func (w *World) Raycast(start, end mathx.Vector2, e *entity.Entity) (mathx.Vector2, bool) {
	if w.grid == nil {
		return mathx.Vector2{}, false
	}
	var accept tile.AcceptFunc
	if e != nil {
		accept = e.RaycastAccept()
	}
	return w.grid.Raycast(start, end, accept)
}

// updateEntities walks every root entity and, inside that recursion, every
// descendant, parent before child. Entities destroyed mid-traversal are
// skipped at their turn; entities spawned mid-traversal wait for the next
// tick (the length snapshot keeps the walk stable).
func (w *World) updateEntities() {
	all := w.reg.All()
	n := len(all)
	for i := 0; i < n; i++ {
		e := all[i]
		if e.Destroyed() || e.Parent() != nil {
			continue
		}
		w.updateTree(e)
	}
}

func (w *World) updateTree(e *entity.Entity) {
	if e.Destroyed() {
		return
	}
	e.RunUpdate(w)
	w.resolver.Step(e)
	// Copied snapshot: update hooks may attach or destroy children.
	children := append([]*entity.Entity(nil), e.Children()...)
	for _, c := range children {
		if c.Parent() != e {
			continue
		}
		w.updateTree(c)
	}
}

// Built-in systems.

type inputSystem struct{}

func (inputSystem) Phase() Phase    { return PhaseInput }
func (inputSystem) Update(w *World) { w.inputState = w.source.Sample() }

type simulationSystem struct{}

func (simulationSystem) Phase() Phase    { return PhaseUpdate }
func (simulationSystem) Update(w *World) { w.updateEntities() }

type cleanupSystem struct{}

func (cleanupSystem) Phase() Phase    { return PhaseCleanup }
func (cleanupSystem) Update(w *World) { w.reg.Compact() }
