// Package view turns world state into draw batches. The simulation never
// draws; a view collaborator attached at the output phase snapshots
// entity render state each tick, sorts it, and hands the batch to
// whatever renderer is plugged in (a local window, a websocket stream, or
// nothing at all).
package view

import (
	"sort"

	"github.com/1studio/SpaceHuggers/internal/engine"
	"github.com/1studio/SpaceHuggers/internal/entity"
)

// Sprite is one entity's draw state for a single frame, decoupled from
// the live entity so the renderer can run off a stable copy.
type Sprite struct {
	X, Y          float64      `msgpack:"x"`
	SizeX, SizeY  float64      `msgpack:"sx"`
	Angle         float64      `msgpack:"a"`
	Mirror        bool         `msgpack:"m"`
	Color         entity.Color `msgpack:"c"`
	AdditiveColor entity.Color `msgpack:"ac"`
	TileIndex     int          `msgpack:"t"`
	SortKey       float64      `msgpack:"-"`
}

// Frame is one tick's complete draw output.
type Frame struct {
	Tick    uint64   `msgpack:"tick"`
	Time    float64  `msgpack:"time"`
	Sprites []Sprite `msgpack:"sprites"`
}

// sortKey orders sprites back to front. An explicit RenderOrder wins;
// otherwise lower entities draw in front, matching a side-on camera.
func sortKey(e *entity.Entity) float64 {
	if e.RenderOrder != 0 {
		return e.RenderOrder
	}
	return -e.Pos.Y
}

// BuildFrame snapshots every live entity into a sorted draw batch. The
// sort is stable so entities with equal keys keep spawn order.
func BuildFrame(w *engine.World) Frame {
	f := Frame{Tick: w.Tick(), Time: w.Time()}
	for _, e := range w.Registry().All() {
		if e.Destroyed() || (e.Color.A <= 0 && e.AdditiveColor.A <= 0) {
			continue
		}
		f.Sprites = append(f.Sprites, Sprite{
			X:             e.Pos.X,
			Y:             e.Pos.Y,
			SizeX:         e.Size.X,
			SizeY:         e.Size.Y,
			Angle:         e.Angle,
			Mirror:        e.Mirror,
			Color:         e.Color,
			AdditiveColor: e.AdditiveColor,
			TileIndex:     e.TileIndex,
			SortKey:       sortKey(e),
		})
	}
	sort.SliceStable(f.Sprites, func(i, j int) bool {
		return f.Sprites[i].SortKey < f.Sprites[j].SortKey
	})
	return f
}

// Renderer consumes one frame per tick.
type Renderer interface {
	Render(f Frame)
}

// Null discards frames.
type Null struct{}

func (Null) Render(f Frame) {}

// System adapts a renderer into the world's output phase.
type System struct {
	r Renderer
}

func NewSystem(r Renderer) *System {
	if r == nil {
		r = Null{}
	}
	return &System{r: r}
}

func (s *System) Phase() engine.Phase { return engine.PhaseOutput }

func (s *System) Update(w *engine.World) { s.r.Render(BuildFrame(w)) }
