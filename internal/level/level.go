// Package level loads level content from YAML: grid dimensions, per-cell
// collision and background codes, and initial entity placements. Content
// is consumed once at load; nothing here runs during steady-state ticking.
package level

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/1studio/SpaceHuggers/internal/engine"
	"github.com/1studio/SpaceHuggers/internal/entity"
	"github.com/1studio/SpaceHuggers/internal/mathx"
	"github.com/1studio/SpaceHuggers/internal/tile"
)

// Placement describes one initial entity. Zero values take the engine
// defaults (size 1x1, mass 1); Fixed makes the entity immovable.
type Placement struct {
	Kind           string  `yaml:"kind"`
	X              float64 `yaml:"x"`
	Y              float64 `yaml:"y"`
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	Mass           float64 `yaml:"mass"`
	Fixed          bool    `yaml:"fixed"`
	Solid          bool    `yaml:"solid"`
	CollideObjects bool    `yaml:"collide_objects"`
	IgnoreTiles    bool    `yaml:"ignore_tiles"`
	Elasticity     float64 `yaml:"elasticity"`
	Angle          float64 `yaml:"angle"`
	Mirror         bool    `yaml:"mirror"`
	TileIndex      int     `yaml:"tile_index"`
}

// Level is one parsed level document. Tile rows are comma-separated
// collision codes, listed top row first.
type Level struct {
	Name       string      `yaml:"name"`
	Width      int         `yaml:"width"`
	Height     int         `yaml:"height"`
	Tiles      []string    `yaml:"tiles"`
	Background []string    `yaml:"background"`
	Entities   []Placement `yaml:"entities"`
}

// KindSource resolves placement kinds to behaviors. Implemented by the
// scripting library and by plain Go kind maps.
type KindSource interface {
	Behavior(kind string) (entity.Behavior, bool)
}

// Kinds is a KindSource backed by a map, for kinds implemented in Go.
type Kinds map[string]entity.Behavior

func (k Kinds) Behavior(kind string) (entity.Behavior, bool) {
	b, ok := k[kind]
	return b, ok
}

// Load reads and validates a level file.
func Load(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	var l Level
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("level %s: bad dimensions %dx%d", path, l.Width, l.Height)
	}
	if len(l.Tiles) != l.Height {
		return nil, fmt.Errorf("level %s: %d tile rows, want %d", path, len(l.Tiles), l.Height)
	}
	if len(l.Background) != 0 && len(l.Background) != l.Height {
		return nil, fmt.Errorf("level %s: %d background rows, want %d", path, len(l.Background), l.Height)
	}
	return &l, nil
}

// BuildGrid converts the tile rows into a collision grid. Row 0 of the
// document is the top of the level (y = height-1 in world space).
func (l *Level) BuildGrid() (*tile.Grid, error) {
	g := tile.NewGrid(l.Width, l.Height)
	if err := l.fillLayer(g.Set, l.Tiles); err != nil {
		return nil, err
	}
	if len(l.Background) > 0 {
		if err := l.fillLayer(g.SetBackground, l.Background); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (l *Level) fillLayer(set func(x, y, code int), rows []string) error {
	for i, row := range rows {
		y := l.Height - 1 - i
		cols := strings.Split(row, ",")
		if len(cols) != l.Width {
			return fmt.Errorf("level %s row %d: %d columns, want %d", l.Name, i, len(cols), l.Width)
		}
		for x, col := range cols {
			code, err := strconv.Atoi(strings.TrimSpace(col))
			if err != nil {
				return fmt.Errorf("level %s row %d col %d: %w", l.Name, i, x, err)
			}
			set(x, y, code)
		}
	}
	return nil
}

// Populate spawns the level's entities into the world and returns how many
// were created. Placements naming an unknown kind are skipped with a
// warning; a placement embedded in solid tiles is spawned anyway (the
// resolver leaves embedded entities alone until they move) but warned
// about, since it is almost always a content error.
func (l *Level) Populate(w *engine.World, kinds KindSource, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	spawned := 0
	for _, p := range l.Entities {
		var b entity.Behavior
		if p.Kind != "" {
			var ok bool
			if kinds != nil {
				b, ok = kinds.Behavior(p.Kind)
			}
			if !ok {
				log.Warn("level: unknown entity kind, skipping",
					zap.String("level", l.Name), zap.String("kind", p.Kind))
				continue
			}
		}

		size := mathx.Vec2(p.Width, p.Height)
		if size.X == 0 {
			size.X = 1
		}
		if size.Y == 0 {
			size.Y = 1
		}
		e := entity.New(mathx.Vec2(p.X, p.Y), size)
		e.Behavior = b
		e.Angle = p.Angle
		e.Mirror = p.Mirror
		e.Elasticity = p.Elasticity
		e.IsSolid = p.Solid
		e.CollideTiles = !p.IgnoreTiles
		e.TileIndex = p.TileIndex
		switch {
		case p.Fixed:
			e.Mass = 0
		case p.Mass != 0:
			e.Mass = p.Mass
		}
		e.SetCollideSolidObjects(p.CollideObjects)
		w.Spawn(e)
		spawned++

		if e.CollideTiles && w.Grid().Collides(e.Pos, e.Size, e.TileAccept()) {
			log.Warn("level: entity spawned inside solid tiles",
				zap.String("level", l.Name), zap.String("kind", p.Kind),
				zap.Float64("x", p.X), zap.Float64("y", p.Y))
		}
	}
	return spawned
}
