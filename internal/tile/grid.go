// Package tile stores the per-level collision map: a dense grid of integer
// collision codes plus a parallel background layer of decorative codes.
// Accessed only from the game loop goroutine — no locks.
package tile

import (
	"math"

	"github.com/1studio/SpaceHuggers/internal/mathx"
)

// Collision codes. Zero is empty, positive codes are typed solids,
// negative codes are specials (ladders, water). Entity predicates decide
// what is passable; an unfiltered query treats any nonzero code as a hit.
const (
	Empty = 0
)

// AcceptFunc decides whether a nonzero collision code at cell (x,y) counts
// as a hit for a particular query. A nil AcceptFunc accepts every nonzero
// code; the positive-only default belongs to the entity behavior layer.
type AcceptFunc func(code, x, y int) bool

func acceptDefault(code, x, y int) bool { return code != 0 }

// Grid is a fixed-size collision map. Out-of-bounds reads return Empty and
// out-of-bounds writes are no-ops; world-edge queries are expected and
// never an error.
type Grid struct {
	width  int
	height int
	cells  []int
	back   []int
}

// NewGrid allocates an empty grid of the given size.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
		back:   make([]int, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Set writes a collision code. No-op if out of bounds.
func (g *Grid) Set(x, y, code int) {
	if !g.InBounds(x, y) {
		return
	}
	g.cells[y*g.width+x] = code
}

// Get returns the collision code at (x,y), or Empty if out of bounds.
func (g *Grid) Get(x, y int) int {
	if !g.InBounds(x, y) {
		return Empty
	}
	return g.cells[y*g.width+x]
}

// SetBackground writes a decorative tile code. The background layer is
// never consulted by collision queries.
func (g *Grid) SetBackground(x, y, code int) {
	if !g.InBounds(x, y) {
		return
	}
	g.back[y*g.width+x] = code
}

// GetBackground returns the decorative code at (x,y), or Empty if out of
// bounds.
func (g *Grid) GetBackground(x, y int) int {
	if !g.InBounds(x, y) {
		return Empty
	}
	return g.back[y*g.width+x]
}

// GetAt maps a world position to its cell and returns the code there.
// Cell coordinates are floored, not truncated toward zero, so every world
// position falls in exactly one cell; positions left of or below the
// origin land in negative cells, which read Empty.
func (g *Grid) GetAt(pos mathx.Vector2) int {
	return g.Get(int(math.Floor(pos.X)), int(math.Floor(pos.Y)))
}

// Collides scans every whole cell overlapped by the AABB centered at pos
// with the given full size (inclusive of cells the box merely touches) and
// reports whether any nonzero cell is accepted. Cell bounds are floored
// like GetAt; a box straddling the world edge scans negative cells, which
// read Empty.
func (g *Grid) Collides(pos, size mathx.Vector2, accept AcceptFunc) bool {
	if accept == nil {
		accept = acceptDefault
	}
	minX := int(math.Floor(pos.X - size.X/2))
	maxX := int(math.Floor(pos.X + size.X/2))
	minY := int(math.Floor(pos.Y - size.Y/2))
	maxY := int(math.Floor(pos.Y + size.Y/2))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			code := g.Get(x, y)
			if code != Empty && accept(code, x, y) {
				return true
			}
		}
	}
	return false
}

// Raycast walks the grid from start to end with an integer-accumulator
// line algorithm and returns the center of the first accepted nonzero
// cell. This is a discrete cast: it reports the tile hit, not a sub-cell
// intersection point. ok is false if the walk reaches the end cell with no
// hit.
func (g *Grid) Raycast(start, end mathx.Vector2, accept AcceptFunc) (hit mathx.Vector2, ok bool) {
	if accept == nil {
		accept = acceptDefault
	}
	x := int(math.Floor(start.X))
	y := int(math.Floor(start.Y))
	endX := int(math.Floor(end.X))
	endY := int(math.Floor(end.Y))

	dx := endX - x
	if dx < 0 {
		dx = -dx
	}
	dy := y - endY
	if dy > 0 {
		dy = -dy
	}
	sx := 1
	if endX < x {
		sx = -1
	}
	sy := 1
	if endY < y {
		sy = -1
	}
	e := dx + dy

	for {
		code := g.Get(x, y)
		if code != Empty && accept(code, x, y) {
			return mathx.Vec2(float64(x)+0.5, float64(y)+0.5), true
		}
		if x == endX && y == endY {
			return mathx.Vector2{}, false
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}
