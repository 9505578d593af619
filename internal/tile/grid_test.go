package tile

import (
	"testing"

	"github.com/1studio/SpaceHuggers/internal/mathx"
)

func TestOutOfBoundsReadsAndWrites(t *testing.T) {
	g := NewGrid(4, 4)
	g.Set(1, 1, 7)

	cases := [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {100, 100}, {-5, -5}}
	for _, c := range cases {
		if got := g.Get(c[0], c[1]); got != Empty {
			t.Errorf("Get(%d,%d) = %d, want 0", c[0], c[1], got)
		}
		// Writes outside bounds never become visible.
		g.Set(c[0], c[1], 9)
		if got := g.Get(c[0], c[1]); got != Empty {
			t.Errorf("Get(%d,%d) after OOB Set = %d, want 0", c[0], c[1], got)
		}
	}
	if g.Get(1, 1) != 7 {
		t.Error("in-bounds cell clobbered by OOB writes")
	}
}

func TestBackgroundIsSeparate(t *testing.T) {
	g := NewGrid(3, 3)
	g.SetBackground(1, 1, 5)
	if g.Get(1, 1) != Empty {
		t.Error("background write leaked into collision layer")
	}
	if g.GetBackground(1, 1) != 5 {
		t.Error("background read lost")
	}
	// Background never collides.
	if g.Collides(mathx.Vec2(1.5, 1.5), mathx.Vec2(1, 1), nil) {
		t.Error("background tile must not collide")
	}
}

func TestCollides(t *testing.T) {
	g := NewGrid(8, 8)
	g.Set(3, 3, 1)

	if !g.Collides(mathx.Vec2(3.5, 3.5), mathx.Vec2(1, 1), nil) {
		t.Error("box centered on solid cell should collide")
	}
	if g.Collides(mathx.Vec2(6.5, 6.5), mathx.Vec2(1, 1), nil) {
		t.Error("box away from solid cell should not collide")
	}
	// Unfiltered queries hit any nonzero code, specials included.
	g.Set(5, 5, -1)
	if !g.Collides(mathx.Vec2(5.5, 5.5), mathx.Vec2(1, 1), nil) {
		t.Error("negative code should collide with no filter")
	}
	// A predicate can restrict the query to solids.
	if g.Collides(mathx.Vec2(5.5, 5.5), mathx.Vec2(1, 1), func(code, x, y int) bool { return code > 0 }) {
		t.Error("positive-only predicate should pass through the special code")
	}
	// Queries hanging off the world edge are fine.
	if g.Collides(mathx.Vec2(-0.5, -0.5), mathx.Vec2(4, 4), nil) {
		t.Error("edge query over empty cells should not collide")
	}
}

func TestGetAtFloorsWorldPosition(t *testing.T) {
	g := NewGrid(4, 4)
	g.Set(0, 0, 3)
	g.Set(2, 1, -1)

	if got := g.GetAt(mathx.Vec2(0.9, 0.1)); got != 3 {
		t.Errorf("GetAt(0.9,0.1) = %d, want 3", got)
	}
	if got := g.GetAt(mathx.Vec2(2.5, 1.5)); got != -1 {
		t.Errorf("GetAt(2.5,1.5) = %d, want -1", got)
	}
	// Negative fractional positions floor into negative cells, which are
	// out of bounds and empty — they never wrap into cell 0.
	if got := g.GetAt(mathx.Vec2(-0.5, 0.5)); got != Empty {
		t.Errorf("GetAt(-0.5,0.5) = %d, want 0", got)
	}
	if got := g.GetAt(mathx.Vec2(0.5, -0.5)); got != Empty {
		t.Errorf("GetAt(0.5,-0.5) = %d, want 0", got)
	}
}

func TestRaycastHitsCellCenter(t *testing.T) {
	g := NewGrid(8, 8)
	g.Set(3, 0, 1)

	hit, ok := g.Raycast(mathx.Vec2(0, 0), mathx.Vec2(5, 0), nil)
	if !ok {
		t.Fatal("raycast should hit cell (3,0)")
	}
	if hit.X != 3.5 || hit.Y != 0.5 {
		t.Errorf("hit = %v, want (3.5, 0.5)", hit)
	}
}

func TestRaycastUnfilteredHitsSpecialCode(t *testing.T) {
	g := NewGrid(8, 8)
	g.Set(3, 0, -1)

	hit, ok := g.Raycast(mathx.Vec2(0.5, 0.5), mathx.Vec2(6.5, 0.5), nil)
	if !ok {
		t.Fatal("unfiltered raycast should stop on any nonzero code")
	}
	if hit.X != 3.5 || hit.Y != 0.5 {
		t.Errorf("hit = %v, want (3.5, 0.5)", hit)
	}
	// A solids-only predicate lets the ray pass the special cell.
	if _, ok := g.Raycast(mathx.Vec2(0.5, 0.5), mathx.Vec2(6.5, 0.5), func(code, x, y int) bool { return code > 0 }); ok {
		t.Error("positive-only predicate should pass through the special code")
	}
}

func TestRaycastBothDirectionsHit(t *testing.T) {
	g := NewGrid(10, 10)
	g.Set(5, 5, 1)

	a := mathx.Vec2(2.5, 5.5)
	b := mathx.Vec2(8.5, 5.5)
	if _, ok := g.Raycast(a, b, nil); !ok {
		t.Error("A->B should report a hit")
	}
	if _, ok := g.Raycast(b, a, nil); !ok {
		t.Error("B->A should report a hit")
	}
}

func TestRaycastDiagonal(t *testing.T) {
	g := NewGrid(10, 10)
	// Solid wall across the diagonal's path.
	for x := 0; x < 10; x++ {
		g.Set(x, 4, 1)
	}
	if _, ok := g.Raycast(mathx.Vec2(1.5, 1.5), mathx.Vec2(7.5, 8.5), nil); !ok {
		t.Error("diagonal ray through a solid row should hit")
	}
}

func TestRaycastMiss(t *testing.T) {
	g := NewGrid(10, 10)
	g.Set(5, 9, 1)
	if _, ok := g.Raycast(mathx.Vec2(0.5, 0.5), mathx.Vec2(9.5, 0.5), nil); ok {
		t.Error("ray far from the solid cell should miss")
	}
	// A cast that leaves the grid reads empty cells and misses cleanly.
	if _, ok := g.Raycast(mathx.Vec2(-3.5, -3.5), mathx.Vec2(-1.5, -1.5), nil); ok {
		t.Error("ray entirely out of bounds should miss")
	}
}
