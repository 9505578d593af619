package entity

import (
	"testing"

	"github.com/1studio/SpaceHuggers/internal/mathx"
)

func TestAddRemoveChildConsistency(t *testing.T) {
	p := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	c := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))

	p.AddChild(c, mathx.Vec2(1, 0), 0)
	if c.Parent() != p {
		t.Fatal("child parent link not set")
	}
	if len(p.Children()) != 1 || p.Children()[0] != c {
		t.Fatal("parent child list not updated")
	}

	// Re-parenting an attached child is a no-op.
	p2 := New(mathx.Vec2(5, 5), mathx.Vec2(1, 1))
	p2.AddChild(c, mathx.Vec2(0, 0), 0)
	if c.Parent() != p || len(p2.Children()) != 0 {
		t.Error("attached child must not be re-parented")
	}

	p.RemoveChild(c)
	if c.Parent() != nil || len(p.Children()) != 0 {
		t.Error("detach left links inconsistent")
	}
}

func TestDestroyCascadesAndDetaches(t *testing.T) {
	root := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	c1 := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	c2 := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	gc := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	root.AddChild(c1, mathx.Vec2(1, 0), 0)
	root.AddChild(c2, mathx.Vec2(-1, 0), 0)
	c1.AddChild(gc, mathx.Vec2(0, 1), 0)

	root.Destroy()

	for _, e := range []*Entity{root, c1, c2, gc} {
		if !e.Destroyed() {
			t.Error("descendant not destroyed")
		}
		if e.Parent() != nil {
			t.Error("destroyed entity still attached")
		}
	}
	if len(root.Children()) != 0 || len(c1.Children()) != 0 {
		t.Error("child lists not emptied on destroy")
	}
}

func TestDestroyChildKeepsParentConsistent(t *testing.T) {
	p := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	c := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	p.AddChild(c, mathx.Vec2(0, 0), 0)

	c.Destroy()
	if p.Destroyed() {
		t.Error("destroying a child must not destroy the parent")
	}
	if len(p.Children()) != 0 {
		t.Error("destroyed child still in parent's list")
	}
}

func TestRegistryCompaction(t *testing.T) {
	r := NewRegistry()
	a := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	b := New(mathx.Vec2(1, 0), mathx.Vec2(1, 1))
	r.Add(a, 0)
	r.Add(b, 0)

	b.Destroy()
	// Still present until the compaction point.
	if r.Len() != 2 {
		t.Fatal("destroyed entity removed before compaction")
	}
	r.Compact()
	if r.Len() != 1 || r.All()[0] != a {
		t.Fatal("compaction did not remove the destroyed entity")
	}
}

func TestStaleHandleResolvesNil(t *testing.T) {
	r := NewRegistry()
	a := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	h := r.Add(a, 0)

	if r.Resolve(h) != a {
		t.Fatal("live handle should resolve")
	}
	a.Destroy()
	if r.Resolve(h) != nil {
		t.Error("destroyed entity should not resolve even before compaction")
	}
	r.Compact()
	if r.Resolve(h) != nil {
		t.Error("stale handle should resolve nil")
	}

	// Slot reuse must not make the old handle live again.
	c := New(mathx.Vec2(2, 0), mathx.Vec2(1, 1))
	hc := r.Add(c, 0)
	if hc.index() != h.index() {
		t.Fatalf("expected slot reuse, got index %d vs %d", hc.index(), h.index())
	}
	if r.Resolve(h) != nil {
		t.Error("stale handle resolved to the slot's new occupant")
	}
	if r.Resolve(hc) != c {
		t.Error("fresh handle should resolve")
	}
}

func TestGroundReferenceGoesStale(t *testing.T) {
	r := NewRegistry()
	e := New(mathx.Vec2(0, 1), mathx.Vec2(1, 1))
	g := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	r.Add(e, 0)
	r.Add(g, 0)

	e.SetGroundEntity(g)
	if e.GroundEntity() != g || !e.OnGround() {
		t.Fatal("ground reference should read back")
	}
	g.Destroy()
	r.Compact()
	if e.GroundEntity() != nil {
		t.Error("ground reference must not keep a destroyed entity alive")
	}
	if e.OnGround() {
		t.Error("stale ground reference should read as ungrounded")
	}
}

func TestCollidableSubsetIncremental(t *testing.T) {
	r := NewRegistry()
	a := New(mathx.Vec2(0, 0), mathx.Vec2(1, 1))
	b := New(mathx.Vec2(1, 0), mathx.Vec2(1, 1))
	r.Add(a, 0)
	r.Add(b, 0)

	if len(r.Collidable()) != 0 {
		t.Fatal("entities start outside the collidable subset")
	}
	a.SetCollideSolidObjects(true)
	b.SetCollideSolidObjects(true)
	if len(r.Collidable()) != 2 {
		t.Fatal("toggle on did not add to collidable subset")
	}
	a.SetCollideSolidObjects(true) // repeated toggle is a no-op
	if len(r.Collidable()) != 2 {
		t.Fatal("repeated toggle duplicated the entry")
	}
	// Toggling off leaves the entry in place until Compact so scans in
	// flight never see the list shift; the flag itself clears at once.
	a.SetCollideSolidObjects(false)
	if len(r.Collidable()) != 2 {
		t.Fatal("toggle off must defer removal to compaction")
	}
	if a.CollideSolidObjects() {
		t.Fatal("toggle off did not clear the flag")
	}
	r.Compact()
	if len(r.Collidable()) != 1 || r.Collidable()[0] != b {
		t.Fatal("compaction did not remove the toggled-off entry")
	}

	// Toggle off then back on before compaction must not duplicate.
	b.SetCollideSolidObjects(false)
	b.SetCollideSolidObjects(true)
	if len(r.Collidable()) != 1 {
		t.Fatal("off/on round trip duplicated the entry")
	}
	r.Compact()
	if len(r.Collidable()) != 1 || r.Collidable()[0] != b {
		t.Fatal("compaction dropped a still-collidable entry")
	}

	b.Destroy()
	r.Compact()
	if len(r.Collidable()) != 0 {
		t.Fatal("compaction did not clean the collidable subset")
	}
}
