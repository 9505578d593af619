package level

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1studio/SpaceHuggers/internal/engine"
	"github.com/1studio/SpaceHuggers/internal/entity"
	"github.com/1studio/SpaceHuggers/internal/physics"
)

const sample = `
name: test-pit
width: 4
height: 3
tiles:
  - "0,0,0,0"
  - "0,0,-1,0"
  - "1,1,1,1"
background:
  - "0,7,0,0"
  - "0,0,0,0"
  - "0,0,0,0"
entities:
  - kind: crate
    x: 1.5
    y: 1.5
    mass: 2
    solid: true
    collide_objects: true
  - kind: unknown-thing
    x: 2.5
    y: 1.5
  - kind: wall
    x: 3.5
    y: 1.5
    fixed: true
    solid: true
    collide_objects: true
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pit.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testKinds() Kinds {
	return Kinds{
		"crate": entity.Base{},
		"wall":  entity.Base{},
	}
}

func TestLoadAndBuildGrid(t *testing.T) {
	l, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g, err := l.BuildGrid()
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}

	// Document row 0 is the top of the level.
	if g.Get(0, 0) != 1 {
		t.Errorf("bottom row should be solid, got %d", g.Get(0, 0))
	}
	if g.Get(2, 1) != -1 {
		t.Errorf("ladder cell = %d, want -1", g.Get(2, 1))
	}
	if g.Get(0, 2) != 0 {
		t.Errorf("top row should be empty, got %d", g.Get(0, 2))
	}
	if g.GetBackground(1, 2) != 7 {
		t.Errorf("background cell = %d, want 7", g.GetBackground(1, 2))
	}
}

func TestPopulateSkipsUnknownKinds(t *testing.T) {
	l, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g, err := l.BuildGrid()
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	w := engine.NewWorld(g, physics.DefaultParams(), 60, nil)

	n := l.Populate(w, testKinds(), nil)
	if n != 2 {
		t.Fatalf("spawned %d entities, want 2 (unknown kind skipped)", n)
	}
	if w.Registry().Len() != 2 {
		t.Fatalf("registry len = %d, want 2", w.Registry().Len())
	}

	crate := w.Registry().All()[0]
	if crate.Mass != 2 || !crate.IsSolid || !crate.CollideSolidObjects() {
		t.Errorf("crate placement not applied: mass=%v solid=%v", crate.Mass, crate.IsSolid)
	}
	wall := w.Registry().All()[1]
	if wall.Mass != 0 {
		t.Errorf("fixed placement should have mass 0, got %v", wall.Mass)
	}
}

func TestLoadRejectsBadShapes(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"short-rows": "name: x\nwidth: 2\nheight: 2\ntiles:\n  - \"0,0\"\n",
		"no-dims":    "name: x\ntiles: []\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBuildGridRejectsRaggedRows(t *testing.T) {
	l := &Level{
		Name:   "ragged",
		Width:  3,
		Height: 1,
		Tiles:  []string{"1,2"},
	}
	if _, err := l.BuildGrid(); err == nil {
		t.Error("ragged row should error")
	}
	l.Tiles = []string{"1,x,3"}
	if _, err := l.BuildGrid(); err == nil {
		t.Error("non-numeric cell should error")
	}
}
