package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if cfg.Engine.TickRate != 60 {
		t.Errorf("default tick rate = %v, want 60", cfg.Engine.TickRate)
	}
	if cfg.Physics.Gravity >= 0 {
		t.Errorf("default gravity should pull down, got %v", cfg.Physics.Gravity)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	body := `
[engine]
tick_rate = 120.0

[physics]
gravity = -0.02

[view]
enabled = true
bind_address = "0.0.0.0:9000"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.TickRate != 120 {
		t.Errorf("tick rate = %v, want 120", cfg.Engine.TickRate)
	}
	if cfg.Physics.Gravity != -0.02 {
		t.Errorf("gravity = %v, want -0.02", cfg.Physics.Gravity)
	}
	// Untouched sections keep their defaults.
	if cfg.Engine.MaxCatchUp != 5 {
		t.Errorf("max catch up = %v, want default 5", cfg.Engine.MaxCatchUp)
	}
	if cfg.Physics.MaxSpeed != 1 {
		t.Errorf("max speed = %v, want default 1", cfg.Physics.MaxSpeed)
	}
	if !cfg.View.Enabled || cfg.View.BindAddress != "0.0.0.0:9000" {
		t.Errorf("view config not applied: %+v", cfg.View)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/engine.toml"); err == nil {
		t.Error("missing file should error")
	}
}
