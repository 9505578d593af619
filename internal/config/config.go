package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Physics PhysicsConfig `toml:"physics"`
	View    ViewConfig    `toml:"view"`
	Logging LoggingConfig `toml:"logging"`
}

type EngineConfig struct {
	TickRate   float64 `toml:"tick_rate"`    // fixed simulation ticks per second
	MaxCatchUp int     `toml:"max_catch_up"` // catch-up ticks allowed per host callback
}

type PhysicsConfig struct {
	Gravity       float64 `toml:"gravity"`         // per-tick vertical velocity delta
	MaxSpeed      float64 `toml:"max_speed"`       // velocity component clamp, units/tick
	Epsilon       float64 `toml:"epsilon"`         // collision separation slack
	PushAwayAccel float64 `toml:"push_away_accel"` // stuck-pair separation acceleration
}

type ViewConfig struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML config, layering it over the defaults. A missing file
// is an error; pass an empty path to get pure defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate:   60,
			MaxCatchUp: 5,
		},
		Physics: PhysicsConfig{
			Gravity:       -0.01,
			MaxSpeed:      1,
			Epsilon:       1e-3,
			PushAwayAccel: 1e-3,
		},
		View: ViewConfig{
			Enabled:     false,
			BindAddress: "127.0.0.1:7777",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
