package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/1studio/SpaceHuggers/internal/config"
	"github.com/1studio/SpaceHuggers/internal/engine"
	"github.com/1studio/SpaceHuggers/internal/level"
	"github.com/1studio/SpaceHuggers/internal/physics"
	"github.com/1studio/SpaceHuggers/internal/scripting"
	"github.com/1studio/SpaceHuggers/internal/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath    = flag.String("config", "", "path to TOML config (defaults apply if empty)")
		levelPath  = flag.String("level", "data/levels/level1.yaml", "level YAML to load")
		scriptsDir = flag.String("scripts", "data/scripts", "directory of Lua kind scripts")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lvl, err := level.Load(*levelPath)
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	grid, err := lvl.BuildGrid()
	if err != nil {
		return fmt.Errorf("build grid: %w", err)
	}
	log.Info("level loaded",
		zap.String("name", lvl.Name),
		zap.Int("width", lvl.Width),
		zap.Int("height", lvl.Height))

	params := physics.Params{
		Gravity:       cfg.Physics.Gravity,
		MaxSpeed:      cfg.Physics.MaxSpeed,
		Epsilon:       cfg.Physics.Epsilon,
		PushAwayAccel: cfg.Physics.PushAwayAccel,
	}
	w := engine.NewWorld(grid, params, cfg.Engine.TickRate, log)

	lib, err := scripting.NewLibrary(*scriptsDir, log)
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer lib.Close()
	log.Info("scripted kinds loaded", zap.Int("kinds", lib.Count()))

	spawned := lvl.Populate(w, lib, log)
	log.Info("level populated", zap.Int("entities", spawned))

	if cfg.View.Enabled {
		stream := view.NewStreamServer(cfg.View.BindAddress, log)
		w.Attach(view.NewSystem(stream))
		go func() {
			if err := stream.ListenAndServe(ctx); err != nil {
				log.Error("view stream stopped", zap.Error(err))
			}
		}()
	}

	loop := engine.NewLoop(w, cfg.Engine.MaxCatchUp, log)
	log.Info("simulation starting",
		zap.Float64("tick_rate", cfg.Engine.TickRate),
		zap.Bool("view", cfg.View.Enabled))
	return loop.Run(ctx)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
