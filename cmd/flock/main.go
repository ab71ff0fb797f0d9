package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock3d/internal/headless"
	"github.com/lao-tseu-is-alive/go-flock3d/internal/viewer"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

func parseLevel(s string) (golog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return golog.DebugLevel, nil
	case "info":
		return golog.InfoLevel, nil
	case "warn", "warning":
		return golog.WarningLevel, nil
	case "error":
		return golog.ErrorLevel, nil
	}
	return golog.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// loadConfig resolves defaults, then the config file, then explicit flags.
func loadConfig(path string, applyFlags func(*simulation.Config)) (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = simulation.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "path to a JSON or YAML config file")
	headlessMode := flag.Bool("headless", false, "run without a window")
	ticks := flag.Int("ticks", 1000, "number of ticks to run in headless mode")
	outputDir := flag.String("output-dir", "", "directory for telemetry.csv and config.yaml (headless mode)")
	statsEvery := flag.Int("stats-every", 10, "ticks between telemetry rows (headless mode)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	applyFlags := simulation.BindFlags(flag.CommandLine)
	flag.Parse()

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := golog.New(level, os.Stdout)

	cfg, err := loadConfig(*configPath, applyFlags)
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headlessMode {
		_, err := headless.Run(ctx, cfg, headless.Options{
			Ticks:      *ticks,
			StatsEvery: *statsEvery,
			OutputDir:  *outputDir,
		}, logger)
		if err != nil && !headless.IsInterrupted(err) {
			logger.Fatalf("Headless run failed: %v", err)
		}
		if err != nil {
			logger.Warnf("Interrupted: %v", err)
		}
		return
	}

	system, err := actor.NewActorSystem("FlockWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		logger.Fatalf("Failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		logger.Fatalf("Failed to start actor system: %v", err)
	}
	defer func() {
		if err := system.Stop(context.Background()); err != nil {
			logger.Errorf("Stopping actor system: %v", err)
		}
	}()

	game, err := viewer.NewGame(ctx, cfg, system, logger)
	if err != nil {
		logger.Fatalf("Failed to start viewer: %v", err)
	}

	ebiten.SetWindowSize(cfg.Size, cfg.Size)
	ebiten.SetWindowTitle("BOIDS")
	if err := ebiten.RunGame(game); err != nil {
		logger.Errorf("Viewer stopped: %v", err)
	}
}
