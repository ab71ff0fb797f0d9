// Package headless runs a flock without a window and records telemetry.
package headless

import (
	"context"
	"errors"
	"fmt"
	"time"

	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/telemetry"
)

// Options controls a headless run.
type Options struct {
	Ticks      int
	StatsEvery int    // ticks between telemetry rows; 0 records only the last tick
	OutputDir  string // empty disables CSV output
}

// Run advances a fresh flock opts.Ticks times and returns the final stats.
// Cancelling ctx stops the run early; the rows written so far are kept.
func Run(ctx context.Context, cfg *simulation.Config, opts Options, logger golog.Logger) (telemetry.FlockStats, error) {
	if opts.Ticks < 0 {
		return telemetry.FlockStats{}, fmt.Errorf("ticks must be >= 0, got %d", opts.Ticks)
	}

	rec, err := telemetry.NewRecorder(opts.OutputDir)
	if err != nil {
		return telemetry.FlockStats{}, err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Errorf("closing telemetry: %v", err)
		}
	}()
	if err := rec.WriteConfig(cfg); err != nil {
		return telemetry.FlockStats{}, fmt.Errorf("saving config: %w", err)
	}

	flock := simulation.NewFlock(cfg, nil)
	logger.Infof("Headless run: %d boids, %d ticks, %d workers", flock.Len(), opts.Ticks, cfg.Workers)

	start := time.Now()
	stats := telemetry.FromFlock(flock)
	if err := rec.Write(stats); err != nil {
		return stats, err
	}

	for i := 1; i <= opts.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("stopped at tick %d: %w", flock.Tick(), err)
		}
		flock.Update(cfg)

		if (opts.StatsEvery > 0 && i%opts.StatsEvery == 0) || i == opts.Ticks {
			stats = telemetry.FromFlock(flock)
			if err := rec.Write(stats); err != nil {
				return stats, err
			}
			logger.Debugf("tick %d: speed %.3f polarization %.3f", stats.Tick, stats.MeanSpeed, stats.Polarization)
		}
	}

	elapsed := time.Since(start)
	logger.Infof("Done: %d ticks in %s (%.1f ticks/sec), %d telemetry rows",
		opts.Ticks, elapsed.Round(time.Millisecond), float64(opts.Ticks)/max(elapsed.Seconds(), 1e-9), rec.Rows())
	if dir := rec.Dir(); dir != "" {
		logger.Infof("Output written to %s", dir)
	}
	return stats, nil
}

// IsInterrupted reports whether err comes from a cancelled run.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
