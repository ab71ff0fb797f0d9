// Package world drives a flock from inside a goakt actor.
package world

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/telemetry"
)

// Snapshot is a copy of the flock handed to the viewer.
// The world never touches it again once sent.
type Snapshot struct {
	Tick  uint64
	Boids []simulation.Boid
	Wind  geometry.Vector3
	Stats telemetry.FlockStats
}

// Step asks the world to advance n ticks and then publish a snapshot.
// Step(0) only publishes.
func Step(n uint32) *wrapperspb.UInt32Value {
	return wrapperspb.UInt32(n)
}

// Reset asks the world to repopulate the flock from its config.
func Reset() *emptypb.Empty {
	return &emptypb.Empty{}
}

// Actor owns the flock. It is the only place Flock.Update is called.
type Actor struct {
	cfg        *simulation.Config
	flock      *simulation.Flock
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	ticks       int
	dropped     int
	lastLogTime time.Time
}

// NewActor creates the world. flock may be nil, in which case one is built
// from cfg when the actor starts.
func NewActor(snapshotCh chan<- *Snapshot, cfg *simulation.Config, flock *simulation.Flock) *Actor {
	return &Actor{
		cfg:         cfg,
		flock:       flock,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *Actor) PreStart(ctx *actor.Context) error {
	if w.flock == nil {
		w.flock = simulation.NewFlock(w.cfg, nil)
	}
	ctx.ActorSystem().Logger().Infof("World is populating %d boids in a %d³ volume", w.flock.Len(), w.cfg.Size)
	return nil
}

func (w *Actor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World started")
		w.pushSnapshot()

	case *wrapperspb.UInt32Value:
		w.step(int(msg.GetValue()))
		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *emptypb.Empty:
		w.flock.Reset(w.cfg)
		ctx.Logger().Infof("Flock reset: %d boids", w.flock.Len())
		w.pushSnapshot()

	default:
		ctx.Unhandled()
	}
}

func (w *Actor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks", w.flock.Tick())
	return nil
}

func (w *Actor) step(n int) {
	for i := 0; i < n; i++ {
		w.flock.Update(w.cfg)
	}
	w.ticks += n
}

func (w *Actor) logBenchmarks(ctx *actor.ReceiveContext) {
	if elapsed := time.Since(w.lastLogTime); elapsed >= time.Second {
		ctx.Logger().Debugf("📊 TICK RATE: %.1f/sec | Boids: %d | Snapshots dropped: %d",
			float64(w.ticks)/elapsed.Seconds(), w.flock.Len(), w.dropped)
		w.ticks = 0
		w.dropped = 0
		w.lastLogTime = time.Now()
	}
}

func (w *Actor) pushSnapshot() {
	select {
	case w.snapshotCh <- w.buildSnapshot():
	default:
		// viewer busy, skip frame
		w.dropped++
	}
}

func (w *Actor) buildSnapshot() *Snapshot {
	boids := w.flock.Boids()
	return &Snapshot{
		Tick:  w.flock.Tick(),
		Boids: append([]simulation.Boid(nil), boids...),
		Wind:  w.flock.Wind(),
		Stats: telemetry.FromFlock(w.flock),
	}
}
