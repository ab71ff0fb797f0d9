package simulation

import (
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
)

// parallelThreshold is the minimum flock size for splitting a tick across workers.
// Below this, goroutine overhead outweighs the neighbour scan.
const parallelThreshold = 256

// windGust bounds the random change applied to the wind at every tick.
const windGust = 0.5

// Flock owns the boids and the wind that pushes them.
//
// Boids live in two buffers: a tick reads every boid from current, writes the
// results into next, then swaps the two. No boid ever sees another boid's
// state from the same tick.
type Flock struct {
	current []Boid
	next    []Boid
	wind    geometry.Vector3
	center  geometry.Vector3
	rng     *rand.Rand
	tick    uint64

	// one neighbour buffer per worker, reused across ticks
	scratch [][]int
}

// NewFlock creates cfg.Count boids at random positions in [0, Size)³ with
// random velocities in [-1, 1)³, and a random initial wind in [-1, 1)³.
// The flock draws all its randomness from rng; a nil rng is seeded from cfg.Seed.
func NewFlock(cfg *Config, rng *rand.Rand) *Flock {
	if rng == nil {
		rng = NewRNG(cfg.Seed)
	}
	f := &Flock{
		center: cfg.Center(),
		rng:    rng,
	}
	f.populate(cfg)
	return f
}

// NewFlockFrom creates a flock from an explicit population.
// boids is copied; center and wind are used as given.
func NewFlockFrom(boids []Boid, center, wind geometry.Vector3, rng *rand.Rand) *Flock {
	if rng == nil {
		rng = NewRNG(0)
	}
	current := make([]Boid, len(boids))
	copy(current, boids)
	return &Flock{
		current: current,
		next:    make([]Boid, len(boids)),
		wind:    wind,
		center:  center,
		rng:     rng,
	}
}

func (f *Flock) populate(cfg *Config) {
	count := max(cfg.Count, 0)
	size := float32(cfg.Size)

	f.current = make([]Boid, count)
	f.next = make([]Boid, count)
	for i := range f.current {
		f.current[i] = Boid{
			Position: randomVector(f.rng, 0, size),
			Velocity: randomVector(f.rng, -1, 1),
		}
	}
	f.wind = randomVector(f.rng, -1, 1)
	f.tick = 0
}

// Reset replaces the whole population with a fresh random one drawn from the
// flock's own generator. The center is recomputed from cfg.
func (f *Flock) Reset(cfg *Config) {
	f.center = cfg.Center()
	f.populate(cfg)
}

// Update advances the flock by one tick.
func (f *Flock) Update(cfg *Config) {
	f.updateWind(cfg)

	n := len(f.current)
	if len(f.next) != n {
		f.next = make([]Boid, n)
	}

	workers := cfg.Workers
	if workers <= 1 || n < parallelThreshold {
		f.step(0, n, 0, cfg)
	} else {
		f.stepParallel(workers, cfg)
	}

	f.current, f.next = f.next, f.current
	f.tick++
}

func (f *Flock) updateWind(cfg *Config) {
	f.wind = f.wind.Add(randomVector(f.rng, -windGust, windGust))
	f.wind = f.wind.ClampSlope(cfg.DeltaZMax)
	f.wind.ClampMagnitude(cfg.Wind)
}

// step computes boids [start, end) of the next buffer using worker buffer w.
func (f *Flock) step(start, end, w int, cfg *Config) {
	scratch := f.scratchFor(w)
	for i := start; i < end; i++ {
		f.next[i], scratch = f.current[i].next(f.current, i, f.wind, f.center, cfg, scratch)
	}
	f.scratch[w] = scratch
}

// stepParallel splits the tick into contiguous chunks, one per worker.
// Workers only read current and only write their own range of next.
func (f *Flock) stepParallel(workers int, cfg *Config) {
	n := len(f.current)
	chunk := (n + workers - 1) / workers
	f.scratchFor(workers - 1)

	var g errgroup.Group
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		g.Go(func() error {
			f.step(start, end, w, cfg)
			return nil
		})
	}
	_ = g.Wait()
}

// scratchFor makes sure buffer w exists and returns it.
func (f *Flock) scratchFor(w int) []int {
	for len(f.scratch) <= w {
		f.scratch = append(f.scratch, make([]int, 0, 64))
	}
	return f.scratch[w]
}

// Boids returns the current population.
// The slice is only valid until the next Update and must not be modified.
func (f *Flock) Boids() []Boid {
	return f.current
}

// Wind returns the current wind.
func (f *Flock) Wind() geometry.Vector3 {
	return f.wind
}

// Center returns the roost point the boids are pulled toward.
func (f *Flock) Center() geometry.Vector3 {
	return f.center
}

// Tick returns the number of updates since creation or the last Reset.
func (f *Flock) Tick() uint64 {
	return f.tick
}

// Len returns the number of boids.
func (f *Flock) Len() int {
	return len(f.current)
}
