package simulation

import "github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// https://en.wikipedia.org/wiki/Boids
//
// A Boid is a value: a tick never mutates it, it builds a new one from the
// previous tick's snapshot.
type Boid struct {
	Position geometry.Vector3 `json:"position"`
	Velocity geometry.Vector3 `json:"velocity"`
}

// Next computes the state of b one tick later.
//
// flock is the full pre-tick snapshot and self the index of b inside it; the
// boid at that index is excluded from the neighbour scan. Pass -1 when b is
// not part of flock. Next has no side effects and never fails: degenerate
// inputs end up as zero vectors or very large separation terms.
func (b Boid) Next(flock []Boid, self int, wind, center geometry.Vector3, cfg *Config) Boid {
	next, _ := b.next(flock, self, wind, center, cfg, nil)
	return next
}

// next is Next with a reusable buffer for neighbour indices. It returns the
// buffer, possibly grown, for the following call.
func (b Boid) next(flock []Boid, self int, wind, center geometry.Vector3, cfg *Config, scratch []int) (Boid, []int) {
	neighbours := b.neighbours(flock, self, cfg.Neighbourhood, scratch[:0])

	align := alignment(flock, neighbours)
	cohere := b.cohesion(flock, neighbours)
	roost := b.roosting(center)
	separate := b.separation(flock, neighbours, cfg.SeparationRange)

	v := b.Velocity.
		Add(align.Mul(cfg.Alignment)).
		Add(cohere.Mul(cfg.Cohesion)).
		Add(roost.Mul(cfg.Roosting)).
		Add(separate.Mul(cfg.Separation))

	v.ClampMagnitude(cfg.Velocity)
	v = v.ClampSlope(cfg.DeltaZMax)

	// wind is applied at full strength after the clamps
	v = v.Add(wind)

	return Boid{Position: b.Position.Add(v), Velocity: v}, neighbours
}

// neighbours appends to dst the index of every boid strictly closer than radius.
// The scan is a brute-force pass over the whole flock.
func (b Boid) neighbours(flock []Boid, self int, radius float32, dst []int) []int {
	for i := range flock {
		if i == self {
			continue
		}
		if flock[i].Position.DistanceTo(b.Position) < radius {
			dst = append(dst, i)
		}
	}
	return dst
}

// alignment steers toward the summed heading of the neighbours.
func alignment(flock []Boid, neighbours []int) geometry.Vector3 {
	var v geometry.Vector3
	for _, i := range neighbours {
		v = v.Add(flock[i].Velocity)
	}
	return v.Normalized()
}

// cohesion steers toward the centroid of the neighbours.
func (b Boid) cohesion(flock []Boid, neighbours []int) geometry.Vector3 {
	return b.neighbourhoodCenter(flock, neighbours).Sub(b.Position).Normalized()
}

func (b Boid) neighbourhoodCenter(flock []Boid, neighbours []int) geometry.Vector3 {
	if len(neighbours) == 0 {
		return b.Position
	}
	var c geometry.Vector3
	for _, i := range neighbours {
		c = c.Add(flock[i].Position)
	}
	return c.Div(float32(len(neighbours)))
}

// roosting steers toward the fixed center of the world.
func (b Boid) roosting(center geometry.Vector3) geometry.Vector3 {
	return center.Sub(b.Position).Normalized()
}

// separation pushes away from the neighbours inside rng. Each nonzero axis of
// the offset becomes rng/offset, so the push grows without bound as a
// neighbour gets closer on that axis. The result is not normalized.
func (b Boid) separation(flock []Boid, neighbours []int, rng float32) geometry.Vector3 {
	var v geometry.Vector3
	for _, i := range neighbours {
		other := flock[i].Position
		if other.DistanceTo(b.Position) > rng {
			continue
		}
		d := other.Sub(b.Position)
		if d.X != 0 {
			d.X = rng / d.X
		}
		if d.Y != 0 {
			d.Y = rng / d.Y
		}
		if d.Z != 0 {
			d.Z = rng / d.Z
		}
		v = v.Sub(d)
	}
	return v
}
