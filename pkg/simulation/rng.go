package simulation

import (
	"math/rand/v2"
	"time"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
)

// NewRNG creates a deterministic generator for seed.
// A zero seed is replaced by the current time.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// randomVector draws every component uniformly from [min, max).
func randomVector(r *rand.Rand, min, max float32) geometry.Vector3 {
	return geometry.Vector3{
		X: randomRange(r, min, max),
		Y: randomRange(r, min, max),
		Z: randomRange(r, min, max),
	}
}

func randomRange(r *rand.Rand, min, max float32) float32 {
	v := min + r.Float32()*(max-min)
	// float32 rounding can land exactly on max
	if v >= max {
		return min
	}
	return v
}
