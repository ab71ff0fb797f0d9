// Package telemetry derives summary statistics from a flock and records them as CSV.
package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

// FlockStats summarizes the flock at one tick.
type FlockStats struct {
	Tick  uint64 `csv:"tick"`
	Boids int    `csv:"boids"`

	// Speed distribution
	MeanSpeed float64 `csv:"mean_speed"`
	SpeedStd  float64 `csv:"speed_std"`

	// Polarization is |Σ v/|v|| / n: 1 when every boid heads the same way,
	// near 0 for random headings.
	Polarization float64 `csv:"polarization"`

	// Spread around the roost point
	MeanRoostDistance float64 `csv:"mean_roost_distance"`
	MaxRoostDistance  float64 `csv:"max_roost_distance"`

	// Altitude (z) distribution
	AltitudeMean float64 `csv:"altitude_mean"`
	AltitudeStd  float64 `csv:"altitude_std"`

	WindSpeed float64 `csv:"wind_speed"`
}

// Compute calculates the statistics of boids around center.
// An empty flock yields zero values, not NaN.
func Compute(tick uint64, boids []simulation.Boid, center, wind geometry.Vector3) FlockStats {
	s := FlockStats{
		Tick:      tick,
		Boids:     len(boids),
		WindSpeed: float64(wind.Len()),
	}
	n := len(boids)
	if n == 0 {
		return s
	}

	speeds := make([]float64, n)
	distances := make([]float64, n)
	altitudes := make([]float64, n)
	var heading geometry.Vector3

	for i, b := range boids {
		speeds[i] = float64(b.Velocity.Len())
		distances[i] = float64(b.Position.DistanceTo(center))
		altitudes[i] = float64(b.Position.Z)
		heading = heading.Add(b.Velocity.Normalized())
	}

	s.MeanSpeed, s.SpeedStd = meanStd(speeds)
	s.AltitudeMean, s.AltitudeStd = meanStd(altitudes)
	s.MeanRoostDistance = stat.Mean(distances, nil)
	s.MaxRoostDistance = floats.Max(distances)
	s.Polarization = float64(heading.Len()) / float64(n)

	return s
}

// FromFlock is Compute applied to the flock's current state.
func FromFlock(f *simulation.Flock) FlockStats {
	return Compute(f.Tick(), f.Boids(), f.Center(), f.Wind())
}

// meanStd is stat.MeanStdDev without the NaN a single sample produces.
func meanStd(x []float64) (mean, std float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}
