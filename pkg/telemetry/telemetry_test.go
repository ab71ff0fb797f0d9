package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) <= 1e-5
}

func TestCompute(t *testing.T) {
	boids := []simulation.Boid{
		{Position: geometry.Vector3{X: 10, Y: 0, Z: 0}, Velocity: geometry.Vector3{X: 3}},
		{Position: geometry.Vector3{X: 0, Y: 0, Z: 20}, Velocity: geometry.Vector3{X: 1}},
	}
	wind := geometry.Vector3{X: 0.3, Y: 0.4}

	s := Compute(7, boids, geometry.Zero, wind)

	if s.Tick != 7 || s.Boids != 2 {
		t.Errorf("Tick/Boids = %d/%d; want 7/2", s.Tick, s.Boids)
	}
	if !almost(s.MeanSpeed, 2) {
		t.Errorf("MeanSpeed = %v; want 2", s.MeanSpeed)
	}
	// sample standard deviation of {3, 1}
	if !almost(s.SpeedStd, math.Sqrt2) {
		t.Errorf("SpeedStd = %v; want %v", s.SpeedStd, math.Sqrt2)
	}
	if !almost(s.Polarization, 1) {
		t.Errorf("Polarization = %v; want 1 for parallel headings", s.Polarization)
	}
	if !almost(s.MeanRoostDistance, 15) || !almost(s.MaxRoostDistance, 20) {
		t.Errorf("roost distance mean/max = %v/%v; want 15/20", s.MeanRoostDistance, s.MaxRoostDistance)
	}
	if !almost(s.AltitudeMean, 10) {
		t.Errorf("AltitudeMean = %v; want 10", s.AltitudeMean)
	}
	if !almost(s.WindSpeed, 0.5) {
		t.Errorf("WindSpeed = %v; want 0.5", s.WindSpeed)
	}
}

func TestCompute_OpposedHeadings(t *testing.T) {
	boids := []simulation.Boid{
		{Velocity: geometry.Vector3{X: 1}},
		{Velocity: geometry.Vector3{X: -2}},
	}
	if s := Compute(0, boids, geometry.Zero, geometry.Zero); !almost(s.Polarization, 0) {
		t.Errorf("Polarization = %v; want 0", s.Polarization)
	}
}

func TestCompute_SmallFlocks(t *testing.T) {
	empty := Compute(3, nil, geometry.Zero, geometry.Zero)
	if empty.Boids != 0 || empty.MeanSpeed != 0 || empty.Polarization != 0 {
		t.Errorf("empty flock stats = %+v; want zeros", empty)
	}

	one := Compute(0, []simulation.Boid{{Velocity: geometry.Vector3{Y: 2}}}, geometry.Zero, geometry.Zero)
	if math.IsNaN(one.SpeedStd) || one.SpeedStd != 0 {
		t.Errorf("single boid SpeedStd = %v; want 0", one.SpeedStd)
	}
	if !almost(one.MeanSpeed, 2) {
		t.Errorf("single boid MeanSpeed = %v; want 2", one.MeanSpeed)
	}
}

func TestFromFlock(t *testing.T) {
	cfg := simulation.DefaultConfig()
	cfg.Count = 30
	cfg.Size = 100
	f := simulation.NewFlock(cfg, simulation.NewRNG(4))
	f.Update(cfg)

	s := FromFlock(f)
	if s.Tick != 1 || s.Boids != 30 {
		t.Errorf("FromFlock() tick/boids = %d/%d; want 1/30", s.Tick, s.Boids)
	}
	if s.Polarization < 0 || s.Polarization > 1+1e-6 {
		t.Errorf("Polarization %v outside [0, 1]", s.Polarization)
	}
}

func TestRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	r, err := NewRecorder(dir)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	for tick := uint64(1); tick <= 3; tick++ {
		if err := r.Write(FlockStats{Tick: tick, Boids: 5, MeanSpeed: float64(tick)}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := r.WriteConfig(simulation.DefaultConfig()); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}
	if r.Rows() != 3 {
		t.Errorf("Rows() = %d; want 3", r.Rows())
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rows, err := ReadAll(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("read %d rows; want 3 (one header only)", len(rows))
	}
	if rows[2].Tick != 3 || rows[2].MeanSpeed != 3 {
		t.Errorf("last row = %+v", rows[2])
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
	if _, err := simulation.LoadConfig(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml does not load back: %v", err)
	}
}

func TestRecorder_Disabled(t *testing.T) {
	r, err := NewRecorder("")
	if err != nil || r != nil {
		t.Fatalf("NewRecorder(\"\") = %v, %v; want nil, nil", r, err)
	}
	if err := r.Write(FlockStats{}); err != nil {
		t.Errorf("Write on nil recorder = %v", err)
	}
	if err := r.WriteConfig(simulation.DefaultConfig()); err != nil {
		t.Errorf("WriteConfig on nil recorder = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil recorder = %v", err)
	}
	if r.Rows() != 0 || r.Dir() != "" {
		t.Error("nil recorder should report nothing")
	}
}
