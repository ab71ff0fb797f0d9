package simulation

import (
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero size", func(c *Config) { c.Size = 0 }, "size"},
		{"negative count", func(c *Config) { c.Count = -1 }, "count"},
		{"separation wider than neighbourhood", func(c *Config) { c.SeparationRange = 60 }, "separation_range"},
		{"zero neighbourhood", func(c *Config) { c.Neighbourhood = 0 }, "neighbourhood"},
		{"zero velocity", func(c *Config) { c.Velocity = 0 }, "velocity"},
		{"negative wind", func(c *Config) { c.Wind = -1 }, "wind"},
		{"negative slope", func(c *Config) { c.DeltaZMax = -0.1 }, "delta_z_max"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v; want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() = %q; should mention %q", err, tt.field)
			}
		})
	}

	t.Run("negative weights are allowed", func(t *testing.T) {
		c := DefaultConfig()
		c.Cohesion = -1
		c.Separation = -3
		if err := c.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("zero wind and slope are allowed", func(t *testing.T) {
		c := DefaultConfig()
		c.Wind = 0
		c.DeltaZMax = 0
		if err := c.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("zero count is allowed", func(t *testing.T) {
		c := DefaultConfig()
		c.Count = 0
		if err := c.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("json overrides defaults", func(t *testing.T) {
		path := writeFile(t, "flock.json", `{"count": 42, "cohesion": 0.75, "separation_range": 2.5}`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Count != 42 || cfg.Cohesion != 0.75 || cfg.SeparationRange != 2.5 {
			t.Errorf("LoadConfig() = %+v; file values not applied", cfg)
		}
		if cfg.Size != DefaultConfig().Size || cfg.Velocity != DefaultConfig().Velocity {
			t.Errorf("LoadConfig() = %+v; omitted keys lost their default", cfg)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "flock.yaml", "size: 400\ncount: 10\nwind: 1.5\ndelta_z_max: 0.25\n")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Size != 400 || cfg.Count != 10 || cfg.Wind != 1.5 || cfg.DeltaZMax != 0.25 {
			t.Errorf("LoadConfig() = %+v; yaml values not applied", cfg)
		}
	})

	t.Run("empty yaml gives defaults", func(t *testing.T) {
		path := writeFile(t, "empty.yml", "")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if *cfg != *DefaultConfig() {
			t.Errorf("LoadConfig() = %+v; want defaults", cfg)
		}
	})

	failures := []struct {
		name, file, content string
	}{
		{"unknown key", "bad.json", `{"colour": "red"}`},
		{"wrong type", "bad.json", `{"count": "many"}`},
		{"fractional count", "bad.yaml", "count: 1.5\n"},
		{"negative velocity", "bad.json", `{"velocity": -1}`},
		{"semantic check", "bad.json", `{"neighbourhood": 3, "separation_range": 4}`},
		{"broken json", "bad.json", `{"count": `},
		{"unsupported extension", "flock.toml", `count = 3`},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig(%s) should fail", tt.content)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("LoadConfig() on a missing file should fail")
		}
	})
}

func TestConfig_WriteYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 77
	cfg.Seed = 123

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip = %+v; want %+v", loaded, cfg)
	}
}

func TestBindFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	apply := BindFlags(fs)

	if err := fs.Parse([]string{"-count", "12", "-separation_range", "2.5", "-seed", "9"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	dst := DefaultConfig()
	dst.Cohesion = 0.9 // pretend this came from a config file
	dst.Count = 500
	apply(dst)

	if dst.Count != 12 || dst.SeparationRange != 2.5 || dst.Seed != 9 {
		t.Errorf("flags not applied: %+v", dst)
	}
	if dst.Cohesion != 0.9 {
		t.Errorf("unset flag overwrote cohesion: got %v", dst.Cohesion)
	}
}

func TestBindFlags_RejectsBadFloat(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})
	BindFlags(fs)

	if err := fs.Parse([]string{"-wind", "gusty"}); err == nil {
		t.Error("Parse() should reject a non-numeric wind")
	}
}

func TestConfig_ValidateRejectsNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := []struct {
		field string
		set   func(c *Config)
	}{
		{"alignment", func(c *Config) { c.Alignment = nan }},
		{"cohesion", func(c *Config) { c.Cohesion = nan }},
		{"roosting", func(c *Config) { c.Roosting = -inf }},
		{"separation", func(c *Config) { c.Separation = inf }},
		{"neighbourhood", func(c *Config) { c.Neighbourhood = inf }},
		{"separation_range", func(c *Config) { c.SeparationRange = nan }},
		{"velocity", func(c *Config) { c.Velocity = inf }},
		{"wind", func(c *Config) { c.Wind = nan }},
		{"delta_z_max", func(c *Config) { c.DeltaZMax = inf }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			c := DefaultConfig()
			tt.set(c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v; want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.field+" must be a finite number") {
				t.Errorf("Validate() = %q; should name %q as not finite", err, tt.field)
			}
		})
	}
}

func TestBindFlags_NonFiniteFailsValidation(t *testing.T) {
	for _, args := range [][]string{
		{"-cohesion", "NaN"},
		{"-neighbourhood", "+Inf"},
	} {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		apply := BindFlags(fs)
		if err := fs.Parse(args); err != nil {
			t.Fatalf("Parse(%v) error = %v", args, err)
		}
		cfg := DefaultConfig()
		apply(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate() after %v = %v; want ErrInvalidConfig", args, err)
		}
	}
}
