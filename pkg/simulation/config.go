package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema string

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the tunable parameters of a flock.
// It is never modified once the simulation starts and is passed explicitly to
// every call that needs it.
type Config struct {
	// World
	Size  int `json:"size" yaml:"size"`   // side of the cube, also the window size in pixels
	Count int `json:"count" yaml:"count"` // number of boids

	// Rule weights, any real number
	Alignment  float32 `json:"alignment" yaml:"alignment"`
	Cohesion   float32 `json:"cohesion" yaml:"cohesion"`
	Roosting   float32 `json:"roosting" yaml:"roosting"`
	Separation float32 `json:"separation" yaml:"separation"`

	// Sensing radii
	Neighbourhood   float32 `json:"neighbourhood" yaml:"neighbourhood"`       // cohesion/alignment radius
	SeparationRange float32 `json:"separation_range" yaml:"separation_range"` // must not exceed Neighbourhood

	// Kinematics
	Velocity  float32 `json:"velocity" yaml:"velocity"`       // max speed before wind
	Wind      float32 `json:"wind" yaml:"wind"`               // max wind magnitude
	DeltaZMax float32 `json:"delta_z_max" yaml:"delta_z_max"` // max vertical share of a vector's length

	// Execution
	Workers int   `json:"workers" yaml:"workers"` // goroutines for the per-boid step, <= 1 runs inline
	Seed    int64 `json:"seed" yaml:"seed"`       // 0 picks a time-based seed
}

func DefaultConfig() *Config {
	return &Config{
		Size:            800,
		Count:           1500,
		Alignment:       1.0,
		Cohesion:        0.2,
		Roosting:        0.1,
		Separation:      15.0,
		Neighbourhood:   50.0,
		SeparationRange: 5.0,
		Velocity:        4.0,
		Wind:            0.2,
		DeltaZMax:       0.5,
		Workers:         1,
		Seed:            0,
	}
}

// Validate rejects configurations the flock cannot run meaningfully.
// The flock itself never checks its input, this is the place to do it.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	for _, f := range c.floatFields() {
		check(isFinite(f.value), "%s must be a finite number, got %g", f.name, f.value)
	}
	check(c.Size > 0, "size must be positive, got %d", c.Size)
	check(c.Count >= 0, "count must not be negative, got %d", c.Count)
	check(c.Neighbourhood > 0, "neighbourhood must be positive, got %g", c.Neighbourhood)
	check(c.SeparationRange > 0, "separation_range must be positive, got %g", c.SeparationRange)
	check(c.SeparationRange <= c.Neighbourhood,
		"separation_range (%g) must not exceed neighbourhood (%g)", c.SeparationRange, c.Neighbourhood)
	check(c.Velocity > 0, "velocity must be positive, got %g", c.Velocity)
	check(c.Wind >= 0, "wind must not be negative, got %g", c.Wind)
	check(c.DeltaZMax >= 0, "delta_z_max must not be negative, got %g", c.DeltaZMax)
	check(c.Workers >= 0, "workers must not be negative, got %d", c.Workers)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

type namedFloat struct {
	name  string
	value float32
}

func (c *Config) floatFields() []namedFloat {
	return []namedFloat{
		{"alignment", c.Alignment},
		{"cohesion", c.Cohesion},
		{"roosting", c.Roosting},
		{"separation", c.Separation},
		{"neighbourhood", c.Neighbourhood},
		{"separation_range", c.SeparationRange},
		{"velocity", c.Velocity},
		{"wind", c.Wind},
		{"delta_z_max", c.DeltaZMax},
	}
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Center returns the roost point, the middle of the cube.
func (c *Config) Center() geometry.Vector3 {
	half := float32(c.Size) / 2
	return geometry.Vector3{X: half, Y: half, Z: half}
}

// LoadConfig loads a JSON or YAML configuration file, validates it against the
// embedded schema and lays its values over DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. Normalize to JSON, the schema speaks JSON only
	b, err := toJSON(configFile, raw)
	if err != nil {
		return nil, err
	}

	// 4. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 5. Unmarshal over the defaults so omitted keys keep their default value
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toJSON(name string, raw []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return raw, nil
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
		if doc == nil {
			// empty document
			return []byte("{}"), nil
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert config yaml: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(name))
	}
}

// WriteYAML saves the configuration as YAML, so a run can be reproduced.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
