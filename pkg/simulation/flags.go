package simulation

import (
	"flag"
	"strconv"
)

// float32Value adapts a float32 to flag.Value, the flag package only knows float64.
type float32Value float32

func (f *float32Value) Set(s string) error {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*f = float32Value(v)
	return nil
}

func (f *float32Value) String() string {
	return strconv.FormatFloat(float64(*f), 'g', -1, 32)
}

// BindFlags registers one flag per Config option on fs, with the defaults of
// DefaultConfig. The returned function copies onto dst only the options that
// were set explicitly on the command line, so flags override a config file
// option by option. Call it after fs.Parse.
func BindFlags(fs *flag.FlagSet) func(dst *Config) {
	src := DefaultConfig()
	copiers := map[string]func(dst *Config){}

	intFlag := func(name string, p *int, usage string, cp func(dst *Config)) {
		fs.IntVar(p, name, *p, usage)
		copiers[name] = cp
	}
	floatFlag := func(name string, p *float32, usage string, cp func(dst *Config)) {
		fs.Var((*float32Value)(p), name, usage)
		copiers[name] = cp
	}

	intFlag("size", &src.Size, "side of the simulated cube and of the window, in pixels",
		func(dst *Config) { dst.Size = src.Size })
	intFlag("count", &src.Count, "number of boids",
		func(dst *Config) { dst.Count = src.Count })
	floatFlag("alignment", &src.Alignment, "weight of the alignment rule",
		func(dst *Config) { dst.Alignment = src.Alignment })
	floatFlag("cohesion", &src.Cohesion, "weight of the cohesion rule",
		func(dst *Config) { dst.Cohesion = src.Cohesion })
	floatFlag("roosting", &src.Roosting, "weight of the pull toward the center",
		func(dst *Config) { dst.Roosting = src.Roosting })
	floatFlag("separation", &src.Separation, "weight of the separation rule",
		func(dst *Config) { dst.Separation = src.Separation })
	floatFlag("neighbourhood", &src.Neighbourhood, "sensing radius for cohesion and alignment",
		func(dst *Config) { dst.Neighbourhood = src.Neighbourhood })
	floatFlag("separation_range", &src.SeparationRange, "sensing radius for separation",
		func(dst *Config) { dst.SeparationRange = src.SeparationRange })
	floatFlag("velocity", &src.Velocity, "maximum boid speed before wind",
		func(dst *Config) { dst.Velocity = src.Velocity })
	floatFlag("wind", &src.Wind, "maximum wind speed",
		func(dst *Config) { dst.Wind = src.Wind })
	floatFlag("delta_z_max", &src.DeltaZMax, "maximum vertical share of speed and wind",
		func(dst *Config) { dst.DeltaZMax = src.DeltaZMax })
	intFlag("workers", &src.Workers, "goroutines computing a tick (<= 1 runs inline)",
		func(dst *Config) { dst.Workers = src.Workers })
	fs.Int64Var(&src.Seed, "seed", src.Seed, "RNG seed (0 = time-based)")
	copiers["seed"] = func(dst *Config) { dst.Seed = src.Seed }

	return func(dst *Config) {
		fs.Visit(func(f *flag.Flag) {
			if cp, ok := copiers[f.Name]; ok {
				cp(dst)
			}
		})
	}
}
