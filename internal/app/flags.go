package app

import (
	"flag"
	"fmt"

	"lifetrace/internal/config"
)

// Flags represents the command-line parameters of the viewer.
type Flags struct {
	File     string
	Config   string
	Set      string
	Scale    int
	TPS      int
	Density  float64
	Seed     int64
	LogLevel string
}

// NewFlags returns Flags populated with defaults. Zero Scale and TPS defer
// to the config file.
func NewFlags() *Flags {
	return &Flags{Seed: 42}
}

// Bind attaches the flags to the provided FlagSet.
func (f *Flags) Bind(fs *flag.FlagSet) {
	fs.StringVar(&f.File, "file", f.File, "board file to open, binary or text; S saves it back, T writes a .txt copy")
	fs.StringVar(&f.Config, "config", f.Config, "YAML config file overlaid on the defaults")
	fs.StringVar(&f.Set, "set", f.Set, "comma separated config overrides, e.g. width=80,min=1")
	fs.IntVar(&f.Scale, "scale", f.Scale, "pixel scale multiplier")
	fs.IntVar(&f.TPS, "tps", f.TPS, "frames per second")
	fs.Float64Var(&f.Density, "density", f.Density, "seed a new board with this fraction of live cells")
	fs.Int64Var(&f.Seed, "seed", f.Seed, "random seed for --density")
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "log level: info, debug or trace")
}

// Resolve loads the config named by the flags and applies every override.
func (f *Flags) Resolve() (config.Config, error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return cfg, err
	}
	kv, err := config.ParsePairs(f.Set)
	if err != nil {
		return cfg, err
	}
	if f.Scale > 0 {
		kv["scale"] = fmt.Sprint(f.Scale)
	}
	if f.TPS > 0 {
		kv["tps"] = fmt.Sprint(f.TPS)
	}
	if f.LogLevel != "" {
		kv["log_level"] = f.LogLevel
	}
	return config.FromMap(cfg, kv)
}
