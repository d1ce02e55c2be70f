package config

import "flag"

// Flags holds command-line overrides registered on a FlagSet.
// Zero values leave the loaded configuration untouched.
type Flags struct {
	ConfigPath string
	Debug      bool
	Backend    string
	Workers    int
	Scene      int
	Animation  int
	Time       float64
	Skeletons  bool
	MeshOnly   bool
}

// RegisterFlags adds the shared flags to fs and returns the struct they write into.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Backend, "backend", "", "GPU backend (memory or wgpu)")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel decoders")
	fs.IntVar(&f.Scene, "scene", -2, "Scene index (-1 for the default scene)")
	fs.IntVar(&f.Animation, "animation", -2, "Animation index (-1 for the rest pose)")
	fs.Float64Var(&f.Time, "time", -1, "Evaluation time in seconds")
	fs.BoolVar(&f.Skeletons, "skeletons", false, "Emit skeleton debug geometry")
	fs.BoolVar(&f.MeshOnly, "mesh-only", false, "Skip image decoding")
	return f
}

// Apply applies the overrides to cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Backend != "" {
		cfg.GPU.Backend = f.Backend
	}
	if f.Workers > 0 {
		cfg.Loader.Workers = f.Workers
	}
	if f.Scene >= -1 {
		cfg.Evaluation.Scene = f.Scene
	}
	if f.Animation >= -1 {
		cfg.Evaluation.Animation = f.Animation
	}
	if f.Time >= 0 {
		cfg.Evaluation.Time = float32(f.Time)
	}
	if f.Skeletons {
		cfg.Evaluation.Skeletons = true
	}
	if f.MeshOnly {
		cfg.Loader.LoadAll = false
	}
}

// LoadWithFlags loads the file named by the flags (or the standard locations) and applies the
// overrides on top.
func LoadWithFlags(f *Flags) (*Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
