package config

import "sort"

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"uniform": func() *Config {
		cfg := DefaultConfig()
		cfg.Boundary = BoundaryConfig{Initial: 50, Inner: 50, Outer: 50, Bottom: 50, Top: 50}
		return cfg
	},
	"symmetric": func() *Config {
		cfg := DefaultConfig()
		cfg.Boundary = BoundaryConfig{Initial: 50, Inner: 80, Outer: 80, Bottom: 100, Top: 100}
		return cfg
	},
	"coarse": func() *Config {
		cfg := DefaultConfig()
		cfg.Geometry.Nr, cfg.Geometry.Nz = 10, 10
		return cfg
	},
	"fine": func() *Config {
		cfg := DefaultConfig()
		cfg.Geometry.Nr, cfg.Geometry.Nz = 40, 40
		return cfg
	},
	"long": func() *Config {
		cfg := DefaultConfig()
		cfg.Time.Steps = 20000
		cfg.Time.Dt = 0.5
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
