package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/san-kum/cylheat/internal/heat"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInnerRadius  = 0.1
	DefaultOuterRadius  = 0.2
	DefaultLength       = 0.5
	DefaultPoints       = 20
	DefaultDensity      = 7800.0
	DefaultSpecificHeat = 500.0
	DefaultConductivity = 50.0
	DefaultDt           = 0.01
	DefaultSteps        = 500
	DefaultTolerance    = 1e-6
)

type Config struct {
	Geometry      GeometryConfig `yaml:"geometry"`
	Material      MaterialConfig `yaml:"material"`
	Time          TimeConfig     `yaml:"time"`
	Boundary      BoundaryConfig `yaml:"boundary"`
	Tolerance     float64        `yaml:"tolerance"`
	Snapshots     []int          `yaml:"snapshots,omitempty"`
	ValidateField bool           `yaml:"validate_field"`
}

type GeometryConfig struct {
	InnerRadius float64 `yaml:"inner_radius"`
	OuterRadius float64 `yaml:"outer_radius"`
	Length      float64 `yaml:"length"`
	Nr          int     `yaml:"nr"`
	Nz          int     `yaml:"nz"`
}

type MaterialConfig struct {
	Density      float64 `yaml:"density"`
	SpecificHeat float64 `yaml:"specific_heat"`
	Conductivity float64 `yaml:"conductivity"`
}

type TimeConfig struct {
	Dt    float64 `yaml:"dt"`
	Steps int     `yaml:"steps"`
}

type BoundaryConfig struct {
	Initial float64 `yaml:"initial"`
	Inner   float64 `yaml:"inner"`
	Outer   float64 `yaml:"outer"`
	Bottom  float64 `yaml:"bottom"`
	Top     float64 `yaml:"top"`
}

func DefaultConfig() *Config {
	return &Config{
		Geometry: GeometryConfig{
			InnerRadius: DefaultInnerRadius,
			OuterRadius: DefaultOuterRadius,
			Length:      DefaultLength,
			Nr:          DefaultPoints,
			Nz:          DefaultPoints,
		},
		Material: MaterialConfig{
			Density:      DefaultDensity,
			SpecificHeat: DefaultSpecificHeat,
			Conductivity: DefaultConductivity,
		},
		Time: TimeConfig{Dt: DefaultDt, Steps: DefaultSteps},
		Boundary: BoundaryConfig{
			Initial: 50,
			Inner:   100,
			Outer:   20,
			Bottom:  100,
			Top:     40,
		},
		Tolerance:     DefaultTolerance,
		ValidateField: true,
	}
}

// Load reads a YAML file, or an INI file when the extension is .ini.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		return LoadINI(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadINI reads the sections [geometry], [material], [time], [boundary]
// and [solver].
func LoadINI(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return fromINI(file), nil
}

func fromINI(file *ini.File) *Config {
	d := DefaultConfig()
	geo := file.Section("geometry")
	mat := file.Section("material")
	tm := file.Section("time")
	bc := file.Section("boundary")
	sv := file.Section("solver")

	cfg := &Config{
		Geometry: GeometryConfig{
			InnerRadius: geo.Key("inner_radius").MustFloat64(d.Geometry.InnerRadius),
			OuterRadius: geo.Key("outer_radius").MustFloat64(d.Geometry.OuterRadius),
			Length:      geo.Key("length").MustFloat64(d.Geometry.Length),
			Nr:          geo.Key("nr").MustInt(d.Geometry.Nr),
			Nz:          geo.Key("nz").MustInt(d.Geometry.Nz),
		},
		Material: MaterialConfig{
			Density:      mat.Key("density").MustFloat64(d.Material.Density),
			SpecificHeat: mat.Key("specific_heat").MustFloat64(d.Material.SpecificHeat),
			Conductivity: mat.Key("conductivity").MustFloat64(d.Material.Conductivity),
		},
		Time: TimeConfig{
			Dt:    tm.Key("dt").MustFloat64(d.Time.Dt),
			Steps: tm.Key("steps").MustInt(d.Time.Steps),
		},
		Boundary: BoundaryConfig{
			Initial: bc.Key("initial").MustFloat64(d.Boundary.Initial),
			Inner:   bc.Key("inner").MustFloat64(d.Boundary.Inner),
			Outer:   bc.Key("outer").MustFloat64(d.Boundary.Outer),
			Bottom:  bc.Key("bottom").MustFloat64(d.Boundary.Bottom),
			Top:     bc.Key("top").MustFloat64(d.Boundary.Top),
		},
		Tolerance:     sv.Key("tolerance").MustFloat64(d.Tolerance),
		ValidateField: sv.Key("validate_field").MustBool(d.ValidateField),
	}
	if sv.HasKey("snapshots") {
		cfg.Snapshots = sv.Key("snapshots").Ints(",")
	}
	return cfg
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the file representation into solver parameters. An
// empty snapshot list becomes {0, n/3, 2n/3, n-1}.
func (c *Config) Params() heat.Params {
	snaps := c.Snapshots
	if len(snaps) == 0 {
		snaps = heat.DefaultSnapshots(c.Time.Steps)
	}
	return heat.Params{
		Geometry: heat.Geometry{
			InnerRadius: c.Geometry.InnerRadius,
			OuterRadius: c.Geometry.OuterRadius,
			Length:      c.Geometry.Length,
			Nr:          c.Geometry.Nr,
			Nz:          c.Geometry.Nz,
		},
		Material: heat.Material{
			Density:      c.Material.Density,
			SpecificHeat: c.Material.SpecificHeat,
			Conductivity: c.Material.Conductivity,
		},
		Boundary: heat.Boundary{
			Initial: c.Boundary.Initial,
			Inner:   c.Boundary.Inner,
			Outer:   c.Boundary.Outer,
			Bottom:  c.Boundary.Bottom,
			Top:     c.Boundary.Top,
		},
		Dt:            c.Time.Dt,
		Steps:         c.Time.Steps,
		Tolerance:     c.Tolerance,
		Snapshots:     append([]int(nil), snaps...),
		ValidateField: c.ValidateField,
	}
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Snapshots = append([]int(nil), c.Snapshots...)
	return &cp
}

// params maps a flat parameter name to its field.
func (c *Config) params() map[string]*float64 {
	return map[string]*float64{
		"inner_radius":  &c.Geometry.InnerRadius,
		"outer_radius":  &c.Geometry.OuterRadius,
		"length":        &c.Geometry.Length,
		"density":       &c.Material.Density,
		"specific_heat": &c.Material.SpecificHeat,
		"conductivity":  &c.Material.Conductivity,
		"dt":            &c.Time.Dt,
		"tolerance":     &c.Tolerance,
		"initial":       &c.Boundary.Initial,
		"inner":         &c.Boundary.Inner,
		"outer":         &c.Boundary.Outer,
		"bottom":        &c.Boundary.Bottom,
		"top":           &c.Boundary.Top,
	}
}

// GetParams returns every tunable parameter by name.
func (c *Config) GetParams() map[string]float64 {
	out := map[string]float64{
		"nr":    float64(c.Geometry.Nr),
		"nz":    float64(c.Geometry.Nz),
		"steps": float64(c.Time.Steps),
	}
	for k, p := range c.params() {
		out[k] = *p
	}
	return out
}

// SetParam sets a parameter by the names GetParams reports. Integer
// parameters are truncated.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "nr":
		c.Geometry.Nr = int(value)
		return nil
	case "nz":
		c.Geometry.Nz = int(value)
		return nil
	case "steps":
		c.Time.Steps = int(value)
		return nil
	}
	p, ok := c.params()[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s (available: %s)", name, strings.Join(ParamNames(), ", "))
	}
	*p = value
	return nil
}

// ParamNames lists the names accepted by SetParam, sorted.
func ParamNames() []string {
	names := make([]string, 0, 16)
	for k := range DefaultConfig().GetParams() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
