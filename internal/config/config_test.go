package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Geometry.Nr != 20 || cfg.Geometry.Nz != 20 {
		t.Errorf("expected 20 x 20 grid, got %d x %d", cfg.Geometry.Nr, cfg.Geometry.Nz)
	}
	if cfg.Time.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Time.Steps != 500 {
		t.Errorf("expected 500 steps, got %d", cfg.Time.Steps)
	}
	if err := cfg.Params().Validate(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}

func TestParamsDefaultSnapshots(t *testing.T) {
	p := DefaultConfig().Params()
	want := []int{0, 166, 333, 499}
	if len(p.Snapshots) != len(want) {
		t.Fatalf("snapshots = %v, want %v", p.Snapshots, want)
	}
	for i := range want {
		if p.Snapshots[i] != want[i] {
			t.Errorf("snapshots = %v, want %v", p.Snapshots, want)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("time:\n  steps: 120\nboundary:\n  top: 75\nsnapshots: [0, 10]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Time.Steps != 120 {
		t.Errorf("expected 120 steps, got %d", cfg.Time.Steps)
	}
	if cfg.Boundary.Top != 75 {
		t.Errorf("expected top 75, got %f", cfg.Boundary.Top)
	}
	if cfg.Boundary.Inner != 100 {
		t.Errorf("unset key should keep default, got inner %f", cfg.Boundary.Inner)
	}
	if len(cfg.Snapshots) != 2 {
		t.Errorf("expected 2 snapshots, got %v", cfg.Snapshots)
	}
}

func TestLoadINI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.ini")
	data := []byte("[geometry]\nnr = 12\n\n[boundary]\nouter = 5.5\n\n[solver]\ntolerance = 1e-4\nsnapshots = 0, 4, 8\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Geometry.Nr != 12 || cfg.Geometry.Nz != 20 {
		t.Errorf("grid = %d x %d, want 12 x 20", cfg.Geometry.Nr, cfg.Geometry.Nz)
	}
	if cfg.Boundary.Outer != 5.5 {
		t.Errorf("expected outer 5.5, got %f", cfg.Boundary.Outer)
	}
	if cfg.Tolerance != 1e-4 {
		t.Errorf("expected tolerance 1e-4, got %g", cfg.Tolerance)
	}
	if len(cfg.Snapshots) != 3 || cfg.Snapshots[2] != 8 {
		t.Errorf("snapshots = %v", cfg.Snapshots)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.Material.Conductivity = 16

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Material.Conductivity != 16 {
		t.Errorf("expected conductivity 16, got %f", got.Material.Conductivity)
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.SetParam("dt", 0.02); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetParam("nz", 31.9); err != nil {
		t.Fatal(err)
	}
	if cfg.Time.Dt != 0.02 || cfg.Geometry.Nz != 31 {
		t.Errorf("dt=%f nz=%d", cfg.Time.Dt, cfg.Geometry.Nz)
	}
	if err := cfg.SetParam("bogus", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if got := cfg.GetParams()["nz"]; got != 31 {
		t.Errorf("GetParams nz = %f", got)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("coarse")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Geometry.Nr != 10 {
		t.Errorf("expected nr 10, got %d", cfg.Geometry.Nr)
	}

	cfg.Geometry.Nr = 99
	if GetPreset("coarse").Geometry.Nr != 10 {
		t.Error("preset shared between calls")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Params().Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
