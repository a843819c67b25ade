package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/cylheat/internal/storage"
)

const scenarioYAML = `
name: coarse-pair
description: two short coarse runs
steps:
  - preset: coarse
    params:
      steps: 20
    save_as: first
  - preset: uniform
    params:
      nr: 8
      nz: 8
      steps: 20
    snapshots: [0, 5]
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "coarse-pair" || len(s.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", s)
	}
	if s.Steps[1].Params["nr"] != 8 {
		t.Error("params not parsed")
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
}

func TestStepConfig(t *testing.T) {
	cfg, err := StepConfig(ScenarioStep{Params: map[string]float64{"dt": 0.02}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Time.Dt != 0.02 {
		t.Errorf("dt override not applied: %v", cfg.Time.Dt)
	}

	if _, err := StepConfig(ScenarioStep{Preset: "nope"}); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := StepConfig(ScenarioStep{Params: map[string]float64{"bogus": 1}}); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRunScenario(t *testing.T) {
	s, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	outcomes, err := RunScenario(context.Background(), s, store)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	if outcomes[0].RunID == "" {
		t.Error("first step should have been saved")
	}
	if outcomes[1].RunID != "" {
		t.Error("second step has no save_as")
	}
	if got := outcomes[0].Result.StepsTaken; got != 16 {
		t.Errorf("expected 16 steps, got %d", got)
	}

	uniform := outcomes[1].Result
	if !uniform.Converged || uniform.ConvergedStep != 2 {
		t.Errorf("uniform preset should converge at step 2, got %v/%d", uniform.Converged, uniform.ConvergedStep)
	}
	if uniform.Metrics["bounded"] != 1 {
		t.Errorf("bounded metric = %v", uniform.Metrics["bounded"])
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Preset:    "coarse",
		ParamName: "inner",
		ParamMin:  60,
		ParamMax:  100,
		NumSteps:  3,
	}
	if v := sweep.SweepValues(); len(v) != 3 || v[1] != 80 {
		t.Fatalf("unexpected sweep values %v", v)
	}

	// the default 500-step budget on a 10x10 grid stays quick
	results, err := RunSweep(context.Background(), sweep)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !(results[0].MeanTemp < results[2].MeanTemp) {
		t.Errorf("hotter inner wall should raise the mean: %v vs %v", results[0].MeanTemp, results[2].MeanTemp)
	}

	bad := *sweep
	bad.ParamName = "bogus"
	if _, err := RunSweep(context.Background(), &bad); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{Preset: "coarse", Perturbation: 5, NumTrials: 4, Seed: 42}
	a, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(a))
	}
	for i := range a {
		if a[i].Boundary != b[i].Boundary {
			t.Error("same seed should give the same perturbations")
		}
	}

	in, out := MonteCarloStats(a)
	if in+out != 4 {
		t.Errorf("stats do not add up: %d + %d", in, out)
	}
}
