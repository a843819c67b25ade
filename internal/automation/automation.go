package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/cylheat/internal/config"
	"github.com/san-kum/cylheat/internal/heat"
	"github.com/san-kum/cylheat/internal/metrics"
	"github.com/san-kum/cylheat/internal/storage"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of solver runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario: a preset with parameter
// overrides applied on top.
type ScenarioStep struct {
	Preset    string             `yaml:"preset"`
	Params    map[string]float64 `yaml:"params"`
	Snapshots []int              `yaml:"snapshots"`
	SaveAs    string             `yaml:"save_as"`
}

// Outcome is the result of one scenario step.
type Outcome struct {
	Step   int
	Config *config.Config
	Result *heat.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// StepConfig builds the config for one scenario step. An empty preset
// means the default one.
func StepConfig(step ScenarioStep) (*config.Config, error) {
	name := step.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	for k, v := range step.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	if len(step.Snapshots) > 0 {
		cfg.Snapshots = append([]int(nil), step.Snapshots...)
	}
	return cfg, nil
}

// RunScenario executes all steps in order. Steps with save_as are stored
// when store is non-nil. Outcomes completed before an error are returned
// with it.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.WithFields(log.Fields{
			"scenario": scenario.Name,
			"step":     fmt.Sprintf("%d/%d", i+1, len(scenario.Steps)),
			"preset":   step.Preset,
		}).Info("running scenario step")

		cfg, err := StepConfig(step)
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}

		solver, err := heat.New(cfg.Params())
		if err != nil {
			return outcomes, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		for _, m := range metrics.Default(cfg.Params().Boundary) {
			solver.AddMetric(m)
		}

		result, err := solver.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("step %d run: %w", i+1, err)
		}

		out := Outcome{Step: i + 1, Config: cfg, Result: result}
		if step.SaveAs != "" && store != nil {
			if out.RunID, err = store.Save(step.SaveAs, cfg, result); err != nil {
				return outcomes, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// ParameterSweep runs the solver across a linear range of one parameter
type ParameterSweep struct {
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult summarizes one sweep point
type SweepResult struct {
	ParamValue    float64
	Converged     bool
	ConvergedStep int
	StepsTaken    int
	LastChange    float64
	MeanTemp      float64
	MaxTemp       float64
}

// SweepValues returns the NumSteps values of the sweep, endpoints included.
func (s *ParameterSweep) SweepValues() []float64 {
	return heat.Linspace(s.ParamMin, s.ParamMax, s.NumSteps)
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	base, err := StepConfig(ScenarioStep{Preset: sweep.Preset})
	if err != nil {
		return nil, err
	}
	if _, ok := base.GetParams()[sweep.ParamName]; !ok {
		return nil, fmt.Errorf("unknown parameter: %s", sweep.ParamName)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i, v := range sweep.SweepValues() {
		cfg := base.Clone()
		if err := cfg.SetParam(sweep.ParamName, v); err != nil {
			return results, err
		}

		result, err := heat.Solve(ctx, cfg.Params())
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}

		results = append(results, SweepResult{
			ParamValue:    v,
			Converged:     result.Converged,
			ConvergedStep: result.ConvergedStep,
			StepsTaken:    result.StepsTaken,
			LastChange:    result.LastChange(),
			MeanTemp:      result.Final.Mean(),
			MaxTemp:       result.Final.Max(),
		})

		log.WithFields(log.Fields{
			"point":         fmt.Sprintf("%d/%d", i+1, sweep.NumSteps),
			sweep.ParamName: v,
		}).Info("sweep point done")
	}

	return results, nil
}

// MonteCarloConfig perturbs every boundary temperature uniformly by up to
// ±Perturbation per trial.
type MonteCarloConfig struct {
	Preset       string
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds one trial
type MonteCarloResult struct {
	TrialID  int
	Boundary heat.Boundary
	MeanTemp float64
	Bounded  bool // the field stayed within the boundary-value envelope
}

// RunMonteCarlo executes multiple trials with random boundary perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	base, err := StepConfig(ScenarioStep{Preset: cfg.Preset})
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	perturb := func(v float64) float64 {
		return v + (rng.Float64()-0.5)*2*cfg.Perturbation
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		p := base.Params()
		p.Boundary = heat.Boundary{
			Initial: perturb(p.Boundary.Initial),
			Inner:   perturb(p.Boundary.Inner),
			Outer:   perturb(p.Boundary.Outer),
			Bottom:  perturb(p.Boundary.Bottom),
			Top:     perturb(p.Boundary.Top),
		}

		solver, err := heat.New(p)
		if err != nil {
			return results, err
		}
		bounded := metrics.NewBounded(p.Boundary)
		solver.AddMetric(bounded)

		result, err := solver.Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, MonteCarloResult{
			TrialID:  trial,
			Boundary: p.Boundary,
			MeanTemp: result.Final.Mean(),
			Bounded:  result.Metrics[bounded.Name()] == 1,
		})

		if (trial+1)%10 == 0 {
			log.WithField("trials", fmt.Sprintf("%d/%d", trial+1, cfg.NumTrials)).Info("monte carlo progress")
		}
	}

	return results, nil
}

// MonteCarloStats counts bounded and unbounded trials
func MonteCarloStats(results []MonteCarloResult) (boundedCount int, unboundedCount int) {
	for _, r := range results {
		if r.Bounded {
			boundedCount++
		} else {
			unboundedCount++
		}
	}
	return
}
