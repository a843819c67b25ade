package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/san-kum/cylheat/internal/config"
	"github.com/san-kum/cylheat/internal/heat"
	"github.com/san-kum/cylheat/internal/metrics"
)

// Objective scores a finished run; lower is better.
type Objective func(*heat.Result) float64

// NamedObjective resolves an objective by name: "last_change",
// "converged_step" (+Inf when the run did not converge) or any metric
// attached to the run.
func NamedObjective(name string) Objective {
	switch name {
	case "last_change":
		return func(r *heat.Result) float64 { return r.LastChange() }
	case "converged_step":
		return func(r *heat.Result) float64 {
			if !r.Converged {
				return math.Inf(1)
			}
			return float64(r.ConvergedStep)
		}
	}
	return func(r *heat.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Evaluation is one grid point. Err is set when the point could not be
// solved, e.g. because the override made the setup invalid.
type Evaluation struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Points enumerates the grid, last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.pointsRecursive(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) pointsRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.pointsRecursive(depth+1, newParams, out)
	}
}

// Search solves every grid point on top of base with up to workers
// concurrent runs (GOMAXPROCS when workers <= 0) and returns the best
// point along with all evaluations in grid order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective, workers int) (Evaluation, []Evaluation, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Evaluation{}, nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	points := g.Points()
	evals := make([]Evaluation, len(points))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, pt := range points {
		wg.Add(1)
		go func(idx int, pt map[string]float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			evals[idx] = evaluate(ctx, base, pt, objective)
		}(i, pt)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Evaluation{}, evals, err
	}

	best := Evaluation{Value: math.Inf(1)}
	for _, e := range evals {
		if e.Err == nil && e.Value < best.Value {
			best = e
		}
	}
	if best.Params == nil {
		return best, evals, fmt.Errorf("no grid point produced a finite objective")
	}
	return best, evals, nil
}

func evaluate(ctx context.Context, base *config.Config, pt map[string]float64, objective Objective) Evaluation {
	e := Evaluation{Params: pt, Value: math.Inf(1)}

	cfg := base.Clone()
	for _, name := range sortedNames(pt) {
		if err := cfg.SetParam(name, pt[name]); err != nil {
			e.Err = err
			return e
		}
	}

	params := cfg.Params()
	s, err := heat.New(params)
	if err != nil {
		e.Err = err
		return e
	}
	for _, m := range metrics.Default(params.Boundary) {
		s.AddMetric(m)
	}

	res, err := s.Run(ctx)
	if err != nil {
		e.Err = err
		return e
	}
	e.Value = objective(res)
	return e
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
