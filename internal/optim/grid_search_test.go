package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cylheat/internal/config"
	"github.com/san-kum/cylheat/internal/heat"
)

func TestPoints(t *testing.T) {
	g := NewGridSearch([]string{"dt", "nr"}, [][]float64{{0.01, 0.02}, {8, 10, 12}})
	pts := g.Points()
	if len(pts) != 6 {
		t.Fatalf("expected 6 points, got %d", len(pts))
	}
	if pts[0]["dt"] != 0.01 || pts[0]["nr"] != 8 || pts[5]["dt"] != 0.02 || pts[5]["nr"] != 12 {
		t.Errorf("unexpected order: %v", pts)
	}
}

func TestNamedObjective(t *testing.T) {
	r := &heat.Result{
		History: []heat.HistoryEntry{{Step: 2, MaxChange: 0.5}},
		Metrics: map[string]float64{"bounded": 1},
	}
	if NamedObjective("last_change")(r) != 0.5 {
		t.Error("last_change")
	}
	if !math.IsInf(NamedObjective("converged_step")(r), 1) {
		t.Error("unconverged run should score +Inf")
	}
	if NamedObjective("bounded")(r) != 1 {
		t.Error("metric lookup")
	}
	if !math.IsInf(NamedObjective("missing")(r), 1) {
		t.Error("missing metric should score +Inf")
	}
}

func TestSearch(t *testing.T) {
	base := config.GetPreset("coarse")
	base.Time.Steps = 40

	// a larger dt moves the field further per step
	g := NewGridSearch([]string{"dt"}, [][]float64{{0.01, 0.05, 0.1}})
	maxChange := func(r *heat.Result) float64 { return -r.LastChange() }

	best, evals, err := g.Search(context.Background(), base, maxChange, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(evals) != 3 {
		t.Fatalf("expected 3 evaluations, got %d", len(evals))
	}
	if best.Params["dt"] != 0.1 {
		t.Errorf("expected dt=0.1 to win, got %v", best.Params)
	}
}

func TestSearchInvalidPoints(t *testing.T) {
	base := config.GetPreset("coarse")
	base.Time.Steps = 20

	g := NewGridSearch([]string{"nr"}, [][]float64{{3, 8}})
	best, evals, err := g.Search(context.Background(), base, NamedObjective("last_change"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(evals[0].Err, heat.ErrGridTooSmall) {
		t.Errorf("nr=3 should fail validation, got %v", evals[0].Err)
	}
	if best.Params["nr"] != 8 {
		t.Errorf("best = %v", best.Params)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, base, NamedObjective("last_change"), 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
