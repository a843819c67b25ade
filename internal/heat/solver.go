package heat

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Solver runs the explicit time loop. The two field buffers are allocated
// once in New and swap roles after every sweep.
type Solver struct {
	params    Params
	mesh      *Mesh
	coef      Coefficients
	alpha     float64
	cur, next *Field
	metrics   []Metric
	observers []Observer
}

func New(p Params) (*Solver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	mesh := NewMesh(p.Geometry)
	alpha := p.Material.Diffusivity()
	return &Solver{
		params:    p,
		mesh:      mesh,
		alpha:     alpha,
		coef:      NewCoefficients(alpha, p.Dt, mesh.Dr, mesh.Dz),
		cur:       NewField(p.Geometry.Nr, p.Geometry.Nz),
		next:      NewField(p.Geometry.Nr, p.Geometry.Nz),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func (s *Solver) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Solver) Mesh() *Mesh { return s.mesh }

// Solve is shorthand for New followed by Run.
func Solve(ctx context.Context, p Params) (*Result, error) {
	s, err := New(p)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// Run initializes both buffers, then steps over [StencilMargin,
// Steps-StencilMargin) until the step budget is spent or the max change
// drops below the tolerance. On cancellation or a non-finite field the
// partial result is returned together with the error.
func (s *Solver) Run(ctx context.Context) (*Result, error) {
	p := s.params
	start := time.Now()

	ApplyBoundaries(s.cur, p.Boundary)
	if err := s.next.CopyFrom(s.cur); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		Mesh:    s.mesh,
		History: make([]HistoryEntry, 0, p.Steps),
		Metrics: make(map[string]float64),
		Alpha:   s.alpha,
	}
	snaps := newSnapshotSet(p.Snapshots)
	snaps.capture(0, s.cur)

	log.WithFields(log.Fields{
		"nr":    p.Geometry.Nr,
		"nz":    p.Geometry.Nz,
		"alpha": s.alpha,
		"dt":    p.Dt,
		"steps": p.Steps,
	}).Info("solver started")

	var runErr error
	for t := StencilMargin; t < p.Steps-StencilMargin; t++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if _, err := Sweep(s.next, s.cur, s.coef); err != nil {
			return nil, err
		}
		change, err := MaxAbsDiff(s.next, s.cur)
		if err != nil {
			return nil, err
		}
		s.cur, s.next = s.next, s.cur

		result.History = append(result.History, HistoryEntry{Step: t, MaxChange: change})
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(s.cur, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(t, s.cur, change)
		}
		log.WithFields(log.Fields{"step": t, "max_change": change}).Debug("step")

		if p.ValidateField && !s.cur.IsFinite() {
			runErr = &SolveError{Step: t, Wrapped: ErrNonFinite}
			break
		}

		snaps.capture(t, s.cur)

		if change < p.Tolerance {
			result.Converged = true
			result.ConvergedStep = t
			log.WithField("step", t).Info("solution converged")
			break
		}
	}

	result.Final = s.cur.Clone()
	result.Snapshots = snaps.finish(result.Final)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)

	if !result.Converged && runErr == nil {
		log.WithField("last_change", result.LastChange()).Info("step budget exhausted")
	}
	return result, runErr
}

// snapshotSet keeps requested steps in request order.
type snapshotSet struct {
	order []int
	taken map[int]*Field
}

func newSnapshotSet(steps []int) *snapshotSet {
	return &snapshotSet{order: steps, taken: make(map[int]*Field, len(steps))}
}

func (s *snapshotSet) capture(step int, f *Field) {
	for _, want := range s.order {
		if want == step {
			if _, ok := s.taken[step]; !ok {
				s.taken[step] = f.Clone()
			}
			return
		}
	}
}

func (s *snapshotSet) finish(final *Field) []Snapshot {
	out := make([]Snapshot, 0, len(s.order))
	for _, step := range s.order {
		if f, ok := s.taken[step]; ok {
			out = append(out, Snapshot{Step: step, Reached: true, Field: f})
			continue
		}
		out = append(out, Snapshot{Step: step, Field: final})
	}
	return out
}
