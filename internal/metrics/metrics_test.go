package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/traj"
)

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()

	m.Observe(traj.State{0, 0, 0, 0}, traj.Control{3, 4}, 0)
	m.Observe(traj.State{0, 0, 0, 0}, traj.Control{1, 0}, 1)

	if got := m.Value(); math.Abs(got-26) > 1e-12 {
		t.Errorf("effort = %g, want 26", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset should zero the metric")
	}
}

func TestPathLength(t *testing.T) {
	m := NewPathLength()

	// unit square
	for _, p := range [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}} {
		m.Observe(traj.State{p[0], p[1], 0, 0}, traj.Control{0, 0}, 0)
	}

	if got := m.Value(); math.Abs(got-4) > 1e-12 {
		t.Errorf("path length = %g, want 4", got)
	}
}

func TestLoopClosure(t *testing.T) {
	m := NewLoopClosure()

	m.Observe(traj.State{1, 2, 3, 4}, nil, 0)
	m.Observe(traj.State{5, 5, 5, 5}, nil, 1)
	m.Observe(traj.State{1, 2, 3, 4}, nil, 2)

	if got := m.Value(); got != 0 {
		t.Errorf("closed loop should have zero error, got %g", got)
	}

	m.Observe(traj.State{2, 2, 3, 4}, nil, 3)
	if got := m.Value(); math.Abs(got-1) > 1e-12 {
		t.Errorf("closure error = %g, want 1", got)
	}
}

func TestRunAndBatchMeans(t *testing.T) {
	b := &traj.Batch{
		Times: []float64{0, 1},
		States: []*mat.Dense{
			mat.NewDense(2, 4, []float64{0, 0, 0, 0, 0, 0, 0, 0}),
			mat.NewDense(2, 4, []float64{0, 0, 0, 0, 3, 4, 0, 0}),
		},
		Inputs: []*mat.Dense{
			mat.NewDense(2, 2, []float64{1, 0, 0, 0}),
			mat.NewDense(2, 2, []float64{0, 0, 0, 3}),
		},
	}

	got := Run(b, 0, NewControlEffort())
	if got["control_effort"] != 1 {
		t.Errorf("trajectory 0 effort = %g, want 1", got["control_effort"])
	}

	means := BatchMeans(b, NewControlEffort(), NewLoopClosure())
	if means["control_effort"] != 5 {
		t.Errorf("mean effort = %g, want 5", means["control_effort"])
	}
	// trajectory 0 closes (stays at origin), trajectory 1 ends 5 away
	if math.Abs(means["loop_closure_error"]-2.5) > 1e-12 {
		t.Errorf("mean closure error = %g, want 2.5", means["loop_closure_error"])
	}
}

func TestBatchMeansEmpty(t *testing.T) {
	b := &traj.Batch{}
	means := BatchMeans(b, NewControlEffort())
	if len(means) != 0 {
		t.Errorf("expected no metrics for empty batch, got %v", means)
	}
}
