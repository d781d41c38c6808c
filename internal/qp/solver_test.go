package qp

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestKKTSimple(t *testing.T) {
	// minimize z1^2 + z2^2 subject to z1 + z2 = 2
	q := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	c := mat.NewDense(1, 2, []float64{1, 1})
	d := mat.NewVecDense(1, []float64{2})

	sol, err := NewKKT().Solve(&Problem{Q: q, C: c, D: d})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("expected optimal, got %s", sol.Status)
	}

	for i := 0; i < 2; i++ {
		if math.Abs(sol.Z.AtVec(i)-1.0) > 1e-9 {
			t.Errorf("z[%d] = %g, want 1", i, sol.Z.AtVec(i))
		}
	}
	if math.Abs(sol.Objective-2.0) > 1e-9 {
		t.Errorf("objective = %g, want 2", sol.Objective)
	}
}

func TestKKTFixedVariable(t *testing.T) {
	// minimize z^2 subject to z = 3
	q := mat.NewSymDense(1, []float64{1})
	c := mat.NewDense(1, 1, []float64{1})
	d := mat.NewVecDense(1, []float64{3})

	sol, err := NewKKT().Solve(&Problem{Q: q, C: c, D: d})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("expected optimal, got %s", sol.Status)
	}
	if math.Abs(sol.Z.AtVec(0)-3.0) > 1e-9 {
		t.Errorf("z = %g, want 3", sol.Z.AtVec(0))
	}
	if math.Abs(sol.Objective-9.0) > 1e-9 {
		t.Errorf("objective = %g, want 9", sol.Objective)
	}
}

func TestKKTContradictoryConstraints(t *testing.T) {
	// z1 + z2 = 1 and z1 + z2 = 2 cannot both hold
	q := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	c := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	d := mat.NewVecDense(2, []float64{1, 2})

	sol, err := NewKKT().Solve(&Problem{Q: q, C: c, D: d})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Status == StatusOptimal {
		t.Errorf("expected non-optimal status for contradictory constraints, got %s", sol.Status)
	}
}

func TestKKTDimensionMismatch(t *testing.T) {
	q := mat.NewSymDense(2, nil)
	c := mat.NewDense(1, 3, nil)
	d := mat.NewVecDense(1, nil)

	if _, err := NewKKT().Solve(&Problem{Q: q, C: c, D: d}); err == nil {
		t.Error("expected error for mismatched dimensions")
	}

	if _, err := NewKKT().Solve(nil); err == nil {
		t.Error("expected error for nil problem")
	}
}
