package dynamics

import (
	"math"
	"testing"

	"github.com/san-kum/trajgen/internal/traj"
)

func TestMatricesKinematics(t *testing.T) {
	x := traj.State{1.0, -2.0, 0.5, 3.0}
	u := traj.Control{0.2, -0.4}

	for _, dt := range []float64{0.01, 0.1, 1.0, 2.5} {
		a, b := Matrices(dt)
		got := Propagate(a, b, x, u)

		want := traj.State{
			x[0] + x[2]*dt + 0.5*u[0]*dt*dt,
			x[1] + x[3]*dt + 0.5*u[1]*dt*dt,
			x[2] + u[0]*dt,
			x[3] + u[1]*dt,
		}

		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-12 {
				t.Errorf("dt=%g: state[%d] = %g, want %g", dt, i, got[i], want[i])
			}
		}
	}
}

func TestMatricesZeroDt(t *testing.T) {
	a, b := Matrices(0)

	x := traj.State{1, 2, 3, 4}
	u := traj.Control{9, -9}
	got := Propagate(a, b, x, u)

	for i := range x {
		if got[i] != x[i] {
			t.Errorf("dt=0 should be identity dynamics, state[%d] = %g, want %g", i, got[i], x[i])
		}
	}
}

func TestTimeGrid(t *testing.T) {
	grid := TimeGrid(20.0, 0.1)
	if len(grid) != 200 {
		t.Errorf("expected 200 steps, got %d", len(grid))
	}
	if grid[0] != 0 {
		t.Errorf("grid must start at 0, got %g", grid[0])
	}
	if math.Abs(grid[199]-19.9) > 1e-9 {
		t.Errorf("last entry %g, want 19.9", grid[199])
	}

	grid = TimeGrid(1.0, 0.3)
	if len(grid) != 4 {
		t.Errorf("expected 4 steps for duration 1.0 dt 0.3, got %d", len(grid))
	}

	if got := TimeGrid(10, 0); got != nil {
		t.Errorf("expected nil grid for dt=0, got %v", got)
	}
	if got := TimeGrid(0, 0.1); got != nil {
		t.Errorf("expected nil grid for duration=0, got %v", got)
	}
}
