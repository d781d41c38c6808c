// Package fitter fits a minimum-acceleration trajectory through an
// ordered set of 2D waypoints, subject to the point-mass dynamics
// and loop closure (final state equals initial state).
package fitter

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/dynamics"
	"github.com/san-kum/trajgen/internal/qp"
)

// ErrInfeasible reports a constraint set with no solution, detected
// either up front (too many waypoints, duplicate indices) or by the
// solver.
var ErrInfeasible = errors.New("fitter: constraints infeasible")

// SolveError wraps a non-optimal solver status.
type SolveError struct {
	Status qp.Status
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("fitter: solver returned %s", e.Status)
}

func (e *SolveError) Unwrap() error {
	if e.Status == qp.StatusInfeasible {
		return ErrInfeasible
	}
	return nil
}

type Fitter struct {
	solver qp.Solver
}

func New(solver qp.Solver) *Fitter {
	return &Fitter{solver: solver}
}

func NewDefault() *Fitter {
	return New(qp.NewKKT())
}

// WaypointIndices spreads P waypoints over a grid of length T at
// equal intervals, leaving room after the last waypoint for the
// return leg to the start. The first index is always 0.
func WaypointIndices(T, P int) ([]int, error) {
	if P < 1 {
		return nil, fmt.Errorf("fitter: need at least one waypoint, got %d", P)
	}
	if T < 2 {
		return nil, fmt.Errorf("fitter: need at least two time steps, got %d", T)
	}
	if P >= T {
		return nil, fmt.Errorf("%w: %d waypoints do not fit %d time steps", ErrInfeasible, P, T)
	}
	idx := make([]int, P)
	for i := range idx {
		idx[i] = i * (T - 1) / P
	}
	idx[0] = 0
	for i := 1; i < P; i++ {
		if idx[i] <= idx[i-1] {
			return nil, fmt.Errorf("%w: waypoint indices collide at step %d", ErrInfeasible, idx[i])
		}
	}
	return idx, nil
}

// Fit returns state (T x 4) and input (T x 2) sequences minimizing
// the summed squared acceleration, such that consecutive states obey
// x[k+1] = A*x[k] + B*u[k], the position components at the computed
// waypoint indices equal points (P x 2) in order, and the final state
// equals the initial state.
func (f *Fitter) Fit(a, b *mat.Dense, t []float64, points *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	T := len(t)
	P, pc := points.Dims()
	if pc != 2 {
		return nil, nil, fmt.Errorf("fitter: waypoints must be P x 2, got P x %d", pc)
	}
	idx, err := WaypointIndices(T, P)
	if err != nil {
		return nil, nil, err
	}

	prob := buildProblem(a, b, T, idx, points)
	sol, err := f.solver.Solve(prob)
	if err != nil {
		return nil, nil, fmt.Errorf("fitter: %w", err)
	}
	if sol.Status != qp.StatusOptimal {
		return nil, nil, &SolveError{Status: sol.Status}
	}

	x := mat.NewDense(T, dynamics.StateDim, nil)
	u := mat.NewDense(T, dynamics.InputDim, nil)
	for k := 0; k < T; k++ {
		for j := 0; j < dynamics.StateDim; j++ {
			x.Set(k, j, sol.Z.AtVec(xoff(k)+j))
		}
		for j := 0; j < dynamics.InputDim; j++ {
			u.Set(k, j, sol.Z.AtVec(uoff(T, k)+j))
		}
	}
	return x, u, nil
}

// Variable layout: states first, row-major, then inputs row-major.
func xoff(k int) int    { return k * dynamics.StateDim }
func uoff(T, k int) int { return T*dynamics.StateDim + k*dynamics.InputDim }
func numVars(T int) int { return T * (dynamics.StateDim + dynamics.InputDim) }

func buildProblem(a, b *mat.Dense, T int, idx []int, points *mat.Dense) *qp.Problem {
	n := numVars(T)
	P := len(idx)
	m := dynamics.StateDim*(T-1) + 2*P + dynamics.StateDim

	q := mat.NewSymDense(n, nil)
	for k := 0; k < T; k++ {
		for j := 0; j < dynamics.InputDim; j++ {
			q.SetSym(uoff(T, k)+j, uoff(T, k)+j, 1)
		}
	}

	c := mat.NewDense(m, n, nil)
	d := mat.NewVecDense(m, nil)
	row := 0

	// x[k+1] - A*x[k] - B*u[k] = 0
	for k := 0; k < T-1; k++ {
		for r := 0; r < dynamics.StateDim; r++ {
			c.Set(row, xoff(k+1)+r, 1)
			for j := 0; j < dynamics.StateDim; j++ {
				c.Set(row, xoff(k)+j, -a.At(r, j))
			}
			for j := 0; j < dynamics.InputDim; j++ {
				c.Set(row, uoff(T, k)+j, -b.At(r, j))
			}
			row++
		}
	}

	// positions at waypoint indices equal the waypoints
	for i, k := range idx {
		for j := 0; j < 2; j++ {
			c.Set(row, xoff(k)+j, 1)
			d.SetVec(row, points.At(i, j))
			row++
		}
	}

	// loop closure: x[T-1] - x[0] = 0, full state
	for r := 0; r < dynamics.StateDim; r++ {
		c.Set(row, xoff(T-1)+r, 1)
		c.Set(row, xoff(0)+r, -1)
		row++
	}

	return &qp.Problem{Q: q, C: c, D: d}
}
