// Package dynamics holds the discrete-time linear model of a 2D
// point mass under constant acceleration over one step.
package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/traj"
)

const (
	StateDim = 4
	InputDim = 2
)

// Matrices returns the state-transition pair (A, B) for time step dt.
// A integrates position by velocity; B applies the kinematic update
// dpos = 0.5*dt^2*a, dvel = dt*a. dt = 0 degenerates to identity
// dynamics and is not rejected.
func Matrices(dt float64) (*mat.Dense, *mat.Dense) {
	a := mat.NewDense(StateDim, StateDim, []float64{
		1, 0, dt, 0,
		0, 1, 0, dt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	b := mat.NewDense(StateDim, InputDim, []float64{
		0.5 * dt * dt, 0,
		0, 0.5 * dt * dt,
		dt, 0,
		0, dt,
	})
	return a, b
}

// Propagate applies one exact noise-free step: x' = A*x + B*u.
func Propagate(a, b *mat.Dense, x traj.State, u traj.Control) traj.State {
	next := make(traj.State, StateDim)
	for i := 0; i < StateDim; i++ {
		v := 0.0
		for j := 0; j < StateDim; j++ {
			v += a.At(i, j) * x[j]
		}
		for j := 0; j < InputDim; j++ {
			v += b.At(i, j) * u[j]
		}
		next[i] = v
	}
	return next
}

// TimeGrid returns the uniform grid 0, dt, 2*dt, ... up to but
// excluding duration.
func TimeGrid(duration, dt float64) []float64 {
	if dt <= 0 || duration <= 0 {
		return nil
	}
	n := int(math.Ceil(duration / dt))
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dt
	}
	return t
}
