package traj

import "gonum.org/v1/gonum/mat"

// Batch is the output of one generation run. States[i] is T x 4,
// Inputs[i] is T x 2 and Waypoints[i] is P x 2 for trajectory i.
// A batch is built once and not mutated afterwards.
type Batch struct {
	Times     []float64
	States    []*mat.Dense
	Inputs    []*mat.Dense
	Waypoints []*mat.Dense
	Errors    []error
}

func (b *Batch) Len() int { return len(b.States) }

// Steps returns the number of time steps per trajectory.
func (b *Batch) Steps() int { return len(b.Times) }

// StateAt returns a copy of state row k of trajectory i.
func (b *Batch) StateAt(i, k int) State {
	return State(mat.Row(nil, k, b.States[i]))
}

// ControlAt returns a copy of input row k of trajectory i.
func (b *Batch) ControlAt(i, k int) Control {
	return Control(mat.Row(nil, k, b.Inputs[i]))
}
