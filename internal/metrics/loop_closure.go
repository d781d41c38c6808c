package metrics

import "github.com/san-kum/trajgen/internal/traj"

// LoopClosure reports the norm of the gap between a trajectory's
// first and last observed states. Zero means the loop closed.
type LoopClosure struct {
	name  string
	first traj.State
	last  traj.State
}

func NewLoopClosure() *LoopClosure {
	return &LoopClosure{name: "loop_closure_error"}
}

func (l *LoopClosure) Name() string { return l.name }

func (l *LoopClosure) Observe(x traj.State, u traj.Control, t float64) {
	if l.first == nil {
		l.first = x.Clone()
	}
	l.last = x.Clone()
}

func (l *LoopClosure) Value() float64 {
	if l.first == nil || l.last == nil {
		return 0
	}
	return l.last.Sub(l.first).Norm()
}

func (l *LoopClosure) Reset() {
	l.first = nil
	l.last = nil
}
