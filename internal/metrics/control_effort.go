package metrics

import "github.com/san-kum/trajgen/internal/traj"

// ControlEffort accumulates the summed squared acceleration of a
// trajectory, the quantity the fitter minimizes.
type ControlEffort struct {
	name string
	sum  float64
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(x traj.State, u traj.Control, t float64) {
	for _, val := range u {
		c.sum += val * val
	}
}

func (c *ControlEffort) Value() float64 { return c.sum }

func (c *ControlEffort) Reset() { c.sum = 0 }
