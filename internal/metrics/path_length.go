package metrics

import (
	"math"

	"github.com/san-kum/trajgen/internal/traj"
)

// PathLength accumulates the planar distance travelled by a
// trajectory's position.
type PathLength struct {
	name    string
	sum     float64
	havePos bool
	px, py  float64
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(x traj.State, u traj.Control, t float64) {
	if len(x) < 2 {
		return
	}
	if p.havePos {
		p.sum += math.Hypot(x[0]-p.px, x[1]-p.py)
	}
	p.px, p.py = x[0], x[1]
	p.havePos = true
}

func (p *PathLength) Value() float64 { return p.sum }

func (p *PathLength) Reset() {
	p.sum = 0
	p.havePos = false
}
