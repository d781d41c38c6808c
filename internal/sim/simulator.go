// Package sim steps batches of point-mass states forward under the
// discrete dynamics with additive process noise.
package sim

import (
	"context"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/config"
	"github.com/san-kum/trajgen/internal/dynamics"
)

// Simulator holds the dynamics pair for one configuration and an
// injected random source. Instances are independent; the only state
// that changes across calls is the source's stream position.
type Simulator struct {
	cfg *config.Config
	a   *mat.Dense
	b   *mat.Dense
	rng *rand.Rand
}

func New(cfg *config.Config, seed int64) *Simulator {
	a, b := dynamics.Matrices(cfg.TimeStep)
	return &Simulator{
		cfg: cfg,
		a:   a,
		b:   b,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Step advances a batch one time step: x*A' + u*B' plus fresh
// process noise with scale trajectory_noise * time_step. x is N x 4,
// u is N x 2 with matching N. A zero noise scale reduces to exact
// propagation.
func (s *Simulator) Step(x, u *mat.Dense) (*mat.Dense, error) {
	xr, xc := x.Dims()
	ur, uc := u.Dims()
	if xc != dynamics.StateDim {
		return nil, fmt.Errorf("sim: states must have %d columns, got %d", dynamics.StateDim, xc)
	}
	if uc != dynamics.InputDim {
		return nil, fmt.Errorf("sim: inputs must have %d columns, got %d", dynamics.InputDim, uc)
	}
	if xr != ur {
		return nil, fmt.Errorf("sim: %d states but %d inputs", xr, ur)
	}

	next := mat.NewDense(xr, xc, nil)
	next.Mul(x, s.a.T())
	var bu mat.Dense
	bu.Mul(u, s.b.T())
	next.Add(next, &bu)

	if scale := s.cfg.TrajectoryNoise * s.cfg.TimeStep; scale > 0 {
		for i := 0; i < xr; i++ {
			for j := 0; j < xc; j++ {
				next.Set(i, j, next.At(i, j)+s.rng.NormFloat64()*scale)
			}
		}
	}
	return next, nil
}

// Rollout steps a batch through a control sequence, returning the
// state at every step including x0. us[k] supplies the batch inputs
// for step k.
func (s *Simulator) Rollout(ctx context.Context, x0 *mat.Dense, us []*mat.Dense) ([]*mat.Dense, error) {
	out := make([]*mat.Dense, 0, len(us)+1)
	x := mat.DenseCopyOf(x0)
	out = append(out, x)

	for k, u := range us {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		next, err := s.Step(x, u)
		if err != nil {
			return out, fmt.Errorf("step %d: %w", k, err)
		}
		out = append(out, next)
		x = next
	}
	return out, nil
}
