// Package generator produces randomized expert-trajectory batches:
// noisy waypoint sets around a fixed loop template, a
// minimum-acceleration fit per set, and measurement noise on the
// fitted states.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/config"
	"github.com/san-kum/trajgen/internal/dynamics"
	"github.com/san-kum/trajgen/internal/fitter"
	"github.com/san-kum/trajgen/internal/traj"
)

// template is the loop the waypoint sets are sampled around, before
// radius scaling. It threads between the four obstacle circles.
var template = [][2]float64{
	{-1, 0},
	{-1, 2},
	{0, 3},
	{1, 2},
	{1, 1},
	{2, 1},
	{3, 0},
	{2, -1},
	{0, -1},
}

// TemplatePoints returns the loop template scaled by radius as a
// 9 x 2 matrix.
func TemplatePoints(radius float64) *mat.Dense {
	p := mat.NewDense(len(template), 2, nil)
	for i, pt := range template {
		p.Set(i, 0, pt[0]*radius)
		p.Set(i, 1, pt[1]*radius)
	}
	return p
}

// FitError records a failed fit for one trajectory of a batch.
type FitError struct {
	Index int
	Err   error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("trajectory %d: %v", e.Index, e.Err)
}

func (e *FitError) Unwrap() error { return e.Err }

// Progress is called after each trajectory fit completes, possibly
// from worker goroutines (calls are serialized by the generator).
// effort is the fitted trajectory's summed squared acceleration, 0
// on failure.
type Progress func(done, total int, effort float64, err error)

type Generator struct {
	cfg      *config.Config
	fitter   *fitter.Fitter
	rng      *rand.Rand
	progress Progress
}

func New(cfg *config.Config, f *fitter.Fitter, seed int64) *Generator {
	return &Generator{
		cfg:    cfg,
		fitter: f,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) SetProgress(p Progress) { g.progress = p }

// Generate builds the full batch. All random draws happen on the
// calling goroutine, so output is identical for a fixed seed
// regardless of the worker count; workers only solve fits, which are
// deterministic. With OnFailureAbort a single failed fit aborts the
// run; with OnFailureSkip failed trajectories are dropped and
// recorded in Batch.Errors.
func (g *Generator) Generate(ctx context.Context) (*traj.Batch, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}

	a, b := dynamics.Matrices(g.cfg.TimeStep)
	t := dynamics.TimeGrid(g.cfg.Duration, g.cfg.TimeStep)
	n := g.cfg.NTrajectories

	waypoints := make([]*mat.Dense, n)
	for i := range waypoints {
		waypoints[i] = g.perturbedTemplate()
	}

	states := make([]*mat.Dense, n)
	inputs := make([]*mat.Dense, n)
	fitErrs := make([]error, n)

	if err := g.runFits(ctx, a, b, t, waypoints, states, inputs, fitErrs); err != nil {
		return nil, err
	}

	batch := &traj.Batch{Times: t}
	for i := 0; i < n; i++ {
		if fitErrs[i] != nil {
			if g.cfg.OnFailure != config.OnFailureSkip {
				return nil, fitErrs[i]
			}
			batch.Errors = append(batch.Errors, fitErrs[i])
			continue
		}
		g.addMeasurementNoise(states[i])
		batch.States = append(batch.States, states[i])
		batch.Inputs = append(batch.Inputs, inputs[i])
		batch.Waypoints = append(batch.Waypoints, waypoints[i])
	}
	return batch, nil
}

func (g *Generator) runFits(ctx context.Context, a, b *mat.Dense, t []float64, waypoints, states, inputs []*mat.Dense, fitErrs []error) error {
	n := len(waypoints)
	workers := g.cfg.Workers
	if workers > n {
		workers = n
	}

	var mu sync.Mutex
	done := 0
	report := func(effort float64, err error) {
		if g.progress == nil {
			return
		}
		mu.Lock()
		done++
		g.progress(done, n, effort, err)
		mu.Unlock()
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			states[i], inputs[i], fitErrs[i] = g.fitOne(i, a, b, t, waypoints[i])
			report(effort(inputs[i]), fitErrs[i])
		}
		return nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				states[i], inputs[i], fitErrs[i] = g.fitOne(i, a, b, t, waypoints[i])
				report(effort(inputs[i]), fitErrs[i])
			}
		}()
	}

	var ctxErr error
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return ctxErr
}

func effort(u *mat.Dense) float64 {
	if u == nil {
		return 0
	}
	sum := 0.0
	rows, cols := u.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := u.At(r, c)
			sum += v * v
		}
	}
	return sum
}

func (g *Generator) fitOne(i int, a, b *mat.Dense, t []float64, points *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	x, u, err := g.fitter.Fit(a, b, t, points)
	if err != nil {
		return nil, nil, &FitError{Index: i, Err: err}
	}
	return x, u, nil
}

func (g *Generator) perturbedTemplate() *mat.Dense {
	p := TemplatePoints(g.cfg.TrajectoryRadius)
	if g.cfg.TrajectoryNoise == 0 {
		return p
	}
	r, c := p.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			p.Set(i, j, p.At(i, j)+g.rng.NormFloat64()*g.cfg.TrajectoryNoise)
		}
	}
	return p
}

func (g *Generator) addMeasurementNoise(x *mat.Dense) {
	scale := g.cfg.StateNoise * g.cfg.TimeStep
	if scale == 0 {
		return
	}
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x.Set(i, j, x.At(i, j)+g.rng.NormFloat64()*scale)
		}
	}
}
