package metrics

import "github.com/san-kum/trajgen/internal/traj"

// Run feeds every step of one trajectory through the metrics and
// returns name -> value. Metrics are reset first.
func Run(b *traj.Batch, i int, ms ...traj.Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for k := 0; k < b.Steps(); k++ {
		x := b.StateAt(i, k)
		u := b.ControlAt(i, k)
		for _, m := range ms {
			m.Observe(x, u, b.Times[k])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// BatchMeans averages each metric over every trajectory in a batch.
func BatchMeans(b *traj.Batch, ms ...traj.Metric) map[string]float64 {
	sums := make(map[string]float64, len(ms))
	for i := 0; i < b.Len(); i++ {
		for name, v := range Run(b, i, ms...) {
			sums[name] += v
		}
	}
	if b.Len() > 0 {
		for name := range sums {
			sums[name] /= float64(b.Len())
		}
	}
	return sums
}
