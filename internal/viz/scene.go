// Package viz renders a generation run: the four obstacle circles
// and the fitted trajectories, on equal-aspect axes.
package viz

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const circleSegments = 64

// Obstacles returns the circle centers and radius for the 2x2
// obstacle grid: centers (2i*r, 2j*r) for i,j in {0,1}, radius
// r - margin. Placement matches the loop template's scale so fitted
// trajectories pass between the circles; nothing enforces that.
func Obstacles(radius, margin float64) (centers [][2]float64, r float64) {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			centers = append(centers, [2]float64{
				radius * float64(2*i),
				radius * float64(2*j),
			})
		}
	}
	return centers, radius - margin
}

// Scene writes a plot of the trajectories and obstacles to path; the
// file extension picks the format (png, svg, pdf).
func Scene(path string, states []*mat.Dense, radius, margin float64) error {
	p := plot.New()
	p.Title.Text = "expert trajectories"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	centers, obstacleR := Obstacles(radius, margin)
	for _, c := range centers {
		circ, err := plotter.NewLine(circlePoints(c[0], c[1], obstacleR))
		if err != nil {
			return err
		}
		p.Add(circ)
	}

	for i, s := range states {
		rows, _ := s.Dims()
		pts := make(plotter.XYs, rows)
		for r := 0; r < rows; r++ {
			pts[r].X = s.At(r, 0)
			pts[r].Y = s.At(r, 1)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
	}

	squareRanges(p, centers, obstacleR, states)
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

func circlePoints(cx, cy, r float64) plotter.XYs {
	pts := make(plotter.XYs, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i].X = cx + r*math.Cos(a)
		pts[i].Y = cy + r*math.Sin(a)
	}
	return pts
}

// squareRanges forces identical x and y spans so circles render as
// circles on the square canvas.
func squareRanges(p *plot.Plot, centers [][2]float64, r float64, states []*mat.Dense) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	grow := func(x, y float64) {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	for _, c := range centers {
		grow(c[0]-r, c[1]-r)
		grow(c[0]+r, c[1]+r)
	}
	for _, s := range states {
		rows, _ := s.Dims()
		for k := 0; k < rows; k++ {
			grow(s.At(k, 0), s.At(k, 1))
		}
	}
	if math.IsInf(minX, 1) {
		return
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	pad := span * 0.05
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	half := span/2 + pad
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half
}
