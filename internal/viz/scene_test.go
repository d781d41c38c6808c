package viz

import (
	"math"
	"testing"
)

func TestObstacles(t *testing.T) {
	centers, r := Obstacles(1.0, 0.25)

	if len(centers) != 4 {
		t.Fatalf("expected 4 obstacles, got %d", len(centers))
	}
	if math.Abs(r-0.75) > 1e-12 {
		t.Errorf("obstacle radius = %g, want 0.75", r)
	}

	want := map[[2]float64]bool{
		{0, 0}: true, {0, 2}: true, {2, 0}: true, {2, 2}: true,
	}
	for _, c := range centers {
		if !want[c] {
			t.Errorf("unexpected obstacle center %v", c)
		}
		delete(want, c)
	}
	if len(want) != 0 {
		t.Errorf("missing obstacle centers: %v", want)
	}
}

func TestCirclePointsClosed(t *testing.T) {
	pts := circlePoints(1, 2, 0.5)

	first, last := pts[0], pts[len(pts)-1]
	if math.Abs(first.X-last.X) > 1e-9 || math.Abs(first.Y-last.Y) > 1e-9 {
		t.Errorf("circle polyline not closed: %v vs %v", first, last)
	}

	for _, p := range pts {
		d := math.Hypot(p.X-1, p.Y-2)
		if math.Abs(d-0.5) > 1e-9 {
			t.Errorf("point %v is %g from center, want 0.5", p, d)
		}
	}
}
