package geo

import "math"

// Segment is a directed pair of endpoints.
type Segment [2]Node

// isAlmostEqual reports near-equality for slope comparisons, the same
// 1e-6 epsilon the source uses to detect near-parallel segments.
func isAlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// HorizontalIntersection returns the point where s crosses the horizontal
// line y = y0, and whether such a point exists (false if s is itself
// horizontal). Callers must not call this on a horizontal segment.
func (s Segment) HorizontalIntersection(y0 float64) (Node, bool) {
	a, b := s[0], s[1]
	if isAlmostEqual(a.Y, b.Y) {
		return Node{}, false
	}
	t := (y0 - a.Y) / (b.Y - a.Y)
	return Node{a.X + t*(b.X-a.X), y0}, true
}

// VerticalIntersection returns the point where s crosses the vertical
// line x = x0, and whether such a point exists (false if s is itself
// vertical). Callers must not call this on a vertical segment.
func (s Segment) VerticalIntersection(x0 float64) (Node, bool) {
	a, b := s[0], s[1]
	if isAlmostEqual(a.X, b.X) {
		return Node{}, false
	}
	t := (x0 - a.X) / (b.X - a.X)
	return Node{x0, a.Y + t*(b.Y-a.Y)}, true
}

// IntersectionWith solves the 2x2 linear system for the intersection of
// two (infinite) lines carrying s and o, returning false for parallel or
// near-parallel lines.
func (s Segment) IntersectionWith(o Segment) (Node, bool) {
	x1, y1 := s[0].X, s[0].Y
	x2, y2 := s[1].X, s[1].Y
	x3, y3 := o[0].X, o[0].Y
	x4, y4 := o[1].X, o[1].Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if isAlmostEqual(denom, 0) {
		return Node{}, false
	}

	a := x1*y2 - y1*x2
	b := x3*y4 - y3*x4
	x := (a*(x3-x4) - (x1-x2)*b) / denom
	y := (a*(y3-y4) - (y1-y2)*b) / denom
	return Node{x, y}, true
}

// ParallelSegment returns the segment offset perpendicular to s by
// thickness, used to inflate a polyline around its path.
func (s Segment) ParallelSegment(thickness float64) Segment {
	dx := s[1].X - s[0].X
	dy := s[1].Y - s[0].Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return s
	}
	// perpendicular unit vector
	nx := -dy / length * thickness
	ny := dx / length * thickness
	return Segment{
		Node{s[0].X + nx, s[0].Y + ny},
		Node{s[1].X + nx, s[1].Y + ny},
	}
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s[0].DistanceTo(s[1])
}
