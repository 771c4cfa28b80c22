package polyline

import (
	"math"

	"github.com/watchmapper/tilegps/internal/geo"
)

// Inflate produces a closed ring of Nodes (first point repeated last)
// enclosing path within roughly thickness of every point on it. This is
// the pure-geometry alternative named in the design notes: rather than
// building a k-nearest concave hull over displaced points, it buffers the
// path directly by offsetting it to both sides and capping the ends with
// an 8-point arc, the same circle granularity the concave-hull variant
// uses for its point displacement.
func Inflate(path []geo.Node, thickness float64) []geo.Node {
	switch len(path) {
	case 0:
		return nil
	case 1:
		return circleAround(path[0], thickness)
	}

	left := offsetSide(path, thickness)
	right := offsetSide(reverseNodes(path), thickness)

	n := len(path)
	ring := make([]geo.Node, 0, len(left)+len(right)+16)
	ring = append(ring, left...)
	ring = append(ring, arcBetween(path[n-1], left[len(left)-1], right[0], thickness)...)
	ring = append(ring, right...)
	ring = append(ring, arcBetween(path[0], right[len(right)-1], left[0], thickness)...)
	ring = append(ring, ring[0])
	return ring
}

// offsetSide displaces every vertex of path perpendicular to its direction
// of travel by thickness, to the left of the path's heading. At interior
// vertices the displacement direction is the bisector of the incoming and
// outgoing headings, so consecutive offsets join without a gap.
func offsetSide(path []geo.Node, thickness float64) []geo.Node {
	n := len(path)
	out := make([]geo.Node, n)
	for i := 0; i < n; i++ {
		var heading float64
		switch {
		case i == 0:
			heading = path[0].AngleTo(path[1])
		case i == n-1:
			heading = path[n-2].AngleTo(path[n-1])
		default:
			in := path[i-1].AngleTo(path[i])
			out := path[i].AngleTo(path[i+1])
			heading = bisectAngle(in, out)
		}
		perp := heading + math.Pi/2
		out[i] = path[i].Add(geo.VectorFromAngle(perp, thickness))
	}
	return out
}

func bisectAngle(a, b float64) float64 {
	for b-a > math.Pi {
		b -= 2 * math.Pi
	}
	for b-a < -math.Pi {
		b += 2 * math.Pi
	}
	return (a + b) / 2
}

func reverseNodes(path []geo.Node) []geo.Node {
	out := make([]geo.Node, len(path))
	for i, p := range path {
		out[len(path)-1-i] = p
	}
	return out
}

// arcBetween walks the 8-point circle of radius radius around center from
// the angle of from to the angle of to, stepping backward (decreasing
// angle, the ring's own clockwise winding) so the cap bulges outward
// rather than cutting across the path.
func arcBetween(center, from, to geo.Node, radius float64) []geo.Node {
	a0 := center.AngleTo(from)
	a1 := center.AngleTo(to)
	for a1 > a0 {
		a1 -= 2 * math.Pi
	}

	const steps = 8
	out := make([]geo.Node, 0, steps-1)
	for i := 1; i < steps; i++ {
		t := float64(i) / steps
		a := a0 + (a1-a0)*t
		out = append(out, center.Add(geo.VectorFromAngle(a, radius)))
	}
	return out
}

func circleAround(center geo.Node, radius float64) []geo.Node {
	const steps = 8
	out := make([]geo.Node, 0, steps+1)
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / steps
		out = append(out, center.Add(geo.VectorFromAngle(a, radius)))
	}
	out = append(out, out[0])
	return out
}
