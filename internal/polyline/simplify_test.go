package polyline

import (
	"testing"

	"github.com/watchmapper/tilegps/internal/geo"
)

func nodes(pairs ...float64) []geo.Node {
	out := make([]geo.Node, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, geo.Node{X: pairs[i], Y: pairs[i+1]})
	}
	return out
}

func TestSimplifyOptimalS4(t *testing.T) {
	t.Parallel()

	// S4: [(0,0),(1,0.00001),(2,0),(3,0),(4,0)] at eps=0.0002 -> [(0,0),(4,0)]
	in := nodes(0, 0, 1, 0.00001, 2, 0, 3, 0, 4, 0)
	out := SimplifyOptimal(in, 0.0002)
	if len(out) != 2 {
		t.Fatalf("expected 2 points, got %d: %v", len(out), out)
	}
	if out[0] != in[0] || out[1] != in[len(in)-1] {
		t.Fatalf("endpoints not preserved: %v", out)
	}
}

func TestSimplifyIsSubsequence(t *testing.T) {
	t.Parallel()

	in := nodes(0, 0, 0.5, 5, 1, 0, 1.5, 5, 2, 0)
	out := Simplify(in, 0.1)

	j := 0
	for _, p := range out {
		for j < len(in) && in[j] != p {
			j++
		}
		if j == len(in) {
			t.Fatalf("output point %v not found in input order", p)
		}
		j++
	}
}

func TestSimplifyPreservesEndpoints(t *testing.T) {
	t.Parallel()

	in := nodes(0, 0, 1, 1, 2, 0, 3, 1, 4, 0)
	out := Simplify(in, 0.01)
	if out[0] != in[0] {
		t.Fatalf("first point not preserved")
	}
	if out[len(out)-1] != in[len(in)-1] {
		t.Fatalf("last point not preserved")
	}
}

func TestSimplifyAroundWaypointsPreservesWaypoints(t *testing.T) {
	t.Parallel()

	in := nodes(0, 0, 1, 0.00001, 2, 0, 3, 5, 4, 0, 5, 0.00001, 6, 0)
	isWpt := []bool{true, false, false, true, false, false, true}

	out, outWpt := SimplifyAroundWaypoints(in, isWpt, 0.0002)

	var survivors []geo.Node
	for i, w := range outWpt {
		if w {
			survivors = append(survivors, out[i])
		}
	}
	if len(survivors) != 3 {
		t.Fatalf("expected 3 surviving waypoints, got %d: %v", len(survivors), survivors)
	}
	if survivors[0] != in[0] || survivors[1] != in[3] || survivors[2] != in[6] {
		t.Fatalf("waypoints not preserved exactly: %v", survivors)
	}
}

func TestInflateProducesClosedRingContainingPath(t *testing.T) {
	t.Parallel()

	path := nodes(0, 0, 1, 0, 1, 1)
	ring := Inflate(path, 0.01)
	if len(ring) < 4 {
		t.Fatalf("expected a closed ring with several points, got %d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Fatalf("ring is not closed: first %v last %v", ring[0], ring[len(ring)-1])
	}
}
