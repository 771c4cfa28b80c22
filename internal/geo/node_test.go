package geo

import (
	"math"
	"testing"
)

func TestNodeKeyBitExact(t *testing.T) {
	t.Parallel()

	a := Node{0.0, 0.0}
	b := Node{math.Copysign(0, -1), 0.0}
	if a.Key() == b.Key() {
		t.Fatalf("expected -0.0 and +0.0 to produce different keys")
	}

	nan1 := Node{math.NaN(), 0}
	nan2 := Node{math.NaN(), 0}
	if nan1.Key() != nan2.Key() {
		t.Fatalf("expected identical NaN bit patterns to produce equal keys")
	}
}

func TestSquaredDistance(t *testing.T) {
	t.Parallel()

	a := Node{0, 0}
	b := Node{3, 4}
	if got := a.SquaredDistanceTo(b); got != 25 {
		t.Fatalf("squared distance = %v, want 25", got)
	}
	if got := a.DistanceTo(b); got != 5 {
		t.Fatalf("distance = %v, want 5", got)
	}
}

func TestIsSameLocation(t *testing.T) {
	t.Parallel()

	a := Node{0, 0}
	b := Node{0.0000005, 0}
	if !a.IsSameLocation(b, 1.0/111200) {
		t.Fatalf("expected nodes within thickness to be the same location")
	}

	c := Node{1, 1}
	if a.IsSameLocation(c, 1.0/111200) {
		t.Fatalf("expected distant nodes to not be the same location")
	}
}

func TestDistanceToSegmentClampsToEndpoints(t *testing.T) {
	t.Parallel()

	a := Node{0, 0}
	b := Node{10, 0}
	p := Node{-5, 3}
	if got, want := p.DistanceToSegment(a, b), p.DistanceTo(a); got != want {
		t.Fatalf("projection beyond a: got %v, want %v", got, want)
	}
}

func TestAngleDiff(t *testing.T) {
	t.Parallel()

	if d := AngleDiff(0, math.Pi/2); math.Abs(d-math.Pi/2) > 1e-9 {
		t.Fatalf("angle diff = %v, want pi/2", d)
	}
	if d := AngleDiff(-math.Pi+0.1, math.Pi-0.1); math.Abs(d-0.2) > 1e-9 {
		t.Fatalf("wraparound angle diff = %v, want ~0.2", d)
	}
}

func TestSegmentIntersection(t *testing.T) {
	t.Parallel()

	s1 := Segment{{0, 0}, {10, 10}}
	s2 := Segment{{0, 10}, {10, 0}}
	got, ok := s1.IntersectionWith(s2)
	if !ok {
		t.Fatalf("expected intersection")
	}
	if math.Abs(got.X-5) > 1e-9 || math.Abs(got.Y-5) > 1e-9 {
		t.Fatalf("intersection = %v, want (5,5)", got)
	}

	parallel := Segment{{0, 1}, {10, 11}}
	if _, ok := s1.IntersectionWith(parallel); ok {
		t.Fatalf("expected no intersection for parallel segments")
	}
}
