package waypoint

import (
	"testing"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/graph"
	"github.com/watchmapper/tilegps/internal/mapdata"
)

// buildCrossGraph shapes a four-way crossroad: a long east-west way and
// a long north-south way sharing a junction node at the origin.
func buildCrossGraph(t *testing.T, side float64) *mapdata.Map {
	t.Helper()
	nodes := []geo.Node{
		{X: -0.004, Y: 0}, // 0: west end
		{X: 0, Y: 0},      // 1: junction
		{X: 0.004, Y: 0},  // 2: east end
		{X: 0, Y: -0.004}, // 3: south end
		{X: 0, Y: 0.004},  // 4: north end
	}
	g := &graph.Graph{
		Nodes: nodes,
		Ways: []graph.Way{
			{Nodes: []graph.NodeID{0, 1, 2}},
			{Nodes: []graph.NodeID{3, 1, 4}},
		},
		Streets: []graph.Street{
			{Name: "East West", WayIDs: []graph.WayID{0}},
			{Name: "North South", WayIDs: []graph.WayID{1}},
		},
	}
	shaped, buckets, err := graph.Shape(g, side, 1.0/111200.0)
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	m, err := mapdata.Build(shaped, buckets, side, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return m
}

// buildStraightThroughGraph shapes a single way with no side branches.
func buildStraightThroughGraph(t *testing.T, side float64) *mapdata.Map {
	t.Helper()
	nodes := []geo.Node{
		{X: -0.004, Y: 0},
		{X: 0, Y: 0},
		{X: 0.004, Y: 0},
	}
	g := &graph.Graph{
		Nodes:   nodes,
		Ways:    []graph.Way{{Nodes: []graph.NodeID{0, 1, 2}}},
		Streets: []graph.Street{{Name: "Straight Road", WayIDs: []graph.WayID{0}}},
	}
	shaped, buckets, err := graph.Shape(g, side, 1.0/111200.0)
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	m, err := mapdata.Build(shaped, buckets, side, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return m
}

func TestInferMarksStartAndEnd(t *testing.T) {
	t.Parallel()

	side := 0.01
	m := buildStraightThroughGraph(t, side)
	path := []geo.Node{{X: -0.004, Y: 0}, {X: 0, Y: 0}, {X: 0.004, Y: 0}}

	got := Infer(m, path)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if !got[0] || !got[len(got)-1] {
		t.Fatalf("expected endpoints to always be waypoints: %v", got)
	}
}

func TestInferDoesNotPromoteStraightThrough(t *testing.T) {
	t.Parallel()

	side := 0.01
	m := buildStraightThroughGraph(t, side)
	path := []geo.Node{{X: -0.004, Y: 0}, {X: 0, Y: 0}, {X: 0.004, Y: 0}}

	got := Infer(m, path)
	if got[1] {
		t.Fatalf("a pass-through vertex with no branch should not be promoted to a waypoint")
	}
}

func TestInferPromotesAmbiguousCrossroadTurn(t *testing.T) {
	t.Parallel()

	side := 0.01
	m := buildCrossGraph(t, side)
	// Path enters from the west and turns north: with 4 destinations at
	// the junction and a 90-degree turn, the tolerance (pi/2 + pi/10)
	// admits the east, north and south branches, so more than one branch
	// is "roughly aligned" with continuing east and this should be promoted.
	path := []geo.Node{{X: -0.004, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0.004}}

	got := Infer(m, path)
	if !got[1] {
		t.Fatalf("expected the turning junction to be promoted to a waypoint, got %v", got)
	}
}

func TestReshapeKeepsWaypointsExactly(t *testing.T) {
	t.Parallel()

	path := []geo.Node{
		{X: 0, Y: 0}, {X: 0.1, Y: 0.001}, {X: 0.2, Y: 0}, {X: 0.3, Y: 0.001}, {X: 0.4, Y: 0},
	}
	isWaypoint := []bool{true, false, true, false, true}

	out, outWaypoints := Reshape(path, isWaypoint, 0.05)
	count := 0
	for i, w := range outWaypoints {
		if w {
			count++
			found := false
			for _, p := range path {
				if p.BitEqual(out[i]) {
					found = true
				}
			}
			if !found {
				t.Fatalf("reshaped waypoint %v not present in the original path", out[i])
			}
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 waypoints preserved, got %d", count)
	}
}
