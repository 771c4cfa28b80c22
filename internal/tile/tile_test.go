package tile

import (
	"testing"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/graph"
	"github.com/watchmapper/tilegps/internal/grid"
)

func wayOf(g *graph.Graph, a, b geo.Node) graph.WayID {
	ai := graph.NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, a)
	bi := graph.NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, b)
	g.Ways = append(g.Ways, graph.Way{Nodes: []graph.NodeID{ai, bi}})
	return graph.WayID(len(g.Ways) - 1)
}

func TestEncodeMergesOverlappingColinearSegments(t *testing.T) {
	t.Parallel()

	// S3: three overlapping horizontal segments within one tile should
	// collapse into the single segment spanning their union.
	g := &graph.Graph{}
	tk := grid.TileKey{TX: 0, TY: 0}
	side := 1.0

	w1 := wayOf(g, geo.Node{X: 10.0 / 255, Y: 10.0 / 255}, geo.Node{X: 100.0 / 255, Y: 10.0 / 255})
	w2 := wayOf(g, geo.Node{X: 30.0 / 255, Y: 10.0 / 255}, geo.Node{X: 80.0 / 255, Y: 10.0 / 255})
	w3 := wayOf(g, geo.Node{X: 50.0 / 255, Y: 10.0 / 255}, geo.Node{X: 120.0 / 255, Y: 10.0 / 255})

	res, err := Encode(g, []graph.WayID{w1, w2, w3}, tk, side, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(res.Bytes) != 4 {
		t.Fatalf("expected a single merged 4-byte segment, got %d bytes", len(res.Bytes))
	}
	if res.Bytes[0] != 10 || res.Bytes[2] != 120 {
		t.Fatalf("expected merged segment spanning x=10..120, got %v", res.Bytes)
	}

	cid := res.Remap[w1]
	for _, w := range []graph.WayID{w1, w2, w3} {
		if res.Remap[w] != cid {
			t.Fatalf("expected all three ways to remap to the same compact id")
		}
	}
}

func TestEncodeDropsDegenerateSegments(t *testing.T) {
	t.Parallel()

	g := &graph.Graph{}
	tk := grid.TileKey{TX: 0, TY: 0}
	side := 1.0

	same := geo.Node{X: 0.1, Y: 0.1}
	w := wayOf(g, same, same)

	res, err := Encode(g, []graph.WayID{w}, tk, side, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(res.Bytes) != 0 {
		t.Fatalf("expected degenerate segment to be dropped, got %d bytes", len(res.Bytes))
	}
	if _, ok := res.Remap[w]; ok {
		t.Fatalf("degenerate way should not appear in remap")
	}
}

func TestEncodeRejectsTooManySegments(t *testing.T) {
	t.Parallel()

	g := &graph.Graph{}
	tk := grid.TileKey{TX: 0, TY: 0}
	side := 1.0

	var ids []graph.WayID
	for i := 0; i < maxSegmentsPerTile+1; i++ {
		// Distinct x offsets make every segment a distinct vertical line,
		// so none of them can merge away the overflow.
		x := float64(i) / 255
		a := geo.Node{X: x, Y: 0}
		b := geo.Node{X: x, Y: 1}
		ids = append(ids, wayOf(g, a, b))
	}

	if _, err := Encode(g, ids, tk, side, 7); err == nil {
		t.Fatalf("expected an error once segment count exceeds the u8 id budget")
	}
}

func TestEncodeKeepsNonColinearSegmentsSeparate(t *testing.T) {
	t.Parallel()

	g := &graph.Graph{}
	tk := grid.TileKey{TX: 0, TY: 0}
	side := 1.0

	w1 := wayOf(g, geo.Node{X: 0, Y: 0}, geo.Node{X: 1, Y: 0})
	w2 := wayOf(g, geo.Node{X: 0, Y: 0}, geo.Node{X: 0, Y: 1})

	res, err := Encode(g, []graph.WayID{w1, w2}, tk, side, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(res.Bytes) != 8 {
		t.Fatalf("expected two distinct 4-byte segments, got %d bytes", len(res.Bytes))
	}
	if res.Remap[w1] == res.Remap[w2] {
		t.Fatalf("non-colinear segments should not share a compact id")
	}
}
