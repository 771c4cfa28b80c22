package mapdata

import (
	"testing"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/graph"
	"github.com/watchmapper/tilegps/internal/grid"
	"github.com/watchmapper/tilegps/internal/tile"
)

func buildShapedGraph(t *testing.T, side float64, points ...geo.Node) (*graph.Graph, map[grid.TileKey][]graph.WayID) {
	t.Helper()
	ids := make([]graph.NodeID, len(points))
	for i := range points {
		ids[i] = graph.NodeID(i)
	}
	g := &graph.Graph{
		Nodes:   points,
		Ways:    []graph.Way{{Nodes: ids}},
		Streets: []graph.Street{{Name: "Test Street", WayIDs: []graph.WayID{0}}},
	}
	shaped, buckets, err := graph.Shape(g, side, 1.0/111200.0)
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	return shaped, buckets
}

func TestBuildAndDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	side := 0.001
	g, buckets := buildShapedGraph(t, side,
		geo.Node{X: 0.0005, Y: 0.0005},
		geo.Node{X: 0.0025, Y: 0.0005},
	)

	m, err := Build(g, buckets, side, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if m.GridSize[0] != 3 || m.GridSize[1] != 1 {
		t.Fatalf("expected a 3x1 tile rectangle, got %v", m.GridSize)
	}

	ways := m.Ways()
	if len(ways) != 3 {
		t.Fatalf("expected 3 decoded segments, got %d", len(ways))
	}
	for _, w := range ways {
		for _, n := range w {
			if n.X < 0 || n.X > 0.003 {
				t.Fatalf("decoded node out of expected range: %v", n)
			}
		}
	}
}

func TestNodeOffsetIDMonotonic(t *testing.T) {
	t.Parallel()

	side := 0.001
	g, buckets := buildShapedGraph(t, side,
		geo.Node{X: 0.0005, Y: 0.0005},
		geo.Node{X: 0.0025, Y: 0.0005},
	)
	m, err := Build(g, buckets, side, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	last := -1
	for tn := 0; tn < len(m.TilesSizesPrefix); tn++ {
		for lw := uint8(0); lw < m.TileWaysNumber(uint16(tn)); lw++ {
			for ln := uint16(0); ln < 2; ln++ {
				off := m.NodeOffsetID(tile.CNodeID{TileNumber: uint16(tn), LocalNodeID: 2*uint16(lw) + ln})
				if off <= last {
					t.Fatalf("expected strictly increasing offsets, got %d after %d", off, last)
				}
				last = off
			}
		}
	}
}

func TestBoundingBoxMatchesGrid(t *testing.T) {
	t.Parallel()

	side := 0.001
	g, buckets := buildShapedGraph(t, side,
		geo.Node{X: 0.0005, Y: 0.0005},
		geo.Node{X: 0.0025, Y: 0.0005},
	)
	m, err := Build(g, buckets, side, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	xmin, ymin, xmax, ymax := m.BoundingBox()
	if xmin != 0 || ymin != 0 {
		t.Fatalf("expected origin at (0,0), got (%v,%v)", xmin, ymin)
	}
	if xmax-xmin != float64(m.GridSize[0])*side || ymax-ymin != float64(m.GridSize[1])*side {
		t.Fatalf("bounding box does not match grid size*side")
	}
}

func TestFitMapShrinksToNonEmptyTiles(t *testing.T) {
	t.Parallel()

	side := 0.001
	g, buckets := buildShapedGraph(t, side,
		geo.Node{X: 0.0005, Y: 0.0005},
		geo.Node{X: 0.0025, Y: 0.0005},
	)
	m, err := Build(g, buckets, side, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	kept := map[grid.TileKey]bool{{TX: 1, TY: 0}: true}
	clipped := m.KeepTiles(kept)
	fitted := clipped.FitMap()

	if fitted.GridSize[0] != 1 || fitted.GridSize[1] != 1 {
		t.Fatalf("expected a single-tile grid after fit, got %v", fitted.GridSize)
	}
	if fitted.TileWaysNumber(0) == 0 {
		t.Fatalf("expected the kept tile to retain its segment")
	}
}
