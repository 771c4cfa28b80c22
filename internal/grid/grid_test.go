package grid

import (
	"testing"

	"github.com/watchmapper/tilegps/internal/geo"
)

func TestTilesPrimaryOnly(t *testing.T) {
	t.Parallel()

	n := geo.Node{X: 0.0005, Y: 0.0005}
	side := 0.001
	tiles := Tiles(n, side, 1.0/111200.0)
	if len(tiles) != 1 {
		t.Fatalf("expected 1 tile for a center point, got %d: %v", len(tiles), tiles)
	}
	if tiles[0] != (TileKey{0, 0}) {
		t.Fatalf("expected tile (0,0), got %v", tiles[0])
	}
}

func TestTilesCorner(t *testing.T) {
	t.Parallel()

	// S2: corner node at (0.001, 0.001) with SIDE=0.001 belongs to all
	// four surrounding tiles under the border-epsilon rule.
	n := geo.Node{X: 0.001, Y: 0.001}
	side := 0.001
	tiles := Tiles(n, side, 1.0/111200.0)
	want := map[TileKey]bool{
		{0, 0}: true, {1, 0}: true, {0, 1}: true, {1, 1}: true,
	}
	if len(tiles) != len(want) {
		t.Fatalf("expected 4 tiles, got %d: %v", len(tiles), tiles)
	}
	for _, tk := range tiles {
		if !want[tk] {
			t.Fatalf("unexpected tile %v", tk)
		}
	}
}

func TestGridCoordinatesBetweenListsInteriorMultiples(t *testing.T) {
	t.Parallel()

	got := GridCoordinatesBetween(0.0005, 0.0025, 0.001)
	want := []float64{0.001, 0.002}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestGridCoordinatesBetweenEndpointOnBoundary(t *testing.T) {
	t.Parallel()

	// endpoint exactly on a multiple of side must not be re-emitted
	got := GridCoordinatesBetween(0.001, 0.0025, 0.001)
	want := []float64{0.002}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	side := 0.001
	tile := TileKey{2, 3}
	n := geo.Node{X: float64(tile.TX)*side + 0.0004, Y: float64(tile.TY)*side + 0.0009}
	enc := Encode(n, tile, side)
	dec := Decode(enc, tile, side)
	if n.DistanceTo(dec) > side/255 {
		t.Fatalf("round trip error too large: %v vs %v", n, dec)
	}
}
