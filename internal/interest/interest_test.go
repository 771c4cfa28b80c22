package interest

import (
	"testing"

	"github.com/watchmapper/tilegps/internal/geo"
)

func TestBucketGroupsByTileAndSortsIndices(t *testing.T) {
	t.Parallel()

	side := 0.001
	points := []Point{
		{Category: 5, Node: geo.Node{X: 0.0025, Y: 0.0005}},
		{Category: 3, Node: geo.Node{X: 0.0005, Y: 0.0005}},
		{Category: 3, Node: geo.Node{X: 0.0006, Y: 0.0005}},
	}

	b, err := Bucket(points, side)
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if b.GridWidth != 3 {
		t.Fatalf("expected grid width 3 spanning tiles 0..2, got %d", b.GridWidth)
	}
	if len(b.Tiles) != 2 {
		t.Fatalf("expected 2 non-empty tiles, got %d", len(b.Tiles))
	}
	for i := 1; i < len(b.Tiles); i++ {
		if b.Tiles[i].Index <= b.Tiles[i-1].Index {
			t.Fatalf("tiles must be sorted by index")
		}
	}
	if len(b.Tiles[0].Points) != 2 {
		t.Fatalf("expected the two close points to share a tile, got %d", len(b.Tiles[0].Points))
	}
}

func TestBucketRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := Bucket(nil, 0.001); err == nil {
		t.Fatalf("expected an error bucketing an empty point set")
	}
}

func TestTileIndexByteWidth(t *testing.T) {
	t.Parallel()

	small := &Block{GridWidth: 10, GridHeight: 10}
	if small.TileIndexByteWidth() != 2 {
		t.Fatalf("small grids should use a 2-byte tile index")
	}

	huge := &Block{GridWidth: 100000, GridHeight: 100000}
	if huge.TileIndexByteWidth() != 3 {
		t.Fatalf("grids over u16 range should use a 3-byte tile index")
	}
}
