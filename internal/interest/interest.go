// Package interest buckets interest points (and inferred waypoints, which
// share the same on-disk shape under category 0) onto their own sparse tile
// grid, independent of a map's own tile rectangle.
package interest

import (
	"fmt"
	"math"
	"sort"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/grid"
)

// WaypointCategory is the reserved category for a waypoint inferred from a
// trace rather than fetched from map data.
const WaypointCategory = 0

// Point is a single interest: a caller-defined category and its location.
type Point struct {
	Category byte
	Node     geo.Node
}

// Tile is one non-empty bucket of the interest grid, in grid-local
// coordinates relative to the block's own FirstTile.
type Tile struct {
	Index  int // tx + ty*GridWidth
	Points []Point
}

// Block is the fully bucketed, ready-to-serialize interest grid.
type Block struct {
	FirstTile        grid.TileKey
	GridWidth        int
	GridHeight       int
	StartCoordinates [2]float64
	Side             float64
	Tiles            []Tile // sorted by Index
}

// Bucket groups points onto their own tile grid, sized tightly to their
// bounding box (unlike a map's grid, which always spans whatever tiles a
// road graph touched). Returns an error for an empty input: there is
// nothing to bucket.
func Bucket(points []Point, side float64) (*Block, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("interest: no points to bucket")
	}

	xmin, xmax := points[0].Node.X, points[0].Node.X
	ymin, ymax := points[0].Node.Y, points[0].Node.Y
	for _, p := range points[1:] {
		xmin = math.Min(xmin, p.Node.X)
		xmax = math.Max(xmax, p.Node.X)
		ymin = math.Min(ymin, p.Node.Y)
		ymax = math.Max(ymax, p.Node.Y)
	}

	firstX := int(math.Floor(xmin / side))
	firstY := int(math.Floor(ymin / side))
	width := int(math.Floor(xmax/side)) - firstX + 1
	if width < 1 {
		width = 1
	}
	height := int(math.Floor(ymax/side)) - firstY + 1
	if height < 1 {
		height = 1
	}

	b := &Block{
		FirstTile:        grid.TileKey{TX: firstX, TY: firstY},
		GridWidth:        width,
		GridHeight:       height,
		StartCoordinates: [2]float64{float64(firstX) * side, float64(firstY) * side},
		Side:             side,
	}

	byTile := make(map[int][]Point)
	for _, p := range points {
		tiles := grid.Tiles(p.Node, side, grid.DefaultPreset.Thickness)
		t := tiles[0] // the first tile is enough for interests
		local := t.TX - firstX + (t.TY-firstY)*width
		byTile[local] = append(byTile[local], p)
	}

	indices := make([]int, 0, len(byTile))
	for idx := range byTile {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		b.Tiles = append(b.Tiles, Tile{Index: idx, Points: byTile[idx]})
	}
	return b, nil
}

// TileIndexByteWidth is the on-disk width of each non-empty tile index: 3
// bytes once the grid holds more cells than a u16 can address, 2 otherwise.
func (b *Block) TileIndexByteWidth() int {
	if b.GridWidth*b.GridHeight > math.MaxUint16 {
		return 3
	}
	return 2
}

// EncodePoint quantises a point's node to its tile-local byte pair, the
// same 8-bit fraction-of-side encoding the road grid uses.
func EncodePoint(p Point, tileX, tileY int, side float64) [2]byte {
	return grid.Encode(p.Node, grid.TileKey{TX: tileX, TY: tileY}, side)
}
