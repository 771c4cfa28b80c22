// Package grid provides the tile-partitioning primitives the rest of the
// pipeline builds on: tile keys, border-epsilon membership, and the
// grid-line crossing search used to cut ways at tile boundaries.
package grid

import (
	"math"

	"github.com/watchmapper/tilegps/internal/geo"
)

// TileKey addresses a cell in an infinite axis-aligned grid of a given
// side length. Tile (tx, ty) covers [tx*side, (tx+1)*side) x
// [ty*side, (ty+1)*side).
type TileKey struct {
	TX, TY int
}

// Preset bundles a SIDE/TILE_BORDER_THICKNESS pair. Two presets are
// recognised: default (side 1/750) and ski (side 1/150); thickness is
// always 1/111200 regardless of preset, since it approximates one meter
// in the source's angular units.
type Preset struct {
	Side      float64
	Thickness float64
}

const tileBorderThickness = 1.0 / 111200.0

// DefaultPreset is the ordinary walking/driving tile size.
var DefaultPreset = Preset{Side: 1.0 / 750.0, Thickness: tileBorderThickness}

// SkiPreset widens tiles for sparser ski-resort trace density.
var SkiPreset = Preset{Side: 1.0 / 150.0, Thickness: tileBorderThickness}

// Of returns the tile a coordinate pair falls into, ignoring border
// epsilon (the single primary tile, via floor division).
func Of(x, y, side float64) TileKey {
	return TileKey{
		TX: int(math.Floor(x / side)),
		TY: int(math.Floor(y / side)),
	}
}

// Tiles enumerates every tile n belongs to: its primary tile plus any of
// the eight neighbours whose shared border lies within thickness of n.
// A node sitting in a corner region can belong to up to four tiles.
func Tiles(n geo.Node, side, thickness float64) []TileKey {
	primary := Of(n.X, n.Y, side)
	tx, ty := primary.TX, primary.TY

	originX := float64(tx) * side
	originY := float64(ty) * side

	atLeft := n.X-originX <= thickness
	atRight := (originX+side)-n.X <= thickness
	atBottom := n.Y-originY <= thickness
	atTop := (originY+side)-n.Y <= thickness

	tiles := []TileKey{primary}
	if atLeft {
		tiles = append(tiles, TileKey{tx - 1, ty})
	}
	if atRight {
		tiles = append(tiles, TileKey{tx + 1, ty})
	}
	if atBottom {
		tiles = append(tiles, TileKey{tx, ty - 1})
	}
	if atTop {
		tiles = append(tiles, TileKey{tx, ty + 1})
	}
	if atLeft && atBottom {
		tiles = append(tiles, TileKey{tx - 1, ty - 1})
	}
	if atLeft && atTop {
		tiles = append(tiles, TileKey{tx - 1, ty + 1})
	}
	if atRight && atBottom {
		tiles = append(tiles, TileKey{tx + 1, ty - 1})
	}
	if atRight && atTop {
		tiles = append(tiles, TileKey{tx + 1, ty + 1})
	}
	return tiles
}

// GridCoordinatesBetween returns every multiple of side strictly between
// min(a, b) and max(a, b). An endpoint that already equals a multiple is
// excluded, since it already lives on the boundary.
func GridCoordinatesBetween(a, b, side float64) []float64 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}

	start := math.Ceil(lo / side)
	if lo/side == start {
		start++
	}

	var out []float64
	for k := start; k*side < hi; k++ {
		v := k * side
		if v <= lo {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Encode quantises n's offset from tile t's origin into two bytes, each
// the offset fraction times 255, rounded to nearest.
func Encode(n geo.Node, t TileKey, side float64) [2]byte {
	offX := (n.X - float64(t.TX)*side) / side
	offY := (n.Y - float64(t.TY)*side) / side
	return [2]byte{
		clampByte(math.Round(offX * 255)),
		clampByte(math.Round(offY * 255)),
	}
}

// Decode reverses Encode, returning the tile-local real-coordinate node
// for a pair of quantised bytes.
func Decode(b [2]byte, t TileKey, side float64) geo.Node {
	x := float64(t.TX)*side + float64(b[0])/255*side
	y := float64(t.TY)*side + float64(b[1])/255*side
	return geo.Node{X: x, Y: y}
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
