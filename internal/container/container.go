// Package container implements the self-delimiting typed-block binary
// format every encoded map, route, and interest set is serialized into:
// a one-byte block tag followed by a block-specific payload, repeated
// until the stream is exhausted.
package container

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash"
	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/interest"
	"github.com/watchmapper/tilegps/internal/mapdata"
)

// BlockType tags the payload that follows it in the stream.
type BlockType byte

const (
	BlockTiles BlockType = iota
	BlockStreets
	BlockPath
	BlockInterests
	BlockHeights
)

func (t BlockType) String() string {
	switch t {
	case BlockTiles:
		return "tiles"
	case BlockStreets:
		return "streets"
	case BlockPath:
		return "path"
	case BlockInterests:
		return "interests"
	case BlockHeights:
		return "heights"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func appendU24(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16))
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendU64(b []byte, v uint64) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func appendF64(b []byte, v float64) []byte {
	return appendU64(b, math.Float64bits(v))
}

func appendI16(b []byte, v int16) []byte {
	return appendU16(b, uint16(v))
}

func appendUintN(b []byte, v uint32, n int) []byte {
	for i := 0; i < n; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}

func readU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func readU24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func readU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func readU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func readF64(b []byte) float64 { return math.Float64frombits(readU64(b)) }

// checksumSize is the width of the optional per-block xxhash64 trailer.
const checksumSize = 8

func withChecksum(buf []byte, enabled bool) []byte {
	if !enabled {
		return buf
	}
	sum := xxhash.Sum64(buf)
	return appendU64(buf, sum)
}

// appendTileSizesPrefix writes the tiles-block size table: a count,
// the non-empty tile indices (u16 each), then each one's cumulative
// byte offset (24-bit little-endian).
func appendTileSizesPrefix(buf []byte, prefix []int) []byte {
	var nonEmpty []uint16
	prev := 0
	for i, end := range prefix {
		if end != prev {
			nonEmpty = append(nonEmpty, uint16(i))
		}
		prev = end
	}
	buf = appendU16(buf, uint16(len(nonEmpty)))
	for _, idx := range nonEmpty {
		buf = appendU16(buf, idx)
	}
	for _, idx := range nonEmpty {
		buf = appendU24(buf, uint32(prefix[idx]))
	}
	return buf
}

// EncodeTiles builds a complete Tiles block: tag, palette colour, grid
// dimensions, the size-prefix table, and the raw per-tile segment bytes.
func EncodeTiles(m *mapdata.Map, color [3]byte, checksum bool) []byte {
	buf := []byte{byte(BlockTiles), color[0], color[1], color[2]}
	buf = appendU32(buf, uint32(m.FirstTile.TX))
	buf = appendU32(buf, uint32(m.FirstTile.TY))
	buf = appendU32(buf, uint32(m.GridSize[0]))
	buf = appendU32(buf, uint32(m.GridSize[1]))
	buf = appendF64(buf, m.StartCoordinates[0])
	buf = appendF64(buf, m.StartCoordinates[1])
	buf = appendF64(buf, m.Side)
	buf = appendTileSizesPrefix(buf, m.TilesSizesPrefix)
	buf = append(buf, m.BinaryWays...)
	return withChecksum(buf, checksum)
}

// EncodeInterests builds a complete Interests block from a bucketed
// interest grid.
func EncodeInterests(b *interest.Block, checksum bool) []byte {
	buf := []byte{byte(BlockInterests)}
	buf = appendU32(buf, uint32(b.FirstTile.TX))
	buf = appendU32(buf, uint32(b.FirstTile.TY))
	buf = appendU32(buf, uint32(b.GridWidth))
	buf = appendU32(buf, uint32(b.GridHeight))
	buf = appendF64(buf, b.StartCoordinates[0])
	buf = appendF64(buf, b.StartCoordinates[1])
	buf = appendF64(buf, b.Side)

	idxWidth := b.TileIndexByteWidth()
	buf = append(buf, byte(idxWidth*8), 3)
	buf = appendU16(buf, uint16(len(b.Tiles)))
	for _, t := range b.Tiles {
		buf = appendUintN(buf, uint32(t.Index), idxWidth)
	}
	var cumulative uint16
	for _, t := range b.Tiles {
		cumulative += uint16(len(t.Points))
		buf = appendU16(buf, cumulative)
	}
	for _, t := range b.Tiles {
		tileX := b.FirstTile.TX + t.Index%b.GridWidth
		tileY := b.FirstTile.TY + t.Index/b.GridWidth
		for _, p := range t.Points {
			buf = append(buf, p.Category)
			enc := interest.EncodePoint(p, tileX, tileY, b.Side)
			buf = append(buf, enc[0], enc[1])
		}
	}
	return withChecksum(buf, checksum)
}

// EncodeStreets wraps an already-encoded street index payload (built by
// the streetindex package) in its block tag.
func EncodeStreets(encoded []byte, checksum bool) []byte {
	buf := append([]byte{byte(BlockStreets)}, encoded...)
	return withChecksum(buf, checksum)
}

// EncodePath builds a Path block: point count, every point's raw
// coordinates, then a bitset flagging which points are waypoints.
func EncodePath(points []geo.Node, isWaypoint []bool) []byte {
	buf := []byte{byte(BlockPath)}
	buf = appendU16(buf, uint16(len(points)))
	for _, p := range points {
		buf = appendF64(buf, p.X)
		buf = appendF64(buf, p.Y)
	}
	bits := make([]byte, (len(points)+7)/8)
	for i, w := range isWaypoint {
		if w {
			bits[i/8] |= 1 << uint(i%8)
		}
	}
	buf = append(buf, bits...)
	return buf
}

// EncodeHeights builds a Heights block: one signed 16-bit meter
// elevation per point, in the same order as the preceding Path block
// (the format relies on that block's point count to know when to stop
// reading, so a Heights block is only meaningful right after a Path
// block with the same length).
func EncodeHeights(metersPerPoint []float64) []byte {
	buf := []byte{byte(BlockHeights)}
	for _, h := range metersPerPoint {
		buf = appendI16(buf, int16(math.Round(h)))
	}
	return buf
}

// Block is one parsed typed-block from a stream.
type Block struct {
	Type    BlockType
	Payload []byte
}

// TilesHeader is EncodeTiles's payload decoded back into its fields,
// excluding the trailing size-prefix table and segment bytes (callers
// needing those read Payload directly via the same field layout).
type TilesHeader struct {
	Color     [3]byte
	FirstTile [2]int
	GridSize  [2]int
	Start     [2]float64
	Side      float64
}

// DecodeTilesHeader parses a Tiles block payload's fixed-size header
// (everything up to the size-prefix table).
func DecodeTilesHeader(payload []byte) (TilesHeader, error) {
	const headerLen = 3 + 4 + 4 + 4 + 4 + 8 + 8 + 8
	if len(payload) < headerLen {
		return TilesHeader{}, fmt.Errorf("container: tiles payload too short")
	}
	h := TilesHeader{
		Color:     [3]byte{payload[0], payload[1], payload[2]},
		FirstTile: [2]int{int(readU32(payload[3:])), int(readU32(payload[7:]))},
		GridSize:  [2]int{int(readU32(payload[11:])), int(readU32(payload[15:]))},
		Start:     [2]float64{readF64(payload[19:]), readF64(payload[27:])},
		Side:      readF64(payload[35:]),
	}
	return h, nil
}

// TileSizesPrefix is the tiles-block size table decoded back into
// parallel tile-index/cumulative-end slices, plus the table's own byte
// length so a caller knows where the raw segment bytes start.
type TileSizesPrefix struct {
	NonEmptyTiles []int
	Ends          []int
	Bytes         int
}

// DecodeTileSizesPrefix parses the size table written by
// appendTileSizesPrefix, starting at payload[0].
func DecodeTileSizesPrefix(payload []byte) (TileSizesPrefix, error) {
	if len(payload) < 2 {
		return TileSizesPrefix{}, fmt.Errorf("container: tile size table too short")
	}
	count := int(readU16(payload))
	pos := 2
	need := pos + count*2 + count*3
	if len(payload) < need {
		return TileSizesPrefix{}, fmt.Errorf("container: tile size table truncated")
	}
	nonEmpty := make([]int, count)
	for i := 0; i < count; i++ {
		nonEmpty[i] = int(readU16(payload[pos:]))
		pos += 2
	}
	ends := make([]int, count)
	for i := 0; i < count; i++ {
		ends[i] = int(readU24(payload[pos:]))
		pos += 3
	}
	return TileSizesPrefix{NonEmptyTiles: nonEmpty, Ends: ends, Bytes: pos}, nil
}

// DecodePath parses a Path block payload back into its points and
// waypoint flags.
func DecodePath(payload []byte) ([]geo.Node, []bool, error) {
	if len(payload) < 2 {
		return nil, nil, fmt.Errorf("container: path payload too short")
	}
	n := int(readU16(payload))
	pos := 2
	need := pos + n*16
	if len(payload) < need {
		return nil, nil, fmt.Errorf("container: path payload truncated")
	}
	points := make([]geo.Node, n)
	for i := 0; i < n; i++ {
		points[i] = geo.Node{X: readF64(payload[pos:]), Y: readF64(payload[pos+8:])}
		pos += 16
	}
	bitsLen := (n + 7) / 8
	if len(payload) < pos+bitsLen {
		return nil, nil, fmt.Errorf("container: path waypoint bitset truncated")
	}
	isWaypoint := make([]bool, n)
	for i := 0; i < n; i++ {
		isWaypoint[i] = payload[pos+i/8]&(1<<uint(i%8)) != 0
	}
	return points, isWaypoint, nil
}

// DecodeHeights parses a Heights block payload into meter elevations,
// given the point count from the Path block it follows.
func DecodeHeights(payload []byte, count int) ([]float64, error) {
	if len(payload) < count*2 {
		return nil, fmt.Errorf("container: heights payload too short for %d points", count)
	}
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = float64(int16(readU16(payload[i*2:])))
	}
	return out, nil
}
