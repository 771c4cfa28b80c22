// Package streetindex encodes a map's street-name-to-ways lookup into the
// compact sqrt(N)-block, heatshrink-compressed payload the device can
// binary-search without decompressing more than one block.
package streetindex

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/watchmapper/tilegps/internal/tile"
)

const (
	windowBits    = 8
	lookaheadBits = 6
)

func appendU16(b []byte, v uint16) []byte { return append(b, byte(v), byte(v>>8)) }

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func readU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func readU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

type namedWays struct {
	name string
	ways []tile.CWayID
}

// Encode serializes streets into sqrt(N) alphabetical blocks, each
// independently heatshrink-compressed, with a leading uncompressed index
// of each block's accent-folded first name.
func Encode(streets map[string][]tile.CWayID) []byte {
	sorted := make([]namedWays, 0, len(streets))
	for name, ways := range streets {
		sorted = append(sorted, namedWays{name, ways})
	}
	sort.Slice(sorted, func(i, j int) bool { return FoldAccents(sorted[i].name) < FoldAccents(sorted[j].name) })

	blockSize := int(math.Ceil(math.Sqrt(float64(len(sorted)))))
	if blockSize < 1 {
		blockSize = 1
	}

	var labels strings.Builder
	var encodedBlocks []byte
	var blockStarts []int

	for start := 0; start < len(sorted); start += blockSize {
		end := start + blockSize
		if end > len(sorted) {
			end = len(sorted)
		}
		chunk := sorted[start:end]

		labels.WriteString(FoldAccents(chunk[0].name))
		labels.WriteByte('\n')

		var names strings.Builder
		var ways []byte
		for _, e := range chunk {
			names.WriteString(FoldAccents(e.name))
			names.WriteByte('\n')
			ways = appendU16(ways, uint16(len(e.ways)))
			for _, w := range e.ways {
				ways = appendU16(ways, w.TileNumber)
				ways = append(ways, w.LocalWayID)
			}
		}

		raw := appendU16(nil, uint16(len(ways)))
		raw = append(raw, ways...)
		raw = append(raw, names.String()...)

		encoded := heatshrinkEncode(raw, windowBits, lookaheadBits)
		blockStarts = append(blockStarts, len(encodedBlocks))
		encodedBlocks = append(encodedBlocks, encoded...)
	}

	labelBytes := labels.String()
	fullSize := 4 + 2 + 2 + len(labelBytes) + len(blockStarts)*4 + len(encodedBlocks)

	out := make([]byte, 0, fullSize)
	out = appendU32(out, uint32(fullSize))
	out = appendU16(out, uint16(len(blockStarts)))
	out = appendU16(out, uint16(len(labelBytes)))
	out = append(out, labelBytes...)
	for _, s := range blockStarts {
		out = appendU32(out, uint32(s))
	}
	out = append(out, encodedBlocks...)
	return out
}

// Index is a parsed street-index header, without any block decompressed
// yet: enough to binary-search for the block a street name would live in.
type Index struct {
	Labels      []string
	BlockStarts []int
	Encoded     []byte
}

// ParseIndex reads the header and label table but defers decompressing
// any block.
func ParseIndex(encoded []byte) (*Index, error) {
	if len(encoded) < 8 {
		return nil, fmt.Errorf("streetindex: truncated header")
	}
	storedSize := readU32(encoded)
	if int(storedSize) != len(encoded) {
		return nil, fmt.Errorf("streetindex: size mismatch: header says %d, got %d bytes", storedSize, len(encoded))
	}
	pos := 4
	blocksNumber := int(readU16(encoded[pos:]))
	pos += 2
	labelsSize := int(readU16(encoded[pos:]))
	pos += 2
	if len(encoded) < pos+labelsSize+blocksNumber*4 {
		return nil, fmt.Errorf("streetindex: truncated label/offset tables")
	}
	labelBlob := string(encoded[pos : pos+labelsSize])
	pos += labelsSize

	labels := strings.Split(strings.TrimSuffix(labelBlob, "\n"), "\n")

	starts := make([]int, blocksNumber)
	for i := 0; i < blocksNumber; i++ {
		starts[i] = int(readU32(encoded[pos:]))
		pos += 4
	}

	return &Index{Labels: labels, BlockStarts: starts, Encoded: encoded[pos:]}, nil
}

// BlockFor returns the index of the block that would hold foldedName,
// assuming it is already accent-folded. A name before every label falls
// into block 0.
func (idx *Index) BlockFor(foldedName string) int {
	i := sort.Search(len(idx.Labels), func(i int) bool { return idx.Labels[i] > foldedName })
	if i == 0 {
		return 0
	}
	return i - 1
}

// DecodeBlock decompresses and parses a single block by index.
func (idx *Index) DecodeBlock(blockIndex int) (map[string][]tile.CWayID, error) {
	if blockIndex < 0 || blockIndex >= len(idx.BlockStarts) {
		return nil, fmt.Errorf("streetindex: block %d out of range", blockIndex)
	}
	start := idx.BlockStarts[blockIndex]
	end := len(idx.Encoded)
	if blockIndex+1 < len(idx.BlockStarts) {
		end = idx.BlockStarts[blockIndex+1]
	}
	return decodeBlock(idx.Encoded[start:end])
}

// Decode fully decompresses every block, for callers that want the whole
// table rather than a single lookup.
func Decode(encoded []byte) (map[string][]tile.CWayID, error) {
	idx, err := ParseIndex(encoded)
	if err != nil {
		return nil, err
	}
	streets := make(map[string][]tile.CWayID)
	for i := range idx.BlockStarts {
		block, err := idx.DecodeBlock(i)
		if err != nil {
			return nil, err
		}
		for name, ways := range block {
			streets[name] = ways
		}
	}
	return streets, nil
}

func decodeBlock(encodedBlock []byte) (map[string][]tile.CWayID, error) {
	raw, err := heatshrinkDecode(encodedBlock, windowBits, lookaheadBits)
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("streetindex: truncated block body")
	}
	waysLen := int(readU16(raw))
	if len(raw) < 2+waysLen {
		return nil, fmt.Errorf("streetindex: truncated ways section")
	}
	ways, err := decodeWays(raw[2 : 2+waysLen])
	if err != nil {
		return nil, err
	}
	namesBlob := string(raw[2+waysLen:])
	names := strings.Split(strings.TrimSuffix(namesBlob, "\n"), "\n")
	if len(names) != len(ways) {
		return nil, fmt.Errorf("streetindex: name/way count mismatch: %d names, %d ways", len(names), len(ways))
	}
	out := make(map[string][]tile.CWayID, len(names))
	for i, n := range names {
		out[n] = ways[i]
	}
	return out, nil
}

func decodeWays(b []byte) ([][]tile.CWayID, error) {
	var ways [][]tile.CWayID
	for len(b) > 0 {
		if len(b) < 2 {
			return nil, fmt.Errorf("streetindex: truncated way length")
		}
		count := int(readU16(b))
		b = b[2:]
		way := make([]tile.CWayID, 0, count)
		for i := 0; i < count; i++ {
			if len(b) < 3 {
				return nil, fmt.Errorf("streetindex: truncated way entry")
			}
			way = append(way, tile.CWayID{TileNumber: readU16(b), LocalWayID: b[2]})
			b = b[3:]
		}
		ways = append(ways, way)
	}
	return ways, nil
}
