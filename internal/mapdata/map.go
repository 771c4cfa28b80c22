// Package mapdata assembles a shaped graph's tile-encoded segments into the
// dense rectangular grid the binary container serializes: per-tile byte
// ranges, a cumulative size prefix, and street/interest lookups addressed by
// compact ids.
package mapdata

import (
	"fmt"
	"sort"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/graph"
	"github.com/watchmapper/tilegps/internal/grid"
	"github.com/watchmapper/tilegps/internal/tile"
)

// InterestPoint is an interest bucketed alongside a map's own tiles:
// category 0 is reserved for waypoints inferred from a trace.
type InterestPoint struct {
	Category byte
	Node     geo.Node
}

// Map is a dense rectangle of tiles (some possibly empty) with every
// contained segment encoded to its byte block, addressable by compact id.
type Map struct {
	BinaryWays       []byte
	StartCoordinates [2]float64
	FirstTile        grid.TileKey
	GridSize         [2]int // width (x), height (y)
	Side             float64
	TilesSizesPrefix []int // cumulative byte length through tile_number
	Streets          map[string][]tile.CWayID
	Interests        []InterestPoint
}

// Build assembles a Map from a fully-shaped graph (single-segment ways,
// bucketed by tile) plus the street lists that name those ways and any
// interest points already sorted by longitude (keeps tile lookups
// cache-friendly).
func Build(g *graph.Graph, buckets map[grid.TileKey][]graph.WayID, side float64, interests []InterestPoint) (*Map, error) {
	if len(buckets) == 0 {
		return nil, fmt.Errorf("mapdata: no tiles to build from")
	}

	xmin, xmax, ymin, ymax := 0, 0, 0, 0
	first := true
	for k := range buckets {
		if first {
			xmin, xmax, ymin, ymax = k.TX, k.TX, k.TY, k.TY
			first = false
			continue
		}
		if k.TX < xmin {
			xmin = k.TX
		}
		if k.TX > xmax {
			xmax = k.TX
		}
		if k.TY < ymin {
			ymin = k.TY
		}
		if k.TY > ymax {
			ymax = k.TY
		}
	}

	m := &Map{
		StartCoordinates: [2]float64{float64(xmin) * side, float64(ymin) * side},
		FirstTile:        grid.TileKey{TX: xmin, TY: ymin},
		GridSize:         [2]int{xmax + 1 - xmin, ymax + 1 - ymin},
		Side:             side,
		Streets:          make(map[string][]tile.CWayID),
		Interests:        interests,
	}

	idChanges := make(map[graph.WayID]tile.CWayID)
	tileID := 0
	for y := ymin; y <= ymax; y++ {
		for x := xmin; x <= xmax; x++ {
			tk := grid.TileKey{TX: x, TY: y}
			if wayIDs, ok := buckets[tk]; ok {
				res, err := tile.Encode(g, wayIDs, tk, side, uint16(tileID))
				if err != nil {
					return nil, fmt.Errorf("mapdata: tile (%d,%d): %w", x, y, err)
				}
				m.BinaryWays = append(m.BinaryWays, res.Bytes...)
				for old, compact := range res.Remap {
					idChanges[old] = compact
				}
			}
			m.TilesSizesPrefix = append(m.TilesSizesPrefix, len(m.BinaryWays))
			tileID++
		}
	}

	for _, st := range g.Streets {
		var ids []tile.CWayID
		for _, owid := range st.WayIDs {
			if cid, ok := idChanges[owid]; ok {
				ids = append(ids, cid)
			}
		}
		if len(ids) > 0 {
			m.Streets[st.Name] = append(m.Streets[st.Name], ids...)
		}
	}

	return m, nil
}

// NodeTiles enumerates the tile positions (grid-local, relative to
// FirstTile) a node belongs to under border-epsilon membership.
func (m *Map) NodeTiles(n geo.Node, thickness float64) []grid.TileKey {
	tiles := grid.Tiles(n, m.Side, thickness)
	out := make([]grid.TileKey, len(tiles))
	for i, t := range tiles {
		out[i] = grid.TileKey{TX: t.TX - m.FirstTile.TX, TY: t.TY - m.FirstTile.TY}
	}
	return out
}

// TileBinary returns the raw byte slice for a tile_number.
func (m *Map) TileBinary(tileNumber uint16) []byte {
	end := m.TilesSizesPrefix[tileNumber]
	start := 0
	if tileNumber > 0 {
		start = m.TilesSizesPrefix[tileNumber-1]
	}
	return m.BinaryWays[start:end]
}

// TileWaysNumber returns the segment count stored in a tile.
func (m *Map) TileWaysNumber(tileNumber uint16) uint8 {
	return uint8(len(m.TileBinary(tileNumber)) / 4)
}

// DecodeNode reverses the byte quantisation for a single compact node id.
func (m *Map) DecodeNode(id tile.CNodeID) geo.Node {
	tileX := int(id.TileNumber) % m.GridSize[0]
	tileY := int(id.TileNumber) / m.GridSize[0]
	bin := m.TileBinary(id.TileNumber)
	cx := bin[2*id.LocalNodeID]
	cy := bin[2*id.LocalNodeID+1]
	x := m.StartCoordinates[0] + float64(tileX)*m.Side + float64(cx)/255*m.Side
	y := m.StartCoordinates[1] + float64(tileY)*m.Side + float64(cy)/255*m.Side
	return geo.Node{X: x, Y: y}
}

func (m *Map) decodeWay(id tile.CWayID) [2]geo.Node {
	return [2]geo.Node{
		m.DecodeNode(tile.CNodeID{TileNumber: id.TileNumber, LocalNodeID: 2 * uint16(id.LocalWayID)}),
		m.DecodeNode(tile.CNodeID{TileNumber: id.TileNumber, LocalNodeID: 2*uint16(id.LocalWayID) + 1}),
	}
}

// TileWays iterates over every segment stored in a tile.
func (m *Map) TileWays(tileNumber uint16) []struct {
	ID    tile.CWayID
	Nodes [2]geo.Node
} {
	n := m.TileWaysNumber(tileNumber)
	out := make([]struct {
		ID    tile.CWayID
		Nodes [2]geo.Node
	}, n)
	for i := uint8(0); i < n; i++ {
		id := tile.CWayID{TileNumber: tileNumber, LocalWayID: i}
		out[i].ID = id
		out[i].Nodes = m.decodeWay(id)
	}
	return out
}

// Ways iterates over every segment across every tile.
func (m *Map) Ways() [][2]geo.Node {
	var out [][2]geo.Node
	for t := 0; t < len(m.TilesSizesPrefix); t++ {
		for _, w := range m.TileWays(uint16(t)) {
			out = append(out, w.Nodes)
		}
	}
	return out
}

// NodeOffsetID returns id's position in the implied global node stream were
// every tile's segments decompressed end to end: the index a pathfinding
// BitSet indexes seen-nodes by.
func (m *Map) NodeOffsetID(id tile.CNodeID) int {
	tileOffset := 0
	if id.TileNumber > 0 {
		tileOffset = m.TilesSizesPrefix[id.TileNumber-1]
	}
	offset := tileOffset + 2*int(id.LocalNodeID)
	return offset / 2
}

// BoundingBox returns the map's (xmin, ymin, xmax, ymax) extent.
func (m *Map) BoundingBox() (xmin, ymin, xmax, ymax float64) {
	xmin, ymin = m.StartCoordinates[0], m.StartCoordinates[1]
	xmax = xmin + float64(m.GridSize[0])*m.Side
	ymax = ymin + float64(m.GridSize[1])*m.Side
	return
}

// KeepTiles drops every tile not named by wanted (grid-local coordinates
// relative to FirstTile), leaving the grid rectangle and tile numbering
// untouched but zeroing the dropped tiles' byte ranges. Street entries
// pointing at a dropped tile are removed so every surviving CWayID still
// resolves.
func (m *Map) KeepTiles(wanted map[grid.TileKey]bool) *Map {
	out := &Map{
		StartCoordinates: m.StartCoordinates,
		FirstTile:        m.FirstTile,
		GridSize:         m.GridSize,
		Side:             m.Side,
		Streets:          make(map[string][]tile.CWayID),
		Interests:        m.Interests,
	}
	out.TilesSizesPrefix = make([]int, len(m.TilesSizesPrefix))
	keptTile := make(map[uint16]bool, len(m.TilesSizesPrefix))
	tileID := 0
	for y := 0; y < m.GridSize[1]; y++ {
		for x := 0; x < m.GridSize[0]; x++ {
			local := grid.TileKey{TX: x, TY: y}
			if wanted[local] {
				out.BinaryWays = append(out.BinaryWays, m.TileBinary(uint16(tileID))...)
				keptTile[uint16(tileID)] = true
			}
			out.TilesSizesPrefix[tileID] = len(out.BinaryWays)
			tileID++
		}
	}
	for name, ids := range m.Streets {
		var remaining []tile.CWayID
		for _, id := range ids {
			if keptTile[id.TileNumber] {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) > 0 {
			out.Streets[name] = remaining
		}
	}
	return out
}

// FitMap shrinks the grid rectangle to the bounding box of its non-empty
// tiles, renumbering every retained tile and remapping street way ids to
// match.
func (m *Map) FitMap() *Map {
	xmin, xmax, ymin, ymax := -1, -1, -1, -1
	tileID := 0
	for y := 0; y < m.GridSize[1]; y++ {
		for x := 0; x < m.GridSize[0]; x++ {
			if m.TileWaysNumber(uint16(tileID)) > 0 {
				if xmin == -1 || x < xmin {
					xmin = x
				}
				if x > xmax {
					xmax = x
				}
				if ymin == -1 || y < ymin {
					ymin = y
				}
				if y > ymax {
					ymax = y
				}
			}
			tileID++
		}
	}
	if xmin == -1 {
		return &Map{Side: m.Side, Streets: map[string][]tile.CWayID{}, FirstTile: m.FirstTile, GridSize: [2]int{0, 0}}
	}

	out := &Map{
		StartCoordinates: [2]float64{
			m.StartCoordinates[0] + float64(xmin)*m.Side,
			m.StartCoordinates[1] + float64(ymin)*m.Side,
		},
		FirstTile: grid.TileKey{TX: m.FirstTile.TX + xmin, TY: m.FirstTile.TY + ymin},
		GridSize:  [2]int{xmax + 1 - xmin, ymax + 1 - ymin},
		Side:      m.Side,
		Streets:   make(map[string][]tile.CWayID),
		Interests: m.Interests,
	}

	oldToNew := make(map[int]int)
	tileID = 0
	newTileID := 0
	for y := 0; y < m.GridSize[1]; y++ {
		for x := 0; x < m.GridSize[0]; x++ {
			if x >= xmin && x <= xmax && y >= ymin && y <= ymax {
				out.BinaryWays = append(out.BinaryWays, m.TileBinary(uint16(tileID))...)
				out.TilesSizesPrefix = append(out.TilesSizesPrefix, len(out.BinaryWays))
				oldToNew[tileID] = newTileID
				newTileID++
			}
			tileID++
		}
	}

	for name, ids := range m.Streets {
		var remapped []tile.CWayID
		for _, id := range ids {
			if nt, ok := oldToNew[int(id.TileNumber)]; ok {
				remapped = append(remapped, tile.CWayID{TileNumber: uint16(nt), LocalWayID: id.LocalWayID})
			}
		}
		if len(remapped) > 0 {
			out.Streets[name] = remapped
		}
	}
	return out
}

// SortInterestsByLongitude orders interests by X before map construction,
// keeping tile lookups cache-friendly.
func SortInterestsByLongitude(interests []InterestPoint) {
	sort.Slice(interests, func(i, j int) bool { return interests[i].Node.X < interests[j].Node.X })
}
