// Package pathfind finds a route between two points on an already
// tile-encoded map: a greedy best-first search bounded by an expansion
// budget, falling back to full A* when the budget runs out before
// reaching the goal.
package pathfind

import (
	"container/heap"
	"fmt"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/grid"
	"github.com/watchmapper/tilegps/internal/mapdata"
	"github.com/watchmapper/tilegps/internal/tile"
)

// Vertex addresses one endpoint of a stored segment: its compact id
// (used for identity and the seen-set) and its decoded location (used
// for distance math).
type Vertex struct {
	ID   tile.CNodeID
	Node geo.Node
}

// greedyExpansionLimit bounds the first search pass. It is small enough
// to return quickly on a watch-class device and large enough to solve
// almost all everyday routes outright.
const greedyExpansionLimit = 300

// bitSet is a fixed-size, bit-packed seen-set indexed by a node's
// decompressed stream offset (mapdata.Map.NodeOffsetID).
type bitSet struct {
	bits []uint64
}

func newBitSet(n int) *bitSet {
	return &bitSet{bits: make([]uint64, (n+63)/64+1)}
}

func (b *bitSet) has(i int) bool { return b.bits[i/64]&(1<<uint(i%64)) != 0 }
func (b *bitSet) set(i int)      { b.bits[i/64] |= 1 << uint(i%64) }

type searchNode struct {
	vertex Vertex
	g      float64
	f      float64
	prev   *searchNode
	index  int // heap.Interface bookkeeping
}

type priorityQueue []*searchNode

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].f < pq[j].f }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index, pq[j].index = i, j }
func (pq *priorityQueue) Push(x interface{}) {
	n := *pq
	item := x.(*searchNode)
	item.index = len(n)
	*pq = append(n, item)
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// tileNumberOf resolves a grid-local tile position to its dense
// tile_number, or false if it falls outside the map's grid.
func tileNumberOf(m *mapdata.Map, local grid.TileKey) (uint16, bool) {
	if local.TX < 0 || local.TX >= m.GridSize[0] || local.TY < 0 || local.TY >= m.GridSize[1] {
		return 0, false
	}
	return uint16(local.TY*m.GridSize[0] + local.TX), true
}

// Neighbours enumerates every vertex reachable from v across one stored
// segment: every tile v's node occupies under border-epsilon membership,
// every segment stored there, kept when exactly one endpoint matches v.
func Neighbours(m *mapdata.Map, v Vertex, thickness float64) []Vertex {
	var out []Vertex
	for _, local := range m.NodeTiles(v.Node, thickness) {
		tn, ok := tileNumberOf(m, local)
		if !ok {
			continue
		}
		for _, w := range m.TileWays(tn) {
			a := tile.CNodeID{TileNumber: tn, LocalNodeID: 2 * uint16(w.ID.LocalWayID)}
			b := tile.CNodeID{TileNumber: tn, LocalNodeID: 2*uint16(w.ID.LocalWayID) + 1}
			switch {
			case w.Nodes[0].BitEqual(v.Node):
				out = append(out, Vertex{ID: b, Node: w.Nodes[1]})
			case w.Nodes[1].BitEqual(v.Node):
				out = append(out, Vertex{ID: a, Node: w.Nodes[0]})
			}
		}
	}
	return out
}

// FindPath routes from start to end over m's stored segments. It tries a
// greedy best-first search first (heuristic-only priority, capped at
// greedyExpansionLimit expansions) and falls back to an unbounded full
// A* search (g+h priority) only if that budget runs out before reaching
// the goal.
func FindPath(m *mapdata.Map, start, end Vertex, thickness float64) ([]geo.Node, error) {
	if path, ok := search(m, start, end, thickness, greedyExpansionLimit, true); ok {
		return path, nil
	}
	if path, ok := search(m, start, end, thickness, -1, false); ok {
		return path, nil
	}
	return nil, fmt.Errorf("pathfind: no route found between the given points")
}

func totalNodeCount(m *mapdata.Map) int {
	if len(m.TilesSizesPrefix) == 0 {
		return 0
	}
	return m.TilesSizesPrefix[len(m.TilesSizesPrefix)-1] / 2
}

func search(m *mapdata.Map, start, end Vertex, thickness float64, expansionLimit int, greedyOnly bool) ([]geo.Node, bool) {
	seen := newBitSet(totalNodeCount(m))

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &searchNode{vertex: start, g: 0, f: start.Node.DistanceTo(end.Node)})

	expansions := 0
	for pq.Len() > 0 {
		if expansionLimit >= 0 && expansions >= expansionLimit {
			return nil, false
		}
		cur := heap.Pop(pq).(*searchNode)
		offset := m.NodeOffsetID(cur.vertex.ID)
		if seen.has(offset) {
			continue
		}
		seen.set(offset)
		expansions++

		if cur.vertex.ID == end.ID {
			return reconstruct(cur), true
		}

		for _, nb := range Neighbours(m, cur.vertex, thickness) {
			if seen.has(m.NodeOffsetID(nb.ID)) {
				continue
			}
			g := cur.g + cur.vertex.Node.DistanceTo(nb.Node)
			h := nb.Node.DistanceTo(end.Node)
			f := h
			if !greedyOnly {
				f = g + h
			}
			heap.Push(pq, &searchNode{vertex: nb, g: g, f: f, prev: cur})
		}
	}
	return nil, false
}

func reconstruct(n *searchNode) []geo.Node {
	var path []geo.Node
	for cur := n; cur != nil; cur = cur.prev {
		path = append(path, cur.vertex.Node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// NearestVertex finds the segment endpoint in m closest to gps among
// those stored in gps's own primary tile, the starting point for a
// route (no handling yet for a query point straddling a tile border).
func NearestVertex(m *mapdata.Map, gps geo.Node) (Vertex, error) {
	locals := m.NodeTiles(gps, 0)
	if len(locals) == 0 {
		return Vertex{}, fmt.Errorf("pathfind: point falls outside the map grid")
	}
	tn, ok := tileNumberOf(m, locals[0])
	if !ok {
		return Vertex{}, fmt.Errorf("pathfind: point's tile is outside the map grid")
	}

	var best Vertex
	bestDist := -1.0
	for _, w := range m.TileWays(tn) {
		for i, n := range w.Nodes {
			d := n.SquaredDistanceTo(gps)
			if bestDist < 0 || d < bestDist {
				bestDist = d
				best = Vertex{
					ID:   tile.CNodeID{TileNumber: tn, LocalNodeID: 2*uint16(w.ID.LocalWayID) + uint16(i)},
					Node: n,
				}
			}
		}
	}
	if bestDist < 0 {
		return Vertex{}, fmt.Errorf("pathfind: no segments stored in the starting tile")
	}
	return best, nil
}

// NearestVertexOnStreet finds the segment endpoint belonging to any way
// of the named street closest to gps, the destination for a
// street-by-name route.
func NearestVertexOnStreet(m *mapdata.Map, gps geo.Node, street string) (Vertex, error) {
	ways, ok := m.Streets[street]
	if !ok || len(ways) == 0 {
		return Vertex{}, fmt.Errorf("pathfind: unknown street %q", street)
	}

	var best Vertex
	bestDist := -1.0
	for _, wid := range ways {
		tn := wid.TileNumber
		for i, n := range [2]geo.Node{
			m.DecodeNode(tile.CNodeID{TileNumber: tn, LocalNodeID: 2 * uint16(wid.LocalWayID)}),
			m.DecodeNode(tile.CNodeID{TileNumber: tn, LocalNodeID: 2*uint16(wid.LocalWayID) + 1}),
		} {
			d := n.SquaredDistanceTo(gps)
			if bestDist < 0 || d < bestDist {
				bestDist = d
				best = Vertex{
					ID:   tile.CNodeID{TileNumber: tn, LocalNodeID: 2*uint16(wid.LocalWayID) + uint16(i)},
					Node: n,
				}
			}
		}
	}
	return best, nil
}
