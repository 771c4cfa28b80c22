// Package graph shapes raw (nodes, ways, streets) into the single-segment,
// tile-cut form the tile encoder consumes: rename, sanitize, simplify, cut
// on tile borders, cut into edges, bucket by tile.
package graph

import (
	"fmt"
	"sort"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/grid"
	"github.com/watchmapper/tilegps/internal/polyline"
)

// NodeID and WayID are dense indices into a Graph's Nodes/Ways slices.
type NodeID uint32
type WayID uint32

// Way is an ordered sequence of node ids. After the full shaping pipeline
// every Way holds exactly two node ids.
type Way struct {
	Nodes []NodeID
}

// Street names an ordered list of ways.
type Street struct {
	Name   string
	WayIDs []WayID
}

// Graph is the in-progress shaped map: dense nodes, ways referencing them,
// and streets referencing ways.
type Graph struct {
	Nodes   []geo.Node
	Ways    []Way
	Streets []Street
}

// RawWay is a way as delivered by the XML-parsing collaborator, still
// addressing nodes by their external (OSM) id.
type RawWay struct {
	NodeRefs []uint64
}

// RawStreet names an ordered list of ways by their position in the `ways`
// slice passed to RenameNodes (the XML-parsing collaborator controls both
// slices together, so it can hand out positions directly rather than a
// separate external way-id namespace).
type RawStreet struct {
	Name    string
	WayRefs []int
}

// RenameNodes remaps external node ids to dense NodeIDs in first-seen
// order through ways. Way ids are already dense: WayID(i) corresponds to
// ways[i].
func RenameNodes(nodesByExternalID map[uint64]geo.Node, ways []RawWay, streets []RawStreet) (*Graph, error) {
	nodeIndex := make(map[uint64]NodeID)

	g := &Graph{}
	for _, rw := range ways {
		nodes := make([]NodeID, 0, len(rw.NodeRefs))
		for _, ext := range rw.NodeRefs {
			id, ok := nodeIndex[ext]
			if !ok {
				point, ok := nodesByExternalID[ext]
				if !ok {
					return nil, fmt.Errorf("graph: way references unknown node %d", ext)
				}
				id = NodeID(len(g.Nodes))
				nodeIndex[ext] = id
				g.Nodes = append(g.Nodes, point)
			}
			nodes = append(nodes, id)
		}
		g.Ways = append(g.Ways, Way{Nodes: nodes})
	}

	for _, rs := range streets {
		var ids []WayID
		for _, pos := range rs.WayRefs {
			if pos < 0 || pos >= len(ways) {
				return nil, fmt.Errorf("graph: street %q references unknown way %d", rs.Name, pos)
			}
			ids = append(ids, WayID(pos))
		}
		g.Streets = append(g.Streets, Street{Name: rs.Name, WayIDs: ids})
	}
	return g, nil
}

// computeWayDegrees counts, for every node, the number of distinct ways
// that touch it. A node touched by exactly one way is an ordinary shape
// point; two or more marks it a junction.
func computeWayDegrees(g *Graph) []int {
	degree := make([]int, len(g.Nodes))
	for _, w := range g.Ways {
		seen := make(map[NodeID]bool, len(w.Nodes))
		for _, nid := range w.Nodes {
			if !seen[nid] {
				degree[nid]++
				seen[nid] = true
			}
		}
	}
	return degree
}

// Sanitize splits every way at every internal node whose global degree is
// 2 or more, so that only way endpoints are ever junctions afterward.
// Street way-lists are updated to point at the resulting sub-ways, in
// order.
func Sanitize(g *Graph) *Graph {
	degree := computeWayDegrees(g)

	var newWays []Way
	expansion := make([][]WayID, len(g.Ways))

	for wi, w := range g.Ways {
		if len(w.Nodes) < 2 {
			continue
		}
		start := 0
		var subIDs []WayID
		for i := 1; i < len(w.Nodes)-1; i++ {
			if degree[w.Nodes[i]] >= 2 {
				seg := append([]NodeID{}, w.Nodes[start:i+1]...)
				newWays = append(newWays, Way{Nodes: seg})
				subIDs = append(subIDs, WayID(len(newWays)-1))
				start = i
			}
		}
		seg := append([]NodeID{}, w.Nodes[start:]...)
		newWays = append(newWays, Way{Nodes: seg})
		subIDs = append(subIDs, WayID(len(newWays)-1))
		expansion[wi] = subIDs
	}

	newStreets := make([]Street, 0, len(g.Streets))
	for _, st := range g.Streets {
		var ids []WayID
		for _, owid := range st.WayIDs {
			ids = append(ids, expansion[owid]...)
		}
		if len(ids) > 0 {
			newStreets = append(newStreets, Street{Name: st.Name, WayIDs: ids})
		}
	}
	return &Graph{Nodes: g.Nodes, Ways: newWays, Streets: newStreets}
}

const simplifyEpsilon = 1.5e-4

// SimplifyWays applies Douglas-Peucker simplification to every way at the
// standard epsilon, dropping ways that collapse to fewer than two
// distinct nodes and removing any street left with no ways.
func SimplifyWays(g *Graph) *Graph {
	var newWays []Way
	remap := make([]int, len(g.Ways)) // old WayID -> new index, or -1 if dropped
	for i := range remap {
		remap[i] = -1
	}

	for wi, w := range g.Ways {
		pts := make([]geo.Node, len(w.Nodes))
		for i, nid := range w.Nodes {
			pts[i] = g.Nodes[nid]
		}
		keptIdx := polyline.SimplifyIndices(pts, simplifyEpsilon)

		kept := make([]NodeID, 0, len(keptIdx))
		for _, k := range keptIdx {
			if len(kept) == 0 || !g.Nodes[kept[len(kept)-1]].BitEqual(g.Nodes[w.Nodes[k]]) {
				kept = append(kept, w.Nodes[k])
			}
		}
		if len(kept) < 2 {
			continue
		}
		newWays = append(newWays, Way{Nodes: kept})
		remap[wi] = len(newWays) - 1
	}

	newStreets := make([]Street, 0, len(g.Streets))
	for _, st := range g.Streets {
		var ids []WayID
		for _, owid := range st.WayIDs {
			if ni := remap[owid]; ni >= 0 {
				ids = append(ids, WayID(ni))
			}
		}
		if len(ids) > 0 {
			newStreets = append(newStreets, Street{Name: st.Name, WayIDs: ids})
		}
	}
	return &Graph{Nodes: g.Nodes, Ways: newWays, Streets: newStreets}
}

// CutOnTileBorders inserts grid-crossing nodes on every consecutive pair
// of a way, so no segment afterward crosses a tile boundary. Inserted
// nodes are deduplicated via bit-exact coordinate equality so repeated
// crossings of the same grid line share a single node id.
func CutOnTileBorders(g *Graph, side float64) *Graph {
	nodeIndex := make(map[geo.NodeKey]NodeID, len(g.Nodes))
	nodes := make([]geo.Node, 0, len(g.Nodes))
	intern := func(n geo.Node) NodeID {
		k := n.Key()
		if id, ok := nodeIndex[k]; ok {
			return id
		}
		id := NodeID(len(nodes))
		nodeIndex[k] = id
		nodes = append(nodes, n)
		return id
	}
	for _, n := range g.Nodes {
		intern(n)
	}

	var newWays []Way
	for _, w := range g.Ways {
		var out []NodeID
		out = append(out, w.Nodes[0])
		for i := 0; i+1 < len(w.Nodes); i++ {
			n1 := g.Nodes[w.Nodes[i]]
			n2 := g.Nodes[w.Nodes[i+1]]

			xs := grid.GridCoordinatesBetween(n1.X, n2.X, side)
			ys := grid.GridCoordinatesBetween(n1.Y, n2.Y, side)

			type crossing struct {
				node geo.Node
				dist float64
			}
			var crossings []crossing
			for _, x := range xs {
				seg := geo.Segment{n1, n2}
				if p, ok := seg.VerticalIntersection(x); ok {
					crossings = append(crossings, crossing{p, n1.DistanceTo(p)})
				}
			}
			for _, y := range ys {
				seg := geo.Segment{n1, n2}
				if p, ok := seg.HorizontalIntersection(y); ok {
					crossings = append(crossings, crossing{p, n1.DistanceTo(p)})
				}
			}
			sort.Slice(crossings, func(a, b int) bool { return crossings[a].dist < crossings[b].dist })

			for _, c := range crossings {
				out = append(out, intern(c.node))
			}
			out = append(out, w.Nodes[i+1])
		}
		newWays = append(newWays, Way{Nodes: out})
	}

	return &Graph{Nodes: nodes, Ways: newWays, Streets: g.Streets}
}

// CutIntoEdges explodes every way into its consecutive-pair segments.
// Street way-lists expand in lockstep: each old way id becomes the
// ordered list of the segment ids it produced.
func CutIntoEdges(g *Graph) *Graph {
	var newWays []Way
	expansion := make([][]WayID, len(g.Ways))
	for wi, w := range g.Ways {
		if len(w.Nodes) < 2 {
			panic(fmt.Sprintf("graph: way %d has fewer than two nodes after border-cutting", wi))
		}
		var ids []WayID
		for i := 0; i+1 < len(w.Nodes); i++ {
			newWays = append(newWays, Way{Nodes: []NodeID{w.Nodes[i], w.Nodes[i+1]}})
			ids = append(ids, WayID(len(newWays)-1))
		}
		expansion[wi] = ids
	}

	newStreets := make([]Street, len(g.Streets))
	for si, st := range g.Streets {
		var ids []WayID
		for _, owid := range st.WayIDs {
			ids = append(ids, expansion[owid]...)
		}
		newStreets[si] = Street{Name: st.Name, WayIDs: ids}
	}
	return &Graph{Nodes: g.Nodes, Ways: newWays, Streets: newStreets}
}

// TileOfSegment returns the tile a two-node way belongs to: a tile present
// in the intersection of both endpoints' border-epsilon tile sets. This
// intersection is guaranteed non-empty after CutOnTileBorders.
func TileOfSegment(g *Graph, w Way, side, thickness float64) (grid.TileKey, error) {
	a := grid.Tiles(g.Nodes[w.Nodes[0]], side, thickness)
	b := grid.Tiles(g.Nodes[w.Nodes[1]], side, thickness)

	bSet := make(map[grid.TileKey]bool, len(b))
	for _, t := range b {
		bSet[t] = true
	}
	for _, t := range a {
		if bSet[t] {
			return t, nil
		}
	}
	return grid.TileKey{}, fmt.Errorf("graph: segment endpoints share no tile")
}

// BucketByTile assigns every way (assumed to already be single segments)
// to the tile reported by TileOfSegment.
func BucketByTile(g *Graph, side, thickness float64) (map[grid.TileKey][]WayID, error) {
	buckets := make(map[grid.TileKey][]WayID)
	for wi, w := range g.Ways {
		t, err := TileOfSegment(g, w, side, thickness)
		if err != nil {
			return nil, fmt.Errorf("graph: way %d: %w", wi, err)
		}
		buckets[t] = append(buckets[t], WayID(wi))
	}
	return buckets, nil
}

// Shape runs the full pipeline: sanitize, simplify, cut on tile borders,
// cut into edges, bucket by tile.
func Shape(g *Graph, side, thickness float64) (*Graph, map[grid.TileKey][]WayID, error) {
	g = Sanitize(g)
	g = SimplifyWays(g)
	g = CutOnTileBorders(g, side)
	g = CutIntoEdges(g)
	buckets, err := BucketByTile(g, side, thickness)
	if err != nil {
		return nil, nil, err
	}
	return g, buckets, nil
}
