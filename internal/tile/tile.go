// Package tile encodes a tile's bucketed segments into the 4-byte-per-
// segment byte block the binary container stores, deduplicating colinear
// overlapping segments along the way.
package tile

import (
	"fmt"
	"sort"

	"github.com/watchmapper/tilegps/internal/graph"
	"github.com/watchmapper/tilegps/internal/grid"
)

// CWayID addresses a segment positionally within a tile's byte block.
type CWayID struct {
	TileNumber  uint16
	LocalWayID  uint8
}

// CNodeID addresses a node positionally within a tile's byte block: local
// id k corresponds to bytes [2k, 2k+2).
type CNodeID struct {
	TileNumber   uint16
	LocalNodeID  uint16
}

// maxSegmentsPerTile is the hard encoder precondition: local_way_id must
// fit in a u8, so a tile cannot hold more than this many segments once
// deduplication is done.
const maxSegmentsPerTile = 255

// Result is one tile's encoded byte block plus the remap from every
// original way id that fed the tile to the compact id it ended up with.
type Result struct {
	Bytes []byte
	Remap map[graph.WayID]CWayID
}

type quantSeg struct {
	oldID  graph.WayID
	p1, p2 [2]byte
}

// gcd returns the greatest common divisor of |a| and |b|, or 1 if both
// are zero.
func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// lineKey identifies an infinite line through byte-quantised endpoints:
// a canonical direction (dx, dy) and a direction-relative offset. Two
// segments share a lineKey iff they are exactly colinear after
// quantisation.
type lineKey struct {
	dx, dy, offset int
}

func canonicalLine(x1, y1, x2, y2 int) lineKey {
	dx, dy := x2-x1, y2-y1
	g := gcd(dx, dy)
	dx, dy = dx/g, dy/g
	if dx < 0 || (dx == 0 && dy < 0) {
		dx, dy = -dx, -dy
	}
	return lineKey{dx, dy, x1*dy - y1*dx}
}

// Encode builds the byte block for a single tile from the ways bucketed
// into it (every way assumed already a single segment).
func Encode(g *graph.Graph, wayIDs []graph.WayID, tileKey grid.TileKey, side float64, tileNumber uint16) (*Result, error) {
	var segs []quantSeg
	for _, wid := range wayIDs {
		w := g.Ways[wid]
		a := grid.Encode(g.Nodes[w.Nodes[0]], tileKey, side)
		b := grid.Encode(g.Nodes[w.Nodes[1]], tileKey, side)
		if a == b {
			continue
		}
		segs = append(segs, quantSeg{oldID: wid, p1: a, p2: b})
	}

	groups := make(map[lineKey][]quantSeg)
	for _, s := range segs {
		k := canonicalLine(int(s.p1[0]), int(s.p1[1]), int(s.p2[0]), int(s.p2[1]))
		groups[k] = append(groups[k], s)
	}

	keys := make([]lineKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.dx != b.dx {
			return a.dx < b.dx
		}
		if a.dy != b.dy {
			return a.dy < b.dy
		}
		return a.offset < b.offset
	})

	res := &Result{Remap: make(map[graph.WayID]CWayID)}
	count := 0
	emit := func(a, b [2]byte, members []graph.WayID) error {
		if count >= maxSegmentsPerTile {
			return fmt.Errorf("tile %d: more than %d segments after deduplication", tileNumber, maxSegmentsPerTile)
		}
		cid := CWayID{TileNumber: tileNumber, LocalWayID: uint8(count)}
		res.Bytes = append(res.Bytes, a[0], a[1], b[0], b[1])
		for _, m := range members {
			res.Remap[m] = cid
		}
		count++
		return nil
	}

	for _, k := range keys {
		group := groups[k]
		dx, dy := k.dx, k.dy
		proj := func(p [2]byte) int { return int(p[0])*dx + int(p[1])*dy }

		type run struct {
			tMin, tMax int
			pMin, pMax [2]byte
			members    []graph.WayID
		}
		runs := make([]run, len(group))
		for i, s := range group {
			t1, t2 := proj(s.p1), proj(s.p2)
			pMin, pMax := s.p1, s.p2
			if t1 > t2 {
				t1, t2 = t2, t1
				pMin, pMax = pMax, pMin
			}
			runs[i] = run{tMin: t1, tMax: t2, pMin: pMin, pMax: pMax, members: []graph.WayID{s.oldID}}
		}
		sort.Slice(runs, func(i, j int) bool { return runs[i].tMin < runs[j].tMin })

		merged := []run{runs[0]}
		for _, r := range runs[1:] {
			last := &merged[len(merged)-1]
			if r.tMin <= last.tMax {
				if r.tMax > last.tMax {
					last.tMax = r.tMax
					last.pMax = r.pMax
				}
				last.members = append(last.members, r.members...)
			} else {
				merged = append(merged, r)
			}
		}

		for _, r := range merged {
			if err := emit(r.pMin, r.pMax, r.members); err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}
