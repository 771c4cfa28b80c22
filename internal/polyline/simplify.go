// Package polyline implements Douglas-Peucker-style path simplification and
// polyline-to-polygon inflation.
package polyline

import "github.com/watchmapper/tilegps/internal/geo"

// Simplify dispatches to the optimal dynamic-programming algorithm for
// paths of 600 points or fewer, and to the hybrid recursive algorithm
// above that threshold.
func Simplify(points []geo.Node, epsilon float64) []geo.Node {
	return atIndices(points, SimplifyIndices(points, epsilon))
}

// SimplifyIndices is Simplify's index-preserving form: it returns the
// positions kept in points rather than materialising new Nodes, letting
// callers that track node identity alongside coordinates (graph shaping)
// follow the same decisions without losing that identity.
func SimplifyIndices(points []geo.Node, epsilon float64) []int {
	if len(points) <= 600 {
		return SimplifyOptimalIndices(points, epsilon)
	}
	return SimplifyHybridIndices(points, epsilon)
}

func atIndices(points []geo.Node, idx []int) []geo.Node {
	out := make([]geo.Node, len(idx))
	for i, k := range idx {
		out[i] = points[k]
	}
	return out
}

type interval struct{ i, j int }

// SimplifyOptimal returns the minimum-cardinality subsequence of points
// that preserves the first and last points and keeps every dropped point
// within epsilon of the kept polyline, via memoised dynamic programming
// over (start, end) intervals.
func SimplifyOptimal(points []geo.Node, epsilon float64) []geo.Node {
	return atIndices(points, SimplifyOptimalIndices(points, epsilon))
}

// SimplifyOptimalIndices is SimplifyOptimal's index-preserving form.
func SimplifyOptimalIndices(points []geo.Node, epsilon float64) []int {
	n := len(points)
	if n <= 2 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	valid := make(map[interval]bool)
	isValid := func(i, j int) bool {
		k := interval{i, j}
		if v, ok := valid[k]; ok {
			return v
		}
		v := segmentCovers(points, i, j, epsilon)
		valid[k] = v
		return v
	}

	best := make([]int, n)
	next := make([]int, n)
	next[n-1] = -1

	for i := n - 2; i >= 0; i-- {
		bestCost := -1
		bestNext := i + 1
		for j := i + 1; j < n; j++ {
			if !isValid(i, j) {
				continue
			}
			cost := 1 + best[j]
			if bestCost == -1 || cost < bestCost {
				bestCost = cost
				bestNext = j
			}
		}
		best[i] = bestCost
		next[i] = bestNext
	}

	out := []int{0}
	for i := 0; i != -1 && i < n-1; i = next[i] {
		out = append(out, next[i])
	}
	return out
}

func segmentCovers(points []geo.Node, i, j int, epsilon float64) bool {
	a, b := points[i], points[j]
	for k := i + 1; k < j; k++ {
		if points[k].DistanceToSegment(a, b) > epsilon {
			return false
		}
	}
	return true
}

// SimplifyHybrid applies the classic recursive Douglas-Peucker algorithm.
// Closed paths (first point equals last under bit-exact equality) are
// split at the point farthest from the start before recursing, so the
// initial chord is never degenerate.
func SimplifyHybrid(points []geo.Node, epsilon float64) []geo.Node {
	return atIndices(points, SimplifyHybridIndices(points, epsilon))
}

// SimplifyHybridIndices is SimplifyHybrid's index-preserving form.
func SimplifyHybridIndices(points []geo.Node, epsilon float64) []int {
	n := len(points)
	if n <= 2 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	if points[0].BitEqual(points[n-1]) {
		splitIdx := farthestFrom(points, points[0], 1, n-1)
		if splitIdx > 0 && splitIdx < n-1 {
			left := recursiveDP(points, 0, splitIdx, epsilon)
			right := recursiveDP(points, splitIdx, n-1, epsilon)
			return append(left[:len(left)-1], right...)
		}
	}
	return recursiveDP(points, 0, n-1, epsilon)
}

func farthestFrom(points []geo.Node, from geo.Node, start, end int) int {
	best := -1
	bestDist := -1.0
	for k := start; k < end; k++ {
		d := from.SquaredDistanceTo(points[k])
		if d > bestDist {
			bestDist = d
			best = k
		}
	}
	return best
}

func recursiveDP(points []geo.Node, start, end int, epsilon float64) []int {
	if end <= start+1 {
		return []int{start, end}
	}
	a, b := points[start], points[end]
	maxDist := -1.0
	splitIdx := start
	for k := start + 1; k < end; k++ {
		d := points[k].DistanceToSegment(a, b)
		if d > maxDist {
			maxDist = d
			splitIdx = k
		}
	}
	if maxDist <= epsilon {
		return []int{start, end}
	}
	left := recursiveDP(points, start, splitIdx, epsilon)
	right := recursiveDP(points, splitIdx, end, epsilon)
	return append(left[:len(left)-1], right...)
}

// SimplifyAroundWaypoints simplifies each sub-segment between consecutive
// waypoints (inclusive of the path's own endpoints) independently, so
// waypoints always survive exactly.
func SimplifyAroundWaypoints(points []geo.Node, isWaypoint []bool, epsilon float64) ([]geo.Node, []bool) {
	n := len(points)
	if n == 0 {
		return nil, nil
	}

	var anchors []int
	for i := 0; i < n; i++ {
		if i == 0 || i == n-1 || isWaypoint[i] {
			anchors = append(anchors, i)
		}
	}

	anchorKeys := make(map[geo.NodeKey]bool, len(anchors))
	for _, ix := range anchors {
		anchorKeys[points[ix].Key()] = true
	}

	var out []geo.Node
	for s := 0; s < len(anchors)-1; s++ {
		start, end := anchors[s], anchors[s+1]
		seg := Simplify(points[start:end+1], epsilon)
		if s > 0 {
			seg = seg[1:]
		}
		out = append(out, seg...)
	}

	outWaypoints := make([]bool, len(out))
	for i, p := range out {
		outWaypoints[i] = anchorKeys[p.Key()]
	}
	return out, outWaypoints
}
