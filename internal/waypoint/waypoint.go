// Package waypoint infers which vertices along a route need to be
// surfaced to the traveller as a turn notification: a crossroad is
// "obvious" when the onward direction is unambiguous, and only the
// non-obvious ones become waypoints.
package waypoint

import (
	"math"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/mapdata"
	"github.com/watchmapper/tilegps/internal/pathfind"
	"github.com/watchmapper/tilegps/internal/polyline"
)

// candidateThickness bounds how far a map vertex can sit from a path
// vertex and still be considered the same crossroad.
const candidateThickness = 1e-4

// minSpacing is the minimum distance kept between consecutive inferred
// waypoints.
const minSpacing = 3e-4

// alignmentSlack widens the tolerance derived from the path's own
// entry/exit turn when judging whether a single onward neighbour counts
// as "roughly aligned".
const alignmentSlack = math.Pi / 10

// Infer walks path and returns, for every index, whether that vertex is
// a waypoint: a start, an end, or an interior vertex whose crossroad is
// not obvious.
func Infer(m *mapdata.Map, path []geo.Node) []bool {
	isWaypoint := make([]bool, len(path))
	if len(path) == 0 {
		return isWaypoint
	}
	isWaypoint[0] = true
	isWaypoint[len(path)-1] = true

	lastWaypoint := path[0]
	for i := 1; i < len(path)-1; i++ {
		p, v, q := path[i-1], path[i], path[i+1]
		if !isObviousCrossroad(m, p, v, q) && v.DistanceTo(lastWaypoint) >= minSpacing {
			isWaypoint[i] = true
			lastWaypoint = v
		}
	}
	return isWaypoint
}

// isObviousCrossroad reports whether v's forward direction is
// unambiguous. A vertex with two or fewer onward destinations is not
// even a junction, so it is trivially obvious. Past that, it is obvious
// only when exactly one destination roughly aligns with the path's own
// incoming-to-outgoing turn.
func isObviousCrossroad(m *mapdata.Map, p, v, q geo.Node) bool {
	destinations := candidateDestinations(m, v)
	if len(destinations) <= 2 {
		return true
	}

	ideal := p.AngleTo(v)
	real := v.AngleTo(q)
	tolerance := geo.AngleDiff(ideal, real)
	return matchesExactlyOne(destinations, ideal, tolerance+alignmentSlack)
}

// matchesExactlyOne reports whether exactly one destination direction
// falls within tolerance of ideal.
func matchesExactlyOne(destinations []float64, ideal, tolerance float64) bool {
	matches := 0
	for _, a := range destinations {
		if geo.AngleDiff(ideal, a) <= tolerance {
			matches++
		}
	}
	return matches == 1
}

// candidateDestinations returns the bearing from v to every map
// neighbour within candidateThickness of v.
func candidateDestinations(m *mapdata.Map, v geo.Node) []float64 {
	start, err := pathfind.NearestVertex(m, v)
	if err != nil || start.Node.SquaredDistanceTo(v) > candidateThickness*candidateThickness {
		return nil
	}
	neighbours := pathfind.Neighbours(m, start, candidateThickness)
	angles := make([]float64, 0, len(neighbours))
	for _, nb := range neighbours {
		if nb.Node.BitEqual(v) {
			continue
		}
		angles = append(angles, v.AngleTo(nb.Node))
	}
	return angles
}

// Reshape re-simplifies path around the inferred waypoint set, so the
// final route keeps every waypoint exactly while tightening everything
// else back down.
func Reshape(path []geo.Node, isWaypoint []bool, epsilon float64) ([]geo.Node, []bool) {
	return polyline.SimplifyAroundWaypoints(path, isWaypoint, epsilon)
}
