// Package osmxml decodes an Overpass XML response into the
// (nodes, ways, streets, interests) shape the graph-shaping pipeline
// consumes, using paulmach/osm's streaming XML scanner over the same
// osm.Node/osm.Way/osm.Tags model the pack's PBF-based router uses.
package osmxml

import (
	"bytes"
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/graph"
)

// nodeFromOSM converts an OSM node's geodetic coordinates into the
// core's opaque planar Node, passing through orb.Point as the
// wire-adjacent (lon, lat) pair: the one place geodetic naming meets
// the bit-pattern-equality core.
func nodeFromOSM(n *osm.Node) geo.Node {
	pt := orb.Point{n.Lon, n.Lat}
	return geo.Node{X: pt.Lon(), Y: pt.Lat()}
}

// excludedHighways are always dropped regardless of configuration: the
// fixed filter set spec'd for the Overpass query is re-applied here in
// case the server sent back more than was asked for.
var excludedHighways = map[string]bool{
	"motorway":      true,
	"motorway_link": true,
	"trunk":         true,
	"trunk_link":    true,
}

// InterestCategory pairs a category id with the OSM tag it matches.
type InterestCategory struct {
	ID    byte
	Key   string
	Value string
}

// Interest is a categorised point extracted from a tagged node.
type Interest struct {
	Category byte
	Node     geo.Node
}

// Result is everything the graph-shaping pipeline and interest bucketer
// need from one Overpass response.
type Result struct {
	Graph     *graph.Graph
	Interests []Interest

	// HighwayValues is every kept way's highway tag value, one entry per
	// way, for roadparts.MapColor to derive the map's display-colour hint.
	HighwayValues []string
}

// Parse scans body and builds a Result. A node becomes an interest for
// every category in categories whose (key, value) it carries; a node
// can match more than one category.
func Parse(body []byte, categories []InterestCategory) (*Result, error) {
	scanner := osmxml.New(context.Background(), bytes.NewReader(body))
	defer scanner.Close()

	nodesByID := make(map[uint64]geo.Node)
	var rawWays []graph.RawWay
	streetWays := make(map[string][]int)
	var interests []Interest
	var highwayValues []string

	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			nodesByID[uint64(obj.ID)] = nodeFromOSM(obj)
			for _, c := range categories {
				if obj.Tags.Find(c.Key) == c.Value {
					interests = append(interests, Interest{
						Category: c.ID,
						Node:     nodeFromOSM(obj),
					})
				}
			}
		case *osm.Way:
			if !keepWay(obj.Tags) {
				continue
			}
			highwayValues = append(highwayValues, obj.Tags.Find("highway"))
			refs := make([]uint64, len(obj.Nodes))
			for i, wn := range obj.Nodes {
				refs[i] = uint64(wn.ID)
			}
			wayIndex := len(rawWays)
			rawWays = append(rawWays, graph.RawWay{NodeRefs: refs})
			if name := obj.Tags.Find("name"); name != "" {
				streetWays[name] = append(streetWays[name], wayIndex)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("osmxml: scanning response: %w", err)
	}

	var rawStreets []graph.RawStreet
	for name, refs := range streetWays {
		rawStreets = append(rawStreets, graph.RawStreet{Name: name, WayRefs: refs})
	}

	g, err := graph.RenameNodes(nodesByID, rawWays, rawStreets)
	if err != nil {
		return nil, err
	}
	return &Result{Graph: g, Interests: interests, HighwayValues: highwayValues}, nil
}

// keepWay reports whether a way's highway tag survives the fixed
// exclusion set.
func keepWay(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if hw == "" {
		return false
	}
	if excludedHighways[hw] {
		return false
	}
	if tags.Find("footway") == "crossing" {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	return true
}
