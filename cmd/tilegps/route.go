package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/watchmapper/tilegps/internal/config"
	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/interest"
	"github.com/watchmapper/tilegps/internal/mapdata"
	"github.com/watchmapper/tilegps/internal/polyline"
	"github.com/watchmapper/tilegps/internal/trace"
	"github.com/watchmapper/tilegps/internal/waypoint"
)

// routeSimplifyEpsilon is the fixed precision every waypoint-bounded
// sub-segment of a route is simplified to, both before and (if waypoint
// inference runs) after the crossroad pass.
const routeSimplifyEpsilon = 1.5e-4

// smallRouteArea is the angular-degrees-squared bounding-box area under
// which OSM can just be asked for the padded rectangle outright rather
// than an inflated polygon tracing the route.
const smallRouteArea = 0.2 * 0.2

type routeCmd struct {
	Args struct {
		Trace string `positional-arg-name:"TRACE" required:"true" description:"Input GPX trace file"`
	} `positional-args:"true"`

	Config         string `long:"config" description:"Optional YAML config file"`
	InferWaypoints bool   `long:"infer-waypoints" description:"Detect non-obvious crossroads instead of relying solely on the trace's own comments"`
	Checksum       bool   `long:"checksum" description:"Append an xxhash64 trailer to every emitted Tiles, Streets and Interests block (Path and Heights blocks get none)"`
}

// Execute runs the route pipeline: parse trace, simplify around
// waypoints, inflate to a query polygon, fetch, shape, encode, clip to
// the route's own neighbourhood, emit.
func (c *routeCmd) Execute(_ []string) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	side, err := cfg.Side()
	if err != nil {
		return err
	}
	thickness := config.TileBorderThickness

	f, err := os.Open(c.Args.Trace)
	if err != nil {
		return err
	}
	tr, err := trace.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing trace: %w", err)
	}
	if len(tr.Points) < 2 {
		return fmt.Errorf("route: trace has fewer than two points")
	}
	tr.IsWaypoint[0] = true
	tr.IsWaypoint[len(tr.IsWaypoint)-1] = true

	heightByNode := make(map[geo.NodeKey]float64, len(tr.Points))
	for i, h := range tr.Heights {
		if h == h { // not NaN
			heightByNode[tr.Points[i].Key()] = h
		}
	}

	rp, isWaypoint := polyline.SimplifyAroundWaypoints(tr.Points, tr.IsWaypoint, routeSimplifyEpsilon)

	stem := outputStem(c.Args.Trace, cfg)
	result, err := fetchArea(context.Background(), cfg, queryPolygon(rp, side), stem+".map")
	if err != nil {
		return err
	}

	osmInterests := make([]mapdata.InterestPoint, len(result.Interests))
	for i, in := range result.Interests {
		osmInterests[i] = mapdata.InterestPoint{Category: in.Category, Node: in.Node}
	}

	m, color, err := buildMap(result, side, thickness, osmInterests)
	if err != nil {
		return err
	}

	wanted := pathTileNeighbourhood(m, side, thickness, rp)
	m = m.KeepTiles(wanted)
	m.Interests = filterInterestsToTiles(m.Interests, m.FirstTile, side, wanted)
	m = m.FitMap()

	if c.InferWaypoints {
		inferred := waypoint.Infer(m, rp)
		rp, isWaypoint = waypoint.Reshape(rp, inferred, routeSimplifyEpsilon)
	}

	waypointPoints := make([]mapdata.InterestPoint, 0, len(rp))
	for i, w := range isWaypoint {
		if w {
			waypointPoints = append(waypointPoints, mapdata.InterestPoint{
				Category: interest.WaypointCategory,
				Node:     rp[i],
			})
		}
	}
	m.Interests = append(m.Interests, waypointPoints...)
	mapdata.SortInterestsByLongitude(m.Interests)

	heights := make([]float64, len(rp))
	complete := true
	for i, p := range rp {
		h, ok := heightByNode[p.Key()]
		if !ok {
			complete = false
			break
		}
		heights[i] = h
	}
	route := &routeBlocks{points: rp, isWaypoint: isWaypoint}
	if complete {
		route.heights = heights
	}

	if err := writeGPS(stem+".gps", m, color, c.Checksum, route); err != nil {
		return err
	}
	fmt.Printf("wrote %s.gps (%d tiles, %d streets, %d interests, %d route points)\n",
		stem, len(m.TilesSizesPrefix), len(m.Streets), len(m.Interests), len(rp))
	return nil
}

// queryPolygon returns the polygon the Overpass query is built from: a
// padded bounding rectangle for a small route (OSM can just answer the
// whole rectangle), otherwise the route inflated by two tile-widths on
// each side.
func queryPolygon(path []geo.Node, side float64) []geo.Node {
	xmin, xmax := path[0].X, path[0].X
	ymin, ymax := path[0].Y, path[0].Y
	for _, p := range path[1:] {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}

	pad := side * 2
	if (xmax-xmin)*(ymax-ymin) < smallRouteArea {
		xmin, ymin, xmax, ymax = xmin-pad, ymin-pad, xmax+pad, ymax+pad
		return []geo.Node{
			{X: xmin, Y: ymin},
			{X: xmin, Y: ymax},
			{X: xmax, Y: ymax},
			{X: xmax, Y: ymin},
		}
	}
	return polyline.Inflate(path, pad)
}
