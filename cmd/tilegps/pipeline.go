package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/watchmapper/tilegps/internal/config"
	"github.com/watchmapper/tilegps/internal/container"
	"github.com/watchmapper/tilegps/internal/fetch"
	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/graph"
	"github.com/watchmapper/tilegps/internal/grid"
	"github.com/watchmapper/tilegps/internal/interest"
	"github.com/watchmapper/tilegps/internal/mapdata"
	"github.com/watchmapper/tilegps/internal/osmxml"
	"github.com/watchmapper/tilegps/internal/roadparts"
	"github.com/watchmapper/tilegps/internal/streetindex"
)

// outputStem strips the input's extension (and relocates it under
// cfg.OutputDir when configured), giving the shared basename the .map and
// .gps outputs are written beside.
func outputStem(inputPath string, cfg config.Config) string {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	if cfg.OutputDir != "" {
		stem = filepath.Join(cfg.OutputDir, filepath.Base(stem))
	}
	return stem
}

// interestCategories assigns configured interest categories dense ids
// starting at 1 (0 stays reserved for waypoints).
func interestCategories(cfg config.Config) []osmxml.InterestCategory {
	cats := make([]osmxml.InterestCategory, len(cfg.Interests))
	for i, c := range cfg.Interests {
		cats[i] = osmxml.InterestCategory{ID: byte(i + 1), Key: c.Key, Value: c.Value}
	}
	return cats
}

// fetchArea runs the map-data collaborator chain for polygon: reuse a
// cached .map response if one already exists beside the output, otherwise
// perform the Overpass fetch and cache it, then hand the raw body to the
// XML-parsing collaborator.
func fetchArea(ctx context.Context, cfg config.Config, polygon []geo.Node, mapCachePath string) (*osmxml.Result, error) {
	body, err := os.ReadFile(mapCachePath)
	if err != nil {
		query := fetch.BuildQuery(polygon, cfg.Filters())
		body, err = fetch.Fetch(ctx, cfg.Endpoint(), query)
		if err != nil {
			return nil, fmt.Errorf("fetching map data: %w", err)
		}
		if err := os.WriteFile(mapCachePath, body, 0o644); err != nil {
			return nil, fmt.Errorf("caching map response: %w", err)
		}
	}

	result, err := osmxml.Parse(body, interestCategories(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing map data: %w", err)
	}
	return result, nil
}

// buildMap shapes result's graph into a tile-encoded Map and derives its
// display-colour hint from the kept ways' highway values.
func buildMap(result *osmxml.Result, side, thickness float64, interests []mapdata.InterestPoint) (*mapdata.Map, [3]byte, error) {
	shaped, buckets, err := graph.Shape(result.Graph, side, thickness)
	if err != nil {
		return nil, [3]byte{}, fmt.Errorf("shaping graph: %w", err)
	}
	m, err := mapdata.Build(shaped, buckets, side, interests)
	if err != nil {
		return nil, [3]byte{}, fmt.Errorf("building map: %w", err)
	}
	c := roadparts.MapColor(result.HighwayValues)
	return m, [3]byte{c.R, c.G, c.B}, nil
}

// pathTileNeighbourhood returns the grid-local tiles (relative to m's
// current FirstTile) that path touches, dilated by one tile ring: the
// clip region a route-mode map is trimmed to before it is emitted.
func pathTileNeighbourhood(m *mapdata.Map, side, thickness float64, path []geo.Node) map[grid.TileKey]bool {
	touched := make(map[grid.TileKey]bool)
	for _, p := range path {
		for _, t := range grid.Tiles(p, side, thickness) {
			touched[grid.TileKey{TX: t.TX - m.FirstTile.TX, TY: t.TY - m.FirstTile.TY}] = true
		}
	}
	wanted := make(map[grid.TileKey]bool, len(touched)*9)
	for t := range touched {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				wanted[grid.TileKey{TX: t.TX + dx, TY: t.TY + dy}] = true
			}
		}
	}
	return wanted
}

// filterInterestsToTiles drops points whose primary tile (relative to
// first) is not in wanted, matching the same clip the map's own tiles go
// through.
func filterInterestsToTiles(points []mapdata.InterestPoint, first grid.TileKey, side float64, wanted map[grid.TileKey]bool) []mapdata.InterestPoint {
	var out []mapdata.InterestPoint
	for _, p := range points {
		t := grid.Of(p.Node.X, p.Node.Y, side)
		local := grid.TileKey{TX: t.TX - first.TX, TY: t.TY - first.TY}
		if wanted[local] {
			out = append(out, p)
		}
	}
	return out
}

// routeBlocks carries the route-mode Path/Heights payload; the route
// itself is not tile-encoded, so it travels separately from mapdata.Map.
type routeBlocks struct {
	points     []geo.Node
	isWaypoint []bool
	heights    []float64 // empty when any point on the route is missing an elevation
}

// writeGPS assembles and writes every container block a finished map
// produces: Tiles always, Streets and Interests when non-empty, and for
// route mode a trailing Path/Heights pair.
func writeGPS(path string, m *mapdata.Map, color [3]byte, checksum bool, route *routeBlocks) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(container.EncodeTiles(m, color, checksum)); err != nil {
		return fmt.Errorf("writing tiles block: %w", err)
	}
	if len(m.Streets) > 0 {
		if _, err := f.Write(container.EncodeStreets(streetindex.Encode(m.Streets), checksum)); err != nil {
			return fmt.Errorf("writing streets block: %w", err)
		}
	}
	if len(m.Interests) > 0 {
		points := make([]interest.Point, len(m.Interests))
		for i, p := range m.Interests {
			points[i] = interest.Point{Category: p.Category, Node: p.Node}
		}
		block, err := interest.Bucket(points, m.Side)
		if err != nil {
			return fmt.Errorf("bucketing interests: %w", err)
		}
		if _, err := f.Write(container.EncodeInterests(block, checksum)); err != nil {
			return fmt.Errorf("writing interests block: %w", err)
		}
	}
	if route != nil {
		if _, err := f.Write(container.EncodePath(route.points, route.isWaypoint)); err != nil {
			return fmt.Errorf("writing path block: %w", err)
		}
		if len(route.heights) > 0 {
			if _, err := f.Write(container.EncodeHeights(route.heights)); err != nil {
				return fmt.Errorf("writing heights block: %w", err)
			}
		}
	}
	return nil
}
