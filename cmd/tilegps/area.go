package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/watchmapper/tilegps/internal/config"
	"github.com/watchmapper/tilegps/internal/geo"
	"github.com/watchmapper/tilegps/internal/mapdata"
)

type areaCmd struct {
	Args struct {
		XMin   float64 `positional-arg-name:"XMIN" required:"true" description:"Minimum longitude"`
		YMin   float64 `positional-arg-name:"YMIN" required:"true" description:"Minimum latitude"`
		Width  float64 `positional-arg-name:"WIDTH" required:"true" description:"Width in degrees"`
		Height float64 `positional-arg-name:"HEIGHT" required:"true" description:"Height in degrees"`
	} `positional-args:"true"`

	Output   string `long:"output" description:"Output file stem (without extension)"`
	Config   string `long:"config" description:"Optional YAML config file"`
	Checksum bool   `long:"checksum" description:"Append an xxhash64 trailer to every emitted block"`
}

// Execute runs the area pipeline: fetch a rectangle outright, shape, encode,
// fit to its own non-empty tiles, emit. Area mode never produces a path, so
// it skips the route-neighbourhood clip and emits no Path/Heights block.
func (c *areaCmd) Execute(_ []string) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	side, err := cfg.Side()
	if err != nil {
		return err
	}
	thickness := config.TileBorderThickness

	xmin, ymin := c.Args.XMin, c.Args.YMin
	xmax, ymax := xmin+c.Args.Width, ymin+c.Args.Height
	polygon := []geo.Node{
		{X: xmin, Y: ymin},
		{X: xmin, Y: ymax},
		{X: xmax, Y: ymax},
		{X: xmax, Y: ymin},
	}

	stem := c.Output
	if stem == "" {
		stem = fmt.Sprintf("area-%.5f-%.5f", xmin, ymin)
	}
	if cfg.OutputDir != "" {
		stem = filepath.Join(cfg.OutputDir, filepath.Base(stem))
	}

	result, err := fetchArea(context.Background(), cfg, polygon, stem+".map")
	if err != nil {
		return err
	}

	osmInterests := make([]mapdata.InterestPoint, len(result.Interests))
	for i, in := range result.Interests {
		osmInterests[i] = mapdata.InterestPoint{Category: in.Category, Node: in.Node}
	}
	mapdata.SortInterestsByLongitude(osmInterests)

	m, color, err := buildMap(result, side, thickness, osmInterests)
	if err != nil {
		return err
	}
	m = m.FitMap()

	if err := writeGPS(stem+".gps", m, color, c.Checksum, nil); err != nil {
		return err
	}
	fmt.Printf("wrote %s.gps (%d tiles, %d streets, %d interests)\n",
		stem, len(m.TilesSizesPrefix), len(m.Streets), len(m.Interests))
	return nil
}
