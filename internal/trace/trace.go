// Package trace decodes a GPX track into the (points, waypoints,
// heights) triple the route pipeline consumes: no GPX parsing library
// appears anywhere in the example pack, so this decodes the standard
// GPX 1.1 schema directly with encoding/xml.
package trace

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"

	"github.com/watchmapper/tilegps/internal/geo"
)

var nan = math.NaN()

type gpxFile struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat       float64  `xml:"lat,attr"`
	Lon       float64  `xml:"lon,attr"`
	Elevation *float64 `xml:"ele"`
	Comment   string   `xml:"cmt"`
	Name      string   `xml:"name"`
}

// Trace is the decoded form of one GPX track: its points in order, a
// parallel waypoint marker per point, and elevations for the points
// that carry one.
type Trace struct {
	Points     []geo.Node
	IsWaypoint []bool
	Heights    []float64 // meters; NaN where the source point had none
}

// Parse decodes a GPX document's last track (matching the single-track
// assumption the original tool made) into a Trace. A point is a
// waypoint when its <cmt> or <name> is non-empty.
func Parse(r io.Reader) (*Trace, error) {
	var doc gpxFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("trace: decoding gpx: %w", err)
	}
	if len(doc.Tracks) == 0 {
		return nil, fmt.Errorf("trace: gpx file has no tracks")
	}
	track := doc.Tracks[len(doc.Tracks)-1]

	var t Trace
	for _, seg := range track.Segments {
		for _, p := range seg.Points {
			t.Points = append(t.Points, geo.Node{X: p.Lon, Y: p.Lat})
			t.IsWaypoint = append(t.IsWaypoint, p.Comment != "" || p.Name != "")
			height := nan
			if p.Elevation != nil {
				height = *p.Elevation
			}
			t.Heights = append(t.Heights, height)
		}
	}
	return &t, nil
}

// HasHeights reports whether any point in t carries an elevation.
func (t *Trace) HasHeights() bool {
	for _, h := range t.Heights {
		if h == h { // not NaN
			return true
		}
	}
	return false
}
