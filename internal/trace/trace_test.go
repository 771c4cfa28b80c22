package trace

import (
	"strings"
	"testing"
)

const sampleGPX = `<?xml version="1.0"?>
<gpx version="1.1">
  <trk>
    <trkseg>
      <trkpt lat="48.0" lon="2.0"><ele>35.5</ele></trkpt>
      <trkpt lat="48.001" lon="2.001"><cmt>turn left</cmt></trkpt>
      <trkpt lat="48.002" lon="2.002"><name>rest stop</name><ele>40.1</ele></trkpt>
      <trkpt lat="48.003" lon="2.003"></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseExtractsPointsWaypointsAndHeights(t *testing.T) {
	t.Parallel()

	tr, err := Parse(strings.NewReader(sampleGPX))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tr.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(tr.Points))
	}
	wantWaypoints := []bool{false, true, true, false}
	for i, want := range wantWaypoints {
		if tr.IsWaypoint[i] != want {
			t.Fatalf("point %d waypoint mismatch: got %v want %v", i, tr.IsWaypoint[i], want)
		}
	}
	if tr.Heights[0] != 35.5 {
		t.Fatalf("expected first point elevation 35.5, got %v", tr.Heights[0])
	}
	if tr.Heights[3] == tr.Heights[3] {
		t.Fatalf("expected NaN for a point with no elevation, got %v", tr.Heights[3])
	}
	if !tr.HasHeights() {
		t.Fatalf("expected HasHeights to report true when at least one point has an elevation")
	}
}

func TestParseRejectsTrackless(t *testing.T) {
	t.Parallel()

	if _, err := Parse(strings.NewReader(`<gpx version="1.1"></gpx>`)); err == nil {
		t.Fatalf("expected an error for a gpx file with no tracks")
	}
}
