// Package fetch builds and runs the single Overpass QL request that
// retrieves a polygon's road network. The query selects highway ways and
// their member nodes only; a tagged point of interest is in the response
// only when it is itself a node of one of those ways.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/watchmapper/tilegps/internal/geo"
)

// baseFilters are excluded from every query regardless of configured
// overrides: way categories a router has no use for.
var baseFilters = []string{
	`["highway"]`,
	`["highway"!="motorway"]`,
	`["highway"!="trunk"]`,
	`["highway"!="motorway_link"]`,
	`["highway"!="trunk_link"]`,
	`["footway"!="crossing"]`,
	`["area"!="yes"]`,
}

// BuildQuery renders an Overpass QL query selecting ways inside
// polygon's bounding box, recursing down to their member nodes, plus
// any extra tag filters the configuration adds on top of the fixed
// defaults.
func BuildQuery(polygon []geo.Node, extraFilters []string) string {
	xmin, ymin, xmax, ymax := boundingBox(polygon)

	var filters strings.Builder
	for _, f := range baseFilters {
		filters.WriteString(f)
	}
	for _, f := range extraFilters {
		filters.WriteString(tagFilterClause(f))
	}

	return fmt.Sprintf(
		"[bbox:%g,%g,%g,%g];\n(\nway%s;\n>;\n);\nout body;",
		ymin, xmin, ymax, xmax, filters.String(),
	)
}

// tagFilterClause renders a "key!=value" configuration entry as an
// Overpass tag-filter clause; any other form is passed through as a
// raw bracketed clause already in Overpass syntax.
func tagFilterClause(f string) string {
	if key, value, ok := strings.Cut(f, "!="); ok {
		return fmt.Sprintf(`["%s"!="%s"]`, key, value)
	}
	return "[" + f + "]"
}

func boundingBox(polygon []geo.Node) (xmin, ymin, xmax, ymax float64) {
	if len(polygon) == 0 {
		return 0, 0, 0, 0
	}
	xmin, ymin = polygon[0].X, polygon[0].Y
	xmax, ymax = polygon[0].X, polygon[0].Y
	for _, p := range polygon[1:] {
		if p.X < xmin {
			xmin = p.X
		}
		if p.X > xmax {
			xmax = p.X
		}
		if p.Y < ymin {
			ymin = p.Y
		}
		if p.Y > ymax {
			ymax = p.Y
		}
	}
	return
}

// Fetch performs a single HTTP GET against endpoint with query as the
// "data" parameter and returns the raw response body. There is no
// retry: a failed request is surfaced to the caller, which aborts the
// run, matching the single-shot I/O collaborator contract.
func Fetch(ctx context.Context, endpoint, query string) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch: invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("data", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: building request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: requesting map data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: overpass returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
