package amap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
	"github.com/wayfinderhq/wayfinder/internal/core/ports"
	"github.com/wayfinderhq/wayfinder/internal/pkg/metrics"
)

// SearchWalking asks for walking paths between two coordinates. The
// service's candidate ordering is preserved; an answer with zero paths
// is a valid result, not an error.
func (c *Client) SearchWalking(ctx context.Context, origin, destination domain.GeoPoint) (*ports.RouteSearchResult, error) {
	params := url.Values{}
	params.Set("origin", formatLocation(origin))
	params.Set("destination", formatLocation(destination))
	params.Set("show_fields", "cost,polyline")

	var resp walkingResponse
	if err := c.get(ctx, "/v3/direction/walking", params, &resp); err != nil {
		metrics.RouteSearchRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	if resp.Status != "1" {
		metrics.RouteSearchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("walking search rejected: %s", resp.Info)
	}

	result := &ports.RouteSearchResult{
		Paths: make([]ports.CandidatePath, 0, len(resp.Route.Paths)),
	}
	for _, p := range resp.Route.Paths {
		// Distance arrives as a string of meters; a blank or
		// unparseable value is carried as zero rather than failing
		// the whole search.
		dist, _ := strconv.ParseFloat(p.Distance, 64)

		steps := make([]ports.CandidateStep, 0, len(p.Steps))
		for _, s := range p.Steps {
			steps = append(steps, ports.CandidateStep{
				Instruction: s.Instruction,
				Polyline:    s.Polyline,
			})
		}

		result.Paths = append(result.Paths, ports.CandidatePath{
			DistanceMeters: dist,
			Polyline:       p.Polyline,
			Steps:          steps,
		})
	}

	if len(result.Paths) == 0 {
		metrics.RouteSearchRequests.WithLabelValues("empty").Inc()
	} else {
		metrics.RouteSearchRequests.WithLabelValues("ok").Inc()
	}
	return result, nil
}
