package amap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
	"github.com/wayfinderhq/wayfinder/internal/pkg/metrics"
)

// Geocode resolves a free-text address to the first candidate's
// coordinate. A successful answer with zero candidates returns
// (nil, nil) so the caller can distinguish "not found" from failure.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.GeoPoint, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := c.get(ctx, "/v3/geocode/geo", params, &resp); err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	if resp.Status != "1" {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode rejected: %s", resp.Info)
	}

	if len(resp.Geocodes) == 0 || resp.Geocodes[0].Location == "" {
		metrics.GeocodeRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}

	point, err := parseLocation(resp.Geocodes[0].Location)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode location %q: %w", resp.Geocodes[0].Location, err)
	}

	metrics.GeocodeRequests.WithLabelValues("hit").Inc()
	return point, nil
}

// parseLocation converts an AMap "lon,lat" pair to a GeoPoint.
func parseLocation(s string) (*domain.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed coordinate pair")
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, err
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, err
	}
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		return nil, fmt.Errorf("coordinate out of range")
	}
	return &p, nil
}

// formatLocation renders a GeoPoint in the service's "lon,lat" order.
func formatLocation(p domain.GeoPoint) string {
	return strconv.FormatFloat(p.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
}
