// Package amap talks to the AMap (Gaode) v3 REST API for geocoding and
// walking-route search. Coordinates on the wire use the service's
// "lon,lat" order; domain.GeoPoint stores lat/lon explicitly so the
// conversion happens here and nowhere else.
package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client implements ports.Geocoder and ports.RouteSearcher against the
// AMap v3 web API.
type Client struct {
	http    *http.Client
	key     string
	baseURL string
}

// New creates an AMap client with a bounded request timeout.
func New(key, baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		key:     key,
		baseURL: baseURL,
	}
}

// get issues a GET to the given API path with query params and decodes
// the JSON body into out. Non-200 responses are upstream errors.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.key)
	params.Set("output", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
