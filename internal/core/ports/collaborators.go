package ports

import (
	"context"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// Geocoder resolves a free-text address to its single best-match coordinate.
// A (nil, nil) return means the service answered but found no match;
// transport and service-level failures come back as an error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.GeoPoint, error)
}

// CandidateStep is one raw instruction + sub-polyline pair inside a
// candidate path, exactly as the routing service returned it.
type CandidateStep struct {
	Instruction string
	Polyline    string
}

// CandidatePath is one possible route among potentially several. The
// service's own ranking is trusted; callers pick the first.
type CandidatePath struct {
	DistanceMeters float64
	Polyline       string
	Steps          []CandidateStep
}

// RouteSearchResult is the raw outcome of one walking-route search.
type RouteSearchResult struct {
	Paths []CandidatePath
}

// RouteSearcher computes candidate walking paths between two coordinates.
type RouteSearcher interface {
	SearchWalking(ctx context.Context, origin, destination domain.GeoPoint) (*RouteSearchResult, error)
}
