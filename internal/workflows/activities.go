package workflows

import (
	"context"
	"fmt"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
	"github.com/wayfinderhq/wayfinder/internal/core/ports"
	"github.com/wayfinderhq/wayfinder/internal/core/usecases"
)

// ResolutionActivities holds the activity implementations for the route
// resolution workflow.
type ResolutionActivities struct {
	Geocoder      ports.Geocoder
	Routes        ports.RouteSearcher
	Conversations *usecases.ConversationService
}

// GeocodeAddress resolves a free-text address to its best-match coordinate.
func (a *ResolutionActivities) GeocodeAddress(ctx context.Context, address string) (domain.GeoPoint, error) {
	point, err := a.Geocoder.Geocode(ctx, address)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if point == nil {
		return domain.GeoPoint{}, &domain.AddressNotFoundError{Address: address}
	}
	return *point, nil
}

// SearchWalkingRoute finds candidate paths between two points and
// assembles the first one into a normalized route.
func (a *ResolutionActivities) SearchWalkingRoute(ctx context.Context, start, end domain.GeoPoint) (*domain.Resolution, error) {
	result, err := a.Routes.SearchWalking(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("search walking route: %w", err)
	}
	route, err := usecases.AssembleRoute(result)
	if err != nil {
		return nil, err
	}
	return &domain.Resolution{Route: route, StartPoint: start, EndPoint: end}, nil
}

// RecordResolution appends the route outcome messages to the session.
func (a *ResolutionActivities) RecordResolution(ctx context.Context, sessionID string, resolution domain.Resolution) error {
	return a.Conversations.RecordResolution(ctx, sessionID, &resolution)
}

// RecordFailure appends the failure message to the session.
func (a *ResolutionActivities) RecordFailure(ctx context.Context, sessionID, cause string) error {
	return a.Conversations.RecordFailure(ctx, sessionID, fmt.Errorf("%s", cause))
}
