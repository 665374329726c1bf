package usecases

import (
	"github.com/wayfinderhq/wayfinder/internal/core/domain"
	"github.com/wayfinderhq/wayfinder/internal/core/ports"
	"github.com/wayfinderhq/wayfinder/internal/pkg/polyline"
)

// AssembleRoute normalizes a raw route-search result into a Route.
//
// The first candidate path is taken; the service's own ranking is trusted and
// never re-ranked locally. Each step's sub-polyline is decoded and appended
// in step order, so the assembled path traces the route in the order a walker
// follows it. A path that decodes to nothing still yields a valid degenerate
// Route: instructions may be usable without geometry, and whether an empty
// path is a failure is the caller's policy, not the assembler's.
func AssembleRoute(result *ports.RouteSearchResult) (*domain.Route, error) {
	if result == nil || len(result.Paths) == 0 {
		return nil, domain.ErrNoRouteFound
	}

	chosen := result.Paths[0]
	route := &domain.Route{
		DistanceMeters: chosen.DistanceMeters,
	}

	for _, step := range chosen.Steps {
		points := polyline.Decode(step.Polyline)
		if step.Instruction != "" {
			route.Steps = append(route.Steps, domain.RouteStep{
				Instruction: step.Instruction,
				Path:        points,
			})
		}
		route.Path = appendDedup(route.Path, points)
	}

	return route, nil
}

// appendDedup appends points, skipping a point identical to the one that
// precedes it. Adjacent steps share their boundary coordinate.
func appendDedup(path, points []domain.GeoPoint) []domain.GeoPoint {
	for _, p := range points {
		if n := len(path); n > 0 && path[n-1] == p {
			continue
		}
		path = append(path, p)
	}
	return path
}
