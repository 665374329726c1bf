package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
	"github.com/wayfinderhq/wayfinder/internal/core/ports"
	"github.com/wayfinderhq/wayfinder/internal/pkg/metrics"
)

const defaultStageTimeout = 10 * time.Second

var tracer = otel.Tracer("wayfinder/resolver")

// ResolverService drives the address-to-route resolution pipeline:
// geocode(origin) → geocode(destination) → route search → assembly.
//
// The stages run strictly sequentially; the route search is never issued
// before both geocodes have succeeded. Each invocation threads its
// intermediate coordinates through a local accumulator, so concurrent
// invocations are independent and cannot observe each other's state.
type ResolverService struct {
	geocoder     ports.Geocoder
	routes       ports.RouteSearcher
	stageTimeout time.Duration
}

// NewResolverService creates a new ResolverService. A non-positive
// stageTimeout falls back to 10 seconds per stage.
func NewResolverService(geocoder ports.Geocoder, routes ports.RouteSearcher, stageTimeout time.Duration) *ResolverService {
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}
	return &ResolverService{geocoder: geocoder, routes: routes, stageTimeout: stageTimeout}
}

// Resolve runs the pipeline to completion and reports exactly one outcome.
//
// Failures short-circuit: if a stage fails, later stages are never entered
// and no retries happen. Error cases are *domain.AddressNotFoundError,
// domain.ErrNoRouteFound, and *domain.UpstreamError.
func (s *ResolverService) Resolve(ctx context.Context, req domain.PipelineRequest) (*domain.Resolution, error) {
	if req.Origin == "" || req.Destination == "" {
		return nil, fmt.Errorf("origin and destination are required")
	}

	ctx, span := tracer.Start(ctx, "pipeline.resolve")
	span.SetAttributes(
		attribute.String("origin", req.Origin),
		attribute.String("destination", req.Destination),
	)
	defer span.End()

	start, err := s.geocodeStage(ctx, "geocode_origin", req.Origin)
	if err != nil {
		return nil, s.fail(err)
	}

	end, err := s.geocodeStage(ctx, "geocode_destination", req.Destination)
	if err != nil {
		return nil, s.fail(err)
	}

	result, err := s.searchStage(ctx, *start, *end)
	if err != nil {
		return nil, s.fail(err)
	}

	route, err := AssembleRoute(result)
	if err != nil {
		return nil, s.fail(err)
	}

	if len(route.Path) == 0 {
		// Degenerate but valid: instructions without geometry (see assembler).
		slog.Warn("route assembled without geometry",
			"origin", req.Origin, "destination", req.Destination,
			"steps", len(route.Steps))
	}

	metrics.PipelineResolutions.WithLabelValues("success").Inc()
	return &domain.Resolution{Route: route, StartPoint: *start, EndPoint: *end}, nil
}

func (s *ResolverService) geocodeStage(ctx context.Context, stage, address string) (*domain.GeoPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	timer := time.Now()
	point, err := s.geocoder.Geocode(ctx, address)
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(timer).Seconds())

	if err != nil {
		return nil, &domain.UpstreamError{Cause: err}
	}
	if point == nil {
		return nil, &domain.AddressNotFoundError{Address: address}
	}
	return point, nil
}

func (s *ResolverService) searchStage(ctx context.Context, start, end domain.GeoPoint) (*ports.RouteSearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	timer := time.Now()
	result, err := s.routes.SearchWalking(ctx, start, end)
	metrics.PipelineStageDuration.WithLabelValues("route_search").Observe(time.Since(timer).Seconds())

	if err != nil {
		return nil, &domain.UpstreamError{Cause: err}
	}
	return result, nil
}

func (s *ResolverService) fail(err error) error {
	metrics.PipelineResolutions.WithLabelValues(outcomeLabel(err)).Inc()
	return err
}

func outcomeLabel(err error) string {
	switch err.(type) {
	case *domain.AddressNotFoundError:
		return "address_not_found"
	case *domain.UpstreamError:
		return "upstream_error"
	default:
		if err == domain.ErrNoRouteFound {
			return "no_route"
		}
		return "error"
	}
}
