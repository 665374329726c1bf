package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// ResolutionInput is the input for the route resolution workflow.
type ResolutionInput struct {
	SessionID   string
	Origin      string
	Destination string
}

// ResolutionWorkflow runs the address-to-route pipeline as a durable
// execution: geocode the origin, geocode the destination, search and
// assemble the walking route, then record the outcome in the session
// timeline. Stages run strictly in order and are never retried; a failed
// stage short-circuits straight to the failure record.
func ResolutionWorkflow(ctx workflow.Context, input ResolutionInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting route resolution", "sessionID", input.SessionID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	fail := func(cause error) error {
		if err := workflow.ExecuteActivity(ctx, "RecordFailure", input.SessionID, cause.Error()).Get(ctx, nil); err != nil {
			logger.Error("record failure", "error", err)
		}
		return cause
	}

	// Step 1: Geocode origin
	var start domain.GeoPoint
	if err := workflow.ExecuteActivity(ctx, "GeocodeAddress", input.Origin).Get(ctx, &start); err != nil {
		return fail(err)
	}

	// Step 2: Geocode destination
	var end domain.GeoPoint
	if err := workflow.ExecuteActivity(ctx, "GeocodeAddress", input.Destination).Get(ctx, &end); err != nil {
		return fail(err)
	}

	// Step 3: Search and assemble the walking route
	var resolution domain.Resolution
	if err := workflow.ExecuteActivity(ctx, "SearchWalkingRoute", start, end).Get(ctx, &resolution); err != nil {
		return fail(err)
	}

	// Step 4: Record the outcome messages
	if err := workflow.ExecuteActivity(ctx, "RecordResolution", input.SessionID, resolution).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("Route resolved", "sessionID", input.SessionID,
		"distanceMeters", resolution.Route.DistanceMeters)
	return nil
}
