package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
	"github.com/wayfinderhq/wayfinder/internal/pkg/geospatial"
)

// CreateSessionHandler starts a new chat session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := deps.Conversations.StartSession(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Status(201).JSON(session)
	}
}

type submitRequest struct {
	Text string `json:"text"`
}

// SubmitMessageHandler feeds one user input into the session's
// conversation. The synchronous reply carries the messages emitted
// immediately (the user echo, plus the destination prompt on the first
// turn); route outcome messages arrive later via the timeline and the
// WebSocket relay.
func SubmitMessageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Params are backed by the request buffer, which fasthttp
		// reuses once the handler returns. The id outlives the
		// handler via the async pipeline run, so it must be copied.
		sessionID := utils.CopyString(c.Params("id"))

		session, err := deps.Conversations.GetSession(c.Context(), sessionID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if session == nil {
			return errNotFound(c, "session not found")
		}

		var req submitRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		msgs, err := deps.Conversations.Submit(c.Context(), sessionID, req.Text)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if msgs == nil {
			// Empty input: no messages, no state transition.
			return c.SendStatus(204)
		}
		return c.Status(202).JSON(fiber.Map{"messages": msgs})
	}
}

// ListMessagesHandler returns one page of a session's message timeline.
func ListMessagesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		session, err := deps.Conversations.GetSession(c.Context(), sessionID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if session == nil {
			return errNotFound(c, "session not found")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		msgs, total, err := deps.Conversations.History(c.Context(), sessionID, offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: msgs, Pagination: pg})
	}
}

// routeResponse is the synchronous route-resolution payload. The
// straight-line distance is derived from the geocoded endpoints and lets
// clients sanity-check the walking distance against the crow-flies one.
type routeResponse struct {
	Route              *domain.Route   `json:"route"`
	StartPoint         domain.GeoPoint `json:"start_point"`
	EndPoint           domain.GeoPoint `json:"end_point"`
	StraightLineMeters float64         `json:"straight_line_meters"`
}

// WalkingRouteHandler resolves a walking route between two free-text
// addresses synchronously, outside any chat session.
func WalkingRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Query("origin")
		destination := c.Query("destination")
		if origin == "" || destination == "" {
			return errBadRequest(c, "origin and destination are required")
		}

		resolution, err := deps.Resolver.Resolve(c.Context(), domain.PipelineRequest{
			Origin:      origin,
			Destination: destination,
		})
		if err != nil {
			var notFound *domain.AddressNotFoundError
			var upstream *domain.UpstreamError
			switch {
			case errors.As(err, &notFound):
				return newError(c, 404, "address_not_found", notFound.Error())
			case errors.Is(err, domain.ErrNoRouteFound):
				return newError(c, 404, "no_route_found", err.Error())
			case errors.As(err, &upstream):
				return errBadGateway(c, upstream.Error())
			default:
				return errInternal(c, err.Error())
			}
		}

		return c.JSON(routeResponse{
			Route:      resolution.Route,
			StartPoint: resolution.StartPoint,
			EndPoint:   resolution.EndPoint,
			StraightLineMeters: geospatial.Haversine(
				resolution.StartPoint.Lat, resolution.StartPoint.Lon,
				resolution.EndPoint.Lat, resolution.EndPoint.Lon,
			),
		})
	}
}
