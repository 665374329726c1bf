package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	routeStepType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteStep",
		Fields: graphql.Fields{
			"instruction": &graphql.Field{Type: graphql.String},
			"path":        &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"steps":           &graphql.Field{Type: graphql.NewList(routeStepType)},
			"path":            &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	resolutionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Resolution",
		Fields: graphql.Fields{
			"route":       &graphql.Field{Type: routeType},
			"start_point": &graphql.Field{Type: geoPointType},
			"end_point":   &graphql.Field{Type: geoPointType},
		},
	})

	messageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Message",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"session_id": &graphql.Field{Type: graphql.String},
			"role":       &graphql.Field{Type: graphql.String},
			"kind":       &graphql.Field{Type: graphql.String},
			"text":       &graphql.Field{Type: graphql.String},
			"resolution": &graphql.Field{Type: resolutionType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"planWalkingRoute": &graphql.Field{
				Type:        resolutionType,
				Description: "Resolve a walking route between two free-text addresses",
				Args: graphql.FieldConfigArgument{
					"origin":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"destination": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin := p.Args["origin"].(string)
					destination := p.Args["destination"].(string)
					return deps.Resolver.Resolve(p.Context, domain.PipelineRequest{
						Origin:      origin,
						Destination: destination,
					})
				},
			},
			"sessionMessages": &graphql.Field{
				Type:        graphql.NewList(messageType),
				Description: "One page of a session's message timeline",
				Args: graphql.FieldConfigArgument{
					"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"offset":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sessionID := p.Args["session_id"].(string)
					offset := p.Args["offset"].(int)
					limit := p.Args["limit"].(int)
					msgs, _, err := deps.Conversations.History(p.Context, sessionID, offset, limit)
					return msgs, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
