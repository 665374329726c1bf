package http

import (
	"github.com/nats-io/nats.go"

	"github.com/wayfinderhq/wayfinder/internal/adapters/postgres"
	"github.com/wayfinderhq/wayfinder/internal/adapters/valkey"
	"github.com/wayfinderhq/wayfinder/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Conversations *usecases.ConversationService
	Resolver      *usecases.ResolverService
	NATS          *nats.Conn
	DB            *postgres.DB
	State         *valkey.StateStore
}
