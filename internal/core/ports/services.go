package ports

import (
	"context"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// StateStore holds the conversation state machine position per session.
// Get returns (nil, nil) when no state is stored, which callers treat as
// a fresh StageAwaitingOrigin.
type StateStore interface {
	Get(ctx context.Context, sessionID string) (*domain.ConversationState, error)
	Set(ctx context.Context, sessionID string, state *domain.ConversationState) error
	Clear(ctx context.Context, sessionID string) error
}

// EventPublisher publishes chat events to a message broker for live
// delivery (WebSocket relay) and downstream consumers.
type EventPublisher interface {
	PublishMessage(ctx context.Context, msg *domain.Message) error
	PublishRouteResolved(ctx context.Context, sessionID string, res *domain.Resolution) error
}
