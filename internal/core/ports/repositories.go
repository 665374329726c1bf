package ports

import (
	"context"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// SessionRepository persists chat sessions. GetByID returns (nil, nil)
// for an unknown id.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
}

// MessageRepository persists the per-session message timeline.
type MessageRepository interface {
	Append(ctx context.Context, msg *domain.Message) error
	ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
}
