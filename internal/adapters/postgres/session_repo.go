package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// SessionRepo implements ports.SessionRepository.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, session *domain.Session) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO sessions (id, created_at)
		VALUES ($1, $2)
	`, session.ID, session.CreatedAt)
	return err
}

// GetByID returns (nil, nil) when no session exists with the given id.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s := &domain.Session{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, created_at FROM sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
