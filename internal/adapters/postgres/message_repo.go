package postgres

import (
	"context"
	"encoding/json"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// MessageRepo implements ports.MessageRepository. The optional route
// resolution attached to "map" messages is stored as a jsonb payload
// column rather than relational rows: it is written once, read back
// whole, and never queried by field.
type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	var payload []byte
	if msg.Resolution != nil {
		var err error
		payload, err = json.Marshal(msg.Resolution)
		if err != nil {
			return err
		}
	}

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO messages (id, session_id, role, kind, body, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, msg.ID, msg.SessionID, string(msg.Role), string(msg.Kind), msg.Text, payload, msg.CreatedAt)
	return err
}

func (r *MessageRepo) ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_id, role, kind, body, payload, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`, sessionID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var payload []byte
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Kind, &m.Text, &payload, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			res := &domain.Resolution{}
			if err := json.Unmarshal(payload, res); err != nil {
				return nil, err
			}
			m.Resolution = res
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages WHERE session_id = $1
	`, sessionID).Scan(&count)
	return count, err
}
