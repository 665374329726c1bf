package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// StateStore implements ports.StateStore using Valkey (Redis-compatible).
// Conversation state is JSON-encoded under one key per session with a
// sliding TTL, so abandoned conversations expire back to the initial
// stage on their own.
type StateStore struct {
	client valkey.Client
	ttl    time.Duration
}

// New creates a new Valkey-backed state store.
func New(addr string, ttl time.Duration) (*StateStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &StateStore{client: client, ttl: ttl}, nil
}

func stateKey(sessionID string) string {
	return "conv:state:" + sessionID
}

// Get returns (nil, nil) when no state is stored for the session.
func (s *StateStore) Get(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	cmd := s.client.Do(ctx, s.client.B().Get().Key(stateKey(sessionID)).Build())
	if err := cmd.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	b, err := cmd.AsBytes()
	if err != nil {
		return nil, err
	}
	state := &domain.ConversationState{}
	if err := json.Unmarshal(b, state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

// Set stores the state and refreshes the session's TTL.
func (s *StateStore) Set(ctx context.Context, sessionID string, state *domain.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	cmd := s.client.Do(ctx,
		s.client.B().Set().Key(stateKey(sessionID)).Value(string(b)).Ex(s.ttl).Build(),
	)
	return cmd.Error()
}

// Clear removes the stored state, returning the session to the
// initial stage on its next turn.
func (s *StateStore) Clear(ctx context.Context, sessionID string) error {
	cmd := s.client.Do(ctx, s.client.B().Del().Key(stateKey(sessionID)).Build())
	return cmd.Error()
}

// Close releases the client.
func (s *StateStore) Close() {
	s.client.Close()
}
