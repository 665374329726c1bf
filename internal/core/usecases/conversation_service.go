package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
	"github.com/wayfinderhq/wayfinder/internal/core/ports"
)

const destinationPrompt = "Please enter the destination address"

// ConversationService is the two-turn input state machine sitting in front
// of the resolution pipeline: it collects an origin, then a destination,
// then triggers one pipeline run and renders its outcome as chat messages.
type ConversationService struct {
	resolver  *ResolverService
	sessions  ports.SessionRepository
	messages  ports.MessageRepository
	state     ports.StateStore
	publisher ports.EventPublisher

	// At most one pipeline run in flight per session. The conversation
	// state is reset before the run starts, so the user may already be
	// typing the next exchange; its run waits for the prior one. Slots
	// are refcounted and dropped from the map once the last run using
	// them completes.
	mu       sync.Mutex
	inflight map[string]*sessionSlot
}

type sessionSlot struct {
	sync.Mutex
	refs int
}

// NewConversationService creates a new ConversationService.
func NewConversationService(
	resolver *ResolverService,
	sessions ports.SessionRepository,
	messages ports.MessageRepository,
	state ports.StateStore,
	publisher ports.EventPublisher,
) *ConversationService {
	return &ConversationService{
		resolver:  resolver,
		sessions:  sessions,
		messages:  messages,
		state:     state,
		publisher: publisher,
		inflight:  make(map[string]*sessionSlot),
	}
}

// StartSession creates a new chat session in the awaiting-origin state.
func (s *ConversationService) StartSession(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// GetSession looks a session up by id; (nil, nil) means unknown.
func (s *ConversationService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

// History returns one page of the session's message timeline in append
// order, along with the total message count.
func (s *ConversationService) History(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, int, error) {
	total, err := s.messages.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}
	msgs, err := s.messages.ListBySession(ctx, sessionID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	return msgs, total, nil
}

// Submit feeds one user input into the session's state machine and returns
// the messages emitted synchronously. Empty input is a no-op: no messages,
// no transition. Submitting a destination triggers the pipeline
// asynchronously; its outcome messages are appended to the session log and
// published when the run completes.
func (s *ConversationService) Submit(ctx context.Context, sessionID, text string) ([]domain.Message, error) {
	if text == "" {
		return nil, nil
	}

	state, err := s.state.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load conversation state: %w", err)
	}
	if state == nil {
		state = &domain.ConversationState{Stage: domain.StageAwaitingOrigin}
	}

	echo, err := s.record(ctx, sessionID, domain.RoleUser, domain.KindText, text, nil)
	if err != nil {
		return nil, err
	}

	if state.Stage == domain.StageAwaitingOrigin {
		next := &domain.ConversationState{
			Stage:  domain.StageAwaitingDestination,
			Origin: text,
		}
		if err := s.state.Set(ctx, sessionID, next); err != nil {
			return nil, fmt.Errorf("store conversation state: %w", err)
		}

		prompt, err := s.record(ctx, sessionID, domain.RoleAssistant, domain.KindPrompt, destinationPrompt, nil)
		if err != nil {
			return nil, err
		}
		return []domain.Message{*echo, *prompt}, nil
	}

	// Second turn: reset the state machine before the pipeline resolves,
	// then kick off the run. The user re-enters both addresses next time
	// regardless of the outcome. Clearing the key is the reset: a
	// missing state reads back as awaiting-origin.
	req := domain.PipelineRequest{Origin: state.Origin, Destination: text}
	if err := s.state.Clear(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("reset conversation state: %w", err)
	}

	go s.runPipeline(sessionID, req)

	return []domain.Message{*echo}, nil
}

func (s *ConversationService) runPipeline(sessionID string, req domain.PipelineRequest) {
	slot := s.acquireSlot(sessionID)
	slot.Lock()
	defer func() {
		slot.Unlock()
		s.releaseSlot(sessionID, slot)
	}()

	// The submitting request has long been answered; the run gets its own
	// context and relies on the resolver's per-stage deadlines.
	ctx := context.Background()

	resolution, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		if rerr := s.RecordFailure(ctx, sessionID, err); rerr != nil {
			slog.Error("record failure message", "session_id", sessionID, "error", rerr)
		}
		return
	}

	if err := s.RecordResolution(ctx, sessionID, resolution); err != nil {
		slog.Error("record resolution", "session_id", sessionID, "error", err)
	}
}

// RecordFailure appends the error message a failed pipeline run leaves in
// the session timeline.
func (s *ConversationService) RecordFailure(ctx context.Context, sessionID string, cause error) error {
	text := fmt.Sprintf("Route planning failed: %v", cause)
	_, err := s.record(ctx, sessionID, domain.RoleAssistant, domain.KindError, text, nil)
	return err
}

// RecordResolution renders a completed resolution as chat messages: one
// summary, one instruction per step, then a map message carrying the
// resolution payload.
func (s *ConversationService) RecordResolution(ctx context.Context, sessionID string, resolution *domain.Resolution) error {
	summary := "Here is your walking route:"
	if d := resolution.Route.DistanceMeters; d > 0 {
		summary = fmt.Sprintf("Here is your walking route (%s):", formatDistance(d))
	}
	if _, err := s.record(ctx, sessionID, domain.RoleAssistant, domain.KindSummary, summary, nil); err != nil {
		return err
	}

	for _, step := range resolution.Route.Steps {
		if _, err := s.record(ctx, sessionID, domain.RoleAssistant, domain.KindInstruction, step.Instruction, nil); err != nil {
			return err
		}
	}

	if _, err := s.record(ctx, sessionID, domain.RoleAssistant, domain.KindMap, "View map", resolution); err != nil {
		return err
	}

	if err := s.publisher.PublishRouteResolved(ctx, sessionID, resolution); err != nil {
		slog.Warn("publish route resolved", "session_id", sessionID, "error", err)
	}
	return nil
}

// record appends a message to the session log and publishes it for live
// delivery. Publishing is best-effort; persistence is not.
func (s *ConversationService) record(ctx context.Context, sessionID string, role domain.Role, kind domain.MessageKind, text string, res *domain.Resolution) (*domain.Message, error) {
	msg := &domain.Message{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Role:       role,
		Kind:       kind,
		Text:       text,
		Resolution: res,
		CreatedAt:  time.Now(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	if err := s.publisher.PublishMessage(ctx, msg); err != nil {
		slog.Warn("publish message", "session_id", sessionID, "error", err)
	}
	return msg, nil
}

func (s *ConversationService) acquireSlot(sessionID string) *sessionSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.inflight[sessionID]
	if !ok {
		slot = &sessionSlot{}
		s.inflight[sessionID] = slot
	}
	slot.refs++
	return slot
}

func (s *ConversationService) releaseSlot(sessionID string, slot *sessionSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(s.inflight, sessionID)
	}
}

func formatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%.0f m", meters)
}
