package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
	"github.com/wayfinderhq/wayfinder/internal/core/ports"
	"github.com/wayfinderhq/wayfinder/internal/core/usecases"
)

// --- In-memory repositories ---

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *memSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

type memMessageRepo struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (r *memMessageRepo) Append(ctx context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *m)
	return nil
}

func (r *memMessageRepo) ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.msgs {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *memMessageRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

// snapshot returns all messages for a session in append order.
func (r *memMessageRepo) snapshot(sessionID string) []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.msgs {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

type memStateStore struct {
	mu     sync.Mutex
	states map[string]domain.ConversationState
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: make(map[string]domain.ConversationState)}
}

func (s *memStateStore) Get(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[sessionID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *memStateStore) Set(ctx context.Context, sessionID string, st *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = *st
	return nil
}

func (s *memStateStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

type mockPublisher struct {
	mu       sync.Mutex
	messages int
	routes   int
}

func (p *mockPublisher) PublishMessage(ctx context.Context, msg *domain.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages++
	return nil
}

func (p *mockPublisher) PublishRouteResolved(ctx context.Context, sessionID string, res *domain.Resolution) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes++
	return nil
}

// --- Fixture ---

type convFixture struct {
	svc      *usecases.ConversationService
	messages *memMessageRepo
	state    *memStateStore
	pub      *mockPublisher
}

func newConvFixture(geo *mockGeocoder, search *mockRouteSearcher) *convFixture {
	msgs := &memMessageRepo{}
	state := newMemStateStore()
	pub := &mockPublisher{}
	resolver := usecases.NewResolverService(geo, search, 0)
	svc := usecases.NewConversationService(resolver, newMemSessionRepo(), msgs, state, pub)
	return &convFixture{svc: svc, messages: msgs, state: state, pub: pub}
}

func happyGeocoder() *mockGeocoder {
	return &mockGeocoder{
		geocodeFn: func(ctx context.Context, address string) (*domain.GeoPoint, error) {
			return &domain.GeoPoint{Lat: 39.9, Lon: 116.4}, nil
		},
	}
}

func happySearcher() *mockRouteSearcher {
	return &mockRouteSearcher{
		searchFn: func(ctx context.Context, origin, destination domain.GeoPoint) (*ports.RouteSearchResult, error) {
			return &ports.RouteSearchResult{Paths: []ports.CandidatePath{{
				DistanceMeters: 600,
				Steps: []ports.CandidateStep{
					{Instruction: "Head east", Polyline: "116.4,39.9;116.405,39.9"},
					{Instruction: "Arrive", Polyline: "116.405,39.9;116.41,39.9"},
				},
			}}}, nil
		},
	}
}

// waitForKind polls the session log until a message of the given kind
// appears or the deadline passes.
func waitForKind(t *testing.T, repo *memMessageRepo, sessionID string, kind domain.MessageKind) []domain.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msgs := repo.snapshot(sessionID)
		for _, m := range msgs {
			if m.Kind == kind {
				return msgs
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no %q message appeared for session %s", kind, sessionID)
	return nil
}

// --- Tests ---

func TestConversationService_FirstTurnPromptsForDestination(t *testing.T) {
	f := newConvFixture(happyGeocoder(), happySearcher())
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	msgs, err := f.svc.Submit(ctx, session.ID, "1 Main Street")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected echo + prompt, got %d messages", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Text != "1 Main Street" {
		t.Errorf("echo = %+v", msgs[0])
	}
	if msgs[1].Role != domain.RoleAssistant || msgs[1].Kind != domain.KindPrompt {
		t.Errorf("prompt = %+v", msgs[1])
	}

	st, _ := f.state.Get(ctx, session.ID)
	if st == nil || st.Stage != domain.StageAwaitingDestination || st.Origin != "1 Main Street" {
		t.Errorf("state = %+v, want awaiting destination with origin kept", st)
	}
}

func TestConversationService_SecondTurnResolvesRoute(t *testing.T) {
	f := newConvFixture(happyGeocoder(), happySearcher())
	ctx := context.Background()

	session, _ := f.svc.StartSession(ctx)
	if _, err := f.svc.Submit(ctx, session.ID, "1 Main Street"); err != nil {
		t.Fatalf("first turn: %v", err)
	}

	msgs, err := f.svc.Submit(ctx, session.ID, "2 Harbor Road")
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Kind != domain.KindText {
		t.Fatalf("second turn should return only the echo, got %+v", msgs)
	}

	// The state machine resets before the pipeline finishes: the key
	// is cleared, and a missing state means awaiting origin.
	if st, _ := f.state.Get(ctx, session.ID); st != nil {
		t.Errorf("state after second turn = %+v, want cleared", st)
	}

	all := waitForKind(t, f.messages, session.ID, domain.KindMap)

	// Timeline: user, prompt, user, summary, 2 instructions, map.
	var kinds []domain.MessageKind
	for _, m := range all {
		kinds = append(kinds, m.Kind)
	}
	want := []domain.MessageKind{
		domain.KindText, domain.KindPrompt, domain.KindText,
		domain.KindSummary, domain.KindInstruction, domain.KindInstruction, domain.KindMap,
	}
	if len(kinds) != len(want) {
		t.Fatalf("timeline kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("timeline kinds = %v, want %v", kinds, want)
		}
	}

	last := all[len(all)-1]
	if last.Resolution == nil || last.Resolution.Route == nil {
		t.Fatal("map message should carry the resolution")
	}
	if last.Resolution.Route.DistanceMeters != 600 {
		t.Errorf("resolution distance = %v", last.Resolution.Route.DistanceMeters)
	}
	if all[3].Text != "Here is your walking route (600 m):" {
		t.Errorf("summary text = %q", all[3].Text)
	}
}

func TestConversationService_EmptyInputIsNoOp(t *testing.T) {
	f := newConvFixture(happyGeocoder(), happySearcher())
	ctx := context.Background()

	session, _ := f.svc.StartSession(ctx)
	if _, err := f.svc.Submit(ctx, session.ID, "1 Main Street"); err != nil {
		t.Fatalf("first turn: %v", err)
	}

	msgs, err := f.svc.Submit(ctx, session.ID, "")
	if err != nil {
		t.Fatalf("empty submit: %v", err)
	}
	if msgs != nil {
		t.Errorf("empty input emitted messages: %+v", msgs)
	}

	// State untouched: still waiting for the destination.
	st, _ := f.state.Get(ctx, session.ID)
	if st == nil || st.Stage != domain.StageAwaitingDestination || st.Origin != "1 Main Street" {
		t.Errorf("state = %+v, want awaiting destination unchanged", st)
	}
	if n, _ := f.messages.CountBySession(ctx, session.ID); n != 2 {
		t.Errorf("message count = %d, want 2 (echo + prompt only)", n)
	}
}

func TestConversationService_PipelineFailureLeavesErrorMessage(t *testing.T) {
	geo := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address string) (*domain.GeoPoint, error) {
			if address == "nowhere" {
				return nil, nil
			}
			return &domain.GeoPoint{Lat: 39.9, Lon: 116.4}, nil
		},
	}
	f := newConvFixture(geo, happySearcher())
	ctx := context.Background()

	session, _ := f.svc.StartSession(ctx)
	_, _ = f.svc.Submit(ctx, session.ID, "nowhere")
	if _, err := f.svc.Submit(ctx, session.ID, "2 Harbor Road"); err != nil {
		t.Fatalf("second turn: %v", err)
	}

	all := waitForKind(t, f.messages, session.ID, domain.KindError)
	last := all[len(all)-1]
	if last.Role != domain.RoleAssistant {
		t.Errorf("error message role = %q", last.Role)
	}
	wantText := fmt.Sprintf("Route planning failed: address not found: %s", "nowhere")
	if last.Text != wantText {
		t.Errorf("error text = %q, want %q", last.Text, wantText)
	}

	// Failure still resets the conversation for a fresh attempt.
	if st, _ := f.state.Get(ctx, session.ID); st != nil {
		t.Errorf("state = %+v, want cleared", st)
	}
}

func TestConversationService_SerializesPipelineRuns(t *testing.T) {
	// The first search stalls long enough for the second exchange to be
	// submitted while its run is still in flight.
	var calls int
	var mu sync.Mutex
	search := &mockRouteSearcher{
		searchFn: func(ctx context.Context, origin, destination domain.GeoPoint) (*ports.RouteSearchResult, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				time.Sleep(100 * time.Millisecond)
			}
			return &ports.RouteSearchResult{Paths: []ports.CandidatePath{{
				DistanceMeters: float64(n * 100),
				Steps: []ports.CandidateStep{
					{Instruction: "Head east", Polyline: "116.4,39.9;116.405,39.9"},
				},
			}}}, nil
		},
	}
	f := newConvFixture(happyGeocoder(), search)
	ctx := context.Background()

	session, _ := f.svc.StartSession(ctx)
	_, _ = f.svc.Submit(ctx, session.ID, "1 Main Street")
	_, _ = f.svc.Submit(ctx, session.ID, "2 Harbor Road")

	// State is already reset, so the next exchange can be collected
	// while the first run is still going.
	_, _ = f.svc.Submit(ctx, session.ID, "3 Hill Lane")
	_, _ = f.svc.Submit(ctx, session.ID, "4 River Walk")

	deadline := time.Now().Add(2 * time.Second)
	var maps []domain.Message
	for time.Now().Before(deadline) {
		maps = maps[:0]
		for _, m := range f.messages.snapshot(session.ID) {
			if m.Kind == domain.KindMap {
				maps = append(maps, m)
			}
		}
		if len(maps) == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(maps) != 2 {
		t.Fatalf("map messages = %d, want 2", len(maps))
	}

	// The slow first run finishes before the second one starts.
	if d := maps[0].Resolution.Route.DistanceMeters; d != 100 {
		t.Errorf("first outcome distance = %v, want 100", d)
	}
	if d := maps[1].Resolution.Route.DistanceMeters; d != 200 {
		t.Errorf("second outcome distance = %v, want 200", d)
	}
}

func TestConversationService_NoRouteBetweenPoints(t *testing.T) {
	search := &mockRouteSearcher{
		searchFn: func(ctx context.Context, origin, destination domain.GeoPoint) (*ports.RouteSearchResult, error) {
			return &ports.RouteSearchResult{}, nil
		},
	}
	f := newConvFixture(happyGeocoder(), search)
	ctx := context.Background()

	session, _ := f.svc.StartSession(ctx)
	_, _ = f.svc.Submit(ctx, session.ID, "1 Main Street")
	_, _ = f.svc.Submit(ctx, session.ID, "2 Harbor Road")

	all := waitForKind(t, f.messages, session.ID, domain.KindError)
	last := all[len(all)-1]
	if last.Text != "Route planning failed: no walking route found" {
		t.Errorf("error text = %q", last.Text)
	}
}
