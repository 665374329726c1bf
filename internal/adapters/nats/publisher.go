package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "CHAT_MESSAGES",
			Subjects:  []string{"chat.session.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "ROUTE_EVENTS",
			Subjects:  []string{"chat.routes.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishMessage fans a persisted chat message out to live listeners.
func (p *Publisher) PublishMessage(ctx context.Context, msg *domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("chat.session."+msg.SessionID, data)
	return err
}

// PublishRouteResolved announces a completed route resolution for
// downstream consumers.
func (p *Publisher) PublishRouteResolved(ctx context.Context, sessionID string, res *domain.Resolution) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("chat.routes."+sessionID, data)
	return err
}

// RawConn exposes the underlying connection for core-NATS fanout
// subscriptions (the WebSocket relay).
func (p *Publisher) RawConn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
	p.conn.Close()
}
