package http

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/wayfinderhq/wayfinder/internal/pkg/metrics"
)

// wsMessage is sent from client to follow/unfollow session feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Session string `json:"session"` // session id
}

// WebSocketHandler returns a handler that upgrades to WebSocket and
// relays chat messages from NATS to connected clients as they are
// appended. The initial session comes from the ?session query
// parameter; clients may follow more sessions with
// {"action":"subscribe","session":"<id>"}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		log.Printf("ws client connected: %s", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // session id -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		follow := func(sessionID string) error {
			if _, exists := subs[sessionID]; exists {
				return nil
			}
			sub, err := nc.Subscribe("chat.session."+sessionID, func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			})
			if err != nil {
				return err
			}
			subs[sessionID] = sub
			return nil
		}

		// Follow the session named in the upgrade request, if any.
		if initial := c.Query("session"); initial != "" {
			if err := follow(initial); err != nil {
				log.Printf("ws initial subscribe error: %v", err)
				return
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.Session == "" {
				_ = writeJSON(map[string]string{"error": "session is required"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if err := follow(m.Session); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "session": m.Session})

			case "unsubscribe":
				if s, exists := subs[m.Session]; exists {
					_ = s.Unsubscribe()
					delete(subs, m.Session)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "session": m.Session})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Session})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Printf("ws client disconnected: %s", remoteAddr)
	}
}
