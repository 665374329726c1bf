package domain

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageKind classifies assistant messages so clients can render them
// (the "map" kind carries an attached Resolution payload).
type MessageKind string

const (
	KindText        MessageKind = "text"
	KindPrompt      MessageKind = "prompt"
	KindSummary     MessageKind = "summary"
	KindInstruction MessageKind = "instruction"
	KindMap         MessageKind = "map"
	KindError       MessageKind = "error"
)

// Session is one chat conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single entry in a session's timeline.
type Message struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Role      Role        `json:"role"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text"`
	// Resolution is attached to "map" messages only.
	Resolution *Resolution `json:"resolution,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ConversationStage is the position in the two-turn input state machine.
type ConversationStage string

const (
	StageAwaitingOrigin      ConversationStage = "awaiting_origin"
	StageAwaitingDestination ConversationStage = "awaiting_destination"
)

// ConversationState is the only state shared across turns of a session.
// Origin is set while Stage is StageAwaitingDestination.
type ConversationState struct {
	Stage  ConversationStage `json:"stage"`
	Origin string            `json:"origin,omitempty"`
}
