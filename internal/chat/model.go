package chat

import "time"

// Message roles.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Session is one conversation thread, optionally bound to a document.
type Session struct {
	ID         string    `json:"sessionId"`
	UserID     string    `json:"-"`
	Title      string    `json:"title"`
	DocumentID string    `json:"documentId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SessionSummary is a session with listing metadata.
type SessionSummary struct {
	Session
	MessageCount  int       `json:"message_count"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Message is one turn in a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
