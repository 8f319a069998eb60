package chat

import "context"

// ChatRepo persists sessions and their messages. Message ownership is
// enforced through the session: callers resolve the session for the user
// before touching its messages.
type ChatRepo interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, userId, sessionID string) (Session, error)
	UpdateSession(ctx context.Context, s Session) error
	ListSessions(ctx context.Context, userId string, limit, offset int) ([]SessionSummary, error)
	DeleteSession(ctx context.Context, userId, sessionID string) error
	UnbindDocument(ctx context.Context, userId, documentID string) (int, error)

	AppendMessage(ctx context.Context, m Message) error
	ListMessages(ctx context.Context, sessionID string, limit, offset int) ([]Message, error)
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
	ClearMessages(ctx context.Context, sessionID string) error
}
