package chat

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of ChatRepo.
type MemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session   // sessionID -> session
	messages map[string][]Message // sessionID -> messages, append order
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		sessions: make(map[string]Session),
		messages: make(map[string][]Message),
	}
}

func (r *MemoryRepo) CreateSession(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *MemoryRepo) GetSession(ctx context.Context, userId, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userId {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (r *MemoryRepo) UpdateSession(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.sessions[s.ID]
	if !ok || existing.UserID != s.UserID {
		return ErrSessionNotFound
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *MemoryRepo) ListSessions(ctx context.Context, userId string, limit, offset int) ([]SessionSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var summaries []SessionSummary
	for _, s := range r.sessions {
		if s.UserID != userId {
			continue
		}
		summary := SessionSummary{Session: s, LastMessageAt: s.UpdatedAt}
		msgs := r.messages[s.ID]
		summary.MessageCount = len(msgs)
		if len(msgs) > 0 {
			summary.LastMessageAt = msgs[len(msgs)-1].CreatedAt
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})

	if offset >= len(summaries) {
		return []SessionSummary{}, nil
	}
	end := offset + limit
	if end > len(summaries) {
		end = len(summaries)
	}
	return summaries[offset:end], nil
}

func (r *MemoryRepo) DeleteSession(ctx context.Context, userId, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userId {
		return ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	delete(r.messages, sessionID)
	return nil
}

func (r *MemoryRepo) UnbindDocument(ctx context.Context, userId, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.UserID == userId && s.DocumentID == documentID {
			s.DocumentID = ""
			r.sessions[id] = s
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) AppendMessage(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.SessionID] = append(r.messages[m.SessionID], m)
	return nil
}

func (r *MemoryRepo) ListMessages(ctx context.Context, sessionID string, limit, offset int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.messages[sessionID]
	if offset >= len(msgs) {
		return []Message{}, nil
	}
	end := offset + limit
	if end > len(msgs) {
		end = len(msgs)
	}
	out := make([]Message, end-offset)
	copy(out, msgs[offset:end])
	return out, nil
}

func (r *MemoryRepo) RecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *MemoryRepo) ClearMessages(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, sessionID)
	return nil
}

var _ ChatRepo = (*MemoryRepo)(nil)
