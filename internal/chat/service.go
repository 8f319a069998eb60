package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/documents"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/llm"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/metrics"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/telemetry"
)

const defaultSessionTitle = "New Chat"

// Service contains chat business logic: session lifecycle and AI-backed
// message exchange.
type Service struct {
	Docs     *documents.Service
	Preparer *docprep.Preparer
	Gateway  llm.Gateway
	Repo     ChatRepo
}

// CreateOrGetSession returns the session with the given client-supplied ID,
// creating it when it does not exist yet. The second return reports whether
// a new session was created.
func (s *Service) CreateOrGetSession(ctx context.Context, userID, sessionID, title string) (Session, bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Session{}, false, ErrInvalidInput
	}

	existing, err := s.Repo.GetSession(ctx, userID, sessionID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return Session{}, false, err
	}

	if strings.TrimSpace(title) == "" {
		title = defaultSessionTitle
	}
	now := time.Now().UTC()
	session := Session{
		ID:        sessionID,
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateSession(ctx, session); err != nil {
		return Session{}, false, err
	}
	return session, true, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (s *Service) ListSessions(ctx context.Context, userID string, limit, offset int) ([]SessionSummary, error) {
	return s.Repo.ListSessions(ctx, userID, limit, offset)
}

// DeleteSession removes a session and all of its messages.
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := s.Repo.ClearMessages(ctx, sessionID); err != nil {
		return err
	}
	return s.Repo.DeleteSession(ctx, userID, sessionID)
}

// ListMessages returns a session's messages in conversation order.
func (s *Service) ListMessages(ctx context.Context, userID, sessionID string, limit, offset int) ([]Message, error) {
	if _, err := s.Repo.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.Repo.ListMessages(ctx, sessionID, limit, offset)
}

// ClearMessages removes all messages in a session but keeps the session.
func (s *Service) ClearMessages(ctx context.Context, userID, sessionID string) error {
	if _, err := s.Repo.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.Repo.ClearMessages(ctx, sessionID)
}

// Exchange is the outcome of one user message and its AI reply.
type Exchange struct {
	UserMessage Message
	AIMessage   Message
	AIFailed    bool
}

// SendMessage stores the user's message, generates the AI reply using recent
// conversation history and the session's document when one is attached, and
// stores the reply. A gateway failure does not fail the exchange: the error
// text is stored as the AI reply instead.
func (s *Service) SendMessage(ctx context.Context, userID, sessionID, message, documentID string) (Exchange, error) {
	if strings.TrimSpace(message) == "" {
		return Exchange{}, ErrInvalidInput
	}

	session, err := s.Repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return Exchange{}, err
	}

	// A document sent with the message becomes the session's attachment.
	if documentID != "" && documentID != session.DocumentID {
		session.DocumentID = documentID
		session.UpdatedAt = time.Now().UTC()
		if err := s.Repo.UpdateSession(ctx, session); err != nil {
			return Exchange{}, err
		}
	}

	var attached []docprep.PreparedDocument
	if session.DocumentID != "" {
		doc, err := s.Docs.Get(ctx, userID, session.DocumentID)
		if err == nil {
			prepared, prepErr := s.Preparer.Prepare(ctx, doc.StorageKey, doc.MimeType, doc.OriginalName)
			if prepErr == nil {
				attached = append(attached, prepared)
			} else {
				telemetry.Warn("chat.document_prepare_failed", map[string]any{
					"sessionId":  sessionID,
					"documentId": session.DocumentID,
					"error":      prepErr.Error(),
				})
			}
		} else {
			telemetry.Warn("chat.document_lookup_failed", map[string]any{
				"sessionId":  sessionID,
				"documentId": session.DocumentID,
				"error":      err.Error(),
			})
		}
	}

	history, err := s.Repo.RecentMessages(ctx, sessionID, llm.MaxChatHistoryTurns)
	if err != nil {
		return Exchange{}, err
	}

	now := time.Now().UTC()
	userMessage := Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      RoleUser,
		Content:   message,
		CreatedAt: now,
	}
	if err := s.Repo.AppendMessage(ctx, userMessage); err != nil {
		return Exchange{}, err
	}
	metrics.IncChatMessage()

	reply, failed := s.generateReply(ctx, message, attached, history)

	aiMessage := Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      RoleAI,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.AppendMessage(ctx, aiMessage); err != nil {
		return Exchange{}, err
	}

	return Exchange{UserMessage: userMessage, AIMessage: aiMessage, AIFailed: failed}, nil
}

// generateReply drives the gateway with a document-aware prompt, retrying
// text-only when the vision call fails. When both attempts fail the error is
// turned into an apologetic reply rather than propagated.
func (s *Service) generateReply(ctx context.Context, message string, attached []docprep.PreparedDocument, history []Message) (string, bool) {
	turns := make([]llm.ChatTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.ChatTurn{Sender: m.Role, Message: m.Content})
	}

	prompt := llm.BuildChatPrompt(message, len(attached), turns)

	result, err := s.Gateway.Invoke(ctx, llm.InvokeRequest{
		Prompt:    prompt,
		Documents: attached,
	})
	if err != nil && len(attached) > 0 {
		telemetry.Warn("chat.vision_failed", map[string]any{"error": err.Error()})
		result, err = s.Gateway.Invoke(ctx, llm.InvokeRequest{
			Prompt: llm.ChatFallbackPrompt(prompt),
		})
	}
	if err != nil {
		telemetry.Warn("chat.reply_failed", map[string]any{"error": err.Error()})
		reply := fmt.Sprintf(
			"I apologize, but I encountered an error processing your request: %s. Please try again or try with a different approach.",
			err.Error(),
		)
		return reply, true
	}

	return result.Text, false
}

// DeleteByDocument detaches the document from any session referencing it.
// The sessions and their messages are kept. Used when a document is deleted.
func (s *Service) DeleteByDocument(ctx context.Context, userID, documentID string) (int, error) {
	return s.Repo.UnbindDocument(ctx, userID, documentID)
}
