package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/analysis"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/middleware"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the chat service. The analysis service
// backs the chat-scoped document analysis endpoints.
type Handler struct {
	Svc      *Service
	Analysis *analysis.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, analysisSvc *analysis.Service) *Handler {
	return &Handler{Svc: svc, Analysis: analysisSvc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat/sessions", h.createSession)
	rg.GET("/chat/sessions", h.listSessions)
	rg.DELETE("/chat/sessions/:sessionId", h.deleteSession)
	rg.POST("/chat/messages", h.sendMessage)
	rg.GET("/chat/messages/:sessionId", h.listMessages)
	rg.DELETE("/chat/messages/:sessionId", h.clearMessages)
	rg.POST("/chat/analyze-document", h.analyzeDocument)
	rg.GET("/chat/analysis-history", h.analysisHistory)
}

type createSessionRequest struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

func (h *Handler) createSession(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.SessionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "session_id is required", nil)
		return
	}

	session, created, err := h.Svc.CreateOrGetSession(c.Request.Context(), userID, req.SessionID, req.Title)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}

	message := "Session found"
	if created {
		message = "Session created"
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"session": session,
		"created": created,
		"message": message,
	})
}

func (h *Handler) listSessions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pagination(c, 20)

	sessions, err := h.Svc.ListSessions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch sessions", nil)
		return
	}
	if sessions == nil {
		sessions = []SessionSummary{}
	}

	respond.JSON(c, http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) deleteSession(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.DeleteSession(c.Request.Context(), userID, c.Param("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete session", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

type sendMessageRequest struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.SessionID == "" || req.Message == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "session_id and message are required", nil)
		return
	}

	exchange, err := h.Svc.SendMessage(c.Request.Context(), userID, req.SessionID, req.Message, req.DocumentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "message is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to send message", nil)
		}
		return
	}

	message := "Messages sent successfully"
	if exchange.AIFailed {
		message = "Message sent, but AI response failed"
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"userMessage": exchange.UserMessage,
		"aiMessage":   exchange.AIMessage,
		"message":     message,
	})
}

func (h *Handler) listMessages(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pagination(c, 50)

	messages, err := h.Svc.ListMessages(c.Request.Context(), userID, c.Param("sessionId"), limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch messages", nil)
		}
		return
	}
	if messages == nil {
		messages = []Message{}
	}

	respond.JSON(c, http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) clearMessages(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.ClearMessages(c.Request.Context(), userID, c.Param("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear messages", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Messages cleared successfully"})
}

type analyzeDocumentRequest struct {
	DocumentID string   `json:"document_id"`
	Questions  []string `json:"questions"`
}

// analyzeDocument runs a single-shot analysis from within a chat context.
func (h *Handler) analyzeDocument(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req analyzeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.DocumentID == "" || len(req.Questions) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_id and questions array are required", nil)
		return
	}

	outcome, err := h.Analysis.CustomAnalyze(c.Request.Context(), userID, req.DocumentID, req.Questions, "rfp_analysis")
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, analysis.ErrTooManyQuestions), errors.Is(err, analysis.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message":  "Document analyzed successfully",
		"analysis": outcome.Analysis,
		"document": outcome.Document,
	})
}

func (h *Handler) analysisHistory(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pagination(c, 10)

	results, _, err := h.Analysis.List(c.Request.Context(), userID, "", limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis history", nil)
		return
	}
	if results == nil {
		results = []analysis.Result{}
	}

	respond.JSON(c, http.StatusOK, gin.H{"analyses": results})
}

func pagination(c *gin.Context, defaultLimit int) (int, int) {
	limit := defaultLimit
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
