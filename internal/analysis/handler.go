package analysis

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/documents"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/llm"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/middleware"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analysis/rfp-quick-analysis", h.quickAnalysis)
	rg.POST("/analysis/custom-analysis", h.customAnalysis)
	rg.POST("/analysis/compare-documents", h.compareDocuments)
	rg.GET("/analysis/predefined-questions", h.predefinedQuestions)
	rg.GET("/analysis/results", h.listResults)
	rg.GET("/analysis/results/:id", h.getResult)
	rg.DELETE("/analysis/results/:id", h.deleteResult)
	rg.GET("/analysis/stats", h.stats)
	rg.GET("/analysis/test-ai", h.testAI)
}

type quickAnalysisRequest struct {
	DocumentID      string   `json:"document_id"`
	CustomQuestions []string `json:"custom_questions"`
}

func (h *Handler) quickAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req quickAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_id is required", nil)
		return
	}

	outcome, err := h.Svc.QuickAnalyze(c.Request.Context(), userID, req.DocumentID, req.CustomQuestions)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message":            "RFP analysis completed successfully",
		"resultId":           outcome.ResultID,
		"analysis":           outcome.Analysis,
		"document":           outcome.Document,
		"questions_analyzed": outcome.QuestionsAnalyzed,
		"chunks_processed":   outcome.ChunksProcessed,
	})
}

type customAnalysisRequest struct {
	DocumentID   string   `json:"document_id"`
	Questions    []string `json:"questions"`
	AnalysisName string   `json:"analysis_name"`
}

func (h *Handler) customAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req customAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.DocumentID == "" || len(req.Questions) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_id and questions are required", nil)
		return
	}

	outcome, err := h.Svc.CustomAnalyze(c.Request.Context(), userID, req.DocumentID, req.Questions, req.AnalysisName)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message":            "Custom analysis completed successfully",
		"resultId":           outcome.ResultID,
		"analysis":           outcome.Analysis,
		"document":           outcome.Document,
		"questions_analyzed": outcome.QuestionsAnalyzed,
	})
}

type compareDocumentsRequest struct {
	DocumentIDs []string `json:"document_ids"`
	Questions   []string `json:"questions"`
}

func (h *Handler) compareDocuments(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req compareDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	outcome, err := h.Svc.Compare(c.Request.Context(), userID, req.DocumentIDs, req.Questions)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message":            "Document comparison completed",
		"comparisons":        outcome.Comparisons,
		"questions":          outcome.Questions,
		"documents_analyzed": outcome.DocumentsAnalyzed,
		"documents_failed":   outcome.DocumentsFailed,
	})
}

func (h *Handler) predefinedQuestions(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{
		"questions":  PredefinedQuestions,
		"total":      len(PredefinedQuestions),
		"categories": QuestionCategories,
	})
}

func (h *Handler) listResults(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
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

	results, total, err := h.Svc.List(c.Request.Context(), userID, c.Query("analysis_type"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analysis results", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"results": results,
		"pagination": gin.H{
			"total":   total,
			"limit":   limit,
			"offset":  offset,
			"hasMore": offset+len(results) < total,
		},
	})
}

func (h *Handler) getResult(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	result, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis result not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis result", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) deleteResult(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis result not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete analysis result", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) stats(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	stats, err := h.Svc.Stats(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute analysis stats", nil)
		return
	}

	respond.JSON(c, http.StatusOK, stats)
}

func (h *Handler) testAI(c *gin.Context) {
	reply, err := h.Svc.TestGateway(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrRateLimited):
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", err.Error(), nil)
		case errors.Is(err, llm.ErrUnauthorized):
			respond.Error(c, http.StatusBadGateway, "upstream_error", err.Error(), nil)
		case errors.Is(err, llm.ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "not_configured", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message": "AI connection test completed",
		"reply":   reply,
	})
}

func (h *Handler) analysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrTooManyQuestions):
		respond.Error(c, http.StatusBadRequest, "validation_error", ErrTooManyQuestions.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, docprep.ErrDocumentTooLarge):
		respond.Error(c, http.StatusBadRequest, "validation_error", docprep.ErrDocumentTooLarge.Error(), nil)
	case errors.Is(err, docprep.ErrDocumentUnreadable):
		respond.Error(c, http.StatusUnprocessableEntity, "unprocessable", docprep.ErrDocumentUnreadable.Error(), nil)
	case errors.Is(err, llm.ErrRateLimited):
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
	}
}
