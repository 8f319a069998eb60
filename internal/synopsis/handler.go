package synopsis

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/llm"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/middleware"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the synopsis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches synopsis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/synopsis", h.create)
	rg.GET("/synopsis", h.list)
	rg.POST("/synopsis/analyze-rfp", h.analyzeRFP)
	rg.GET("/synopsis/stats/overview", h.stats)
	rg.GET("/synopsis/search/:query", h.search)
	rg.GET("/synopsis/:id", h.get)
	rg.PUT("/synopsis/:id", h.update)
	rg.DELETE("/synopsis/:id", h.remove)
}

type synopsisRequest struct {
	Title      string            `json:"title"`
	DocumentID string            `json:"document_id"`
	Fields     map[string]string `json:"fields"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req synopsisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	syn, err := h.Svc.Create(c.Request.Context(), userID, req.Title, req.DocumentID, req.Fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create synopsis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"message":  "Synopsis created successfully",
		"synopsis": syn,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pagination(c, 20)

	list, total, err := h.Svc.List(c.Request.Context(), userID, c.DefaultQuery("sort", "-created_at"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch synopsis", nil)
		return
	}
	if list == nil {
		list = []Synopsis{}
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"synopsis": list,
		"pagination": gin.H{
			"total":   total,
			"limit":   limit,
			"offset":  offset,
			"hasMore": offset+len(list) < total,
		},
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	syn, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "synopsis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch synopsis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"synopsis": syn})
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req synopsisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	syn, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), req.Title, req.DocumentID, req.Fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "synopsis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update synopsis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message":  "Synopsis updated successfully",
		"synopsis": syn,
	})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "synopsis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete synopsis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Synopsis deleted successfully"})
}

type analyzeRFPRequest struct {
	DocumentID string `json:"document_id"`
}

func (h *Handler) analyzeRFP(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req analyzeRFPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_id is required", nil)
		return
	}

	extraction, err := h.Svc.AnalyzeRFP(c.Request.Context(), userID, req.DocumentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, docprep.ErrDocumentTooLarge):
			respond.Error(c, http.StatusBadRequest, "validation_error", docprep.ErrDocumentTooLarge.Error(), nil)
		case errors.Is(err, llm.ErrRateLimited):
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze RFP document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message":  "RFP document analyzed successfully",
		"analysis": extraction.Fields,
		"document": extraction.Document,
	})
}

func (h *Handler) stats(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	overview, err := h.Svc.StatsOverview(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch synopsis statistics", nil)
		return
	}

	respond.JSON(c, http.StatusOK, overview)
}

func (h *Handler) search(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 10
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	query := c.Param("query")
	results, err := h.Svc.Search(c.Request.Context(), userID, query, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "search query is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to search synopsis", nil)
		}
		return
	}
	if results == nil {
		results = []Synopsis{}
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
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
