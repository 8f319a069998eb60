package documents

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/middleware"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/respond"
)

const defaultMaxUploadBytes = 25 << 20 // 25MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	Preparer       *docprep.Preparer
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, preparer *docprep.Preparer, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, Preparer: preparer, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/stats/overview", h.stats)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/download", h.download)
	rg.POST("/documents/:id/prepare", h.prepare)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, rc, err := h.Svc.Open(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open document", nil)
		}
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.OriginalName))
	c.DataFromReader(http.StatusOK, doc.SizeBytes, doc.MimeType, rc, nil)
}

// prepare runs the document through the preparation pipeline without
// invoking the AI, so clients can verify a file is analyzable.
func (h *Handler) prepare(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	prepared, err := h.Preparer.Prepare(c.Request.Context(), doc.StorageKey, doc.MimeType, doc.OriginalName)
	if err != nil {
		switch {
		case errors.Is(err, docprep.ErrDocumentTooLarge):
			respond.Error(c, http.StatusBadRequest, "validation_error", "document exceeds the maximum allowed size", nil)
		case errors.Is(err, docprep.ErrDocumentUnreadable):
			respond.Error(c, http.StatusUnprocessableEntity, "unreadable_document", "document could not be read", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to prepare document", nil)
		}
		return
	}

	resp := gin.H{
		"documentId":  doc.ID,
		"ready":       true,
		"type":        doc.MimeType,
		"description": docprep.TypeDescription(doc.MimeType),
		"kind":        prepared.Kind,
	}
	if prepared.Kind == docprep.KindText {
		resp["pages"] = prepared.PageCount
	} else {
		resp["size_bytes"] = prepared.SizeBytes
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file exceeds the maximum allowed size", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	uploadedFrom := c.PostForm("uploadedFrom")
	if uploadedFrom == "" {
		uploadedFrom = "web"
	}

	doc, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader.Filename, uploadedFrom, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unsupported file type", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
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

	docs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) stats(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	stats, err := h.Svc.Stats(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute stats", nil)
		return
	}

	respond.JSON(c, http.StatusOK, stats)
}
