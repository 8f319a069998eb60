package synopsis

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
)

// Service contains synopsis business logic: CRUD over tender summaries and
// AI-driven field extraction from RFP documents.
type Service struct {
	Docs     *documents.Service
	Preparer *docprep.Preparer
	Gateway  llm.Gateway
	Repo     SynopsisRepo
}

// Create stores a new synopsis for the user. Unknown field names are
// dropped; missing fields default to empty strings.
func (s *Service) Create(ctx context.Context, userID, title, documentID string, fields map[string]string) (Synopsis, error) {
	if strings.TrimSpace(title) == "" {
		return Synopsis{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	syn := Synopsis{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: documentID,
		Title:      title,
		Fields:     normalizeFields(fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, syn); err != nil {
		return Synopsis{}, err
	}
	return syn, nil
}

// Get returns one synopsis owned by the user.
func (s *Service) Get(ctx context.Context, userID, id string) (Synopsis, error) {
	return s.Repo.GetByID(ctx, userID, id)
}

// Update replaces a synopsis's title, document binding, and fields.
func (s *Service) Update(ctx context.Context, userID, id, title, documentID string, fields map[string]string) (Synopsis, error) {
	existing, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return Synopsis{}, err
	}
	if strings.TrimSpace(title) != "" {
		existing.Title = title
	}
	existing.DocumentID = documentID
	if fields != nil {
		existing.Fields = normalizeFields(fields)
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, existing); err != nil {
		return Synopsis{}, err
	}
	return existing, nil
}

// Delete removes a synopsis owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}

// List returns the user's synopses per the sort expression, e.g.
// "-created_at" for newest first.
func (s *Service) List(ctx context.Context, userID, sortExpr string, limit, offset int) ([]Synopsis, int, error) {
	opts := ListOptions{Limit: limit, Offset: offset}
	opts.SortField, opts.Descending = parseSort(sortExpr)
	return s.Repo.ListByUser(ctx, userID, opts)
}

// Search matches the query against tender, customer, consultant, and CBS
// software fields.
func (s *Service) Search(ctx context.Context, userID, query string, limit int) ([]Synopsis, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.Search(ctx, userID, query, limit)
}

// Overview is the stats payload with recent activity attached.
type Overview struct {
	Stats          Stats      `json:"overview"`
	RecentActivity []Synopsis `json:"recent_activity"`
}

// StatsOverview aggregates the user's synopses and lists the five most
// recently updated ones.
func (s *Service) StatsOverview(ctx context.Context, userID string) (Overview, error) {
	stats, err := s.Repo.StatsByUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	recent, err := s.Repo.Recent(ctx, userID, 5)
	if err != nil {
		return Overview{}, err
	}
	if recent == nil {
		recent = []Synopsis{}
	}
	return Overview{Stats: stats, RecentActivity: recent}, nil
}

// Extraction is the outcome of AI field extraction over one document.
type Extraction struct {
	Fields   map[string]string `json:"analysis"`
	Document struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"document"`
}

// AnalyzeRFP extracts the synopsis fields from an RFP document. Fields the
// model cannot find come back as empty strings.
func (s *Service) AnalyzeRFP(ctx context.Context, userID, documentID string) (Extraction, error) {
	if strings.TrimSpace(documentID) == "" {
		return Extraction{}, ErrInvalidInput
	}

	doc, err := s.Docs.Get(ctx, userID, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return Extraction{}, ErrNotFound
		}
		return Extraction{}, err
	}

	prepared, err := s.Preparer.Prepare(ctx, doc.StorageKey, doc.MimeType, doc.OriginalName)
	if err != nil {
		return Extraction{}, err
	}

	prompt, schema := buildExtractionPrompt()
	result, err := s.Gateway.Invoke(ctx, llm.InvokeRequest{
		Prompt:    prompt,
		Documents: []docprep.PreparedDocument{prepared},
		Schema:    schema,
	})
	if err != nil {
		return Extraction{}, err
	}

	fields := make(map[string]string, len(ExtractionFields))
	for _, name := range ExtractionFields {
		fields[name] = ""
		if result.Kind == llm.ResultStructured {
			if v, ok := result.Object[name].(string); ok {
				fields[name] = v
			}
		}
	}

	var extraction Extraction
	extraction.Fields = fields
	extraction.Document.ID = doc.ID
	extraction.Document.Name = doc.OriginalName
	extraction.Document.Type = doc.MimeType
	return extraction, nil
}

// DeleteByDocument detaches the document from any synopsis referencing it.
func (s *Service) DeleteByDocument(ctx context.Context, userID, documentID string) (int, error) {
	return s.Repo.UnbindDocument(ctx, userID, documentID)
}

func buildExtractionPrompt() (string, *llm.ResponseSchema) {
	var b strings.Builder
	fmt.Fprintf(&b, "As an expert RFP analyzer for a presales division, extract the following %d fields from the provided document.\n\n", len(ExtractionFields))
	b.WriteString("**INSTRUCTIONS:**\n")
	b.WriteString("- Return ONLY the extracted values.\n")
	b.WriteString("- Use specified formats (YYYY-MM-DD for dates, numbers only for fees).\n")
	b.WriteString("- If info is not found, return an empty string \"\".\n")
	b.WriteString("- Return a JSON object with the exact field names provided.\n\n")
	b.WriteString("**Fields to Extract:**\n")
	for i, name := range ExtractionFields {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}

	properties := make(map[string]llm.SchemaProperty, len(ExtractionFields))
	for _, name := range ExtractionFields {
		properties[name] = llm.SchemaProperty{Type: "string"}
	}
	schema := &llm.ResponseSchema{
		Type:                 "object",
		Properties:           properties,
		AdditionalProperties: false,
	}
	return b.String(), schema
}

func normalizeFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(ExtractionFields))
	for _, name := range ExtractionFields {
		out[name] = in[name]
	}
	return out
}

func parseSort(expr string) (field string, descending bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "created_at", true
	}
	if strings.HasPrefix(expr, "-") {
		return strings.TrimPrefix(expr, "-"), true
	}
	return expr, false
}
