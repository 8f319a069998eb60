package analysis

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

// ErrTooManyQuestions is returned when a custom question set exceeds the cap.
var ErrTooManyQuestions = fmt.Errorf("maximum %d questions allowed per analysis", MaxCustomQuestions)

// Service drives document analysis runs against the AI gateway.
type Service struct {
	Docs     *documents.Service
	Preparer *docprep.Preparer
	Gateway  llm.Gateway
	Repo     ResultsRepo
	Pacer    Pacer
	Model    string
}

// DocumentSummary identifies the analyzed document in responses.
type DocumentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// QuickAnalysis is the outcome of a quick (chunked) analysis run.
type QuickAnalysis struct {
	ResultID          string            `json:"resultId"`
	Analysis          map[string]string `json:"analysis"`
	Document          DocumentSummary   `json:"document"`
	QuestionsAnalyzed int               `json:"questions_analyzed"`
	ChunksProcessed   int               `json:"chunks_processed"`
}

// CustomAnalysis is the outcome of an unchunked custom analysis run.
type CustomAnalysis struct {
	ResultID          string            `json:"resultId"`
	Analysis          map[string]string `json:"analysis"`
	Document          DocumentSummary   `json:"document"`
	QuestionsAnalyzed int               `json:"questions_analyzed"`
}

// Comparison carries one document's entry in a multi-document comparison.
// Either Analysis is populated or Error is non-empty.
type Comparison struct {
	DocumentID   string            `json:"document_id"`
	DocumentName string            `json:"document_name,omitempty"`
	Analysis     map[string]string `json:"analysis,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// ComparisonOutcome is the result of comparing several documents.
type ComparisonOutcome struct {
	Comparisons       []Comparison `json:"comparisons"`
	Questions         []string     `json:"questions"`
	DocumentsAnalyzed int          `json:"documents_analyzed"`
	DocumentsFailed   int          `json:"documents_failed"`
}

// QuickAnalyze runs the chunked analysis pipeline: look up and prepare the
// document, partition the questions into chunks, drive the gateway per chunk
// with a text-only fallback, and merge per-chunk answers into one complete
// map. Every input question ends up with exactly one answer entry; chunk
// failures produce placeholder answers instead of aborting the run.
func (s *Service) QuickAnalyze(ctx context.Context, userID, documentID string, customQuestions []string) (QuickAnalysis, error) {
	if strings.TrimSpace(documentID) == "" {
		return QuickAnalysis{}, ErrInvalidInput
	}

	doc, err := s.Docs.Get(ctx, userID, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return QuickAnalysis{}, ErrNotFound
		}
		return QuickAnalysis{}, err
	}

	prepared, err := s.Preparer.Prepare(ctx, doc.StorageKey, doc.MimeType, doc.OriginalName)
	if err != nil {
		return QuickAnalysis{}, err
	}

	questions := customQuestions
	if len(questions) == 0 {
		questions = PredefinedQuestions
	}

	chunks := chunkQuestions(questions, ChunkSize)
	telemetry.Info("analysis.quick_started", map[string]any{
		"documentId": documentID,
		"questions":  len(questions),
		"chunks":     len(chunks),
	})
	metrics.IncAnalysisRun()
	started := time.Now()
	defer func() {
		metrics.ObserveAnalysisDurationMs(float64(time.Since(started)) / float64(time.Millisecond))
	}()

	answers := make(map[string]string, len(questions))
	for _, chunk := range chunks {
		// The pacer admits the first request immediately and spaces the
		// rest a second apart, with no trailing wait after the last chunk.
		if err := s.Pacer.Wait(ctx); err != nil {
			return QuickAnalysis{}, err
		}
		s.analyzeChunk(ctx, chunk, prepared, answers)
	}

	result := Result{
		ID:           uuid.NewString(),
		UserID:       userID,
		AnalysisType: TypeQuickRFPAnalysis,
		DocumentIDs:  []string{documentID},
		Questions:    questions,
		Answers:      answers,
		Model:        s.Model,
		Status:       "completed",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, result); err != nil {
		return QuickAnalysis{}, err
	}

	return QuickAnalysis{
		ResultID:          result.ID,
		Analysis:          answers,
		Document:          DocumentSummary{ID: doc.ID, Name: doc.OriginalName, Type: doc.MimeType},
		QuestionsAnalyzed: len(questions),
		ChunksProcessed:   len(chunks),
	}, nil
}

// analyzeChunk asks the gateway about one chunk of questions and writes the
// merged answers. Any gateway error triggers one text-only retry; if that
// also fails, or the response is not a JSON object, every question in the
// chunk gets the failure placeholder.
func (s *Service) analyzeChunk(ctx context.Context, chunk []string, prepared docprep.PreparedDocument, answers map[string]string) {
	metrics.IncChunkProcessed()
	prompt, schema := llm.BuildAnalysisPrompt(chunk)

	result, err := s.Gateway.Invoke(ctx, llm.InvokeRequest{
		Prompt:    prompt,
		Documents: []docprep.PreparedDocument{prepared},
		Schema:    schema,
	})
	if err != nil {
		telemetry.Warn("analysis.chunk_vision_failed", map[string]any{
			"questions": len(chunk),
			"error":     err.Error(),
		})
		metrics.IncGatewayFallback()
		result, err = s.Gateway.Invoke(ctx, llm.InvokeRequest{
			Prompt: llm.TextOnlyFallbackPrompt(prompt),
			Schema: schema,
		})
	}

	// A structured reply carrying an "error" key is the model reporting
	// failure, not an answer set.
	if err != nil || result.Kind != llm.ResultStructured || result.Object["error"] != nil {
		metrics.IncChunkFailed()
		switch {
		case err != nil:
			telemetry.Warn("analysis.chunk_failed", map[string]any{
				"questions": len(chunk),
				"error":     err.Error(),
			})
		case result.Kind != llm.ResultStructured:
			telemetry.Warn("analysis.chunk_malformed_response", map[string]any{
				"questions": len(chunk),
			})
		default:
			telemetry.Warn("analysis.chunk_error_response", map[string]any{
				"questions": len(chunk),
				"error":     fmt.Sprint(result.Object["error"]),
			})
		}
		for _, q := range chunk {
			answers[q] = AnswerFailedPlaceholder
		}
		return
	}

	for _, q := range chunk {
		if v, ok := result.Object[q].(string); ok && v != "" {
			answers[q] = v
		} else {
			answers[q] = llm.NoAnswerPlaceholder
		}
	}
}

// CustomAnalyze runs a single unchunked analysis over user-supplied
// questions. Question sets are capped; larger runs should use QuickAnalyze.
func (s *Service) CustomAnalyze(ctx context.Context, userID, documentID string, questions []string, analysisName string) (CustomAnalysis, error) {
	if strings.TrimSpace(documentID) == "" || len(questions) == 0 {
		return CustomAnalysis{}, ErrInvalidInput
	}
	if len(questions) > MaxCustomQuestions {
		return CustomAnalysis{}, ErrTooManyQuestions
	}

	doc, err := s.Docs.Get(ctx, userID, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return CustomAnalysis{}, ErrNotFound
		}
		return CustomAnalysis{}, err
	}

	prepared, err := s.Preparer.Prepare(ctx, doc.StorageKey, doc.MimeType, doc.OriginalName)
	if err != nil {
		return CustomAnalysis{}, err
	}

	metrics.IncAnalysisRun()
	answers := make(map[string]string, len(questions))
	s.analyzeChunk(ctx, questions, prepared, answers)

	analysisType := strings.TrimSpace(analysisName)
	if analysisType == "" {
		analysisType = TypeCustomAnalysis
	}

	result := Result{
		ID:           uuid.NewString(),
		UserID:       userID,
		AnalysisType: analysisType,
		DocumentIDs:  []string{documentID},
		Questions:    questions,
		Answers:      answers,
		Model:        s.Model,
		Status:       "completed",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, result); err != nil {
		return CustomAnalysis{}, err
	}

	return CustomAnalysis{
		ResultID:          result.ID,
		Analysis:          answers,
		Document:          DocumentSummary{ID: doc.ID, Name: doc.OriginalName, Type: doc.MimeType},
		QuestionsAnalyzed: len(questions),
	}, nil
}

// Compare analyzes several documents against the same question set. Failure
// for one document is recorded in its comparison entry and does not affect
// the others.
func (s *Service) Compare(ctx context.Context, userID string, documentIDs, questions []string) (ComparisonOutcome, error) {
	if len(documentIDs) < MinCompareDocuments {
		return ComparisonOutcome{}, fmt.Errorf("%w: at least %d document IDs are required for comparison", ErrInvalidInput, MinCompareDocuments)
	}
	if len(documentIDs) > MaxCompareDocuments {
		return ComparisonOutcome{}, fmt.Errorf("%w: maximum %d documents can be compared at once", ErrInvalidInput, MaxCompareDocuments)
	}

	questionsToUse := questions
	if len(questionsToUse) == 0 {
		questionsToUse = PredefinedQuestions[:CompareQuestionsCap]
	}

	outcome := ComparisonOutcome{Questions: questionsToUse}
	for _, docID := range documentIDs {
		if err := s.Pacer.Wait(ctx); err != nil {
			return ComparisonOutcome{}, err
		}

		doc, err := s.Docs.Get(ctx, userID, docID)
		if err != nil {
			outcome.Comparisons = append(outcome.Comparisons, Comparison{
				DocumentID: docID,
				Error:      "Document not found",
			})
			outcome.DocumentsFailed++
			continue
		}

		prepared, err := s.Preparer.Prepare(ctx, doc.StorageKey, doc.MimeType, doc.OriginalName)
		if err != nil {
			outcome.Comparisons = append(outcome.Comparisons, Comparison{
				DocumentID:   docID,
				DocumentName: doc.OriginalName,
				Error:        err.Error(),
			})
			outcome.DocumentsFailed++
			continue
		}

		answers := make(map[string]string, len(questionsToUse))
		s.analyzeChunk(ctx, questionsToUse, prepared, answers)

		outcome.Comparisons = append(outcome.Comparisons, Comparison{
			DocumentID:   docID,
			DocumentName: doc.OriginalName,
			Analysis:     answers,
		})
		outcome.DocumentsAnalyzed++
	}

	return outcome, nil
}

// Get returns one stored analysis result owned by the user.
func (s *Service) Get(ctx context.Context, userID, resultID string) (Result, error) {
	if strings.TrimSpace(resultID) == "" {
		return Result{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, resultID)
}

// List returns the user's results, optionally filtered by analysis type.
func (s *Service) List(ctx context.Context, userID, analysisType string, limit, offset int) ([]Result, int, error) {
	return s.Repo.ListByUser(ctx, userID, analysisType, limit, offset)
}

// Delete removes one stored analysis result owned by the user.
func (s *Service) Delete(ctx context.Context, userID, resultID string) error {
	if strings.TrimSpace(resultID) == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, resultID)
}

// DeleteByDocument removes all results referencing a document. Used when the
// document itself is deleted.
func (s *Service) DeleteByDocument(ctx context.Context, userID, documentID string) (int, error) {
	return s.Repo.DeleteByDocument(ctx, userID, documentID)
}

// Stats summarizes the user's analysis history.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return s.Repo.StatsByUser(ctx, userID)
}

// TestGateway sends a trivial prompt to verify AI provider connectivity.
func (s *Service) TestGateway(ctx context.Context) (string, error) {
	result, err := s.Gateway.Invoke(ctx, llm.InvokeRequest{
		Prompt: `Hello, please respond with "AI connection successful" to confirm the connection is working.`,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
