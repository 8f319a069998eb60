package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/documents"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/llm"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/storage/object/local"
)

// fakeGateway scripts gateway behavior per call and records every request.
type fakeGateway struct {
	calls   []llm.InvokeRequest
	respond func(call int, req llm.InvokeRequest) (llm.Result, error)
}

func (g *fakeGateway) Invoke(ctx context.Context, req llm.InvokeRequest) (llm.Result, error) {
	call := len(g.calls)
	g.calls = append(g.calls, req)
	return g.respond(call, req)
}

// answerAll returns a structured object answering every schema property.
func answerAll(req llm.InvokeRequest, answer string) llm.Result {
	object := make(map[string]any)
	for q := range req.Schema.Properties {
		object[q] = answer
	}
	return llm.Result{Kind: llm.ResultStructured, Object: object}
}

func newTestService(t *testing.T, gw llm.Gateway) (*Service, *documents.Service) {
	t.Helper()

	store := local.New(t.TempDir())
	docs := &documents.Service{Store: store, Repo: documents.NewMemoryRepo()}
	svc := &Service{
		Docs:     docs,
		Preparer: docprep.NewPreparer(store, 0),
		Gateway:  gw,
		Repo:     NewMemoryRepo(),
		Pacer:    NopPacer{},
		Model:    "test-model",
	}
	docs.Purgers = []documents.ResultsPurger{svc}
	return svc, docs
}

func uploadTextDocument(t *testing.T, docs *documents.Service, userID, name, content string) documents.Document {
	t.Helper()
	doc, err := docs.Upload(context.Background(), userID, name, "web", strings.NewReader(content))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return doc
}

func makeQuestions(n int) []string {
	questions := make([]string, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, fmt.Sprintf("Question number %d?", i+1))
	}
	return questions
}

func TestQuickAnalyzeChunksAndMergesAnswers(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "Not specified in RFP"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "Project scope and budget details.")

	questions := makeQuestions(45)
	outcome, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, questions)
	if err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}

	if outcome.ChunksProcessed != 3 {
		t.Fatalf("chunks processed = %d, want 3", outcome.ChunksProcessed)
	}
	if outcome.QuestionsAnalyzed != 45 {
		t.Fatalf("questions analyzed = %d, want 45", outcome.QuestionsAnalyzed)
	}
	if len(gw.calls) != 3 {
		t.Fatalf("gateway calls = %d, want 3", len(gw.calls))
	}
	if len(outcome.Analysis) != 45 {
		t.Fatalf("answer entries = %d, want 45", len(outcome.Analysis))
	}
	for _, q := range questions {
		if outcome.Analysis[q] != "Not specified in RFP" {
			t.Fatalf("answer for %q = %q", q, outcome.Analysis[q])
		}
	}

	// chunk sizes 20, 20, 5
	wantSizes := []int{20, 20, 5}
	for i, call := range gw.calls {
		if got := len(call.Schema.Properties); got != wantSizes[i] {
			t.Fatalf("chunk %d schema size = %d, want %d", i, got, wantSizes[i])
		}
		if len(call.Documents) != 1 {
			t.Fatalf("chunk %d attached %d documents, want 1", i, len(call.Documents))
		}
	}

	// Result persisted.
	stored, total, err := svc.List(context.Background(), "guest:alice", "", 10, 0)
	if err != nil || total != 1 || len(stored) != 1 {
		t.Fatalf("stored results = %d (total %d, err %v), want 1", len(stored), total, err)
	}
	if stored[0].AnalysisType != TypeQuickRFPAnalysis {
		t.Fatalf("analysis type = %q", stored[0].AnalysisType)
	}
}

func TestQuickAnalyzeDefaultsToPredefinedQuestions(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "Yes"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	outcome, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, nil)
	if err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}
	if outcome.QuestionsAnalyzed != len(PredefinedQuestions) {
		t.Fatalf("questions analyzed = %d, want %d", outcome.QuestionsAnalyzed, len(PredefinedQuestions))
	}
	wantChunks := (len(PredefinedQuestions) + ChunkSize - 1) / ChunkSize
	if outcome.ChunksProcessed != wantChunks {
		t.Fatalf("chunks processed = %d, want %d", outcome.ChunksProcessed, wantChunks)
	}
}

func TestQuickAnalyzeMissingDocumentSkipsGateway(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return llm.Result{}, errors.New("should not be called")
	}}
	svc, _ := newTestService(t, gw)

	_, err := svc.QuickAnalyze(context.Background(), "guest:alice", "nope", makeQuestions(3))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("gateway calls = %d, want 0", len(gw.calls))
	}
}

func TestQuickAnalyzeChunkFailureWritesPlaceholders(t *testing.T) {
	// Second chunk fails on both the vision attempt and the text-only retry.
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		if qlen := len(req.Schema.Properties); qlen == 5 {
			return llm.Result{}, llm.ErrTimeout
		}
		return answerAll(req, "Answered"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	questions := makeQuestions(25)
	outcome, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, questions)
	if err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}
	if outcome.ChunksProcessed != 2 {
		t.Fatalf("chunks processed = %d, want 2", outcome.ChunksProcessed)
	}
	// vision + fallback for the failing chunk
	if len(gw.calls) != 3 {
		t.Fatalf("gateway calls = %d, want 3", len(gw.calls))
	}
	if len(outcome.Analysis) != 25 {
		t.Fatalf("answer entries = %d, want 25", len(outcome.Analysis))
	}
	for _, q := range questions[:20] {
		if outcome.Analysis[q] != "Answered" {
			t.Fatalf("answer for %q = %q", q, outcome.Analysis[q])
		}
	}
	for _, q := range questions[20:] {
		if outcome.Analysis[q] != AnswerFailedPlaceholder {
			t.Fatalf("answer for %q = %q, want failure placeholder", q, outcome.Analysis[q])
		}
	}
}

func TestQuickAnalyzeFallbackDropsDocuments(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		if call == 0 {
			return llm.Result{}, llm.ErrTimeout
		}
		return answerAll(req, "From fallback"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	questions := makeQuestions(3)
	outcome, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, questions)
	if err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}
	if len(gw.calls) != 2 {
		t.Fatalf("gateway calls = %d, want 2", len(gw.calls))
	}
	if len(gw.calls[1].Documents) != 0 {
		t.Fatalf("fallback attached %d documents, want 0", len(gw.calls[1].Documents))
	}
	if !strings.Contains(gw.calls[1].Prompt, "without direct document access") {
		t.Fatalf("fallback prompt missing text-only note: %q", gw.calls[1].Prompt)
	}
	for _, q := range questions {
		if outcome.Analysis[q] != "From fallback" {
			t.Fatalf("answer for %q = %q", q, outcome.Analysis[q])
		}
	}
}

func TestQuickAnalyzeMissingAnswersGetNoAnswerPlaceholder(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		// Answer only the first question of the chunk, leave the rest out.
		result := llm.Result{Kind: llm.ResultStructured, Object: map[string]any{
			"Question number 1?": "Two million dollars",
		}}
		return result, nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	questions := makeQuestions(3)
	outcome, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, questions)
	if err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}
	if outcome.Analysis["Question number 1?"] != "Two million dollars" {
		t.Fatalf("answered question = %q", outcome.Analysis["Question number 1?"])
	}
	for _, q := range questions[1:] {
		if outcome.Analysis[q] != llm.NoAnswerPlaceholder {
			t.Fatalf("answer for %q = %q, want no-answer placeholder", q, outcome.Analysis[q])
		}
	}
}

func TestQuickAnalyzeRawResponseTreatedAsFailure(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return llm.Result{Kind: llm.ResultRaw, Text: "I cannot answer in JSON."}, nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	questions := makeQuestions(2)
	outcome, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, questions)
	if err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}
	for _, q := range questions {
		if outcome.Analysis[q] != AnswerFailedPlaceholder {
			t.Fatalf("answer for %q = %q, want failure placeholder", q, outcome.Analysis[q])
		}
	}
}

func TestCustomAnalyzeValidation(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "ok"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	_, err := svc.CustomAnalyze(context.Background(), "guest:alice", doc.ID, makeQuestions(MaxCustomQuestions+1), "")
	if !errors.Is(err, ErrTooManyQuestions) {
		t.Fatalf("err = %v, want ErrTooManyQuestions", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("gateway calls = %d, want 0", len(gw.calls))
	}

	_, err = svc.CustomAnalyze(context.Background(), "guest:alice", doc.ID, nil, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCustomAnalyzeSingleCallAndNamedType(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "ok"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	questions := makeQuestions(MaxCustomQuestions)
	outcome, err := svc.CustomAnalyze(context.Background(), "guest:alice", doc.ID, questions, "vendor_review")
	if err != nil {
		t.Fatalf("CustomAnalyze: %v", err)
	}
	// Custom analysis is a single unchunked run.
	if len(gw.calls) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(gw.calls))
	}
	if outcome.QuestionsAnalyzed != MaxCustomQuestions {
		t.Fatalf("questions analyzed = %d", outcome.QuestionsAnalyzed)
	}

	stored, _, err := svc.List(context.Background(), "guest:alice", "vendor_review", 10, 0)
	if err != nil || len(stored) != 1 {
		t.Fatalf("stored by type = %d (err %v), want 1", len(stored), err)
	}
}

func TestCompareIsolatesPerDocumentFailures(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "ok"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "a.txt", "doc a")

	outcome, err := svc.Compare(context.Background(), "guest:alice", []string{doc.ID, "missing-doc"}, makeQuestions(3))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if outcome.DocumentsAnalyzed != 1 || outcome.DocumentsFailed != 1 {
		t.Fatalf("analyzed/failed = %d/%d, want 1/1", outcome.DocumentsAnalyzed, outcome.DocumentsFailed)
	}
	if len(outcome.Comparisons) != 2 {
		t.Fatalf("comparisons = %d, want 2", len(outcome.Comparisons))
	}
	if outcome.Comparisons[0].Error != "" || len(outcome.Comparisons[0].Analysis) != 3 {
		t.Fatalf("first comparison not successful: %+v", outcome.Comparisons[0])
	}
	if outcome.Comparisons[1].Error == "" {
		t.Fatalf("second comparison missing error: %+v", outcome.Comparisons[1])
	}
}

func TestCompareValidatesDocumentCount(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "ok"), nil
	}}
	svc, _ := newTestService(t, gw)

	if _, err := svc.Compare(context.Background(), "guest:alice", []string{"one"}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("one document: err = %v, want ErrInvalidInput", err)
	}
	ids := []string{"a", "b", "c", "d", "e", "f"}
	if _, err := svc.Compare(context.Background(), "guest:alice", ids, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("six documents: err = %v, want ErrInvalidInput", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("gateway calls = %d, want 0", len(gw.calls))
	}
}

func TestCompareDefaultsToCappedPredefinedQuestions(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "ok"), nil
	}}
	svc, docs := newTestService(t, gw)
	a := uploadTextDocument(t, docs, "guest:alice", "a.txt", "doc a")
	b := uploadTextDocument(t, docs, "guest:alice", "b.txt", "doc b")

	outcome, err := svc.Compare(context.Background(), "guest:alice", []string{a.ID, b.ID}, nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(outcome.Questions) != CompareQuestionsCap {
		t.Fatalf("default questions = %d, want %d", len(outcome.Questions), CompareQuestionsCap)
	}
	if outcome.Questions[0] != PredefinedQuestions[0] {
		t.Fatalf("default questions do not start with the predefined set")
	}
}

func TestDeletingDocumentPurgesResults(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "ok"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	if _, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, makeQuestions(2)); err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}
	if err := docs.Delete(context.Background(), "guest:alice", doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, total, err := svc.List(context.Background(), "guest:alice", "", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 {
		t.Fatalf("results after document deletion = %d, want 0", total)
	}
}

func TestResultOwnershipIsolation(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "ok"), nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "content")

	outcome, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, makeQuestions(2))
	if err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}

	if _, err := svc.Get(context.Background(), "guest:bob", outcome.ResultID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user get err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "guest:bob", outcome.ResultID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete err = %v, want ErrNotFound", err)
	}
}

func TestChunkQuestionsPartitions(t *testing.T) {
	chunks := chunkQuestions(makeQuestions(41), 20)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 20 || len(chunks[1]) != 20 || len(chunks[2]) != 1 {
		t.Fatalf("chunk sizes = %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}

	if got := chunkQuestions(nil, 20); len(got) != 0 {
		t.Fatalf("empty input produced %d chunks", len(got))
	}
}

// countingPacer records how often the orchestrator asked to pace.
type countingPacer struct{ waits int }

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func TestQuickAnalyzeErrorMarkerResponseWritesPlaceholders(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return llm.Result{
			Kind:   llm.ResultStructured,
			Object: map[string]any{"error": "model refused: quota exhausted"},
		}, nil
	}}
	svc, docs := newTestService(t, gw)
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "Scope of work.")

	questions := makeQuestions(5)
	outcome, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, questions)
	if err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}

	for _, q := range questions {
		if outcome.Analysis[q] != AnswerFailedPlaceholder {
			t.Fatalf("answer for %q = %q, want failure placeholder", q, outcome.Analysis[q])
		}
	}
	// The error object arrives as a successful call, so no text-only retry
	// is attempted.
	if len(gw.calls) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(gw.calls))
	}
}

func TestQuickAnalyzePacesEveryChunk(t *testing.T) {
	gw := &fakeGateway{respond: func(call int, req llm.InvokeRequest) (llm.Result, error) {
		return answerAll(req, "Not specified in RFP"), nil
	}}
	svc, docs := newTestService(t, gw)
	pacer := &countingPacer{}
	svc.Pacer = pacer
	doc := uploadTextDocument(t, docs, "guest:alice", "rfp.txt", "Scope of work.")

	if _, err := svc.QuickAnalyze(context.Background(), "guest:alice", doc.ID, makeQuestions(45)); err != nil {
		t.Fatalf("QuickAnalyze: %v", err)
	}
	if pacer.waits != 3 {
		t.Fatalf("pacer waits = %d, want one per chunk (3)", pacer.waits)
	}
}
