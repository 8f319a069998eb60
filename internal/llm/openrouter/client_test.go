package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", srv.URL+"/v1", "test-model"), srv
}

func completionResponse(content string) string {
	resp := map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func TestInvokeParsesStructuredResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse(`{"What is the deadline?":"March 1st, see page 4"}`)))
	})

	prompt, schema := llm.BuildAnalysisPrompt([]string{"What is the deadline?"})
	result, err := client.Invoke(context.Background(), llm.InvokeRequest{Prompt: prompt, Schema: schema})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.Kind != llm.ResultStructured {
		t.Fatalf("expected structured result, got %s", result.Kind)
	}
	if result.Object["What is the deadline?"] != "March 1st, see page 4" {
		t.Fatalf("unexpected answer: %v", result.Object)
	}
}

func TestInvokeReturnsRawWhenJSONParseFails(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("Sorry, I cannot answer in JSON.")))
	})

	prompt, schema := llm.BuildAnalysisPrompt([]string{"Q1"})
	result, err := client.Invoke(context.Background(), llm.InvokeRequest{Prompt: prompt, Schema: schema})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.Kind != llm.ResultRaw {
		t.Fatalf("expected raw result, got %s", result.Kind)
	}
	if result.Text == "" {
		t.Fatalf("expected raw text to be preserved")
	}
}

func TestInvokeClassifiesRateLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))
	})

	_, err := client.Invoke(context.Background(), llm.InvokeRequest{Prompt: "hi"})
	if !errors.Is(err, llm.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestInvokeClassifiesUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	_, err := client.Invoke(context.Background(), llm.InvokeRequest{Prompt: "hi"})
	if !errors.Is(err, llm.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestInvokeAttachesDocumentsByKind(t *testing.T) {
	var captured struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
		ResponseFormat *struct {
			Type string `json:"type"`
		} `json:"response_format"`
	}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse(`{}`)))
	})

	docs := []docprep.PreparedDocument{
		{Kind: docprep.KindText, Name: "rfp.pdf", MimeType: "application/pdf", Content: "Scope of work text", PageCount: 3},
		{Kind: docprep.KindBase64, Name: "scan.png", MimeType: "image/png", Content: "aGVsbG8=", SizeBytes: 5},
		{Kind: docprep.KindBase64, Name: "sheet.xlsx", MimeType: "application/vnd.ms-excel", Content: "eA==", SizeBytes: 1},
	}
	prompt, schema := llm.BuildAnalysisPrompt([]string{"Q1"})
	if _, err := client.Invoke(context.Background(), llm.InvokeRequest{Prompt: prompt, Documents: docs, Schema: schema}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if len(captured.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(captured.Messages))
	}
	content := string(captured.Messages[0].Content)

	if !strings.Contains(content, "Document Content: rfp.pdf") {
		t.Fatalf("text document not inlined: %s", content)
	}
	if !strings.Contains(content, "data:image/png;base64,aGVsbG8=") {
		t.Fatalf("image not attached as data URL")
	}
	if !strings.Contains(content, "Document type not supported for analysis") {
		t.Fatalf("unsupported document kind not noted")
	}
	if !strings.Contains(content, "matching this schema") {
		t.Fatalf("schema instruction not appended")
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format")
	}
}
