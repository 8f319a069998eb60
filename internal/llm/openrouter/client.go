package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/llm"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/telemetry"
)

const (
	// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// requestTimeout is generous to tolerate large-document latency.
	requestTimeout = 120 * time.Second

	maxTokens   = 4000
	temperature = 0.1
	topP        = 0.9
)

// Client implements llm.Gateway against the OpenRouter API.
type Client struct {
	client *openai.Client
	model  string
}

// New creates an OpenRouter-backed gateway.
func New(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Invoke sends a single-turn completion request. Text documents are inlined
// into the prompt body, base64 images are attached as vision parts, and
// other base64 kinds are noted as unsupported.
func (c *Client) Invoke(ctx context.Context, req llm.InvokeRequest) (llm.Result, error) {
	message := buildMessage(req)

	apiReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessage{message},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
	if req.Schema != nil {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return llm.Result{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return llm.Result{}, errors.New("no response from AI provider")
	}

	content := resp.Choices[0].Message.Content
	if req.Schema != nil {
		var object map[string]any
		if parseErr := json.Unmarshal([]byte(content), &object); parseErr == nil {
			return llm.Result{Kind: llm.ResultStructured, Object: object}, nil
		}
		telemetry.Warn("openrouter.json_parse_failed", map[string]any{
			"model": c.model,
		})
		// The caller treats a raw return as a soft failure.
		return llm.Result{Kind: llm.ResultRaw, Text: content}, nil
	}

	return llm.Result{Kind: llm.ResultRaw, Text: content}, nil
}

func buildMessage(req llm.InvokeRequest) openai.ChatCompletionMessage {
	prompt := req.Prompt
	if req.Schema != nil {
		if raw, err := json.Marshal(req.Schema); err == nil {
			prompt += "\n\nPlease respond with a valid JSON object matching this schema: " + string(raw)
		}
	}

	if len(req.Documents) == 0 {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}
	}

	var text strings.Builder
	text.WriteString(prompt)
	fmt.Fprintf(&text, "\n\nI have provided %d document(s) for analysis. Please analyze the content and respond based on the documents provided.", len(req.Documents))

	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText}}
	for _, doc := range req.Documents {
		switch {
		case doc.Kind == docprep.KindText:
			fmt.Fprintf(&text, "\n\n--- Document Content: %s ---\n%s\n--- End of Document ---\n", doc.Name, doc.Content)
		case doc.IsImage():
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    doc.DataURL(),
					Detail: openai.ImageURLDetailHigh,
				},
			})
		default:
			fmt.Fprintf(&text, "\n\nDocument: %s (%s) - Document type not supported for analysis.", doc.Name, doc.MimeType)
		}
	}
	parts[0].Text = text.String()

	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return llm.ErrRateLimited
		case http.StatusUnauthorized:
			return llm.ErrUnauthorized
		}
		return fmt.Errorf("ai processing failed: %s", apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.ErrTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return llm.ErrTimeout
	}
	return fmt.Errorf("ai processing failed: %w", err)
}

var _ llm.Gateway = (*Client)(nil)
