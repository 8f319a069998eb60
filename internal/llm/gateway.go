package llm

import (
	"context"
	"errors"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
)

// Gateway abstracts the external completion API.
type Gateway interface {
	Invoke(ctx context.Context, req InvokeRequest) (Result, error)
}

// InvokeRequest is a single-turn completion request. Documents are attached
// according to their kind; Schema, when set, requests a JSON object response.
type InvokeRequest struct {
	Prompt    string
	Documents []docprep.PreparedDocument
	Schema    *ResponseSchema
}

// ResultKind tags which representation a Result carries.
type ResultKind string

const (
	// ResultStructured carries a parsed JSON object.
	ResultStructured ResultKind = "structured"
	// ResultRaw carries the model's text verbatim, including responses that
	// failed JSON parsing after a schema was requested.
	ResultRaw ResultKind = "raw"
)

// Result is the tagged outcome of a gateway call.
type Result struct {
	Kind   ResultKind
	Object map[string]any
	Text   string
}

// Error taxonomy for upstream failures. Callers fall back the same way for
// all of them but surface distinct messages.
var (
	ErrRateLimited   = errors.New("rate limit exceeded, please try again later")
	ErrUnauthorized  = errors.New("invalid API key, please check the AI provider configuration")
	ErrTimeout       = errors.New("request timeout, the document might be too large or complex")
	ErrNotConfigured = errors.New("AI provider not configured")
)

// PlaceholderGateway is used when no API key is configured.
type PlaceholderGateway struct{}

// Invoke returns ErrNotConfigured.
func (PlaceholderGateway) Invoke(ctx context.Context, req InvokeRequest) (Result, error) {
	_ = ctx
	_ = req
	return Result{}, ErrNotConfigured
}

var _ Gateway = PlaceholderGateway{}
