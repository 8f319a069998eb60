package llm

import (
	"strings"
	"testing"
)

func TestBuildAnalysisPromptListsQuestionsAndPlaceholder(t *testing.T) {
	questions := []string{
		"What is the submission deadline?",
		"What is the project budget?",
	}
	prompt, schema := BuildAnalysisPrompt(questions)

	for i, q := range questions {
		if !strings.Contains(prompt, q) {
			t.Fatalf("prompt missing question %d: %q", i+1, q)
		}
	}
	if !strings.Contains(prompt, NoAnswerPlaceholder) {
		t.Fatalf("prompt missing %q instruction", NoAnswerPlaceholder)
	}

	if schema.Type != "object" {
		t.Fatalf("expected object schema, got %s", schema.Type)
	}
	if schema.AdditionalProperties {
		t.Fatalf("expected additionalProperties=false")
	}
	if len(schema.Properties) != len(questions) {
		t.Fatalf("expected %d schema properties, got %d", len(questions), len(schema.Properties))
	}
	for _, q := range questions {
		prop, ok := schema.Properties[q]
		if !ok {
			t.Fatalf("schema missing property for %q", q)
		}
		if prop.Type != "string" {
			t.Fatalf("expected string property for %q, got %s", q, prop.Type)
		}
	}
}

func TestBuildAnalysisPromptCollapsesDuplicateQuestions(t *testing.T) {
	questions := []string{"Same question?", "Same question?"}
	_, schema := BuildAnalysisPrompt(questions)
	if len(schema.Properties) != 1 {
		t.Fatalf("duplicate question text collapses to one schema property, got %d", len(schema.Properties))
	}
}

func TestTextOnlyFallbackPromptAppendsNote(t *testing.T) {
	prompt, _ := BuildAnalysisPrompt([]string{"Q1"})
	fallback := TextOnlyFallbackPrompt(prompt)
	if !strings.HasPrefix(fallback, prompt) {
		t.Fatalf("fallback must preserve the original prompt")
	}
	if !strings.Contains(fallback, "without direct document access") {
		t.Fatalf("fallback missing text-only note")
	}
}

func TestBuildChatPromptBoundsHistory(t *testing.T) {
	history := make([]ChatTurn, 15)
	for i := range history {
		history[i] = ChatTurn{Sender: "user", Message: strings.Repeat("x", 1) + string(rune('a'+i))}
	}

	prompt := BuildChatPrompt("What is the deadline?", 1, history)

	// Oldest turns are dropped.
	if strings.Contains(prompt, "user: xa") {
		t.Fatalf("expected oldest history turn to be dropped")
	}
	// Newest turn survives.
	if !strings.Contains(prompt, "user: xo") {
		t.Fatalf("expected newest history turn to be embedded")
	}
	if !strings.Contains(prompt, "1 document(s)") {
		t.Fatalf("expected document count note")
	}
	if !strings.Contains(prompt, "User Question: What is the deadline?") {
		t.Fatalf("expected user question")
	}
}

func TestBuildChatPromptNoHistoryNoDocuments(t *testing.T) {
	prompt := BuildChatPrompt("hello", 0, nil)
	if strings.Contains(prompt, "Previous Conversation") {
		t.Fatalf("unexpected history section")
	}
	if strings.Contains(prompt, "document(s) for analysis") {
		t.Fatalf("unexpected document note")
	}
}
