package llm

import (
	"fmt"
	"strings"
)

// NoAnswerPlaceholder is the literal string the model is instructed to write
// when a question cannot be answered from the document.
const NoAnswerPlaceholder = "Not specified in RFP"

// ResponseSchema is the JSON object shape the model is asked to honor.
type ResponseSchema struct {
	Type                 string                    `json:"type"`
	Properties           map[string]SchemaProperty `json:"properties"`
	AdditionalProperties bool                      `json:"additionalProperties"`
}

// SchemaProperty types a single schema property.
type SchemaProperty struct {
	Type string `json:"type"`
}

// BuildAnalysisPrompt constructs the analysis prompt and the expected-answer
// schema for a set of questions. The schema's property set is exactly the
// input questions, each typed as string, with additional properties
// disallowed.
func BuildAnalysisPrompt(questions []string) (string, *ResponseSchema) {
	var b strings.Builder
	b.WriteString("As an expert RFP analyzer, analyze the provided document and answer the following questions.\n\n")
	b.WriteString("Questions to Answer:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\nInstructions:\n")
	b.WriteString("- Provide accurate answers based on the document content\n")
	fmt.Fprintf(&b, "- If information is not found, respond with %q\n", NoAnswerPlaceholder)
	b.WriteString("- Include page numbers or section references when possible\n")
	b.WriteString("- Be concise but comprehensive\n")
	b.WriteString("- Return a JSON object where each question is a key and the answer is the value\n")
	b.WriteString("\nPlease analyze the document and provide answers in the requested JSON format.")

	properties := make(map[string]SchemaProperty, len(questions))
	for _, q := range questions {
		properties[q] = SchemaProperty{Type: "string"}
	}
	schema := &ResponseSchema{
		Type:                 "object",
		Properties:           properties,
		AdditionalProperties: false,
	}

	return b.String(), schema
}

// TextOnlyFallbackPrompt augments an analysis prompt for the retry path that
// omits the document and asks for answers from general RFP-domain knowledge.
func TextOnlyFallbackPrompt(prompt string) string {
	return prompt + "\n\nNote: Document analysis is being performed without direct document access. " +
		"Please provide general RFP analysis guidance based on common RFP patterns and the questions asked."
}

// ChatTurn is one prior exchange in a conversation.
type ChatTurn struct {
	Sender  string
	Message string
}

// MaxChatHistoryTurns bounds how much conversation history is embedded in
// a chat prompt.
const MaxChatHistoryTurns = 10

// BuildChatPrompt frames the assistant as an RFP analysis aide, embeds up to
// the last MaxChatHistoryTurns history turns verbatim, and appends the new
// user message. documentCount notes how many documents are attached.
func BuildChatPrompt(message string, documentCount int, history []ChatTurn) string {
	var b strings.Builder
	b.WriteString("You are a professional AI assistant for a presales division, expert at analyzing RFP documents.\n\n")
	b.WriteString("Instructions:\n")
	b.WriteString("1. Analyze documents to answer user questions\n")
	b.WriteString("2. Cite sources when possible (e.g., \"Source: Page 15, Section 3.2.1\")\n")
	b.WriteString("3. If information isn't found, state: \"This information is not specified in the uploaded document(s).\"\n")
	b.WriteString("4. Stay professional and focused on RFP analysis\n")
	b.WriteString("5. Provide actionable insights when possible\n\n")

	if documentCount > 0 {
		fmt.Fprintf(&b, "I have provided %d document(s) for analysis. ", documentCount)
	}

	if len(history) > MaxChatHistoryTurns {
		history = history[len(history)-MaxChatHistoryTurns:]
	}
	if len(history) > 0 {
		b.WriteString("Previous Conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Sender, turn.Message)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User Question: %s\n\nPlease provide your response:", message)
	return b.String()
}

// ChatFallbackPrompt augments a chat prompt for the retry path that omits
// the documents.
func ChatFallbackPrompt(prompt string) string {
	return prompt + "\n\nNote: I'm currently unable to directly access the uploaded documents, " +
		"but I can provide general RFP analysis guidance based on your question."
}
