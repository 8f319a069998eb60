package analysis

import "errors"

var (
	ErrNotFound     = errors.New("analysis result not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Placeholder answers written when a chunk cannot be completed.
const (
	AnswerFailedPlaceholder = "Analysis failed for this question. Please try again."
)

// MaxCustomQuestions bounds user-supplied question sets for custom analysis.
const MaxCustomQuestions = 50

// Document comparison bounds.
const (
	MinCompareDocuments = 2
	MaxCompareDocuments = 5
	CompareQuestionsCap = 20
)
