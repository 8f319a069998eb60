package analysis

import "context"

// ResultsRepo defines persistence operations for analysis results.
type ResultsRepo interface {
	Create(ctx context.Context, result Result) error
	GetByID(ctx context.Context, userId, resultID string) (Result, error)
	ListByUser(ctx context.Context, userId, analysisType string, limit, offset int) ([]Result, int, error)
	Delete(ctx context.Context, userId, resultID string) error
	DeleteByDocument(ctx context.Context, userId, documentID string) (int, error)
	StatsByUser(ctx context.Context, userId string) (Stats, error)
}
