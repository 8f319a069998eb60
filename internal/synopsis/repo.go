package synopsis

import "context"

// Sort fields accepted for listing.
var validSortFields = map[string]bool{
	"created_at":      true,
	"tender_name":     true,
	"customer_name":   true,
	"submission_date": true,
}

// ListOptions controls ordering and pagination for listing.
type ListOptions struct {
	SortField  string
	Descending bool
	Limit      int
	Offset     int
}

// SynopsisRepo persists synopses.
type SynopsisRepo interface {
	Create(ctx context.Context, s Synopsis) error
	GetByID(ctx context.Context, userId, id string) (Synopsis, error)
	Update(ctx context.Context, s Synopsis) error
	Delete(ctx context.Context, userId, id string) error
	ListByUser(ctx context.Context, userId string, opts ListOptions) ([]Synopsis, int, error)
	Search(ctx context.Context, userId, query string, limit int) ([]Synopsis, error)
	Recent(ctx context.Context, userId string, limit int) ([]Synopsis, error)
	StatsByUser(ctx context.Context, userId string) (Stats, error)
	UnbindDocument(ctx context.Context, userId, documentID string) (int, error)
}
