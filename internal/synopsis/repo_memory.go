package synopsis

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of SynopsisRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Synopsis // userId -> synopses, insertion order
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Synopsis)}
}

func (r *MemoryRepo) Create(ctx context.Context, s Synopsis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[s.UserID] = append(r.data[s.UserID], s)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userId, id string) (Synopsis, error) {
	if err := ctx.Err(); err != nil {
		return Synopsis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.data[userId] {
		if s.ID == id {
			return s, nil
		}
	}
	return Synopsis{}, ErrNotFound
}

func (r *MemoryRepo) Update(ctx context.Context, s Synopsis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[s.UserID]
	for i := range list {
		if list[i].ID == s.ID {
			list[i] = s
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) Delete(ctx context.Context, userId, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[userId]
	for i := range list {
		if list[i].ID == id {
			r.data[userId] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, opts ListOptions) ([]Synopsis, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if !validSortFields[opts.SortField] {
		opts.SortField = "created_at"
	}

	r.mu.RLock()
	all := make([]Synopsis, len(r.data[userId]))
	copy(all, r.data[userId])
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if opts.Descending {
			return lessBy(all[j], all[i], opts.SortField)
		}
		return lessBy(all[i], all[j], opts.SortField)
	})

	total := len(all)
	if opts.Offset >= total {
		return []Synopsis{}, total, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	return all[opts.Offset:end], total, nil
}

func lessBy(a, b Synopsis, field string) bool {
	if field == "created_at" {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return strings.ToLower(a.Field(field)) < strings.ToLower(b.Field(field))
}

func (r *MemoryRepo) Search(ctx context.Context, userId, query string, limit int) ([]Synopsis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	q := strings.ToLower(query)

	r.mu.RLock()
	defer r.mu.RUnlock()

	type ranked struct {
		s    Synopsis
		rank int
	}
	var matches []ranked
	for _, s := range r.data[userId] {
		switch {
		case strings.Contains(strings.ToLower(s.Field("tender_name")), q):
			matches = append(matches, ranked{s, 1})
		case strings.Contains(strings.ToLower(s.Field("customer_name")), q):
			matches = append(matches, ranked{s, 2})
		case strings.Contains(strings.ToLower(s.Field("consultant_name")), q),
			strings.Contains(strings.ToLower(s.Field("cbs_software")), q):
			matches = append(matches, ranked{s, 3})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].s.CreatedAt.After(matches[j].s.CreatedAt)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Synopsis, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.s)
	}
	return out, nil
}

func (r *MemoryRepo) Recent(ctx context.Context, userId string, limit int) ([]Synopsis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	r.mu.RLock()
	all := make([]Synopsis, len(r.data[userId]))
	copy(all, r.data[userId])
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepo) StatsByUser(ctx context.Context, userId string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats Stats
	for _, s := range r.data[userId] {
		stats.Total++
		if submission := s.Field("submission_date"); submission != "" {
			stats.WithSubmissionDate++
			if stats.EarliestSubmission == "" || submission < stats.EarliestSubmission {
				stats.EarliestSubmission = submission
			}
			if submission > stats.LatestSubmission {
				stats.LatestSubmission = submission
			}
		}
		if s.Field("tender_fee") != "" {
			stats.WithTenderFee++
		}
		if s.DocumentID != "" {
			stats.WithDocuments++
		}
	}
	return stats, nil
}

func (r *MemoryRepo) UnbindDocument(ctx context.Context, userId, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	list := r.data[userId]
	for i := range list {
		if list[i].DocumentID == documentID {
			list[i].DocumentID = ""
			n++
		}
	}
	return n, nil
}

var _ SynopsisRepo = (*MemoryRepo)(nil)
