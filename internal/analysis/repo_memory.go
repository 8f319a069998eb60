package analysis

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of ResultsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Result // userId -> results
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Result)}
}

func (r *MemoryRepo) Create(ctx context.Context, result Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[result.UserID] = append(r.data[result.UserID], result)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userId, resultID string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.data[userId] {
		if res.ID == resultID {
			return res, nil
		}
	}
	return Result{}, ErrNotFound
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userId, analysisType string, limit, offset int) ([]Result, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	all := r.data[userId]
	r.mu.RUnlock()

	var filtered []Result
	for _, res := range all {
		if analysisType != "" && res.AnalysisType != analysisType {
			continue
		}
		filtered = append(filtered, res)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	if offset >= total {
		return []Result{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userId, resultID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	results := r.data[userId]
	for i, res := range results {
		if res.ID == resultID {
			r.data[userId] = append(results[:i], results[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) DeleteByDocument(ctx context.Context, userId, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	results := r.data[userId]
	var kept []Result
	deleted := 0
	for _, res := range results {
		referenced := false
		for _, id := range res.DocumentIDs {
			if id == documentID {
				referenced = true
				break
			}
		}
		if referenced {
			deleted++
			continue
		}
		kept = append(kept, res)
	}
	r.data[userId] = kept
	return deleted, nil
}

func (r *MemoryRepo) StatsByUser(ctx context.Context, userId string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{ByType: make(map[string]int)}
	daily := make(map[string]int)
	for _, res := range r.data[userId] {
		stats.Total++
		stats.ByType[res.AnalysisType]++
		daily[res.CreatedAt.UTC().Format("2006-01-02")]++
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	if len(days) > 30 {
		days = days[:30]
	}
	for _, day := range days {
		stats.DailyActivity = append(stats.DailyActivity, DailyCount{Date: day, Count: daily[day]})
	}
	return stats, nil
}

var _ ResultsRepo = (*MemoryRepo)(nil)
