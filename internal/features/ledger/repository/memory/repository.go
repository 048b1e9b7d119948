package memory

import (
	"context"
	"sort"
	"sync"

	"kc-mini-app-backend/internal/features/ledger/models"
)

// Repository is the ledger used when no DATABASE_URL is configured.
type Repository struct {
	mu      sync.RWMutex
	entries map[int64][]models.Entry
}

func NewRepository() *Repository {
	return &Repository{entries: make(map[int64][]models.Entry)}
}

func (r *Repository) Append(_ context.Context, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.TelegramID] = append(r.entries[entry.TelegramID], *entry)
	return nil
}

func (r *Repository) ListByUser(_ context.Context, telegramID int64, limit, offset int) ([]*models.Entry, error) {
	r.mu.RLock()
	src := r.entries[telegramID]
	all := make([]*models.Entry, 0, len(src))
	for i := range src {
		e := src[i]
		all = append(all, &e)
	}
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*models.Entry{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
