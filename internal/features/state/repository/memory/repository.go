package memory

import (
	"context"
	"errors"
	"sync"

	"kc-mini-app-backend/internal/features/state/models"
	"kc-mini-app-backend/internal/features/state/repository"
)

// Repository keeps encoded snapshots in process memory. Values are stored
// serialized so callers never share memory with the stored record.
type Repository struct {
	mu      sync.Mutex
	records map[int64][]byte
}

func NewRepository() *Repository {
	return &Repository{records: make(map[int64][]byte)}
}

func (r *Repository) Get(_ context.Context, telegramID int64) (*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(telegramID)
}

func (r *Repository) load(telegramID int64) (*models.Snapshot, error) {
	data, ok := r.records[telegramID]
	if !ok {
		return models.Empty(), nil
	}
	return models.Decode(data)
}

func (r *Repository) Update(ctx context.Context, telegramID int64, fn repository.UpdateFunc) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(telegramID)
	if err != nil {
		return nil, err
	}

	if err := fn(snap); err != nil {
		if errors.Is(err, repository.ErrSkip) {
			return snap, nil
		}
		return nil, err
	}

	data, err := snap.Encode()
	if err != nil {
		return nil, err
	}
	r.records[telegramID] = data
	return snap, nil
}

func (r *Repository) Delete(_ context.Context, telegramID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, telegramID)
	return nil
}

func (r *Repository) List(_ context.Context) (map[int64]*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int64]*models.Snapshot, len(r.records))
	for id := range r.records {
		snap, err := r.load(id)
		if err != nil {
			continue
		}
		out[id] = snap
	}
	return out, nil
}
