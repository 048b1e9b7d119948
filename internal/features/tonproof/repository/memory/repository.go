package memory

import (
	"context"
	"sync"
	"time"

	"kc-mini-app-backend/internal/features/tonproof/models"
)

type payloadKey struct {
	userID  int64
	payload string
}

// Repository is the in-process variant used by tests.
type Repository struct {
	mu       sync.Mutex
	now      func() time.Time
	payloads map[payloadKey]time.Time
	proofs   map[int64]models.Record
}

func NewRepository(now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}
	return &Repository{
		now:      now,
		payloads: make(map[payloadKey]time.Time),
		proofs:   make(map[int64]models.Record),
	}
}

func (r *Repository) SavePayload(_ context.Context, userID int64, payload string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads[payloadKey{userID, payload}] = r.now().Add(ttl)
	return nil
}

func (r *Repository) TakePayload(_ context.Context, userID int64, payload string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := payloadKey{userID, payload}
	expires, ok := r.payloads[key]
	delete(r.payloads, key)
	return ok && r.now().Before(expires), nil
}

func (r *Repository) SaveProof(_ context.Context, record *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proofs[record.UserID] = *record
	return nil
}

func (r *Repository) GetProof(_ context.Context, userID int64) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.proofs[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}
