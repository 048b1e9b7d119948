package memory

import (
	"context"
	"sync"
)

type Repository struct {
	mu     sync.Mutex
	hashes map[string]int64
}

func NewRepository() *Repository {
	return &Repository{hashes: make(map[string]int64)}
}

func (r *Repository) ClaimTxHash(_ context.Context, hash string, telegramID int64, _ string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.hashes[hash]; ok {
		return false, nil
	}
	r.hashes[hash] = telegramID
	return true, nil
}
