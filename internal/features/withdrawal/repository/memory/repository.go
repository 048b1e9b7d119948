package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kc-mini-app-backend/internal/features/withdrawal/models"
	"kc-mini-app-backend/internal/features/withdrawal/repository"
)

// Repository keeps sessions in memory without expiry.
type Repository struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	counts   map[int64]repository.Counts
}

func NewRepository() *Repository {
	return &Repository{
		sessions: make(map[string]models.Session),
		counts:   make(map[int64]repository.Counts),
	}
}

func (r *Repository) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	r.sessions[session.ID] = *session
	r.counts[session.TelegramID] = r.counts[session.TelegramID].Apply(models.StateIdle, session.State)
	return nil
}

func (r *Repository) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *Repository) Update(_ context.Context, id string, fn repository.UpdateFunc) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s := current
	if err := fn(&s, r.counts[current.TelegramID]); err != nil {
		if errors.Is(err, repository.ErrSkip) {
			return &current, nil
		}
		return nil, err
	}

	r.counts[s.TelegramID] = r.counts[s.TelegramID].Apply(current.State, s.State)
	r.sessions[id] = s
	out := s
	return &out, nil
}

func (r *Repository) Counts(_ context.Context, telegramID int64) (repository.Counts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[telegramID], nil
}
