package repository

import (
	"context"
	"errors"

	"kc-mini-app-backend/internal/features/state/models"
)

// ErrSkip may be returned by an UpdateFunc to leave the record untouched.
// Update then reports the current snapshot and no error.
var ErrSkip = errors.New("skip write")

// ErrConflict means the record kept changing under a transaction.
var ErrConflict = errors.New("snapshot update conflict")

// UpdateFunc mutates the snapshot in place. It may run more than once when a
// concurrent writer wins, so it must not have side effects outside s.
type UpdateFunc func(s *models.Snapshot) error

type Repository interface {
	// Get returns an empty snapshot when nothing is stored for the user.
	Get(ctx context.Context, telegramID int64) (*models.Snapshot, error)

	// Update reads the current snapshot, applies fn and writes the result
	// atomically with respect to other Update calls for the same user.
	Update(ctx context.Context, telegramID int64, fn UpdateFunc) (*models.Snapshot, error)

	Delete(ctx context.Context, telegramID int64) error

	// List returns every stored snapshot keyed by telegram id.
	List(ctx context.Context) (map[int64]*models.Snapshot, error)
}
