package repository

import (
	"context"
	"errors"

	"kc-mini-app-backend/internal/features/withdrawal/models"
)

var (
	ErrNotFound = errors.New("withdrawal session not found")
	// ErrSkip may be returned by an UpdateFunc to leave the session untouched.
	ErrSkip = errors.New("skip write")
	// ErrConflict means the session kept changing under a transaction.
	ErrConflict = errors.New("withdrawal session update conflict")
)

// Counts are the owner's sessions past the fee step. InFlight covers
// fee_pending and fee_paid.
type Counts struct {
	InFlight  int
	Completed int
}

func (c Counts) add(d Counts) Counts {
	return Counts{InFlight: c.InFlight + d.InFlight, Completed: c.Completed + d.Completed}
}

// UpdateFunc mutates a session in place and may run more than once. counts
// are read in the same transaction as the session, so a rule enforced on
// them cannot be raced by another session of the same owner.
type UpdateFunc func(s *models.Session, counts Counts) error

type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	// Get returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Update applies fn atomically. A state change adjusts the owner's
	// counts in the same write.
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error)
	Counts(ctx context.Context, telegramID int64) (Counts, error)
}

// Delta is the change of the owner's counts when a session moves from
// before to after.
func Delta(before, after models.State) Counts {
	a, b := weight(after), weight(before)
	return Counts{InFlight: a.InFlight - b.InFlight, Completed: a.Completed - b.Completed}
}

// Apply returns c changed by the transition before -> after.
func (c Counts) Apply(before, after models.State) Counts {
	return c.add(Delta(before, after))
}

func weight(s models.State) Counts {
	switch s {
	case models.StateFeePending, models.StateFeePaid:
		return Counts{InFlight: 1}
	case models.StateCompleted:
		return Counts{Completed: 1}
	default:
		return Counts{}
	}
}
