package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/features/ledger/models"
	"kc-mini-app-backend/internal/features/ledger/repository"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Service struct {
	repo repository.Repository
	now  func() time.Time
}

func NewService(repo repository.Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Record stores entry, assigning an id and creation time when missing.
func (s *Service) Record(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return errors.NewDatabaseError("record ledger entry", err).WithUserID(entry.TelegramID)
	}

	logger.Info().
		Int64("user_id", entry.TelegramID).
		Str("kind", string(entry.Kind)).
		Str("status", string(entry.Status)).
		Str("amount", entry.Amount.String()).
		Str("currency", string(entry.Currency)).
		Str("tx_hash", entry.TxHash).
		Msg("Ledger entry recorded")
	return nil
}

// List clamps limit to [1, MaxLimit] and offset to >= 0.
func (s *Service) List(ctx context.Context, telegramID int64, limit, offset int) ([]*models.Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.repo.ListByUser(ctx, telegramID, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("list ledger entries", err).WithUserID(telegramID)
	}
	return entries, nil
}
