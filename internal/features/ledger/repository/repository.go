package repository

import (
	"context"

	"kc-mini-app-backend/internal/features/ledger/models"
)

type Repository interface {
	Append(ctx context.Context, entry *models.Entry) error
	// ListByUser returns entries newest first.
	ListByUser(ctx context.Context, telegramID int64, limit, offset int) ([]*models.Entry, error)
}
