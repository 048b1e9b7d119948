package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"kc-mini-app-backend/internal/features/ledger/models"
	"kc-mini-app-backend/internal/features/ledger/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Append(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO ledger_entries
			(id, telegram_id, kind, status, amount, currency, reference, tx_hash, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.TelegramID, entry.Kind, entry.Status, entry.Amount.String(),
		entry.Currency, entry.Reference, entry.TxHash, entry.Note, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, telegramID int64, limit, offset int) ([]*models.Entry, error) {
	query := `
		SELECT id, telegram_id, kind, status, amount, currency, reference, tx_hash, note, created_at
		FROM ledger_entries
		WHERE telegram_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, telegramID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0, limit)
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(
			&e.ID, &e.TelegramID, &e.Kind, &e.Status, &e.Amount,
			&e.Currency, &e.Reference, &e.TxHash, &e.Note, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
