package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kc-mini-app-backend/internal/features/ledger/models"
	"kc-mini-app-backend/internal/features/ledger/repository/memory"
)

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	clock := now
	s := NewService(memory.NewRepository(), func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		clock = now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Record(ctx, &models.Entry{
			TelegramID: 1,
			Kind:       models.KindBoosterPurchase,
			Status:     models.StatusCompleted,
			Amount:     decimal.NewFromInt(int64(i + 1)),
			Currency:   models.CurrencyBalance,
		}))
	}
	require.NoError(t, s.Record(ctx, &models.Entry{TelegramID: 2, Amount: decimal.NewFromInt(9)}))

	entries, err := s.List(ctx, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "3", entries[0].Amount.String())
	assert.NotEmpty(t, entries[0].ID)

	page, err := s.List(ctx, 1, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "2", page[0].Amount.String())

	empty, err := s.List(ctx, 1, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
