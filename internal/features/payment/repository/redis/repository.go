package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefixTxHash = "payment:tx_hash:"

type Repository struct {
	client redis.UniversalClient
}

func NewRepository(client redis.UniversalClient) *Repository {
	return &Repository{client: client}
}

// ClaimTxHash stores the claim without expiry; a hash stays spent forever.
func (r *Repository) ClaimTxHash(ctx context.Context, hash string, telegramID int64, operation string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefixTxHash+hash, fmt.Sprintf("%d:%s", telegramID, operation), 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim tx hash: %w", err)
	}
	return ok, nil
}
