package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kc-mini-app-backend/internal/features/tonproof/models"
)

const (
	keyPrefixProof   = "ton_proof:"
	keyPrefixPayload = "ton_payload:"
	proofExpiration  = 30 * 24 * time.Hour // 30 дней
)

type Repository struct {
	client redis.UniversalClient
}

func NewRepository(client redis.UniversalClient) *Repository {
	return &Repository{client: client}
}

func payloadKey(userID int64, payload string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefixPayload, userID, payload)
}

func (r *Repository) SavePayload(ctx context.Context, userID int64, payload string, ttl time.Duration) error {
	if err := r.client.Set(ctx, payloadKey(userID, payload), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save payload to redis: %w", err)
	}
	return nil
}

func (r *Repository) TakePayload(ctx context.Context, userID int64, payload string) (bool, error) {
	n, err := r.client.Del(ctx, payloadKey(userID, payload)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to take payload from redis: %w", err)
	}
	return n == 1, nil
}

func (r *Repository) SaveProof(ctx context.Context, record *models.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal proof: %w", err)
	}

	key := fmt.Sprintf("%s%d", keyPrefixProof, record.UserID)
	if err := r.client.Set(ctx, key, data, proofExpiration).Err(); err != nil {
		return fmt.Errorf("failed to save proof to redis: %w", err)
	}
	return nil
}

func (r *Repository) GetProof(ctx context.Context, userID int64) (*models.Record, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf("%s%d", keyPrefixProof, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proof from redis: %w", err)
	}

	var record models.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proof: %w", err)
	}
	return &record, nil
}
