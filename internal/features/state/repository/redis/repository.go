package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/features/state/models"
	"kc-mini-app-backend/internal/features/state/repository"
)

const maxTxRetries = 16

type Repository struct {
	client    redis.UniversalClient
	namespace string
}

func NewRepository(client redis.UniversalClient, namespace string) repository.Repository {
	return &Repository{client: client, namespace: namespace}
}

func (r *Repository) key(telegramID int64) string {
	return fmt.Sprintf("%s:%d", r.namespace, telegramID)
}

func (r *Repository) Get(ctx context.Context, telegramID int64) (*models.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key(telegramID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return models.Decode(data)
}

// Update runs fn inside a WATCH/MULTI transaction and retries when another
// writer touched the key between the read and the EXEC.
func (r *Repository) Update(ctx context.Context, telegramID int64, fn repository.UpdateFunc) (*models.Snapshot, error) {
	key := r.key(telegramID)
	var result *models.Snapshot

	txf := func(tx *redis.Tx) error {
		snap := models.Empty()
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to get snapshot: %w", err)
		default:
			if snap, err = models.Decode(data); err != nil {
				return err
			}
		}

		if err := fn(snap); err != nil {
			if errors.Is(err, repository.ErrSkip) {
				result = snap
				return nil
			}
			return err
		}

		out, err := snap.Encode()
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = snap
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		logger.Debug().
			Int64("user_id", telegramID).
			Int("attempt", attempt+1).
			Msg("Snapshot changed during transaction, retrying")
	}

	return nil, repository.ErrConflict
}

func (r *Repository) Delete(ctx context.Context, telegramID int64) error {
	return r.client.Del(ctx, r.key(telegramID)).Err()
}

func (r *Repository) List(ctx context.Context) (map[int64]*models.Snapshot, error) {
	out := make(map[int64]*models.Snapshot)

	// SCAN on a cluster client only covers one node.
	if cluster, ok := r.client.(*redis.ClusterClient); ok {
		var mu sync.Mutex
		err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return r.scan(ctx, node, func(id int64, snap *models.Snapshot) {
				mu.Lock()
				out[id] = snap
				mu.Unlock()
			})
		})
		return out, err
	}

	err := r.scan(ctx, r.client, func(id int64, snap *models.Snapshot) {
		out[id] = snap
	})
	return out, err
}

func (r *Repository) scan(ctx context.Context, client redis.Cmdable, emit func(int64, *models.Snapshot)) error {
	prefix := r.namespace + ":"

	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
		if err != nil {
			continue
		}

		data, err := client.Get(ctx, key).Bytes()
		if err != nil {
			// удалён между SCAN и GET
			continue
		}

		snap, err := models.Decode(data)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Skipping unreadable snapshot")
			continue
		}
		emit(id, snap)
	}

	return iter.Err()
}
