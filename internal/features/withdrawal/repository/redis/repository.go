package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"kc-mini-app-backend/internal/features/withdrawal/models"
	"kc-mini-app-backend/internal/features/withdrawal/repository"
)

// A shared hash tag keeps sessions and counters in one cluster slot so
// Update can watch and write all of them inside one MULTI.
const (
	keyPrefixSession   = "{withdrawal}:session:"
	keyPrefixInFlight  = "{withdrawal}:inflight:"
	keyPrefixCompleted = "{withdrawal}:completed:"
	maxTxRetries       = 8
)

type Repository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRepository(client redis.UniversalClient, ttl time.Duration) repository.Repository {
	return &Repository{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return keyPrefixSession + id
}

func inFlightKey(telegramID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixInFlight, telegramID)
}

func completedKey(telegramID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixCompleted, telegramID)
}

// expiry of a session record in the given state. Sessions with a fee in
// flight or paid never expire, so their in-flight count cannot leak.
func (r *Repository) expiry(state models.State) time.Duration {
	switch state {
	case models.StateFeePending, models.StateFeePaid:
		return 0
	default:
		return r.ttl
	}
}

func (r *Repository) Create(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, sessionKey(session.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*models.Session, error) {
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *Repository) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*models.Session, error) {
	key := sessionKey(id)
	var result *models.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		s, err := decode(data)
		if err != nil {
			return err
		}
		before := s.State
		owner := s.TelegramID

		// The owner is only known after the read; counters watched from here
		// on still abort EXEC if another session moves them.
		if err := tx.Watch(ctx, inFlightKey(owner), completedKey(owner)).Err(); err != nil {
			return fmt.Errorf("failed to watch counters: %w", err)
		}
		counts, err := readCounts(ctx, tx, owner)
		if err != nil {
			return err
		}

		if err := fn(s, counts); err != nil {
			if errors.Is(err, repository.ErrSkip) {
				result = s
				return nil
			}
			return err
		}

		out, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		delta := repository.Delta(before, s.State)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if s.State == before {
				pipe.Set(ctx, key, out, redis.KeepTTL)
			} else {
				pipe.Set(ctx, key, out, r.expiry(s.State))
			}
			if delta.InFlight != 0 {
				pipe.IncrBy(ctx, inFlightKey(owner), int64(delta.InFlight))
			}
			if delta.Completed != 0 {
				pipe.IncrBy(ctx, completedKey(owner), int64(delta.Completed))
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = s
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
	}
	return nil, repository.ErrConflict
}

func (r *Repository) Counts(ctx context.Context, telegramID int64) (repository.Counts, error) {
	return readCounts(ctx, r.client, telegramID)
}

func readCounts(ctx context.Context, c redis.Cmdable, telegramID int64) (repository.Counts, error) {
	vals, err := c.MGet(ctx, inFlightKey(telegramID), completedKey(telegramID)).Result()
	if err != nil {
		return repository.Counts{}, fmt.Errorf("failed to get withdrawal counts: %w", err)
	}

	var n [2]int
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if n[i], err = strconv.Atoi(str); err != nil {
			return repository.Counts{}, fmt.Errorf("invalid withdrawal counter %q: %w", str, err)
		}
	}
	return repository.Counts{InFlight: n[0], Completed: n[1]}, nil
}
