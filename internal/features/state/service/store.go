package service

import (
	"context"
	"time"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
	boostermodels "kc-mini-app-backend/internal/features/booster/models"
	"kc-mini-app-backend/internal/features/state/models"
	"kc-mini-app-backend/internal/features/state/repository"
	usermodels "kc-mini-app-backend/internal/features/user/models"
	"kc-mini-app-backend/internal/metrics"
)

// Store owns the per-user snapshot. Every mutation, including balance
// credits and debits made by other features, goes through Apply.
type Store struct {
	repo repository.Repository
	now  func() time.Time
}

func NewStore(repo repository.Repository, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{repo: repo, now: now}
}

// Now is the store clock; features stamp times with it so tests can pin it.
func (s *Store) Now() time.Time {
	return s.now()
}

// Apply is the single read-modify-write entrypoint. fn sees the latest
// stored snapshot and may run more than once under contention.
func (s *Store) Apply(ctx context.Context, telegramID int64, fn repository.UpdateFunc) (*models.Snapshot, error) {
	start := time.Now()
	snap, err := s.repo.Update(ctx, telegramID, fn)
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			metrics.ObserveStoreApply(time.Since(start), nil)
			return nil, err
		}
		metrics.ObserveStoreApply(time.Since(start), err)
		return nil, errors.NewStorageError("apply", err).WithUserID(telegramID)
	}
	metrics.ObserveStoreApply(time.Since(start), nil)
	return snap, nil
}

// Snapshot returns {user, activeBoosters, plan}. Boosters are returned as
// stored, expired ones included.
func (s *Store) Snapshot(ctx context.Context, telegramID int64) (*models.Snapshot, error) {
	snap, err := s.repo.Get(ctx, telegramID)
	if err != nil {
		return nil, errors.NewStorageError("get", err).WithUserID(telegramID)
	}
	return snap, nil
}

// SetUser replaces the user wholesale.
func (s *Store) SetUser(ctx context.Context, telegramID int64, user usermodels.User) (*usermodels.User, error) {
	snap, err := s.Apply(ctx, telegramID, func(snap *models.Snapshot) error {
		u := user
		u.TelegramID = telegramID
		u.UpdatedAt = s.now()
		snap.User = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap.User, nil
}

// UpdateUser shallow-merges patch into the stored user. Without a stored
// user it does nothing and returns nil, nil.
func (s *Store) UpdateUser(ctx context.Context, telegramID int64, patch usermodels.UserPatch) (*usermodels.User, error) {
	snap, err := s.Apply(ctx, telegramID, func(snap *models.Snapshot) error {
		if !snap.HasUser() {
			return repository.ErrSkip
		}
		patch.MergeInto(snap.User)
		snap.User.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !snap.HasUser() {
		logger.Debug().Int64("user_id", telegramID).Msg("UpdateUser ignored: no user loaded")
		return nil, nil
	}
	return snap.User, nil
}

// AddBooster appends without checking for duplicate instance ids.
func (s *Store) AddBooster(ctx context.Context, telegramID int64, booster boostermodels.ActiveBooster) error {
	_, err := s.Apply(ctx, telegramID, func(snap *models.Snapshot) error {
		snap.ActiveBoosters = append(snap.ActiveBoosters, booster)
		return nil
	})
	return err
}

// SetPlan records the plan and mirrors its type onto the user.
func (s *Store) SetPlan(ctx context.Context, telegramID int64, plan usermodels.Plan) (*models.Snapshot, error) {
	return s.Apply(ctx, telegramID, func(snap *models.Snapshot) error {
		p := plan
		snap.Plan = &p
		if snap.HasUser() {
			snap.User.PlanType = plan.PlanType
			snap.User.UpdatedAt = s.now()
		}
		return nil
	})
}

// ClearAllData resets the user to absent and the boosters to empty.
func (s *Store) ClearAllData(ctx context.Context, telegramID int64) error {
	if err := s.repo.Delete(ctx, telegramID); err != nil {
		return errors.NewStorageError("clear", err).WithUserID(telegramID)
	}
	logger.Info().Int64("user_id", telegramID).Msg("Session data cleared")
	return nil
}

// List returns every stored snapshot, used by admin listing and cron jobs.
func (s *Store) List(ctx context.Context) (map[int64]*models.Snapshot, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewStorageError("list", err)
	}
	return all, nil
}
