package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kc-mini-app-backend/internal/common/errors"
	boostermodels "kc-mini-app-backend/internal/features/booster/models"
	"kc-mini-app-backend/internal/features/state/models"
	"kc-mini-app-backend/internal/features/state/repository/memory"
	usermodels "kc-mini-app-backend/internal/features/user/models"
)

const uid int64 = 42

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newStore(now time.Time) *Store {
	return NewStore(memory.NewRepository(), fixedClock(now))
}

func TestSetUser_StampsUpdatedAt(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s := newStore(now)
	created := now.Add(-time.Hour)

	u, err := s.SetUser(context.Background(), uid, usermodels.User{ID: "42", Balance: 3, CreatedAt: created})
	require.NoError(t, err)

	assert.Equal(t, now, u.UpdatedAt)
	assert.Equal(t, created, u.CreatedAt)
	assert.Equal(t, uid, u.TelegramID)
}

func TestUpdateUser_ShallowMerge(t *testing.T) {
	ctx := context.Background()
	start := time.UnixMilli(1_700_000_000_000)
	now := start
	s := NewStore(memory.NewRepository(), func() time.Time { return now })

	_, err := s.SetUser(ctx, uid, usermodels.User{ID: "42", Username: "old", Balance: 1, CreatedAt: start})
	require.NoError(t, err)

	now = start.Add(time.Minute)
	u, err := s.UpdateUser(ctx, uid, usermodels.UserPatch{Balance: usermodels.Ptr(10.0)})
	require.NoError(t, err)
	require.NotNil(t, u)

	assert.Equal(t, 10.0, u.Balance)
	assert.Equal(t, "old", u.Username)
	assert.Equal(t, start, u.CreatedAt)
	assert.Equal(t, now, u.UpdatedAt)
}

func TestClearAllData_ThenUpdateUserIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newStore(time.Now())

	_, err := s.SetUser(ctx, uid, usermodels.User{ID: "42", Balance: 5})
	require.NoError(t, err)
	b, _ := boostermodels.Find("B001")
	require.NoError(t, s.AddBooster(ctx, uid, boostermodels.Activate(b, time.Now())))

	require.NoError(t, s.ClearAllData(ctx, uid))

	u, err := s.UpdateUser(ctx, uid, usermodels.UserPatch{Balance: usermodels.Ptr(10.0)})
	require.NoError(t, err)
	assert.Nil(t, u)

	snap, err := s.Snapshot(ctx, uid)
	require.NoError(t, err)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.ActiveBoosters)
}

func TestAddBooster_KeepsOrderAndDuplicates(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	s := newStore(now)
	b1, _ := boostermodels.Find("B001")
	b2, _ := boostermodels.Find("B002")

	a1 := boostermodels.Activate(b1, now)
	require.NoError(t, s.AddBooster(ctx, uid, a1))
	require.NoError(t, s.AddBooster(ctx, uid, boostermodels.Activate(b2, now)))
	require.NoError(t, s.AddBooster(ctx, uid, a1))

	snap, err := s.Snapshot(ctx, uid)
	require.NoError(t, err)
	require.Len(t, snap.ActiveBoosters, 3)
	assert.Equal(t, []string{"B001", "B002", "B001"}, []string{
		snap.ActiveBoosters[0].BoosterID,
		snap.ActiveBoosters[1].BoosterID,
		snap.ActiveBoosters[2].BoosterID,
	})
}

func TestApply_SerializesConcurrentCredits(t *testing.T) {
	ctx := context.Background()
	s := newStore(time.Now())
	_, err := s.SetUser(ctx, uid, usermodels.User{ID: "42"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Apply(ctx, uid, func(snap *models.Snapshot) error {
				snap.User.Balance += 1
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 50.0, snap.User.Balance)
}

func TestApply_FnErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := newStore(time.Now())
	_, err := s.SetUser(ctx, uid, usermodels.User{ID: "42", Balance: 1})
	require.NoError(t, err)

	_, err = s.Apply(ctx, uid, func(snap *models.Snapshot) error {
		snap.User.Balance = 999
		return errors.NewInsufficientBalanceError(1, 5)
	})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInsufficientBalance))

	snap, err := s.Snapshot(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1.0, snap.User.Balance)
}

func TestSetPlan_MirrorsPlanType(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := newStore(now)
	_, err := s.SetUser(ctx, uid, usermodels.User{ID: "42", PlanType: usermodels.PlanFree})
	require.NoError(t, err)

	snap, err := s.SetPlan(ctx, uid, usermodels.NewPlan(usermodels.PlanPremium, 30, now))
	require.NoError(t, err)

	assert.Equal(t, usermodels.PlanPremium, snap.User.PlanType)
	require.NotNil(t, snap.Plan)
	assert.Equal(t, 30, *snap.Plan.PlanDuration)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newStore(time.Now())
	_, _ = s.SetUser(ctx, 1, usermodels.User{ID: "1"})
	_, _ = s.SetUser(ctx, 2, usermodels.User{ID: "2"})

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "2", all[2].User.ID)
}
