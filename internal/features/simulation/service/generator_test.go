package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boostermodels "kc-mini-app-backend/internal/features/booster/models"
	"kc-mini-app-backend/internal/features/simulation/models"
	"kc-mini-app-backend/internal/features/state/repository/memory"
	stateservice "kc-mini-app-backend/internal/features/state/service"
	usermodels "kc-mini-app-backend/internal/features/user/models"
)

const uid int64 = 7

var now = time.UnixMilli(1_700_000_000_000)

type fixedStream struct {
	values []float64
	i      int
}

func (s *fixedStream) Next() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func (s *fixedStream) Reset() { s.i = 0 }

func newGenerator(t *testing.T, user *usermodels.User) (*Generator, *stateservice.Store) {
	t.Helper()
	store := stateservice.NewStore(memory.NewRepository(), func() time.Time { return now })
	if user != nil {
		_, err := store.SetUser(context.Background(), uid, *user)
		require.NoError(t, err)
	}
	gen := NewGenerator(store, Config{
		WindowSize: 100,
		MaxBatch:   50,
		Params:     models.DefaultParams(),
		NewSource:  func() Source { return NewSource(1, 1) },
	})
	return gen, store
}

func balance(t *testing.T, store *stateservice.Store) float64 {
	t.Helper()
	snap, err := store.Snapshot(context.Background(), uid)
	require.NoError(t, err)
	require.NotNil(t, snap.User)
	return snap.User.Balance
}

func TestTick_CreditsExactlyValueTimesMultiplier(t *testing.T) {
	gen, store := newGenerator(t, &usermodels.User{ID: "7", PlanType: usermodels.PlanPremium, Balance: 10, CreatedAt: now})
	booster, _ := boostermodels.Find("B002")
	require.NoError(t, store.AddBooster(context.Background(), uid, boostermodels.Activate(booster, now)))

	delta, err := gen.Tick(context.Background(), uid, models.ProfileRandom, 2)
	require.NoError(t, err)

	assert.InDelta(t, 2*0.25*1.3, delta, 1e-12)
	assert.InDelta(t, 10+delta, balance(t, store), 1e-12)
}

func TestBatch_PointsMatchBalanceDelta(t *testing.T) {
	gen, store := newGenerator(t, &usermodels.User{ID: "7", PlanType: usermodels.PlanBasic, CreatedAt: now})
	stream := &fixedStream{values: []float64{1, 0.5, -0.25}}

	points, err := gen.Batch(context.Background(), uid, models.ProfileRandom, stream, 3, now)
	require.NoError(t, err)
	require.Len(t, points, 3)

	sum := 0.0
	for i, p := range points {
		assert.Equal(t, now.UnixMilli()+int64(i)*1000, p.Timestamp)
		sum += p.Value
	}
	assert.InDelta(t, 0.15, points[0].Value, 1e-12)
	assert.InDelta(t, sum, balance(t, store), 1e-12)
}

func TestBatch_NonNumericBecomesZero(t *testing.T) {
	gen, store := newGenerator(t, &usermodels.User{ID: "7", PlanType: usermodels.PlanPremium, Balance: 3, CreatedAt: now})
	stream := &fixedStream{values: []float64{math.NaN(), math.Inf(1)}}

	points, err := gen.Batch(context.Background(), uid, models.ProfileMEV, stream, 2, now)
	require.NoError(t, err)

	assert.Equal(t, 0.0, points[0].Value)
	assert.Equal(t, 0.0, points[1].Value)
	assert.Equal(t, 3.0, balance(t, store))
}

func TestBatch_WithoutUserDoesNotCreateOne(t *testing.T) {
	gen, store := newGenerator(t, nil)

	points, err := gen.Batch(context.Background(), uid, models.ProfileRandom, &fixedStream{values: []float64{1}}, 2, now)
	require.NoError(t, err)

	assert.InDelta(t, 0.001, points[0].Value, 1e-12)
	snap, err := store.Snapshot(context.Background(), uid)
	require.NoError(t, err)
	assert.Nil(t, snap.User)
}

func TestBatch_StopsOnCancel(t *testing.T) {
	gen, store := newGenerator(t, &usermodels.User{ID: "7", CreatedAt: now})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	points, err := gen.Batch(ctx, uid, models.ProfileRandom, &fixedStream{values: []float64{1}}, 5, now)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, points)
	assert.Equal(t, 0.0, balance(t, store))
}

func TestBatch_ScalperWithUnitMultiplierStaysInBounds(t *testing.T) {
	// premium 0.25 x permanent boosters 2 x 2 = 1
	gen, store := newGenerator(t, &usermodels.User{ID: "7", PlanType: usermodels.PlanPremium, CreatedAt: now})
	for i := 0; i < 2; i++ {
		require.NoError(t, store.AddBooster(context.Background(), uid, boostermodels.ActiveBooster{Multiplier: 2}))
	}
	params := models.DefaultScalperParams()

	for seed := uint64(0); seed < 10; seed++ {
		stream := NewScalperStream(NewSource(seed, seed), params)
		points, err := gen.Batch(context.Background(), uid, models.ProfileScalper, stream, 100, now)
		require.NoError(t, err)
		for _, p := range points {
			assert.GreaterOrEqual(t, p.Value, params.MinValue)
			assert.LessOrEqual(t, p.Value, params.MaxValue)
		}
	}
}

func TestSimulated_DefaultsAndWindow(t *testing.T) {
	gen, _ := newGenerator(t, &usermodels.User{ID: "7", PlanType: usermodels.PlanFree, CreatedAt: now})

	resp, err := gen.Simulated(context.Background(), uid, models.ProfileMEV, 0)
	require.NoError(t, err)
	require.Len(t, resp.Points, DefaultCount)
	assert.Equal(t, now.Add(-10*time.Second).UnixMilli(), resp.Points[0].Timestamp)
	require.NotNil(t, resp.Balance)
	assert.Equal(t, 0.001, resp.Multiplier)

	resp, err = gen.Simulated(context.Background(), uid, models.ProfileRandom, 1000)
	require.NoError(t, err)
	assert.Len(t, resp.Points, 50)

	assert.Len(t, gen.Window(uid), 60)

	gen.Forget(uid)
	assert.Empty(t, gen.Window(uid))
}

func TestEvictIdle_DropsOnlyUntouchedSessions(t *testing.T) {
	clock := now
	store := stateservice.NewStore(memory.NewRepository(), func() time.Time { return clock })
	_, err := store.SetUser(context.Background(), uid, usermodels.User{ID: "7", PlanType: usermodels.PlanFree, CreatedAt: now})
	require.NoError(t, err)
	gen := NewGenerator(store, Config{
		WindowSize: 100,
		IdleAfter:  time.Hour,
		Params:     models.DefaultParams(),
		NewSource:  func() Source { return NewSource(1, 1) },
	})
	ctx := context.Background()

	_, err = gen.Simulated(ctx, uid, models.ProfileMEV, 5)
	require.NoError(t, err)
	_, err = gen.Simulated(ctx, uid+1, models.ProfileMEV, 5)
	require.NoError(t, err)

	clock = clock.Add(50 * time.Minute)
	assert.Zero(t, gen.EvictIdle())
	_, err = gen.Simulated(ctx, uid, models.ProfileMEV, 5)
	require.NoError(t, err)

	clock = clock.Add(20 * time.Minute)
	assert.Equal(t, 1, gen.EvictIdle())
	assert.Len(t, gen.sessions, 1)
	assert.Contains(t, gen.sessions, uid)
	assert.Len(t, gen.Window(uid), 10)

	clock = clock.Add(2 * time.Hour)
	assert.Equal(t, 1, gen.EvictIdle())
	assert.Empty(t, gen.sessions)
}
