package multiplier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	boostermodels "kc-mini-app-backend/internal/features/booster/models"
	usermodels "kc-mini-app-backend/internal/features/user/models"
)

var now = time.UnixMilli(1_700_000_000_000)

func userWith(plan usermodels.PlanType, age time.Duration) *usermodels.User {
	return &usermodels.User{PlanType: plan, CreatedAt: now.Add(-age)}
}

func TestResolve_BaseConstants(t *testing.T) {
	tests := []struct {
		plan usermodels.PlanType
		want float64
	}{
		{usermodels.PlanPremium, 0.25},
		{usermodels.PlanBasic, 0.15},
		{usermodels.PlanFree, 0.001},
		{"gold", 0.001},
	}
	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(userWith(tt.plan, 0), nil, now))
		})
	}
}

func TestResolve_AbsentUser(t *testing.T) {
	assert.Equal(t, FreeRate, Resolve(nil, nil, now))
}

func TestTimeFactor_Clamped(t *testing.T) {
	assert.Equal(t, 1.0, TimeFactor(&usermodels.User{}, now))
	assert.InDelta(t, 1.02, TimeFactor(userWith(usermodels.PlanFree, week), now), 1e-12)
	assert.InDelta(t, 1.30, TimeFactor(userWith(usermodels.PlanFree, 15*week), now), 1e-12)
	assert.Equal(t, 1.30, TimeFactor(userWith(usermodels.PlanFree, 40*week), now))
	assert.Equal(t, 1.0, TimeFactor(userWith(usermodels.PlanFree, -week), now))
}

func TestTimeFactor_Monotonic(t *testing.T) {
	prev := 0.0
	for days := 0; days <= 200; days += 3 {
		f := TimeFactor(userWith(usermodels.PlanFree, time.Duration(days)*24*time.Hour), now)
		assert.GreaterOrEqual(t, f, prev)
		prev = f
	}
}

func TestBoosterFactor(t *testing.T) {
	later := now.Add(time.Hour)
	boosters := []boostermodels.ActiveBooster{
		{Multiplier: 1.1, ExpiresAt: &later},
		{Multiplier: 1.3},
	}

	assert.Equal(t, 1.0, BoosterFactor(nil, now))
	assert.InDelta(t, 1.43, BoosterFactor(boosters, now), 1e-12)
}

func TestBoosterFactor_ExpiryBoundary(t *testing.T) {
	expired := now.Add(-time.Millisecond)
	live := now.Add(1000 * time.Millisecond)

	assert.Equal(t, 1.0, BoosterFactor([]boostermodels.ActiveBooster{{Multiplier: 2, ExpiresAt: &expired}}, now))
	assert.Equal(t, 2.0, BoosterFactor([]boostermodels.ActiveBooster{{Multiplier: 2, ExpiresAt: &live}}, now))
}

func TestResolve_OneTimeBoosterLapses(t *testing.T) {
	b, _ := boostermodels.Find("B004")
	active := boostermodels.Activate(b, now)
	u := userWith(usermodels.PlanPremium, 0)

	assert.InDelta(t, 0.25, Resolve(u, []boostermodels.ActiveBooster{active}, now.Add(time.Millisecond)), 1e-9)
}

func TestExplain_Total(t *testing.T) {
	b := Explain(userWith(usermodels.PlanBasic, 15*week), []boostermodels.ActiveBooster{{Multiplier: 2}}, now)

	assert.Equal(t, 0.15, b.Plan)
	assert.InDelta(t, 1.30, b.Time, 1e-12)
	assert.Equal(t, 2.0, b.Booster)
	assert.InDelta(t, 0.39, b.Total, 1e-12)
}
