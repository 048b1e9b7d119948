// Package multiplier combines plan tier, account age and active boosters
// into the scalar applied to every simulated value.
package multiplier

import (
	"math"
	"time"

	boostermodels "kc-mini-app-backend/internal/features/booster/models"
	usermodels "kc-mini-app-backend/internal/features/user/models"
)

const (
	PremiumRate = 0.25
	BasicRate   = 0.15
	FreeRate    = 0.001

	// MaxTimeBonus caps the age bonus at +30%.
	MaxTimeBonus = 0.30
	// TimeGrowthRate is the bonus gained per week of account age.
	TimeGrowthRate = 0.02

	week = 7 * 24 * time.Hour
)

// Breakdown is the resolved multiplier with its factors.
type Breakdown struct {
	Plan    float64 `json:"plan" example:"0.25"`
	Time    float64 `json:"time" example:"1.04"`
	Booster float64 `json:"booster" example:"1.43"`
	Total   float64 `json:"total" example:"0.3718"`
}

// PlanFactor is the base rate of the user's plan; an absent user or an
// unknown plan gets the free rate.
func PlanFactor(user *usermodels.User) float64 {
	if user == nil {
		return FreeRate
	}
	switch user.PlanType {
	case usermodels.PlanPremium:
		return PremiumRate
	case usermodels.PlanBasic:
		return BasicRate
	default:
		return FreeRate
	}
}

// TimeFactor grows 2% per week of account age up to 1.30. Accounts without
// a creation time, and creation times in the future, get exactly 1.
func TimeFactor(user *usermodels.User, now time.Time) float64 {
	if user == nil || user.CreatedAt.IsZero() {
		return 1
	}
	weeks := float64(now.Sub(user.CreatedAt)) / float64(week)
	if weeks < 0 {
		weeks = 0
	}
	return 1 + math.Min(weeks*TimeGrowthRate, MaxTimeBonus)
}

// BoosterFactor multiplies the boosters active at now. Empty product is 1.
func BoosterFactor(boosters []boostermodels.ActiveBooster, now time.Time) float64 {
	factor := 1.0
	for _, b := range boosters {
		if b.IsActive(now) {
			factor *= b.Multiplier
		}
	}
	return factor
}

func Resolve(user *usermodels.User, boosters []boostermodels.ActiveBooster, now time.Time) float64 {
	return Explain(user, boosters, now).Total
}

func Explain(user *usermodels.User, boosters []boostermodels.ActiveBooster, now time.Time) Breakdown {
	b := Breakdown{
		Plan:    PlanFactor(user),
		Time:    TimeFactor(user, now),
		Booster: BoosterFactor(boosters, now),
	}
	b.Total = b.Plan * b.Time * b.Booster
	return b
}
