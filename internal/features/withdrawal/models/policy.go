package models

import (
	"encoding/json"
	"math"

	"kc-mini-app-backend/internal/common/errors"
	usermodels "kc-mini-app-backend/internal/features/user/models"
)

// MinimumAmount applies to every plan.
const MinimumAmount = 100.0

// Limits are the withdrawal terms of a plan.
type Limits struct {
	Max        float64 // +Inf when unlimited
	FeePercent float64
	// OneTime plans allow a single completed withdrawal.
	OneTime bool
}

// MarshalJSON renders an unlimited maximum as null.
func (l Limits) MarshalJSON() ([]byte, error) {
	out := struct {
		Max        *float64 `json:"max"`
		FeePercent float64  `json:"fee_percent"`
		OneTime    bool     `json:"one_time"`
	}{FeePercent: l.FeePercent, OneTime: l.OneTime}
	if !math.IsInf(l.Max, 1) {
		out.Max = &l.Max
	}
	return json.Marshal(out)
}

func (l Limits) Unlimited() bool {
	return math.IsInf(l.Max, 1)
}

// Fee is the fee for amount in balance units.
func (l Limits) Fee(amount float64) float64 {
	return amount * l.FeePercent / 100
}

var planLimits = map[usermodels.PlanType]Limits{
	usermodels.PlanFree:    {Max: 100, FeePercent: 30, OneTime: true},
	usermodels.PlanBasic:   {Max: 500, FeePercent: 20},
	usermodels.PlanPremium: {Max: math.Inf(1), FeePercent: 10},
}

// LimitsFor falls back to the free plan for unknown plans.
func LimitsFor(plan usermodels.PlanType) Limits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[usermodels.PlanFree]
}

// Policy holds the plan-independent minimum.
type Policy struct {
	Minimum float64
}

func DefaultPolicy() Policy {
	return Policy{Minimum: MinimumAmount}
}

// Bounds checks amount against the minimum and the plan maximum.
func (p Policy) Bounds(plan usermodels.PlanType, amount float64) error {
	if math.IsNaN(amount) || amount < p.Minimum {
		return errors.NewBelowMinimumError(p.Minimum, amount)
	}
	limits := LimitsFor(plan)
	if amount > limits.Max {
		return errors.NewAboveMaximumError(limits.Max, amount)
	}
	return nil
}

// Check is the confirmation precondition: amount within bounds and the fee
// paid. It has no side effects.
func (p Policy) Check(plan usermodels.PlanType, amount float64, session *Session) error {
	if err := p.Bounds(plan, amount); err != nil {
		return err
	}
	if session.State != StateFeePaid {
		return errors.NewFeeNotPaidError(session.ID)
	}
	return nil
}
