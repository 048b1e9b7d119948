package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kc-mini-app-backend/internal/common/errors"
	usermodels "kc-mini-app-backend/internal/features/user/models"
)

func TestLimitsFor(t *testing.T) {
	assert.Equal(t, Limits{Max: 100, FeePercent: 30, OneTime: true}, LimitsFor(usermodels.PlanFree))
	assert.Equal(t, Limits{Max: 500, FeePercent: 20}, LimitsFor(usermodels.PlanBasic))
	assert.True(t, LimitsFor(usermodels.PlanPremium).Unlimited())
	assert.Equal(t, LimitsFor(usermodels.PlanFree), LimitsFor("platinum"))
	assert.Equal(t, 30.0, LimitsFor(usermodels.PlanFree).Fee(100))
}

func TestLimits_JSONUnlimitedIsNull(t *testing.T) {
	data, err := json.Marshal(LimitsFor(usermodels.PlanPremium))
	require.NoError(t, err)
	assert.JSONEq(t, `{"max":null,"fee_percent":10,"one_time":false}`, string(data))

	data, err = json.Marshal(LimitsFor(usermodels.PlanFree))
	require.NoError(t, err)
	assert.JSONEq(t, `{"max":100,"fee_percent":30,"one_time":true}`, string(data))
}

func TestCheck(t *testing.T) {
	p := DefaultPolicy()
	paid := &Session{ID: "s", State: StateFeePaid}

	tests := []struct {
		name    string
		plan    usermodels.PlanType
		amount  float64
		session *Session
		code    errors.ErrorCode
	}{
		{"below minimum on free", usermodels.PlanFree, 50, paid, errors.ErrCodeBelowMinimum},
		{"below minimum on premium", usermodels.PlanPremium, 80, paid, errors.ErrCodeBelowMinimum},
		{"above free maximum", usermodels.PlanFree, 150, paid, errors.ErrCodeAboveMaximum},
		{"above basic maximum", usermodels.PlanBasic, 501, paid, errors.ErrCodeAboveMaximum},
		{"fee not paid", usermodels.PlanBasic, 200, &Session{ID: "s", State: StateIdle}, errors.ErrCodeFeeNotPaid},
		{"fee pending", usermodels.PlanBasic, 200, &Session{ID: "s", State: StateFeePending}, errors.ErrCodeFeeNotPaid},
		{"nan", usermodels.PlanBasic, math.NaN(), paid, errors.ErrCodeBelowMinimum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Check(tt.plan, tt.amount, tt.session)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}

	assert.NoError(t, p.Check(usermodels.PlanFree, 100, paid))
	assert.NoError(t, p.Check(usermodels.PlanPremium, 1e9, paid))
}
