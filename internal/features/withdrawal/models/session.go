package models

import (
	"time"

	usermodels "kc-mini-app-backend/internal/features/user/models"
)

// State of a withdrawal session: idle -> fee_pending -> fee_paid -> completed.
type State string

const (
	StateIdle       State = "idle"
	StateFeePending State = "fee_pending"
	StateFeePaid    State = "fee_paid"
	StateCompleted  State = "completed"
)

type Session struct {
	ID          string              `json:"id" example:"0d6f7c1a-5b7e-4a57-9a1f-3c2e8d9b4f11"`
	TelegramID  int64               `json:"telegram_id" example:"123456789"`
	Amount      float64             `json:"amount" example:"150"`
	Fee         float64             `json:"fee" example:"30"`
	PlanType    usermodels.PlanType `json:"plan_type" example:"basic"`
	State       State               `json:"state" example:"idle" enums:"idle,fee_pending,fee_paid,completed"`
	FeeTxHash   string              `json:"fee_tx_hash,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// StartRequest is the body of POST /withdrawals
type StartRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"150"`
}

// PayFeeRequest is the body of POST /withdrawals/{id}/fee
type PayFeeRequest struct {
	TxHash string `json:"tx_hash,omitempty"`
}

// LimitsResponse is returned by GET /withdrawals/limits
type LimitsResponse struct {
	PlanType             usermodels.PlanType `json:"plan_type" example:"free"`
	Minimum              float64             `json:"minimum" example:"100"`
	Limits               Limits              `json:"limits"`
	CompletedWithdrawals int                 `json:"completed_withdrawals" example:"0"`
	Balance              float64             `json:"balance" example:"120.5"`
}
