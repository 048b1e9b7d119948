package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindBoosterPurchase Kind = "booster_purchase"
	KindWithdrawalFee   Kind = "withdrawal_fee"
	KindWithdrawal      Kind = "withdrawal"
	// KindCompensation marks money taken by an external payment whose
	// follow-up store mutation could not be applied.
	KindCompensation Kind = "compensation"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

type Currency string

const (
	CurrencyBalance Currency = "USD"
	CurrencyTON     Currency = "TON"
)

// Entry is one row of the transaction history.
type Entry struct {
	ID         string          `json:"id" example:"3f0c6b1e-8d4a-4b7e-9a55-1d2c3b4a5f60"`
	TelegramID int64           `json:"telegram_id" example:"123456789"`
	Kind       Kind            `json:"kind" example:"booster_purchase" enums:"booster_purchase,withdrawal_fee,withdrawal,compensation"`
	Status     Status          `json:"status" example:"completed" enums:"completed,pending,failed"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"5"`
	Currency   Currency        `json:"currency" example:"USD"`
	Reference  string          `json:"reference,omitempty" example:"B001-1717171717171"`
	TxHash     string          `json:"tx_hash,omitempty"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TransactionsResponse is returned by GET /transactions
type TransactionsResponse struct {
	Transactions []*Entry `json:"transactions"`
	Limit        int      `json:"limit" example:"50"`
	Offset       int      `json:"offset" example:"0"`
}
