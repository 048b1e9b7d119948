package models

import (
	"fmt"
	"time"
)

// Booster is an immutable catalog entry.
type Booster struct {
	ID          string
	Name        string
	Description string
	Multiplier  float64
	Price       float64
	Kind        Kind
}

// ActiveBooster is a purchased instance. Name, Type and Multiplier are copied
// from the catalog at purchase time and do not follow later catalog edits.
type ActiveBooster struct {
	ID          string     `json:"id" example:"B001-1717171717171"`
	BoosterID   string     `json:"booster_id" example:"B001"`
	Name        string     `json:"name" example:"Minor Boost"`
	ActivatedAt time.Time  `json:"activated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Type        Type       `json:"type" example:"duration" enums:"oneTime,duration,permanent"`
	Multiplier  float64    `json:"multiplier" example:"1.1"`
}

// Activate instantiates b at now. The instance id is derived from the catalog
// id and the activation time in milliseconds.
func Activate(b Booster, now time.Time) ActiveBooster {
	return ActiveBooster{
		ID:          fmt.Sprintf("%s-%d", b.ID, now.UnixMilli()),
		BoosterID:   b.ID,
		Name:        b.Name,
		ActivatedAt: now,
		ExpiresAt:   b.Kind.ExpiresAt(now),
		Type:        b.Kind.Type(),
		Multiplier:  b.Multiplier,
	}
}

// IsActive reports whether the booster still counts at now.
func (a ActiveBooster) IsActive(now time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// FilterActive returns the boosters active at now, preserving order.
func FilterActive(boosters []ActiveBooster, now time.Time) []ActiveBooster {
	out := make([]ActiveBooster, 0, len(boosters))
	for _, b := range boosters {
		if b.IsActive(now) {
			out = append(out, b)
		}
	}
	return out
}

// BoosterResponse is the catalog entry as served to the mini-app.
type BoosterResponse struct {
	ID          string  `json:"id" example:"B001"`
	Name        string  `json:"name" example:"Minor Boost"`
	Description string  `json:"description" example:"A small, temporary increase in earnings."`
	Multiplier  float64 `json:"multiplier" example:"1.1"`
	Duration    int64   `json:"duration" example:"3600000"` // milliseconds, 0 when not time-bounded
	Price       float64 `json:"price" example:"5"`
	Type        Type    `json:"type" example:"duration" enums:"oneTime,duration,permanent"`
}

func (b Booster) Response() BoosterResponse {
	return BoosterResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Multiplier:  b.Multiplier,
		Duration:    LengthOf(b.Kind).Milliseconds(),
		Price:       b.Price,
		Type:        b.Kind.Type(),
	}
}

// PaymentMethod selects how a booster is paid for.
type PaymentMethod string

const (
	PaymentBalance PaymentMethod = "balance"
	PaymentWallet  PaymentMethod = "wallet"
)

// PurchaseRequest is the body of POST /boosters/purchase
type PurchaseRequest struct {
	BoosterID string        `json:"booster_id" binding:"required" example:"B001"`
	Method    PaymentMethod `json:"method" binding:"required,oneof=balance wallet" example:"balance"`
	// TxHash is the hash of a transfer already sent from a connected wallet.
	TxHash string `json:"tx_hash,omitempty"`
}

// PurchaseResponse is returned after a successful purchase
type PurchaseResponse struct {
	Success bool          `json:"success"`
	Booster ActiveBooster `json:"booster"`
	Balance float64       `json:"balance"`
	TxHash  string        `json:"tx_hash,omitempty"`
}
