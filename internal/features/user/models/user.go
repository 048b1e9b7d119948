package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanBasic   PlanType = "basic"
	PlanPremium PlanType = "premium"
)

func (p PlanType) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPremium:
		return true
	}
	return false
}

// User is the session profile. Balance changes only through the state store.
type User struct {
	ID                 string     `json:"id"`
	TelegramID         int64      `json:"telegram_id"`
	FirstName          string     `json:"first_name,omitempty"`
	LastName           string     `json:"last_name,omitempty"`
	Username           string     `json:"username,omitempty"`
	Image              string     `json:"image,omitempty"`
	Role               Role       `json:"role"`
	Balance            float64    `json:"balance"`
	PlanType           PlanType   `json:"plan_type"`
	Mnemonic           string     `json:"mnemonic,omitempty"`
	WalletKitConnected bool       `json:"wallet_kit_connected"`
	WalletAddress      string     `json:"wallet_address,omitempty"`
	ReferrerID         *int64     `json:"referrer_id,omitempty"`
	Banned             bool       `json:"banned"`
	BanReason          string     `json:"ban_reason,omitempty"`
	BanExpires         *time.Time `json:"ban_expires,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// HasWallet reports whether any payment wallet is linked.
func (u *User) HasWallet() bool {
	return u.Mnemonic != "" || u.WalletKitConnected
}

// IsBanned honours BanExpires; a ban without expiry is permanent.
func (u *User) IsBanned(now time.Time) bool {
	if !u.Banned {
		return false
	}
	return u.BanExpires == nil || u.BanExpires.After(now)
}

// UserPatch is a shallow partial update. Nil fields are left untouched.
type UserPatch struct {
	FirstName          *string
	LastName           *string
	Username           *string
	Image              *string
	Role               *Role
	Balance            *float64
	PlanType           *PlanType
	Mnemonic           *string
	WalletKitConnected *bool
	WalletAddress      *string
	ReferrerID         *int64
	Banned             *bool
	BanReason          *string
	BanExpires         *time.Time
	// ClearBanExpires removes BanExpires; pointer fields cannot express "set to nil".
	ClearBanExpires bool
}

// MergeInto copies the set fields into u. ID, TelegramID and CreatedAt are never touched.
func (p UserPatch) MergeInto(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Image != nil {
		u.Image = *p.Image
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Balance != nil {
		u.Balance = *p.Balance
	}
	if p.PlanType != nil {
		u.PlanType = *p.PlanType
	}
	if p.Mnemonic != nil {
		u.Mnemonic = *p.Mnemonic
	}
	if p.WalletKitConnected != nil {
		u.WalletKitConnected = *p.WalletKitConnected
	}
	if p.WalletAddress != nil {
		u.WalletAddress = *p.WalletAddress
	}
	if p.ReferrerID != nil {
		id := *p.ReferrerID
		u.ReferrerID = &id
	}
	if p.Banned != nil {
		u.Banned = *p.Banned
	}
	if p.BanReason != nil {
		u.BanReason = *p.BanReason
	}
	if p.BanExpires != nil {
		t := *p.BanExpires
		u.BanExpires = &t
	}
	if p.ClearBanExpires {
		u.BanExpires = nil
	}
}

// Ptr is a helper for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// UserResponse is the public view of a user; the mnemonic never leaves the server.
type UserResponse struct {
	ID                 string     `json:"id" example:"123456789"`
	TelegramID         int64      `json:"telegram_id" example:"123456789"`
	FirstName          string     `json:"first_name,omitempty" example:"John"`
	LastName           string     `json:"last_name,omitempty" example:"Doe"`
	Username           string     `json:"username,omitempty" example:"johndoe"`
	Image              string     `json:"image,omitempty"`
	Role               Role       `json:"role" example:"user" enums:"user,admin"`
	Balance            float64    `json:"balance" example:"12.5"`
	PlanType           PlanType   `json:"plan_type" example:"free" enums:"free,basic,premium"`
	HasMnemonic        bool       `json:"has_mnemonic"`
	WalletKitConnected bool       `json:"wallet_kit_connected"`
	WalletAddress      string     `json:"wallet_address,omitempty"`
	Banned             bool       `json:"banned"`
	BanReason          string     `json:"ban_reason,omitempty"`
	BanExpires         *time.Time `json:"ban_expires,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
