package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string `json:"code" example:"VALIDATION_ERROR"`
		Message string `json:"message" example:"Error message"`
	} `json:"error"`
}

// ProfileUpdate is the body of PATCH /me
type ProfileUpdate struct {
	Username *string `json:"username" binding:"omitempty,tg_username" example:"johndoe"`
	Image    *string `json:"image" binding:"omitempty,url"`
}

// MnemonicUpdate is the body of PUT /me/wallet/mnemonic
type MnemonicUpdate struct {
	Mnemonic string `json:"mnemonic" binding:"required,mnemonic"`
}

type WalletKind string

const (
	WalletKindMnemonic  WalletKind = "mnemonic"
	WalletKindWalletKit WalletKind = "wallet_kit"
	WalletKindNone      WalletKind = "none"
)

// WalletResponse describes the linked wallet
type WalletResponse struct {
	Kind       WalletKind `json:"kind" example:"mnemonic" enums:"mnemonic,wallet_kit,none"`
	Address    string     `json:"address,omitempty" example:"EQD4FPq-PRD4YtG87wgL7AErgQwHUMFQ-JxyYw8jzBPhqjfH"`
	TonBalance string     `json:"ton_balance,omitempty" example:"1.5"`
}

// AdminUserUpdate is the body of PATCH /admin/users/{id}
type AdminUserUpdate struct {
	Role         *Role     `json:"role" binding:"omitempty,oneof=user admin"`
	Balance      *float64  `json:"balance" binding:"omitempty,gte=0"`
	PlanType     *PlanType `json:"plan_type" binding:"omitempty,oneof=free basic premium"`
	PlanDuration *int      `json:"plan_duration" binding:"omitempty,gte=0"`
	Banned       *bool     `json:"banned"`
	BanReason    *string   `json:"ban_reason" binding:"omitempty,max=256"`
	BanHours     *int      `json:"ban_hours" binding:"omitempty,gte=0"`
}

// UsersResponse represents a list of users
type UsersResponse struct {
	Items []UserResponse `json:"items"`
	Total int            `json:"total" example:"42"`
}
