package models

import "time"

// Domain of the app that requested the proof
type Domain struct {
	LengthBytes uint32 `json:"lengthBytes" example:"21"`
	Value       string `json:"value" example:"mini-app.example.com"`
}

// Proof is the ton_proof item returned by TON Connect
type Proof struct {
	Timestamp int64  `json:"timestamp" binding:"required" example:"1700000000"`
	Domain    Domain `json:"domain" binding:"required"`
	Signature string `json:"signature" binding:"required" example:"base64_encoded_signature"`
	Payload   string `json:"payload" binding:"required" example:"9f3c2a..."`
	StateInit string `json:"state_init,omitempty" example:"base64_encoded_boc"`
}

// VerifyRequest represents a request for TON Proof verification
// @Description Request for TON Proof verification
type VerifyRequest struct {
	Address   string `json:"address" binding:"required" example:"0:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f31a8"` // TON адрес кошелька
	Network   string `json:"network" example:"-239"`                                                                              // Сеть (mainnet -239 / testnet -3)
	PublicKey string `json:"public_key" binding:"required" example:"hex_encoded_public_key"`                                    // Публичный ключ в hex
	Proof     Proof  `json:"proof" binding:"required"`
}

// PayloadResponse is the one-time payload the wallet must sign
type PayloadResponse struct {
	Payload   string    `json:"payload" example:"9f3c2a..."`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyResponse represents a response for the verification request
type VerifyResponse struct {
	Success bool   `json:"success"`
	Address string `json:"address,omitempty"`
}

// Record of a successful verification
type Record struct {
	UserID     int64     `json:"user_id"`
	Address    string    `json:"address"`
	Network    string    `json:"network"`
	VerifiedAt time.Time `json:"verified_at"`
}

// StatusResponse is returned by GET /tonproof/status
type StatusResponse struct {
	Verified bool    `json:"verified"`
	Record   *Record `json:"record,omitempty"`
}
