package repository

import "context"

// Repository remembers transaction hashes already accepted as payment.
type Repository interface {
	// ClaimTxHash marks hash as spent. It returns false if the hash was
	// claimed before, by anyone.
	ClaimTxHash(ctx context.Context, hash string, telegramID int64, operation string) (bool, error)
}
