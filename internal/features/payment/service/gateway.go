package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/features/payment/repository"
	usermodels "kc-mini-app-backend/internal/features/user/models"
	"kc-mini-app-backend/internal/metrics"
)

var (
	// ErrPaymentsDisabled is returned for mnemonic payments when no lite client is configured.
	ErrPaymentsDisabled = stderrors.New("wallet payments are disabled")
	ErrInvalidPrice     = stderrors.New("quoted price is not positive")
)

// Quoter returns the fiat price of one unit of the payment asset.
type Quoter interface {
	Quote(ctx context.Context) (decimal.Decimal, error)
}

// WalletPayer executes a transfer from a mnemonic wallet and returns its hash.
type WalletPayer interface {
	Pay(ctx context.Context, mnemonic string, amount decimal.Decimal, comment string) (string, error)
}

type Source string

const (
	SourceMnemonic  Source = "mnemonic"
	SourceWalletKit Source = "wallet_kit"
)

// Receipt describes a completed external payment.
type Receipt struct {
	TxHash    string
	Source    Source
	Fiat      decimal.Decimal
	Asset     decimal.Decimal
	UnitPrice decimal.Decimal
}

// Request is one external payment of Fiat units of balance currency.
type Request struct {
	Operation string
	Fiat      float64
	Comment   string
	// ExternalTxHash is the hash of a transfer the client already sent
	// from a connected wallet.
	ExternalTxHash string
}

type Gateway struct {
	quoter Quoter
	payer  WalletPayer
	hashes repository.Repository
}

// NewGateway builds a gateway. payer may be nil when wallet payments are off.
func NewGateway(quoter Quoter, payer WalletPayer) *Gateway {
	return &Gateway{quoter: quoter, payer: payer}
}

// WithTxHashes rejects client supplied transaction hashes that already paid
// for something.
func (g *Gateway) WithTxHashes(hashes repository.Repository) *Gateway {
	g.hashes = hashes
	return g
}

// Pay quotes the amount in the payment asset and executes it from the
// user's linked wallet. Nothing in the store is touched here.
func (g *Gateway) Pay(ctx context.Context, user *usermodels.User, req Request) (*Receipt, error) {
	if user == nil || !user.HasWallet() {
		return nil, errors.NewNoWalletLinkedError()
	}
	if req.Fiat <= 0 {
		return nil, errors.NewValidationError("amount", "must be positive")
	}

	receipt := &Receipt{Fiat: decimal.NewFromFloat(req.Fiat)}

	price, err := g.quoter.Quote(ctx)
	if err != nil {
		return nil, g.fail(user, req.Operation, "quote", err)
	}
	if !price.IsPositive() {
		return nil, g.fail(user, req.Operation, "quote", fmt.Errorf("%w: %s", ErrInvalidPrice, price))
	}
	receipt.UnitPrice = price
	receipt.Asset = receipt.Fiat.DivRound(price, 9)

	if user.Mnemonic != "" {
		if g.payer == nil {
			return nil, g.fail(user, req.Operation, "transfer", ErrPaymentsDisabled)
		}
		hash, err := g.payer.Pay(ctx, user.Mnemonic, receipt.Asset, req.Comment)
		if err != nil {
			return nil, g.fail(user, req.Operation, "transfer", err)
		}
		receipt.TxHash = hash
		receipt.Source = SourceMnemonic
	} else {
		hash := strings.TrimSpace(req.ExternalTxHash)
		if hash == "" {
			return nil, g.fail(user, req.Operation, "transfer", fmt.Errorf("no transaction hash from connected wallet"))
		}
		if g.hashes != nil {
			fresh, err := g.hashes.ClaimTxHash(ctx, hash, user.TelegramID, req.Operation)
			if err != nil {
				return nil, g.fail(user, req.Operation, "claim", err)
			}
			if !fresh {
				metrics.IncPaymentFailure(req.Operation)
				return nil, errors.New(errors.ErrCodeConflict, "Transaction hash was already used for a payment").
					WithDetail("tx_hash", hash).
					WithUserID(user.TelegramID)
			}
		}
		receipt.TxHash = hash
		receipt.Source = SourceWalletKit
	}

	logger.Info().
		Int64("user_id", user.TelegramID).
		Str("operation", req.Operation).
		Str("source", string(receipt.Source)).
		Str("amount_fiat", receipt.Fiat.String()).
		Str("amount_ton", receipt.Asset.String()).
		Str("tx_hash", receipt.TxHash).
		Msg("Payment completed")

	return receipt, nil
}

func (g *Gateway) fail(user *usermodels.User, operation, step string, err error) *errors.AppError {
	metrics.IncPaymentFailure(operation)
	logger.Warn().
		Err(err).
		Int64("user_id", user.TelegramID).
		Str("operation", operation).
		Str("step", step).
		Msg("Payment failed")
	return errors.NewPaymentFailedError(operation, err).
		WithDetail("step", step).
		WithUserID(user.TelegramID)
}
