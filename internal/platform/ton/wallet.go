// Package ton sends payments from user mnemonic wallets through TON lite servers.
package ton

import (
	"context"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	tonlib "github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"

	"kc-mini-app-backend/internal/common/logger"
)

// MnemonicWords is the length of a standard TON wallet mnemonic.
const MnemonicWords = 24

var ErrInvalidMnemonic = stderrors.New("invalid mnemonic")

var walletVersion = wallet.V4R2

// SplitMnemonic normalises whitespace and checks the word count.
func SplitMnemonic(mnemonic string) ([]string, error) {
	words := strings.Fields(strings.ToLower(mnemonic))
	if len(words) != MnemonicWords {
		return nil, fmt.Errorf("%w: expected %d words, got %d", ErrInvalidMnemonic, MnemonicWords, len(words))
	}
	return words, nil
}

// DeriveAddress returns the user-friendly V4R2 address of the mnemonic
// without touching the network.
func DeriveAddress(mnemonic string) (string, error) {
	words, err := SplitMnemonic(mnemonic)
	if err != nil {
		return "", err
	}
	w, err := wallet.FromSeed(nil, words, walletVersion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return w.WalletAddress().String(), nil
}

// ParseAddress accepts raw (0:hex) and user-friendly forms.
func ParseAddress(addr string) (*address.Address, error) {
	addr = strings.TrimSpace(addr)
	if strings.Contains(addr, ":") {
		return address.ParseRawAddr(addr)
	}
	return address.ParseAddr(addr)
}

// NormalizeAddress returns the user-friendly form of addr.
func NormalizeAddress(addr string) (string, error) {
	a, err := ParseAddress(addr)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

// Payer transfers TON from a user's mnemonic wallet to the treasury.
type Payer struct {
	api      tonlib.APIClientWrapped
	treasury *address.Address
}

// Connect dials the lite servers listed in the global config at configURL.
func Connect(ctx context.Context, configURL, treasury string) (*Payer, error) {
	to, err := address.ParseAddr(treasury)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury address: %w", err)
	}

	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("connect lite servers: %w", err)
	}

	logger.Info().Str("treasury", to.String()).Msg("TON lite client connected")

	return &Payer{
		api:      tonlib.NewAPIClient(pool).WithRetry(),
		treasury: to,
	}, nil
}

// Pay sends amount TON with comment and waits for the transaction. The
// returned hash is hex encoded.
func (p *Payer) Pay(ctx context.Context, mnemonic string, amount decimal.Decimal, comment string) (string, error) {
	words, err := SplitMnemonic(mnemonic)
	if err != nil {
		return "", err
	}

	w, err := wallet.FromSeed(p.api, words, walletVersion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	coins, err := tlb.FromTON(amount.StringFixed(9))
	if err != nil {
		return "", fmt.Errorf("invalid amount %s: %w", amount, err)
	}

	tx, _, err := w.TransferWaitTransaction(ctx, p.treasury, coins, comment)
	if err != nil {
		return "", fmt.Errorf("transfer: %w", err)
	}

	hash := hex.EncodeToString(tx.Hash)
	logger.Info().
		Str("from", w.WalletAddress().String()).
		Str("amount", amount.StringFixed(9)).
		Str("tx_hash", hash).
		Msg("TON transfer confirmed")

	return hash, nil
}
