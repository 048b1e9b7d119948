package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/features/booster/models"
	ledgermodels "kc-mini-app-backend/internal/features/ledger/models"
	ledgerservice "kc-mini-app-backend/internal/features/ledger/service"
	paymentservice "kc-mini-app-backend/internal/features/payment/service"
	statemodels "kc-mini-app-backend/internal/features/state/models"
	"kc-mini-app-backend/internal/features/state/repository"
	stateservice "kc-mini-app-backend/internal/features/state/service"
	"kc-mini-app-backend/internal/metrics"
)

const operationPurchase = "booster_purchase"

// Lifecycle sells catalog boosters and keeps the active list tidy.
type Lifecycle struct {
	store   *stateservice.Store
	gateway *paymentservice.Gateway
	ledger  *ledgerservice.Service

	// appendRetry bounds the attempts to store a booster that was already paid for.
	appendRetry func() backoff.BackOff
}

func NewLifecycle(store *stateservice.Store, gateway *paymentservice.Gateway, ledger *ledgerservice.Service) *Lifecycle {
	return &Lifecycle{
		store:   store,
		gateway: gateway,
		ledger:  ledger,
		appendRetry: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return backoff.WithMaxRetries(b, 4)
		},
	}
}

func (l *Lifecycle) Catalog() []models.BoosterResponse {
	catalog := models.Catalog()
	out := make([]models.BoosterResponse, 0, len(catalog))
	for _, b := range catalog {
		out = append(out, b.Response())
	}
	return out
}

// Active returns the boosters that still count at the current time.
func (l *Lifecycle) Active(ctx context.Context, userID int64) ([]models.ActiveBooster, error) {
	snap, err := l.store.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.FilterActive(snap.ActiveBoosters, l.store.Now()), nil
}

// Purchase buys a catalog booster for the user.
func (l *Lifecycle) Purchase(ctx context.Context, userID int64, req models.PurchaseRequest) (*models.PurchaseResponse, error) {
	booster, ok := models.Find(req.BoosterID)
	if !ok {
		return nil, errors.NewNotFoundError("booster", req.BoosterID)
	}

	var (
		resp *models.PurchaseResponse
		err  error
	)
	switch req.Method {
	case models.PaymentBalance:
		resp, err = l.purchaseWithBalance(ctx, userID, booster)
	case models.PaymentWallet:
		resp, err = l.purchaseWithWallet(ctx, userID, booster, req.TxHash)
	default:
		return nil, errors.NewValidationError("method", "must be balance or wallet")
	}

	result := "ok"
	if err != nil {
		result = "error"
		if appErr, ok := errors.AsAppError(err); ok {
			result = string(appErr.Code)
		}
	}
	metrics.IncBoosterPurchase(booster.ID, string(req.Method), result)
	return resp, err
}

// purchaseWithBalance re-reads the balance, debits and appends in one transaction.
func (l *Lifecycle) purchaseWithBalance(ctx context.Context, userID int64, booster models.Booster) (*models.PurchaseResponse, error) {
	now := l.store.Now()
	active := models.Activate(booster, now)

	snap, err := l.store.Apply(ctx, userID, func(s *statemodels.Snapshot) error {
		if !s.HasUser() {
			return errors.NewUserNotFoundError(userID)
		}
		if s.User.Balance < booster.Price {
			return errors.NewInsufficientBalanceError(s.User.Balance, booster.Price).WithUserID(userID)
		}
		s.User.Balance -= booster.Price
		s.User.UpdatedAt = now
		s.ActiveBoosters = append(s.ActiveBoosters, active)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.record(ctx, &ledgermodels.Entry{
		TelegramID: userID,
		Kind:       ledgermodels.KindBoosterPurchase,
		Status:     ledgermodels.StatusCompleted,
		Amount:     decimal.NewFromFloat(booster.Price),
		Currency:   ledgermodels.CurrencyBalance,
		Reference:  active.ID,
	})

	logger.Info().
		Int64("user_id", userID).
		Str("booster_id", booster.ID).
		Float64("balance", snap.User.Balance).
		Msg("Booster purchased with balance")

	return &models.PurchaseResponse{
		Success: true,
		Booster: active,
		Balance: snap.User.Balance,
	}, nil
}

// purchaseWithWallet pays externally first, then appends the booster. The
// append is retried; a booster already present with the same instance id is
// not added twice. When it still fails the payment is recorded for
// compensation and PaymentFailed is returned.
func (l *Lifecycle) purchaseWithWallet(ctx context.Context, userID int64, booster models.Booster, txHash string) (*models.PurchaseResponse, error) {
	snap, err := l.store.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !snap.HasUser() {
		return nil, errors.NewUserNotFoundError(userID)
	}

	receipt, err := l.gateway.Pay(ctx, snap.User, paymentservice.Request{
		Operation:      operationPurchase,
		Fiat:           booster.Price,
		Comment:        fmt.Sprintf("booster %s", booster.ID),
		ExternalTxHash: txHash,
	})
	if err != nil {
		return nil, err
	}

	active := models.Activate(booster, l.store.Now())
	appendOnce := func(s *statemodels.Snapshot) error {
		for _, existing := range s.ActiveBoosters {
			if existing.ID == active.ID {
				return repository.ErrSkip
			}
		}
		s.ActiveBoosters = append(s.ActiveBoosters, active)
		return nil
	}

	var balance float64
	err = backoff.Retry(func() error {
		updated, err := l.store.Apply(ctx, userID, appendOnce)
		if err != nil {
			logger.Warn().Err(err).Int64("user_id", userID).Str("booster_id", booster.ID).Msg("Booster append failed, retrying")
			return err
		}
		if updated.HasUser() {
			balance = updated.User.Balance
		}
		return nil
	}, backoff.WithContext(l.appendRetry(), ctx))
	if err != nil {
		l.record(ctx, &ledgermodels.Entry{
			TelegramID: userID,
			Kind:       ledgermodels.KindCompensation,
			Status:     ledgermodels.StatusPending,
			Amount:     receipt.Asset,
			Currency:   ledgermodels.CurrencyTON,
			Reference:  active.ID,
			TxHash:     receipt.TxHash,
			Note:       "booster paid but not activated",
		})
		logger.Error().
			Err(err).
			Int64("user_id", userID).
			Str("booster_id", booster.ID).
			Str("tx_hash", receipt.TxHash).
			Msg("Paid booster could not be stored, compensation recorded")
		return nil, errors.NewPaymentFailedError(operationPurchase, err).
			WithDetail("tx_hash", receipt.TxHash).
			WithDetail("compensation", true)
	}

	l.record(ctx, &ledgermodels.Entry{
		TelegramID: userID,
		Kind:       ledgermodels.KindBoosterPurchase,
		Status:     ledgermodels.StatusCompleted,
		Amount:     receipt.Asset,
		Currency:   ledgermodels.CurrencyTON,
		Reference:  active.ID,
		TxHash:     receipt.TxHash,
	})

	return &models.PurchaseResponse{
		Success: true,
		Booster: active,
		Balance: balance,
		TxHash:  receipt.TxHash,
	}, nil
}

// Prune removes boosters that expired before now from every snapshot and
// returns how many were dropped.
func (l *Lifecycle) Prune(ctx context.Context) (int, error) {
	all, err := l.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := l.store.Now()
	removed := 0
	for userID, snap := range all {
		if len(models.FilterActive(snap.ActiveBoosters, now)) == len(snap.ActiveBoosters) {
			continue
		}

		dropped := 0
		_, err := l.store.Apply(ctx, userID, func(s *statemodels.Snapshot) error {
			kept := models.FilterActive(s.ActiveBoosters, now)
			dropped = len(s.ActiveBoosters) - len(kept)
			if dropped == 0 {
				return repository.ErrSkip
			}
			s.ActiveBoosters = kept
			return nil
		})
		if err != nil {
			logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to prune boosters")
			continue
		}
		removed += dropped
	}

	return removed, nil
}

// record never fails the caller: the store mutation already happened.
func (l *Lifecycle) record(ctx context.Context, entry *ledgermodels.Entry) {
	if l.ledger == nil {
		return
	}
	if err := l.ledger.Record(ctx, entry); err != nil {
		logger.Error().Err(err).Int64("user_id", entry.TelegramID).Str("kind", string(entry.Kind)).Msg("Failed to record ledger entry")
	}
}
