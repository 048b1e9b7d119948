package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
	ledgermodels "kc-mini-app-backend/internal/features/ledger/models"
	ledgerservice "kc-mini-app-backend/internal/features/ledger/service"
	paymentservice "kc-mini-app-backend/internal/features/payment/service"
	statemodels "kc-mini-app-backend/internal/features/state/models"
	stateservice "kc-mini-app-backend/internal/features/state/service"
	usermodels "kc-mini-app-backend/internal/features/user/models"
	"kc-mini-app-backend/internal/features/withdrawal/models"
	"kc-mini-app-backend/internal/features/withdrawal/repository"
	"kc-mini-app-backend/internal/metrics"
)

const operationFee = "withdrawal_fee"

// Service drives withdrawal sessions through idle, fee_pending, fee_paid
// and completed. Balance changes go through the store.
type Service struct {
	store   *stateservice.Store
	repo    repository.Repository
	gateway *paymentservice.Gateway
	ledger  *ledgerservice.Service
	policy  models.Policy

	retry func() backoff.BackOff
}

func NewService(
	store *stateservice.Store,
	repo repository.Repository,
	gateway *paymentservice.Gateway,
	ledger *ledgerservice.Service,
	policy models.Policy,
) *Service {
	return &Service{
		store:   store,
		repo:    repo,
		gateway: gateway,
		ledger:  ledger,
		policy:  policy,
		retry: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return backoff.WithMaxRetries(b, 4)
		},
	}
}

func (s *Service) user(ctx context.Context, userID int64) (*usermodels.User, error) {
	snap, err := s.store.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !snap.HasUser() {
		return nil, errors.NewUserNotFoundError(userID)
	}
	return snap.User, nil
}

// Limits describes what the user may withdraw right now.
func (s *Service) Limits(ctx context.Context, userID int64) (*models.LimitsResponse, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.Counts(ctx, userID)
	if err != nil {
		return nil, errors.NewStorageError("withdrawal counts", err)
	}
	return &models.LimitsResponse{
		PlanType:             user.PlanType,
		Minimum:              s.policy.Minimum,
		Limits:               models.LimitsFor(user.PlanType),
		CompletedWithdrawals: counts.Completed,
		Balance:              user.Balance,
	}, nil
}

// oneTimeRule rejects a transition that would give a one-time plan a second
// withdrawal. Entering the fee step counts sessions already in flight too,
// so two sessions cannot both pay a fee for the single allowed withdrawal.
func oneTimeRule(plan usermodels.PlanType, next models.State, counts repository.Counts) error {
	if !models.LimitsFor(plan).OneTime {
		return nil
	}
	used := counts.Completed
	if next == models.StateFeePending {
		used += counts.InFlight
	}
	if used > 0 {
		return errors.NewOneTimeLimitError(string(plan))
	}
	return nil
}

// checkOneTime is the early read-only check done by Start. The binding check
// runs inside the session transitions.
func (s *Service) checkOneTime(ctx context.Context, userID int64, plan usermodels.PlanType) error {
	if !models.LimitsFor(plan).OneTime {
		return nil
	}
	counts, err := s.repo.Counts(ctx, userID)
	if err != nil {
		return errors.NewStorageError("withdrawal counts", err)
	}
	return oneTimeRule(plan, models.StateFeePending, counts)
}

// Start opens an idle session after checking the amount against the plan.
func (s *Service) Start(ctx context.Context, userID int64, amount float64) (*models.Session, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Bounds(user.PlanType, amount); err != nil {
		return nil, err
	}
	if err := s.checkOneTime(ctx, userID, user.PlanType); err != nil {
		return nil, err
	}
	if amount > user.Balance {
		return nil, errors.NewInsufficientBalanceError(user.Balance, amount)
	}

	now := s.store.Now()
	session := &models.Session{
		ID:         uuid.New().String(),
		TelegramID: userID,
		Amount:     amount,
		Fee:        models.LimitsFor(user.PlanType).Fee(amount),
		PlanType:   user.PlanType,
		State:      models.StateIdle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, errors.NewStorageError("create withdrawal session", err)
	}

	metrics.IncWithdrawal(string(models.StateIdle))
	logger.Info().
		Int64("user_id", userID).
		Str("session_id", session.ID).
		Float64("amount", amount).
		Float64("fee", session.Fee).
		Msg("Withdrawal session started")

	return session, nil
}

// Get returns a session owned by the user.
func (s *Service) Get(ctx context.Context, userID int64, sessionID string) (*models.Session, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, s.repoError("get withdrawal session", sessionID, err)
	}
	if session.TelegramID != userID {
		return nil, errors.NewNotFoundError("withdrawal session", sessionID)
	}
	return session, nil
}

func (s *Service) update(ctx context.Context, userID int64, sessionID string, fn repository.UpdateFunc) (*models.Session, error) {
	session, err := s.repo.Update(ctx, sessionID, func(session *models.Session, counts repository.Counts) error {
		if session.TelegramID != userID {
			return errors.NewNotFoundError("withdrawal session", sessionID)
		}
		return fn(session, counts)
	})
	if err != nil {
		return nil, s.repoError("update withdrawal session", sessionID, err)
	}
	return session, nil
}

func (s *Service) repoError(op, sessionID string, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewNotFoundError("withdrawal session", sessionID)
	}
	return errors.NewStorageError(op, err)
}

// PayFee pays the session fee from the linked wallet. A failed payment
// moves the session back to idle. Sessions already past the fee step are
// returned unchanged.
func (s *Service) PayFee(ctx context.Context, userID int64, sessionID, txHash string) (*models.Session, error) {
	if _, err := s.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.update(ctx, userID, sessionID, func(session *models.Session, counts repository.Counts) error {
		switch session.State {
		case models.StateFeePaid, models.StateCompleted:
			return repository.ErrSkip
		case models.StateFeePending:
			return errors.NewInvalidSessionStateError(session.ID, string(session.State), "pay the fee of")
		}
		if err := oneTimeRule(user.PlanType, models.StateFeePending, counts); err != nil {
			return err
		}
		session.State = models.StateFeePending
		session.UpdatedAt = s.store.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if session.State != models.StateFeePending {
		return session, nil
	}
	metrics.IncWithdrawal(string(models.StateFeePending))

	receipt, err := s.payFee(ctx, userID, session, txHash)
	if err != nil {
		if _, rerr := s.update(ctx, userID, sessionID, func(session *models.Session, _ repository.Counts) error {
			session.State = models.StateIdle
			session.UpdatedAt = s.store.Now()
			return nil
		}); rerr != nil {
			logger.Error().Err(rerr).Str("session_id", sessionID).Msg("Failed to reset withdrawal session to idle")
		}
		metrics.IncWithdrawal(string(models.StateIdle))
		return nil, err
	}

	err = backoff.Retry(func() error {
		session, err = s.update(ctx, userID, sessionID, func(session *models.Session, _ repository.Counts) error {
			if session.State != models.StateFeePending {
				return repository.ErrSkip
			}
			session.State = models.StateFeePaid
			session.FeeTxHash = receipt.TxHash
			session.UpdatedAt = s.store.Now()
			return nil
		})
		return err
	}, backoff.WithContext(s.retry(), ctx))
	if err != nil {
		s.record(ctx, &ledgermodels.Entry{
			TelegramID: userID,
			Kind:       ledgermodels.KindCompensation,
			Status:     ledgermodels.StatusPending,
			Amount:     receipt.Asset,
			Currency:   ledgermodels.CurrencyTON,
			Reference:  sessionID,
			TxHash:     receipt.TxHash,
			Note:       "withdrawal fee paid but session not updated",
		})
		return nil, errors.NewPaymentFailedError(operationFee, err).
			WithDetail("tx_hash", receipt.TxHash).
			WithDetail("compensation", true)
	}

	metrics.IncWithdrawal(string(models.StateFeePaid))
	s.record(ctx, &ledgermodels.Entry{
		TelegramID: userID,
		Kind:       ledgermodels.KindWithdrawalFee,
		Status:     ledgermodels.StatusCompleted,
		Amount:     receipt.Asset,
		Currency:   ledgermodels.CurrencyTON,
		Reference:  sessionID,
		TxHash:     receipt.TxHash,
	})
	logger.Info().Int64("user_id", userID).Str("session_id", sessionID).Str("tx_hash", receipt.TxHash).Msg("Withdrawal fee paid")

	return session, nil
}

func (s *Service) payFee(ctx context.Context, userID int64, session *models.Session, txHash string) (*paymentservice.Receipt, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.gateway.Pay(ctx, user, paymentservice.Request{
		Operation:      operationFee,
		Fiat:           session.Fee,
		Comment:        fmt.Sprintf("withdrawal fee %s", session.ID),
		ExternalTxHash: txHash,
	})
}

// Confirm completes a fee-paid session and debits the amount exactly once.
// The session is claimed first so concurrent confirmations cannot both
// debit; if the debit then fails the claim is reverted to fee_paid.
func (s *Service) Confirm(ctx context.Context, userID int64, sessionID string) (*models.Session, error) {
	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == models.StateCompleted {
		return session, nil
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(user.PlanType, session.Amount, session); err != nil {
		return nil, err
	}

	now := s.store.Now()
	claimed := false
	session, err = s.update(ctx, userID, sessionID, func(session *models.Session, counts repository.Counts) error {
		claimed = false
		switch session.State {
		case models.StateCompleted:
			return repository.ErrSkip
		case models.StateFeePaid:
		default:
			return errors.NewFeeNotPaidError(session.ID)
		}
		if err := oneTimeRule(user.PlanType, models.StateCompleted, counts); err != nil {
			return err
		}
		session.State = models.StateCompleted
		session.CompletedAt = &now
		session.UpdatedAt = now
		claimed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !claimed {
		return session, nil
	}

	amount := session.Amount
	_, err = s.store.Apply(ctx, userID, func(snap *statemodels.Snapshot) error {
		if !snap.HasUser() {
			return errors.NewUserNotFoundError(userID)
		}
		if snap.User.Balance < amount {
			return errors.NewInsufficientBalanceError(snap.User.Balance, amount)
		}
		snap.User.Balance -= amount
		snap.User.UpdatedAt = s.store.Now()
		return nil
	})
	if err != nil {
		s.revertClaim(ctx, userID, sessionID, amount)
		return nil, err
	}

	metrics.IncWithdrawal(string(models.StateCompleted))
	s.record(ctx, &ledgermodels.Entry{
		TelegramID: userID,
		Kind:       ledgermodels.KindWithdrawal,
		Status:     ledgermodels.StatusCompleted,
		Amount:     decimal.NewFromFloat(amount),
		Currency:   ledgermodels.CurrencyBalance,
		Reference:  sessionID,
	})
	logger.Info().Int64("user_id", userID).Str("session_id", sessionID).Float64("amount", amount).Msg("Withdrawal completed")

	return session, nil
}

// revertClaim puts a claimed session back to fee_paid after a failed debit.
func (s *Service) revertClaim(ctx context.Context, userID int64, sessionID string, amount float64) {
	err := backoff.Retry(func() error {
		_, err := s.update(ctx, userID, sessionID, func(session *models.Session, _ repository.Counts) error {
			if session.State != models.StateCompleted {
				return repository.ErrSkip
			}
			session.State = models.StateFeePaid
			session.CompletedAt = nil
			session.UpdatedAt = s.store.Now()
			return nil
		})
		return err
	}, backoff.WithContext(s.retry(), ctx))
	if err == nil {
		return
	}

	logger.Error().Err(err).Int64("user_id", userID).Str("session_id", sessionID).Msg("Withdrawal marked completed without debit")
	s.record(ctx, &ledgermodels.Entry{
		TelegramID: userID,
		Kind:       ledgermodels.KindCompensation,
		Status:     ledgermodels.StatusPending,
		Amount:     decimal.NewFromFloat(amount),
		Currency:   ledgermodels.CurrencyBalance,
		Reference:  sessionID,
		Note:       "withdrawal completed but balance not debited",
	})
}

func (s *Service) record(ctx context.Context, entry *ledgermodels.Entry) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(ctx, entry); err != nil {
		logger.Error().Err(err).Int64("user_id", entry.TelegramID).Str("kind", string(entry.Kind)).Msg("Failed to record ledger entry")
	}
}
