package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
	statemodels "kc-mini-app-backend/internal/features/state/models"
	"kc-mini-app-backend/internal/features/state/repository"
	stateservice "kc-mini-app-backend/internal/features/state/service"
	"kc-mini-app-backend/internal/features/user/mapper"
	"kc-mini-app-backend/internal/features/user/models"
	"kc-mini-app-backend/internal/platform/ton"
)

// SessionResetter drops in-memory per-user state such as simulation streams.
type SessionResetter interface {
	Forget(userID int64)
}

// BalanceLookup reads the on-chain TON balance of an address.
type BalanceLookup interface {
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
}

type Service struct {
	store    *stateservice.Store
	sessions SessionResetter
	balances BalanceLookup
	adminIDs map[int64]struct{}
}

func NewService(store *stateservice.Store, sessions SessionResetter, adminIDs []int64) *Service {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Service{store: store, sessions: sessions, adminIDs: admins}
}

// WithBalances enables on-chain balances in wallet responses.
func (s *Service) WithBalances(b BalanceLookup) *Service {
	s.balances = b
	return s
}

// EnsureUser creates the user on first contact and refreshes the names
// Telegram reports on later visits.
func (s *Service) EnsureUser(ctx context.Context, tgUser initdata.User) error {
	_, err := s.ensure(ctx, tgUser)
	return err
}

func (s *Service) ensure(ctx context.Context, tgUser initdata.User) (*models.User, error) {
	created := false
	snap, err := s.store.Apply(ctx, tgUser.ID, func(snap *statemodels.Snapshot) error {
		now := s.store.Now()
		created = false
		if !snap.HasUser() {
			role := models.RoleUser
			if _, ok := s.adminIDs[tgUser.ID]; ok {
				role = models.RoleAdmin
			}
			snap.User = &models.User{
				ID:         strconv.FormatInt(tgUser.ID, 10),
				TelegramID: tgUser.ID,
				FirstName:  tgUser.FirstName,
				LastName:   tgUser.LastName,
				Username:   tgUser.Username,
				Image:      tgUser.PhotoURL,
				Role:       role,
				PlanType:   models.PlanFree,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			created = true
			return nil
		}

		u := snap.User
		if u.FirstName == tgUser.FirstName && u.LastName == tgUser.LastName && u.Username == tgUser.Username {
			return repository.ErrSkip
		}
		u.FirstName = tgUser.FirstName
		u.LastName = tgUser.LastName
		u.Username = tgUser.Username
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		logger.Info().Int64("user_id", tgUser.ID).Str("username", tgUser.Username).Msg("User created")
	}
	return snap.User, nil
}

// GetOrCreate returns the current user, creating it from init data if needed.
func (s *Service) GetOrCreate(ctx context.Context, tgUser initdata.User) (*models.UserResponse, error) {
	user, err := s.ensure(ctx, tgUser)
	if err != nil {
		return nil, err
	}
	return mapper.ToUserResponse(user), nil
}

func (s *Service) get(ctx context.Context, userID int64) (*statemodels.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !snap.HasUser() {
		return nil, errors.NewUserNotFoundError(userID)
	}
	return snap, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*models.UserResponse, error) {
	snap, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapper.ToUserResponse(snap.User), nil
}

func (s *Service) patch(ctx context.Context, userID int64, patch models.UserPatch) (*models.UserResponse, error) {
	user, err := s.store.UpdateUser(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewUserNotFoundError(userID)
	}
	return mapper.ToUserResponse(user), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.UserResponse, error) {
	return s.patch(ctx, userID, models.UserPatch{Username: update.Username, Image: update.Image})
}

// LinkMnemonic stores the seed phrase of a local wallet together with its
// derived address. The phrase must be a valid TON mnemonic.
func (s *Service) LinkMnemonic(ctx context.Context, userID int64, mnemonic string) (*models.WalletResponse, error) {
	address, err := ton.DeriveAddress(mnemonic)
	if err != nil {
		return nil, errors.NewValidationError("mnemonic", err.Error())
	}

	words, _ := ton.SplitMnemonic(mnemonic)
	normalized := strings.Join(words, " ")
	if _, err := s.patch(ctx, userID, models.UserPatch{Mnemonic: &normalized, WalletAddress: &address}); err != nil {
		return nil, err
	}

	logger.Info().Int64("user_id", userID).Str("address", address).Msg("Local wallet linked")
	return &models.WalletResponse{Kind: models.WalletKindMnemonic, Address: address}, nil
}

// ConnectWalletKit marks a TON Connect wallet as linked after a verified proof.
func (s *Service) ConnectWalletKit(ctx context.Context, userID int64, address string) error {
	_, err := s.patch(ctx, userID, models.UserPatch{
		WalletKitConnected: models.Ptr(true),
		WalletAddress:      &address,
	})
	return err
}

// UnlinkWallet forgets both the mnemonic and the TON Connect link.
func (s *Service) UnlinkWallet(ctx context.Context, userID int64) error {
	_, err := s.patch(ctx, userID, models.UserPatch{
		Mnemonic:           models.Ptr(""),
		WalletKitConnected: models.Ptr(false),
		WalletAddress:      models.Ptr(""),
	})
	return err
}

func (s *Service) Wallet(ctx context.Context, userID int64) (*models.WalletResponse, error) {
	snap, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	u := snap.User
	var resp *models.WalletResponse
	switch {
	case u.Mnemonic != "":
		address := u.WalletAddress
		if address == "" {
			if address, err = ton.DeriveAddress(u.Mnemonic); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to derive wallet address")
			}
		}
		resp = &models.WalletResponse{Kind: models.WalletKindMnemonic, Address: address}
	case u.WalletKitConnected:
		resp = &models.WalletResponse{Kind: models.WalletKindWalletKit, Address: u.WalletAddress}
	default:
		return &models.WalletResponse{Kind: models.WalletKindNone}, nil
	}

	if s.balances != nil && resp.Address != "" {
		balance, err := s.balances.Balance(ctx, resp.Address)
		if err != nil {
			logger.Warn().Err(err).Int64("user_id", userID).Str("address", resp.Address).Msg("Failed to fetch wallet balance")
		} else {
			resp.TonBalance = balance.String()
		}
	}
	return resp, nil
}

// ClearData resets the persisted session and the in-memory simulation state.
func (s *Service) ClearData(ctx context.Context, userID int64) error {
	if err := s.store.ClearAllData(ctx, userID); err != nil {
		return err
	}
	if s.sessions != nil {
		s.sessions.Forget(userID)
	}
	logger.Info().Int64("user_id", userID).Msg("User data cleared")
	return nil
}

// Plan returns the stored plan, or an open-ended free plan for users that
// never subscribed.
func (s *Service) Plan(ctx context.Context, userID int64) (*models.Plan, error) {
	snap, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.Plan != nil {
		return snap.Plan, nil
	}
	plan := models.DefaultPlan(snap.User.CreatedAt)
	plan.PlanType = snap.User.PlanType
	return &plan, nil
}

// ExpirePlans marks lapsed plans expired and moves their users to free.
func (s *Service) ExpirePlans(ctx context.Context) (int, error) {
	snaps, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for id, snap := range snaps {
		if snap.Plan == nil || !snap.Plan.Lapsed(s.store.Now()) {
			continue
		}
		changed := false
		_, err := s.store.Apply(ctx, id, func(snap *statemodels.Snapshot) error {
			now := s.store.Now()
			changed = false
			if snap.Plan == nil || !snap.Plan.Lapsed(now) {
				return repository.ErrSkip
			}
			snap.Plan.Status = models.PlanStatusExpired
			if snap.HasUser() {
				snap.User.PlanType = models.PlanFree
				snap.User.UpdatedAt = now
			}
			changed = true
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Int64("user_id", id).Msg("Failed to expire plan")
			continue
		}
		if changed {
			expired++
			logger.Info().Int64("user_id", id).Msg("Plan expired, downgraded to free")
		}
	}
	return expired, nil
}

// IsAdmin implements middleware.RoleResolver.
func (s *Service) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	if _, ok := s.adminIDs[telegramID]; ok {
		return true, nil
	}
	snap, err := s.store.Snapshot(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return snap.HasUser() && snap.User.Role == models.RoleAdmin, nil
}

// BanStatus implements middleware.BanChecker.
func (s *Service) BanStatus(ctx context.Context, telegramID int64) (bool, string, *time.Time, error) {
	snap, err := s.store.Snapshot(ctx, telegramID)
	if err != nil {
		return false, "", nil, err
	}
	if !snap.HasUser() || !snap.User.IsBanned(s.store.Now()) {
		return false, "", nil, nil
	}
	return true, snap.User.BanReason, snap.User.BanExpires, nil
}

// ListUsers returns every stored user ordered by creation time.
func (s *Service) ListUsers(ctx context.Context) (*models.UsersResponse, error) {
	snaps, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(snaps))
	for _, snap := range snaps {
		if snap.HasUser() {
			users = append(users, snap.User)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].TelegramID < users[j].TelegramID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return &models.UsersResponse{Items: mapper.ToUserResponses(users), Total: len(users)}, nil
}

// AdminUpdate applies an admin edit. A plan change also starts a new plan
// record; a ban without hours is permanent.
func (s *Service) AdminUpdate(ctx context.Context, userID int64, update models.AdminUserUpdate) (*models.UserResponse, error) {
	now := s.store.Now()
	patch := models.UserPatch{Role: update.Role, Balance: update.Balance}

	if update.Banned != nil {
		patch.Banned = update.Banned
		if *update.Banned {
			patch.BanReason = update.BanReason
			if update.BanHours != nil && *update.BanHours > 0 {
				patch.BanExpires = models.Ptr(now.Add(time.Duration(*update.BanHours) * time.Hour))
			} else {
				patch.ClearBanExpires = true
			}
		} else {
			patch.BanReason = models.Ptr("")
			patch.ClearBanExpires = true
		}
	}

	var plan *models.Plan
	if update.PlanType != nil {
		duration := 0
		if update.PlanDuration != nil {
			duration = *update.PlanDuration
		}
		p := models.NewPlan(*update.PlanType, duration, now)
		plan = &p
	}

	// Patch and plan land in one write so a reader never sees half of it.
	snap, err := s.store.Apply(ctx, userID, func(snap *statemodels.Snapshot) error {
		if !snap.HasUser() {
			return repository.ErrSkip
		}
		patch.MergeInto(snap.User)
		if plan != nil {
			snap.Plan = plan
			snap.User.PlanType = plan.PlanType
		}
		snap.User.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !snap.HasUser() {
		return nil, errors.NewUserNotFoundError(userID)
	}
	resp := mapper.ToUserResponse(snap.User)

	logger.Info().Int64("user_id", userID).Msg("User updated by admin")
	return resp, nil
}
