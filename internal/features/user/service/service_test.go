package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"github.com/xssnick/tonutils-go/ton/wallet"

	"kc-mini-app-backend/internal/common/errors"
	boostermodels "kc-mini-app-backend/internal/features/booster/models"
	statemodels "kc-mini-app-backend/internal/features/state/models"
	"kc-mini-app-backend/internal/features/state/repository"
	"kc-mini-app-backend/internal/features/state/repository/memory"
	stateservice "kc-mini-app-backend/internal/features/state/service"
	"kc-mini-app-backend/internal/features/user/models"
)

type resetter struct{ forgotten []int64 }

func (r *resetter) Forget(userID int64) { r.forgotten = append(r.forgotten, userID) }

type balances struct{}

func (balances) Balance(context.Context, string) (decimal.Decimal, error) {
	return decimal.RequireFromString("2.25"), nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T, admins ...int64) (*Service, *stateservice.Store, *clock, *resetter) {
	t.Helper()
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := stateservice.NewStore(memory.NewRepository(), c.now)
	r := &resetter{}
	return NewService(store, r, admins), store, c, r
}

func TestGetOrCreate(t *testing.T) {
	svc, _, _, _ := newService(t, 2)
	ctx := context.Background()

	u, err := svc.GetOrCreate(ctx, initdata.User{ID: 1, FirstName: "John", Username: "john_doe"})
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, models.PlanFree, u.PlanType)
	assert.Zero(t, u.Balance)

	u, err = svc.GetOrCreate(ctx, initdata.User{ID: 1, FirstName: "Johnny", Username: "john_doe"})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", u.FirstName)

	admin, err := svc.GetOrCreate(ctx, initdata.User{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestGetOrCreate_KeepsBalance(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 3}))
	_, err := store.UpdateUser(ctx, 3, models.UserPatch{Balance: models.Ptr(42.0)})
	require.NoError(t, err)

	u, err := svc.GetOrCreate(ctx, initdata.User{ID: 3, FirstName: "New"})
	require.NoError(t, err)
	assert.Equal(t, 42.0, u.Balance)
}

func TestGetUser_NotFound(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.GetUser(context.Background(), 404)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))
}

func TestLinkMnemonic(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 4}))

	seed := wallet.NewSeed()
	w, err := svc.LinkMnemonic(ctx, 4, "  "+strings.Join(seed, "  ")+" ")
	require.NoError(t, err)
	assert.Equal(t, models.WalletKindMnemonic, w.Kind)
	assert.NotEmpty(t, w.Address)

	got, err := svc.Wallet(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, w.Address, got.Address)

	u, err := svc.GetUser(ctx, 4)
	require.NoError(t, err)
	assert.True(t, u.HasMnemonic)

	_, err = svc.LinkMnemonic(ctx, 4, "not a mnemonic")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestWalletKitAndUnlink(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 5}))

	w, err := svc.Wallet(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, models.WalletKindNone, w.Kind)

	require.NoError(t, svc.ConnectWalletKit(ctx, 5, "EQaddr"))
	w, err = svc.Wallet(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, models.WalletKindWalletKit, w.Kind)
	assert.Equal(t, "EQaddr", w.Address)
	assert.Empty(t, w.TonBalance)

	w, err = svc.WithBalances(balances{}).Wallet(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "2.25", w.TonBalance)

	require.NoError(t, svc.UnlinkWallet(ctx, 5))
	w, err = svc.Wallet(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, models.WalletKindNone, w.Kind)
}

func TestClearData(t *testing.T) {
	svc, store, _, r := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 6}))
	require.NoError(t, store.AddBooster(ctx, 6, boostermodels.ActiveBooster{ID: "B001-1"}))

	require.NoError(t, svc.ClearData(ctx, 6))

	snap, err := store.Snapshot(ctx, 6)
	require.NoError(t, err)
	assert.False(t, snap.HasUser())
	assert.Empty(t, snap.ActiveBoosters)
	assert.Equal(t, []int64{6}, r.forgotten)
}

func TestPlanAndExpiry(t *testing.T) {
	svc, _, c, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 7}))

	plan, err := svc.Plan(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, plan.PlanType)
	assert.Nil(t, plan.EndDate)

	_, err = svc.AdminUpdate(ctx, 7, models.AdminUserUpdate{PlanType: models.Ptr(models.PlanPremium), PlanDuration: models.Ptr(30)})
	require.NoError(t, err)

	n, err := svc.ExpirePlans(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	c.t = c.t.AddDate(0, 0, 31)
	n, err = svc.ExpirePlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	plan, err = svc.Plan(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusExpired, plan.Status)

	u, err := svc.GetUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, u.PlanType)
}

func TestAdminBan(t *testing.T) {
	svc, _, c, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 8}))

	_, err := svc.AdminUpdate(ctx, 8, models.AdminUserUpdate{Banned: models.Ptr(true), BanReason: models.Ptr("spam"), BanHours: models.Ptr(2)})
	require.NoError(t, err)

	banned, reason, expires, err := svc.BanStatus(ctx, 8)
	require.NoError(t, err)
	assert.True(t, banned)
	assert.Equal(t, "spam", reason)
	require.NotNil(t, expires)

	c.t = c.t.Add(3 * time.Hour)
	banned, _, _, err = svc.BanStatus(ctx, 8)
	require.NoError(t, err)
	assert.False(t, banned)

	_, err = svc.AdminUpdate(ctx, 8, models.AdminUserUpdate{Banned: models.Ptr(true)})
	require.NoError(t, err)
	banned, _, expires, err = svc.BanStatus(ctx, 8)
	require.NoError(t, err)
	assert.True(t, banned)
	assert.Nil(t, expires)

	_, err = svc.AdminUpdate(ctx, 8, models.AdminUserUpdate{Banned: models.Ptr(false)})
	require.NoError(t, err)
	banned, _, _, err = svc.BanStatus(ctx, 8)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestIsAdminAndList(t *testing.T) {
	svc, _, c, _ := newService(t, 100)
	ctx := context.Background()

	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 10}))
	c.t = c.t.Add(time.Minute)
	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 9}))

	ok, err := svc.IsAdmin(ctx, 100)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsAdmin(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.AdminUpdate(ctx, 9, models.AdminUserUpdate{Role: models.Ptr(models.RoleAdmin)})
	require.NoError(t, err)
	ok, err = svc.IsAdmin(ctx, 9)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, int64(10), list.Items[0].TelegramID)

	_, err = svc.AdminUpdate(ctx, 404, models.AdminUserUpdate{Role: models.Ptr(models.RoleAdmin)})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))
}

type countingRepo struct {
	*memory.Repository
	updates int
}

func (r *countingRepo) Update(ctx context.Context, telegramID int64, fn repository.UpdateFunc) (*statemodels.Snapshot, error) {
	r.updates++
	return r.Repository.Update(ctx, telegramID, fn)
}

func TestAdminUpdate_PlanAndBanInOneWrite(t *testing.T) {
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo := &countingRepo{Repository: memory.NewRepository()}
	svc := NewService(stateservice.NewStore(repo, c.now), &resetter{}, nil)
	ctx := context.Background()
	require.NoError(t, svc.EnsureUser(ctx, initdata.User{ID: 12}))

	repo.updates = 0
	resp, err := svc.AdminUpdate(ctx, 12, models.AdminUserUpdate{
		Banned:       models.Ptr(true),
		BanReason:    models.Ptr("fraud"),
		PlanType:     models.Ptr(models.PlanPremium),
		PlanDuration: models.Ptr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, models.PlanPremium, resp.PlanType)

	snap, err := repo.Get(ctx, 12)
	require.NoError(t, err)
	assert.True(t, snap.User.Banned)
	assert.Equal(t, "fraud", snap.User.BanReason)
	require.NotNil(t, snap.Plan)
	assert.Equal(t, models.PlanPremium, snap.Plan.PlanType)
}

func TestAdminUpdate_MissingUserWritesNothing(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AdminUpdate(ctx, 404, models.AdminUserUpdate{PlanType: models.Ptr(models.PlanPremium)})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))

	snap, err := store.Snapshot(ctx, 404)
	require.NoError(t, err)
	assert.False(t, snap.HasUser())
	assert.Nil(t, snap.Plan)
}
