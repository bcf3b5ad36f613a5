package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/coin"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/event"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/fractional"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/ledger"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/store"
)

func makeAddr(seed byte) account.Address {
	var addr account.Address
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

var (
	ctx      = context.Background()
	admin    = makeAddr(0xAD)
	owner    = makeAddr(0x01)
	investA  = makeAddr(0x0A)
	investB  = makeAddr(0x0B)
	investC  = makeAddr(0x0C)
	stranger = makeAddr(0xEE)
	docHash  = registry.HashDocument([]byte("loan recovery book"))
	fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type harness struct {
	eng *Engine
	rec *event.Recorder
}

func newHarness(t *testing.T, s store.Store) *harness {
	t.Helper()
	rec := &event.Recorder{}
	eng := New(s, WithClock(func() time.Time { return fixedNow }))
	eng.Bus().SubscribeAll(rec.Handle)
	t.Cleanup(func() { eng.Close() })
	require.NoError(t, eng.Init(ctx, admin))
	return &harness{eng: eng, rec: rec}
}

// forEachStore runs fn against a memory-backed and a bbolt-backed engine.
func forEachStore(t *testing.T, fn func(t *testing.T, h *harness)) {
	t.Run("mem", func(t *testing.T) {
		fn(t, newHarness(t, store.NewMemStore()))
	})
	t.Run("bolt", func(t *testing.T) {
		s, err := store.OpenBoltStore(filepath.Join(t.TempDir(), "engine.db"))
		require.NoError(t, err)
		fn(t, newHarness(t, s))
	})
}

func scenarioParams() PackageParams {
	return PackageParams{
		Name:          "NPL-2026-01",
		TotalShares:   1_000_000_000,
		UnitPrice:     1_000,
		NominalValue:  5_000_000,
		InvestorSplit: 500_000,
	}
}

func (h *harness) register(t *testing.T, creator account.Address) id.ID {
	t.Helper()
	rec, err := h.eng.Register(ctx, admin, id.Nil, docHash, creator)
	require.NoError(t, err)
	return rec.ID
}

func (h *harness) create(t *testing.T, p PackageParams) (id.ID, *ledger.Package) {
	t.Helper()
	nid := h.register(t, owner)
	pkg, _, err := h.eng.CreatePackage(ctx, owner, nid, p)
	require.NoError(t, err)
	return nid, pkg
}

func (h *harness) buy(t *testing.T, pkg *ledger.Package, who account.Address, amount uint64) *ledger.Share {
	t.Helper()
	share, change, err := h.eng.Buy(ctx, who, pkg.ID, amount, coin.New(amount*pkg.UnitPrice))
	require.NoError(t, err)
	assert.True(t, change.IsZero())
	return share
}

func (h *harness) share(t *testing.T, shareID id.ID) *ledger.Share {
	t.Helper()
	s, err := h.eng.Share(ctx, shareID)
	require.NoError(t, err)
	return s
}

func TestInit(t *testing.T) {
	eng := New(store.NewMemStore())
	defer eng.Close()

	ok, err := eng.Initialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = eng.Register(ctx, admin, id.Nil, docHash, owner)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, ReasonNotFound, Reason(err))

	require.NoError(t, eng.Init(ctx, admin))
	assert.ErrorIs(t, eng.Init(ctx, admin), ErrAlreadyInitialized)

	ok, err = eng.Initialized(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	reg, err := eng.Registry(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, reg.Admin)
}

func TestLiteralScenario(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		_, pkg := h.create(t, scenarioParams())
		assert.Equal(t, uint64(500_000_000), pkg.MaxSellableSupply)

		a := h.buy(t, pkg, investA, 100_000)
		b := h.buy(t, pkg, investB, 200_000)
		assert.Equal(t, uint64(0), a.ClaimedRevenue)
		assert.Equal(t, uint64(0), b.ClaimedRevenue)

		require.NoError(t, h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(1_000_000)))

		c := h.buy(t, pkg, investC, 50_000)
		assert.Equal(t, uint64(50), c.ClaimedRevenue)
		stored, err := h.eng.Package(ctx, pkg.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(50), stored.OwnerLegacyRevenue)
		assert.Equal(t, uint64(350_000_000), stored.FundingPool.Value)

		out, err := h.eng.ClaimRevenue(ctx, investA, a.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), out.Value)
		out, err = h.eng.ClaimRevenue(ctx, investB, b.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), out.Value)
		out, err = h.eng.ClaimRevenue(ctx, investC, c.ID)
		require.NoError(t, err)
		assert.True(t, out.IsZero())

		out, err = h.eng.ClaimOwnerRevenue(ctx, owner, pkg.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(999_700), out.Value)

		stored, err = h.eng.Package(ctx, pkg.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), stored.RevenuePool.Value)
		assert.Equal(t, stored.TotalRevenueDeposited, stored.RevenuePaidOut)

		ctrl, err := h.eng.NewSupplyController(ctx, investA)
		require.NoError(t, err)
		vault, err := h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 40_000)
		require.NoError(t, err)
		assert.Equal(t, uint64(40), vault.ClaimedSnapshot)
		assert.Equal(t, uint64(40_000), vault.TotalFractionalized)

		a = h.share(t, a.ID)
		assert.Equal(t, uint64(60_000), a.Balance)
		assert.Equal(t, uint64(60), a.ClaimedRevenue)
		held, err := h.eng.Units(ctx, ctrl.ID, investA)
		require.NoError(t, err)
		assert.Equal(t, uint64(40_000), held)
		require.NoError(t, h.eng.CheckInvariants(ctx, pkg.ID))

		redeemed, err := h.eng.Redeem(ctx, investA, vault.ID, pkg.ID, 40_000)
		require.NoError(t, err)
		assert.Equal(t, uint64(40_000), redeemed.Balance)
		assert.Equal(t, uint64(40), redeemed.ClaimedRevenue)
		assert.Equal(t, uint64(100_000), a.Balance+redeemed.Balance)
		assert.Equal(t, uint64(100), a.ClaimedRevenue+redeemed.ClaimedRevenue)

		frozen, err := h.eng.DestroyEmptyVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.True(t, frozen.Frozen)
		_, err = h.eng.Vault(ctx, vault.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 1)
		assert.ErrorIs(t, err, fractional.ErrFreshnessViolation)

		require.NoError(t, h.eng.CheckInvariants(ctx, pkg.ID))

		assert.Equal(t, []event.EventType{
			event.NotarizationRegisteredEventType,
			event.PackageCreatedEventType,
			event.SharesPurchasedEventType,
			event.SharesPurchasedEventType,
			event.RevenueDepositedEventType,
			event.SharesPurchasedEventType,
			event.RevenueClaimedEventType,
			event.RevenueClaimedEventType,
			event.OwnerRevenueClaimedEventType,
			event.ControllerCreatedEventType,
			event.ShareFractionalizedEventType,
			event.UnitsRedeemedEventType,
			event.VaultDestroyedEventType,
		}, h.rec.Types())
	})
}

func TestCreatePackage_Failures(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	nid := h.register(t, owner)

	p := scenarioParams()
	p.InvestorSplit = ledger.MaxInvestorSplit + 1
	_, _, err := h.eng.CreatePackage(ctx, owner, nid, p)
	assert.ErrorIs(t, err, ledger.ErrInvalidSplit)
	assert.Equal(t, ReasonInvalidSplit, Reason(err))

	p = scenarioParams()
	p.TotalShares = ledger.MinShares - 1
	_, _, err = h.eng.CreatePackage(ctx, owner, nid, p)
	assert.Equal(t, ReasonSupplyTooLow, Reason(err))

	_, _, err = h.eng.CreatePackage(ctx, stranger, nid, scenarioParams())
	assert.Equal(t, ReasonUnauthorized, Reason(err))

	_, _, err = h.eng.CreatePackage(ctx, owner, id.NewNotarizationID(), scenarioParams())
	assert.Equal(t, ReasonNotFound, Reason(err))

	rec, err := h.eng.Notarization(ctx, nid)
	require.NoError(t, err)
	assert.False(t, rec.IsBound(), "failed creates leave the notarization unbound")

	pkg, _, err := h.eng.CreatePackage(ctx, owner, nid, scenarioParams())
	require.NoError(t, err)
	_, _, err = h.eng.CreatePackage(ctx, owner, nid, scenarioParams())
	assert.ErrorIs(t, err, registry.ErrAlreadyUsed)

	pkgs, err := h.eng.Packages(ctx)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.True(t, pkgs[0].ID.Equal(pkg.ID))
}

func TestCreatePackage_SalesPolicy(t *testing.T) {
	s := store.NewMemStore()
	eng := New(s, WithSalesOpenOnCreate(false))
	defer eng.Close()
	require.NoError(t, eng.Init(ctx, admin))

	rec, err := eng.Register(ctx, admin, id.Nil, docHash, owner)
	require.NoError(t, err)
	pkg, _, err := eng.CreatePackage(ctx, owner, rec.ID, scenarioParams())
	require.NoError(t, err)
	assert.False(t, pkg.SalesOpen)

	_, change, err := eng.Buy(ctx, investA, pkg.ID, 1, coin.New(5_000))
	assert.ErrorIs(t, err, ledger.ErrSalesClosed)
	assert.Equal(t, ReasonStateClosed, Reason(err))
	assert.Equal(t, uint64(5_000), change.Value, "payment comes back on failure")

	require.NoError(t, eng.AuthorizeSalesToggle(ctx, admin, pkg.ID, true, rec.ID))
	open, err := eng.ToggleSales(ctx, pkg.ID)
	require.NoError(t, err)
	assert.True(t, open)

	_, change, err = eng.Buy(ctx, investA, pkg.ID, 1, coin.New(5_000))
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000), change.Value)
}

func TestExecutorAllowList(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	nid := h.register(t, owner)

	_, err := h.eng.RemoveExecutor(ctx, stranger, registry.ExecutorLedger)
	assert.Equal(t, ReasonUnauthorized, Reason(err))

	changed, err := h.eng.RemoveExecutor(ctx, admin, registry.ExecutorLedger)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = h.eng.RemoveExecutor(ctx, admin, registry.ExecutorLedger)
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = h.eng.CreatePackage(ctx, owner, nid, scenarioParams())
	assert.ErrorIs(t, err, registry.ErrUnauthorizedExecutor)
	rec, err := h.eng.Notarization(ctx, nid)
	require.NoError(t, err)
	assert.False(t, rec.IsBound())

	changed, err = h.eng.AddExecutor(ctx, admin, registry.ExecutorLedger)
	require.NoError(t, err)
	assert.True(t, changed)
	_, _, err = h.eng.CreatePackage(ctx, owner, nid, scenarioParams())
	require.NoError(t, err)
}

func TestRevocation(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	nid, pkg := h.create(t, scenarioParams())
	a := h.buy(t, pkg, investA, 1_000)
	require.NoError(t, h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(10_000_000)))

	require.NoError(t, h.eng.Revoke(ctx, admin, nid))
	assert.ErrorIs(t, h.eng.Revoke(ctx, admin, nid), registry.ErrAlreadyRevoked)

	_, _, err := h.eng.Buy(ctx, investB, pkg.ID, 1, coin.New(1_000))
	assert.Equal(t, ReasonRevoked, Reason(err))
	_, err = h.eng.WithdrawFunding(ctx, owner, pkg.ID, 1)
	assert.Equal(t, ReasonRevoked, Reason(err))
	assert.Equal(t, ReasonRevoked, Reason(h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(1))))
	require.NoError(t, h.eng.AuthorizeSalesToggle(ctx, admin, pkg.ID, false, nid))
	_, err = h.eng.ToggleSales(ctx, pkg.ID)
	assert.Equal(t, ReasonRevoked, Reason(err))

	out, err := h.eng.ClaimRevenue(ctx, investA, a.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), out.Value)
	out, err = h.eng.ClaimOwnerRevenue(ctx, owner, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_999_990), out.Value)

	ctrl, err := h.eng.NewSupplyController(ctx, investA)
	require.NoError(t, err)
	vault, err := h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 500)
	require.NoError(t, err)
	require.NoError(t, h.eng.MergeBack(ctx, investA, a.ID, vault.ID, 500))

	require.NoError(t, h.eng.Unrevoke(ctx, admin, nid))
	assert.ErrorIs(t, h.eng.Unrevoke(ctx, admin, nid), registry.ErrNotRevoked)
	h.buy(t, pkg, investB, 1)
	require.NoError(t, h.eng.CheckInvariants(ctx, pkg.ID))
}

func TestClaims_Idempotent(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	_, pkg := h.create(t, scenarioParams())
	a := h.buy(t, pkg, investA, 123_457)
	require.NoError(t, h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(987_654_321)))

	first, err := h.eng.ClaimRevenue(ctx, investA, a.ID)
	require.NoError(t, err)
	assert.False(t, first.IsZero())
	h.rec.Reset()
	second, err := h.eng.ClaimRevenue(ctx, investA, a.ID)
	require.NoError(t, err)
	assert.True(t, second.IsZero())
	assert.Empty(t, h.rec.Events(), "zero payouts publish nothing")

	first, err = h.eng.ClaimOwnerRevenue(ctx, owner, pkg.ID)
	require.NoError(t, err)
	assert.False(t, first.IsZero())
	second, err = h.eng.ClaimOwnerRevenue(ctx, owner, pkg.ID)
	require.NoError(t, err)
	assert.True(t, second.IsZero())

	_, err = h.eng.ClaimRevenue(ctx, investB, a.ID)
	assert.Equal(t, ReasonUnauthorized, Reason(err))

	ent, err := h.eng.Entitlement(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), ent.Due)
	assert.Equal(t, ent.Entitled, ent.Claimed)
}

func TestFundingWithdrawal(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	_, pkg := h.create(t, scenarioParams())
	h.buy(t, pkg, investA, 10)

	_, err := h.eng.WithdrawFunding(ctx, stranger, pkg.ID, 1)
	assert.Equal(t, ReasonUnauthorized, Reason(err))
	_, err = h.eng.WithdrawFunding(ctx, owner, pkg.ID, 10_001)
	assert.Equal(t, ReasonInsufficientBal, Reason(err))
	_, err = h.eng.WithdrawFunding(ctx, owner, pkg.ID, 0)
	assert.Equal(t, ReasonZeroAmount, Reason(err))

	out, err := h.eng.WithdrawFunding(ctx, owner, pkg.ID, 4_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000), out.Value)

	stored, err := h.eng.Package(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(6_000), stored.FundingPool.Value)
}

func TestBondTransfer(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	nid, pkg := h.create(t, scenarioParams())
	newOwner := makeAddr(0x02)

	err := h.eng.TransferBond(ctx, owner, pkg.ID, newOwner)
	assert.ErrorIs(t, err, registry.ErrNotAuthorized)

	require.NoError(t, h.eng.AuthorizeTransfer(ctx, admin, pkg.ID, stranger, nid))
	require.NoError(t, h.eng.AuthorizeTransfer(ctx, admin, pkg.ID, newOwner, nid))
	assert.ErrorIs(t, h.eng.TransferBond(ctx, owner, pkg.ID, stranger), registry.ErrNotAuthorized)
	require.NoError(t, h.eng.TransferBond(ctx, owner, pkg.ID, newOwner))
	assert.ErrorIs(t, h.eng.TransferBond(ctx, newOwner, pkg.ID, newOwner), registry.ErrNotAuthorized, "ticket is spent")

	bond, err := h.eng.Bond(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, newOwner, bond.Owner)

	assert.Equal(t, ReasonUnauthorized, Reason(h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(1))))
	require.NoError(t, h.eng.DepositRevenue(ctx, newOwner, pkg.ID, coin.New(1)))

	require.NoError(t, h.eng.AuthorizeTransfer(ctx, admin, pkg.ID, owner, nid))
	require.NoError(t, h.eng.CancelTransfer(ctx, admin, pkg.ID))
	assert.ErrorIs(t, h.eng.CancelTransfer(ctx, admin, pkg.ID), registry.ErrNotAuthorized)
	assert.ErrorIs(t, h.eng.TransferBond(ctx, newOwner, pkg.ID, owner), registry.ErrNotAuthorized)

	other := h.register(t, owner)
	err = h.eng.AuthorizeTransfer(ctx, admin, pkg.ID, owner, other)
	assert.Equal(t, ReasonMismatch, Reason(err))
}

func TestSalesToggleTicket(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	nid, pkg := h.create(t, scenarioParams())

	_, err := h.eng.ToggleSales(ctx, pkg.ID)
	assert.ErrorIs(t, err, registry.ErrNotAuthorized)

	require.NoError(t, h.eng.AuthorizeSalesToggle(ctx, admin, pkg.ID, false, nid))
	open, err := h.eng.ToggleSales(ctx, pkg.ID)
	require.NoError(t, err)
	assert.False(t, open)

	_, _, err = h.eng.Buy(ctx, investA, pkg.ID, 1, coin.New(1_000))
	assert.ErrorIs(t, err, ledger.ErrSalesClosed)

	require.NoError(t, h.eng.AuthorizeSalesToggle(ctx, admin, pkg.ID, true, nid))
	require.NoError(t, h.eng.CancelSalesToggle(ctx, admin, pkg.ID))
	_, err = h.eng.ToggleSales(ctx, pkg.ID)
	assert.ErrorIs(t, err, registry.ErrNotAuthorized)
}

func TestShareTransfer(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	_, pkg := h.create(t, scenarioParams())
	a := h.buy(t, pkg, investA, 1_000_000)
	require.NoError(t, h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(1_000)))

	assert.Equal(t, ReasonUnauthorized, Reason(h.eng.TransferShare(ctx, investB, a.ID, investB)))
	require.NoError(t, h.eng.TransferShare(ctx, investA, a.ID, investB))

	byOwner, err := h.eng.SharesByOwner(ctx, investB)
	require.NoError(t, err)
	require.Len(t, byOwner, 1)

	out, err := h.eng.ClaimRevenue(ctx, investB, a.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.Value, "accrued revenue travels with the share")
}

func TestFractional_MergeBackRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		_, pkg := h.create(t, scenarioParams())
		a := h.buy(t, pkg, investA, 100_003)
		require.NoError(t, h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(7_777_777)))
		_, err := h.eng.ClaimRevenue(ctx, investA, a.ID)
		require.NoError(t, err)
		a = h.share(t, a.ID)
		before := *a

		ctrl, err := h.eng.NewSupplyController(ctx, investA)
		require.NoError(t, err)
		vault, err := h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 30_000)
		require.NoError(t, err)

		require.NoError(t, h.eng.TransferUnits(ctx, investA, ctrl.ID, investB, 10_000))
		bShare, err := h.eng.Redeem(ctx, investB, vault.ID, pkg.ID, 3_100)
		require.NoError(t, err)
		require.NoError(t, h.eng.CheckInvariants(ctx, pkg.ID))

		require.NoError(t, h.eng.TransferUnits(ctx, investB, ctrl.ID, investA, 6_900))
		require.NoError(t, h.eng.MergeBack(ctx, investA, a.ID, vault.ID, 30_000-3_100))

		a = h.share(t, a.ID)
		assert.Equal(t, before.Balance, a.Balance+bShare.Balance)
		assert.Equal(t, before.ClaimedRevenue, a.ClaimedRevenue+bShare.ClaimedRevenue)

		v, err := h.eng.Vault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), v.Outstanding())
		assert.Equal(t, uint64(0), v.RemainingSnapshot)
		require.NoError(t, h.eng.CheckInvariants(ctx, pkg.ID))
	})
}

func TestFractional_Failures(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	_, pkg := h.create(t, scenarioParams())
	_, other := h.create(t, scenarioParams())
	a := h.buy(t, pkg, investA, 100)
	b := h.buy(t, other, investB, 100)

	ctrl, err := h.eng.NewSupplyController(ctx, investA)
	require.NoError(t, err)

	_, err = h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 100)
	assert.Equal(t, ReasonInvalidAmount, Reason(err))
	_, err = h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 0)
	assert.Equal(t, ReasonInvalidAmount, Reason(err))
	_, err = h.eng.Fractionalize(ctx, investB, b.ID, ctrl.ID, 10)
	assert.Equal(t, ReasonUnauthorized, Reason(err), "controller belongs to A")

	vault, err := h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 50)
	require.NoError(t, err)

	_, err = h.eng.Redeem(ctx, investA, vault.ID, other.ID, 10)
	assert.Equal(t, ReasonMismatch, Reason(err))
	_, err = h.eng.Redeem(ctx, investA, vault.ID, pkg.ID, 51)
	assert.Equal(t, ReasonInsufficientBal, Reason(err))
	_, err = h.eng.Redeem(ctx, investA, vault.ID, pkg.ID, 0)
	assert.Equal(t, ReasonZeroAmount, Reason(err))
	err = h.eng.MergeBack(ctx, investA, b.ID, vault.ID, 10)
	assert.Equal(t, ReasonMismatch, Reason(err))

	_, err = h.eng.DestroyEmptyVault(ctx, vault.ID)
	assert.ErrorIs(t, err, fractional.ErrVaultNotEmpty)

	assert.Equal(t, ReasonZeroAmount, Reason(h.eng.TransferUnits(ctx, investA, ctrl.ID, investB, 0)))
	assert.Equal(t, ReasonInsufficientBal, Reason(h.eng.TransferUnits(ctx, investB, ctrl.ID, investA, 1)))
}

func TestFractionalize_RefusesOverEntitledRemainder(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		_, pkg := h.create(t, PackageParams{
			Name:          "small",
			TotalShares:   1_000,
			UnitPrice:     1,
			InvestorSplit: 500_000,
		})
		a := h.buy(t, pkg, investA, 3)
		b := h.buy(t, pkg, investB, 3)
		require.NoError(t, h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(500)))
		for who, s := range map[account.Address]*ledger.Share{investA: a, investB: b} {
			out, err := h.eng.ClaimRevenue(ctx, who, s.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), out.Value)
		}

		// Splitting 2 of 3 moves floor(1*2/3) = 0 claimed out and leaves 1
		// claimed on a single share entitled to 0.
		ctrl, err := h.eng.NewSupplyController(ctx, investA)
		require.NoError(t, err)
		_, err = h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 2)
		assert.ErrorIs(t, err, fractional.ErrInvalidAmount)
		assert.Equal(t, ReasonInvalidAmount, Reason(err))
		stored := h.share(t, a.ID)
		assert.Equal(t, uint64(3), stored.Balance)
		assert.Equal(t, uint64(1), stored.ClaimedRevenue)

		vault, err := h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 1)
		require.NoError(t, err)
		require.NoError(t, h.eng.TransferUnits(ctx, investA, ctrl.ID, investB, 1))
		_, err = h.eng.Redeem(ctx, investB, vault.ID, pkg.ID, 1)
		require.NoError(t, err)
		require.NoError(t, h.eng.CheckInvariants(ctx, pkg.ID))

		out, err := h.eng.ClaimOwnerRevenue(ctx, owner, pkg.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(497), out.Value)

		shares, err := h.eng.SharesByPackage(ctx, pkg.ID)
		require.NoError(t, err)
		for _, s := range shares {
			_, err := h.eng.ClaimRevenue(ctx, s.Owner, s.ID)
			require.NoError(t, err)
		}
		require.NoError(t, h.eng.CheckInvariants(ctx, pkg.ID))
	})
}

func TestFailedOperation_RollsBackAndPublishesNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		_, pkg := h.create(t, scenarioParams())
		a := h.buy(t, pkg, investA, 100)
		b := h.buy(t, pkg, investB, 100)
		ctrl, err := h.eng.NewSupplyController(ctx, investA)
		require.NoError(t, err)
		vault, err := h.eng.Fractionalize(ctx, investA, a.ID, ctrl.ID, 50)
		require.NoError(t, err)
		h.rec.Reset()

		// Units are debited before the ownership check fails.
		err = h.eng.MergeBack(ctx, investA, b.ID, vault.ID, 10)
		assert.ErrorIs(t, err, fractional.ErrNotOwner)

		held, err := h.eng.Units(ctx, ctrl.ID, investA)
		require.NoError(t, err)
		assert.Equal(t, uint64(50), held)
		v, err := h.eng.Vault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(50), v.Outstanding())
		assert.Empty(t, h.rec.Events())
	})
}

func TestUnboundClaimAbortsOperation(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	nid := h.register(t, owner)
	h.rec.Reset()

	err := h.eng.update(ctx, "leak", func(o *op) error {
		_, err := o.claim(nid, owner)
		o.emit(event.PackageCreatedEventType, event.PackageCreatedEvent{})
		return err
	})
	assert.ErrorIs(t, err, registry.ErrClaimNotConsumed)
	assert.Empty(t, h.rec.Events())
}

func TestCancelledContext(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := h.eng.Register(cctx, admin, id.Nil, docHash, owner)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = h.eng.Packages(cctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifyDocument(t *testing.T) {
	h := newHarness(t, store.NewMemStore())
	_, pkg := h.create(t, scenarioParams())

	ok, err := h.eng.VerifyDocument(ctx, pkg.ID, docHash)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.eng.VerifyDocument(ctx, pkg.ID, registry.HashDocument([]byte("forged")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ReasonNone},
		{fmt.Errorf("wrapped: %w", registry.ErrNotFound), ReasonNotFound},
		{registry.ErrAlreadyUsed, ReasonAlreadyUsed},
		{ledger.ErrRevoked, ReasonRevoked},
		{registry.ErrNotRevoked, ReasonNotRevoked},
		{fractional.ErrNotOwner, ReasonUnauthorized},
		{ledger.ErrInsufficientSupply, ReasonInsufficientSupply},
		{fmt.Errorf("%w: cost overflows: %w", ledger.ErrInsufficientPayment, coin.ErrOverflow), ReasonInsufficientPay},
		{fractional.ErrFreshnessViolation, ReasonFreshnessViolation},
		{fractional.ErrKindMismatch, ReasonMismatch},
		{fmt.Errorf("disk on fire"), ReasonInternal},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err))
		})
	}
}

// TestRandomOperations drives one package through seeded random sequences
// and checks the accounting invariants after every step.
func TestRandomOperations(t *testing.T) {
	for seed := uint64(1); seed <= 6; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*7919))
			h := newHarness(t, store.NewMemStore())
			_, pkg := h.create(t, PackageParams{
				Name:          "random",
				TotalShares:   10_007,
				UnitPrice:     3,
				InvestorSplit: 733_333,
			})
			investors := []account.Address{investA, investB, investC}
			var vaults []id.ID

			sharesOf := func(who account.Address) []*ledger.Share {
				all, err := h.eng.SharesByOwner(ctx, who)
				require.NoError(t, err)
				return all
			}
			pick := func(shares []*ledger.Share) *ledger.Share {
				if len(shares) == 0 {
					return nil
				}
				return shares[rng.IntN(len(shares))]
			}
			// Fractional amounts whose rounding would break an entitlement
			// are refused; anything else must succeed.
			fracErr := func(err error) {
				if err != nil {
					require.ErrorIs(t, err, fractional.ErrInvalidAmount)
				}
			}

			for step := range 400 {
				who := investors[rng.IntN(len(investors))]
				switch rng.IntN(9) {
				case 0, 1:
					amount := rng.Uint64N(300) + 1
					_, _, err := h.eng.Buy(ctx, who, pkg.ID, amount, coin.New(amount*3+rng.Uint64N(5)))
					if err != nil {
						require.ErrorIs(t, err, ledger.ErrInsufficientSupply)
					}
				case 2:
					require.NoError(t, h.eng.DepositRevenue(ctx, owner, pkg.ID, coin.New(rng.Uint64N(50_000)+1)))
				case 3:
					if s := pick(sharesOf(who)); s != nil {
						_, err := h.eng.ClaimRevenue(ctx, who, s.ID)
						require.NoError(t, err)
					}
				case 4:
					_, err := h.eng.ClaimOwnerRevenue(ctx, owner, pkg.ID)
					require.NoError(t, err)
				case 5:
					if s := pick(sharesOf(who)); s != nil {
						require.NoError(t, h.eng.TransferShare(ctx, who, s.ID, investors[rng.IntN(len(investors))]))
					}
				case 6:
					s := pick(sharesOf(who))
					if s == nil || s.Balance < 2 {
						continue
					}
					ctrl, err := h.eng.NewSupplyController(ctx, who)
					require.NoError(t, err)
					vault, err := h.eng.Fractionalize(ctx, who, s.ID, ctrl.ID, rng.Uint64N(s.Balance-1)+1)
					fracErr(err)
					if err == nil {
						vaults = append(vaults, vault.ID)
					}
				case 7, 8:
					if len(vaults) == 0 {
						continue
					}
					vault, err := h.eng.Vault(ctx, vaults[rng.IntN(len(vaults))])
					require.NoError(t, err)
					held, err := h.eng.Units(ctx, vault.Kind(), who)
					require.NoError(t, err)
					if held == 0 {
						// Hand units to who so the burn paths get exercised.
						for _, from := range investors {
							n, err := h.eng.Units(ctx, vault.Kind(), from)
							require.NoError(t, err)
							if n > 0 && from != who {
								require.NoError(t, h.eng.TransferUnits(ctx, from, vault.Kind(), who, n))
								held = n
								break
							}
						}
					}
					if held == 0 {
						continue
					}
					amount := rng.Uint64N(held) + 1
					target := pick(sharesOf(who))
					if target != nil && target.PackageID.Equal(vault.PackageID) && rng.IntN(2) == 0 {
						fracErr(h.eng.MergeBack(ctx, who, target.ID, vault.ID, amount))
					} else {
						_, err := h.eng.Redeem(ctx, who, vault.ID, pkg.ID, amount)
						fracErr(err)
					}
				}

				require.NoError(t, h.eng.CheckInvariants(ctx, pkg.ID), "step %d", step)

				cur, err := h.eng.Package(ctx, pkg.ID)
				require.NoError(t, err)
				assert.LessOrEqual(t, cur.TokensSold, cur.MaxSellableSupply)
				shares, err := h.eng.SharesByPackage(ctx, pkg.ID)
				require.NoError(t, err)
				for _, s := range shares {
					bound, err := coin.MulDiv(s.Balance, cur.TotalRevenueDeposited, cur.TotalShares)
					require.NoError(t, err)
					assert.LessOrEqual(t, s.ClaimedRevenue, bound, "share %s at step %d", s.ID, step)
				}
			}
		})
	}
}
