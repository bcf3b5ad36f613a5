// Package fractional converts part of an investor share into fungible units
// and back.
//
// Fractionalizing moves balance and a floor-proportional slice of claimed
// revenue from a share into a vault, and mints the same number of units
// from a fresh supply controller that the vault then holds. Redeeming or
// merging burns units and hands balance and claimed revenue back. The
// vault tracks how much claimed revenue is still unreturned so that the
// units together always carry back exactly what was taken out. No share
// produced by these operations may hold claimed revenue above
// floor(balance * deposited / total); amounts whose rounding would do so
// are rejected.
//
// Fractional operations never touch package pools and are never blocked by
// revocation.
package fractional

import (
	"fmt"
	"math"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/coin"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/ledger"
)

// Vault holds the locked controller of one fractionalization.
type Vault struct {
	ID                  id.ID            `json:"id"`
	PackageID           id.ID            `json:"package_id"`
	Controller          SupplyController `json:"controller"`
	ClaimedSnapshot     uint64           `json:"claimed_snapshot"`
	TotalFractionalized uint64           `json:"total_fractionalized"`
	RemainingSnapshot   uint64           `json:"remaining_snapshot"`
}

// Outstanding returns the number of units still circulating.
func (v *Vault) Outstanding() uint64 {
	return v.Controller.Supply
}

// Kind returns the unit kind the vault mints and burns.
func (v *Vault) Kind() id.ID {
	return v.Controller.ID
}

// withinEntitlement fails when claimed revenue on a share of balance would
// exceed floor(balance * deposited / total) for pkg.
func withinEntitlement(pkg *ledger.Package, balance, claimed uint64) error {
	entitled, err := coin.MulDiv(balance, pkg.TotalRevenueDeposited, pkg.TotalShares)
	if err != nil {
		return err
	}
	if claimed > entitled {
		return fmt.Errorf("%w: claimed %d exceeds entitlement %d of balance %d", ErrInvalidAmount, claimed, entitled, balance)
	}
	return nil
}

// Fractionalize splits amount off share into a new vault and mints amount
// units to the caller. ctrl is locked into the vault; the caller must drop
// their own copy. The split fails when rounding would leave the remaining
// share holding more claimed revenue than it is entitled to.
func Fractionalize(pkg *ledger.Package, share *ledger.Share, ctrl *SupplyController, caller account.Address, amount uint64) (*Vault, Units, error) {
	if pkg == nil || share == nil || ctrl == nil {
		return nil, Units{}, fmt.Errorf("%w: package, share or controller", ErrNilParam)
	}
	if !share.PackageID.Equal(pkg.ID) {
		return nil, Units{}, fmt.Errorf("%w: share %s is for %s, not %s", ErrPackageMismatch, share.ID, share.PackageID, pkg.ID)
	}
	if share.Owner != caller {
		return nil, Units{}, fmt.Errorf("%w: share %s", ErrNotOwner, share.ID)
	}
	if ctrl.Owner != caller {
		return nil, Units{}, fmt.Errorf("%w: controller %s", ErrNotOwner, ctrl.ID)
	}
	if !ctrl.Fresh() {
		return nil, Units{}, fmt.Errorf("%w: %s has supply %d", ErrFreshnessViolation, ctrl.ID, ctrl.Supply)
	}
	if amount == 0 || amount >= share.Balance {
		return nil, Units{}, fmt.Errorf("%w: %d of balance %d", ErrInvalidAmount, amount, share.Balance)
	}
	claimedSplit, err := coin.MulDiv(share.ClaimedRevenue, amount, share.Balance)
	if err != nil {
		return nil, Units{}, err
	}
	if err := withinEntitlement(pkg, share.Balance-amount, share.ClaimedRevenue-claimedSplit); err != nil {
		return nil, Units{}, err
	}

	share.Balance -= amount
	share.ClaimedRevenue -= claimedSplit

	vault := &Vault{
		ID:                  id.NewVaultID(),
		PackageID:           share.PackageID,
		ClaimedSnapshot:     claimedSplit,
		TotalFractionalized: amount,
		RemainingSnapshot:   claimedSplit,
	}
	ctrl.Supply = amount
	ctrl.Locked = true
	ctrl.VaultID = vault.ID
	vault.Controller = *ctrl

	return vault, Units{Kind: ctrl.ID, Value: amount}, nil
}

// burn retires units into a share of pkg currently holding balance and
// claimed, and returns the claimed revenue the units carry back. A partial
// burn takes floor(remaining * units / supply) unless that would leave the
// units still outstanding over their entitlement, in which case it takes
// just enough more to keep them within it. The last burn takes the
// remainder. Nothing changes when the receiving share would end up over
// its own entitlement.
func (v *Vault) burn(pkg *ledger.Package, units Units, balance, claimed uint64) (uint64, error) {
	if units.Value == 0 {
		return 0, ErrZeroAmount
	}
	if !units.Kind.Equal(v.Kind()) {
		return 0, fmt.Errorf("%w: vault %s burns %s, got %s", ErrKindMismatch, v.ID, v.Kind(), units.Kind)
	}
	supply := v.Controller.Supply
	if units.Value > supply {
		return 0, fmt.Errorf("%w: burning %d of %d", ErrInsufficientUnits, units.Value, supply)
	}
	out := v.RemainingSnapshot
	if units.Value < supply {
		var err error
		if out, err = coin.MulDiv(v.RemainingSnapshot, units.Value, supply); err != nil {
			return 0, err
		}
		left, err := coin.MulDiv(supply-units.Value, pkg.TotalRevenueDeposited, pkg.TotalShares)
		if err != nil {
			return 0, err
		}
		if v.RemainingSnapshot-out > left {
			out = v.RemainingSnapshot - left
		}
	}
	if units.Value > math.MaxUint64-balance || out > math.MaxUint64-claimed {
		return 0, fmt.Errorf("%w: burning %d into balance %d", coin.ErrOverflow, units.Value, balance)
	}
	if err := withinEntitlement(pkg, balance+units.Value, claimed+out); err != nil {
		return 0, err
	}
	v.Controller.Supply -= units.Value
	v.RemainingSnapshot -= out
	return out, nil
}

// Redeem burns units and mints a new share of the vault's package to the
// caller. Anyone holding units may redeem.
func Redeem(vault *Vault, units Units, pkg *ledger.Package, caller account.Address) (*ledger.Share, error) {
	if vault == nil || pkg == nil {
		return nil, fmt.Errorf("%w: vault or package", ErrNilParam)
	}
	if !vault.PackageID.Equal(pkg.ID) {
		return nil, fmt.Errorf("%w: vault %s is for %s, not %s", ErrPackageMismatch, vault.ID, vault.PackageID, pkg.ID)
	}
	if caller.IsZero() {
		return nil, fmt.Errorf("%w: caller", ErrNilParam)
	}
	claimed, err := vault.burn(pkg, units, 0, 0)
	if err != nil {
		return nil, err
	}
	return &ledger.Share{
		ID:             id.NewShareID(),
		PackageID:      pkg.ID,
		Owner:          caller,
		Balance:        units.Value,
		ClaimedRevenue: claimed,
	}, nil
}

// MergeBack burns units into an existing share of the vault's package.
func MergeBack(pkg *ledger.Package, share *ledger.Share, vault *Vault, units Units, caller account.Address) error {
	if pkg == nil || share == nil || vault == nil {
		return fmt.Errorf("%w: package, share or vault", ErrNilParam)
	}
	if !vault.PackageID.Equal(share.PackageID) {
		return fmt.Errorf("%w: vault %s is for %s, share %s for %s", ErrPackageMismatch, vault.ID, vault.PackageID, share.ID, share.PackageID)
	}
	if !share.PackageID.Equal(pkg.ID) {
		return fmt.Errorf("%w: share %s is for %s, not %s", ErrPackageMismatch, share.ID, share.PackageID, pkg.ID)
	}
	if share.Owner != caller {
		return fmt.Errorf("%w: share %s", ErrNotOwner, share.ID)
	}
	claimed, err := vault.burn(pkg, units, share.Balance, share.ClaimedRevenue)
	if err != nil {
		return err
	}
	share.Balance += units.Value
	share.ClaimedRevenue += claimed
	return nil
}

// DestroyEmptyVault releases a vault whose units are all burned. The
// returned controller is frozen and can never mint again.
func DestroyEmptyVault(vault *Vault) (SupplyController, error) {
	if vault == nil {
		return SupplyController{}, fmt.Errorf("%w: vault", ErrNilParam)
	}
	if vault.Controller.Supply != 0 {
		return SupplyController{}, fmt.Errorf("%w: %d units outstanding", ErrVaultNotEmpty, vault.Controller.Supply)
	}
	ctrl := vault.Controller
	ctrl.Locked = false
	ctrl.Frozen = true
	ctrl.VaultID = id.Nil
	return ctrl, nil
}
