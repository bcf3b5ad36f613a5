package ledger

import (
	"fmt"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/coin"
)

// ValidateShareConservation checks that TokensSold equals the live share
// balances plus units still outstanding in fractional vaults.
func ValidateShareConservation(pkg *Package, shares []*Share, vaultOutstanding uint64) error {
	total := vaultOutstanding
	for _, s := range shares {
		if !s.PackageID.Equal(pkg.ID) {
			return fmt.Errorf("%w: share %s belongs to %s", ErrMismatch, s.ID, s.PackageID)
		}
		total += s.Balance
	}
	if total != pkg.TokensSold {
		return fmt.Errorf("%w: tokens sold %d != held %d", ErrInvariantViolation, pkg.TokensSold, total)
	}
	return nil
}

// CheckInvariants verifies a package against its bond, live shares and the
// units outstanding in its vaults.
func CheckInvariants(pkg *Package, bond *OwnershipBond, shares []*Share, vaultOutstanding uint64) error {
	if pkg == nil || bond == nil {
		return fmt.Errorf("%w: package or bond", ErrNilParam)
	}
	if !bond.ID.Equal(pkg.BondID) || !bond.PackageID.Equal(pkg.ID) {
		return fmt.Errorf("%w: bond %s", ErrMismatch, bond.ID)
	}
	if pkg.TokensSold > pkg.MaxSellableSupply || pkg.MaxSellableSupply > pkg.TotalShares {
		return fmt.Errorf("%w: sold %d, sellable %d, total %d",
			ErrInvariantViolation, pkg.TokensSold, pkg.MaxSellableSupply, pkg.TotalShares)
	}
	maxSellable, err := coin.MulDiv(pkg.TotalShares, pkg.InvestorSplit, SplitDenominator)
	if err != nil {
		return err
	}
	if maxSellable != pkg.MaxSellableSupply {
		return fmt.Errorf("%w: sellable %d, expected %d", ErrInvariantViolation, pkg.MaxSellableSupply, maxSellable)
	}
	if err := ValidateShareConservation(pkg, shares, vaultOutstanding); err != nil {
		return err
	}
	if pkg.RevenuePaidOut > pkg.TotalRevenueDeposited {
		return fmt.Errorf("%w: paid %d of %d deposited", ErrInvariantViolation, pkg.RevenuePaidOut, pkg.TotalRevenueDeposited)
	}
	if pkg.RevenuePool.Value != pkg.TotalRevenueDeposited-pkg.RevenuePaidOut {
		return fmt.Errorf("%w: revenue pool %d != deposited %d - paid %d",
			ErrInvariantViolation, pkg.RevenuePool.Value, pkg.TotalRevenueDeposited, pkg.RevenuePaidOut)
	}
	return nil
}
