// Package ledger implements per-package revenue accounting.
//
// Revenue is shared pari passu across all TotalShares. Unsold shares belong
// to the owner. Entitlements are computed lazily from running totals:
//
//	entitled(share) = floor(balance * TotalRevenueDeposited / TotalShares)
//	entitled(owner) = floor(unsold * TotalRevenueDeposited / TotalShares) + OwnerLegacyRevenue
//
// and a claim pays entitled minus what the position already claimed. All
// division floors; the remainder stays in the revenue pool.
//
// Every method validates before it mutates, so a returned error leaves the
// records untouched.
package ledger

import (
	"fmt"
	"time"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/coin"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
)

// Create opens a new package for the holder of claim. The claim is bound to
// the new package identity and the ownership bond is minted to creator.
func Create(reg *registry.Registry, claim *registry.Claim, p Params, creator account.Address, now time.Time) (*Package, *OwnershipBond, error) {
	if reg == nil || claim == nil {
		return nil, nil, fmt.Errorf("%w: registry or claim", ErrNilParam)
	}
	if creator.IsZero() {
		return nil, nil, fmt.Errorf("%w: creator", ErrNilParam)
	}
	if p.TotalShares < MinShares {
		return nil, nil, fmt.Errorf("%w: %d < %d", ErrSupplyTooLow, p.TotalShares, MinShares)
	}
	if p.InvestorSplit > MaxInvestorSplit {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrInvalidSplit, p.InvestorSplit, MaxInvestorSplit)
	}
	maxSellable, err := coin.MulDiv(p.TotalShares, p.InvestorSplit, SplitDenominator)
	if err != nil {
		return nil, nil, err
	}
	rec, err := reg.Notarization(claim.NotarizationID())
	if err != nil {
		return nil, nil, err
	}

	pkgID := id.NewPackageID()
	if err := reg.Bind(claim, pkgID, registry.ExecutorLedger); err != nil {
		return nil, nil, err
	}

	bond := &OwnershipBond{
		ID:        id.NewBondID(),
		PackageID: pkgID,
		Owner:     creator,
	}
	pkg := &Package{
		ID:                pkgID,
		NotarizationID:    rec.ID,
		Name:              p.Name,
		DocumentHash:      rec.DocumentHash,
		TotalShares:       p.TotalShares,
		InvestorSplit:     p.InvestorSplit,
		MaxSellableSupply: maxSellable,
		UnitPrice:         p.UnitPrice,
		NominalValue:      p.NominalValue,
		SalesOpen:         p.SalesOpen,
		BondID:            bond.ID,
		CreatedAt:         now.UTC(),
		MetadataURI:       p.MetadataURI,
	}
	return pkg, bond, nil
}

func (p *Package) requireValid(reg *registry.Registry) error {
	if reg == nil {
		return fmt.Errorf("%w: registry", ErrNilParam)
	}
	if !reg.IsValid(p.NotarizationID) {
		return fmt.Errorf("%w: %s", ErrRevoked, p.NotarizationID)
	}
	return nil
}

func (p *Package) requireBond(bond *OwnershipBond, caller account.Address) error {
	if bond == nil {
		return fmt.Errorf("%w: bond", ErrNilParam)
	}
	if !bond.PackageID.Equal(p.ID) || !bond.ID.Equal(p.BondID) {
		return fmt.Errorf("%w: bond %s", ErrMismatch, bond.ID)
	}
	if bond.Owner != caller {
		return fmt.Errorf("%w: bond %s", ErrNotOwner, bond.ID)
	}
	return nil
}

func (p *Package) requireShare(share *Share, caller account.Address) error {
	if share == nil {
		return fmt.Errorf("%w: share", ErrNilParam)
	}
	if !share.PackageID.Equal(p.ID) {
		return fmt.Errorf("%w: share %s", ErrMismatch, share.ID)
	}
	if share.Owner != caller {
		return fmt.Errorf("%w: share %s", ErrNotOwner, share.ID)
	}
	return nil
}

// Buy sells amount shares to buyer. The cost is taken from payment and the
// rest is returned as change. The new share starts pre-charged with the
// revenue that accrued before the purchase; that amount is credited to the
// owner.
func (p *Package) Buy(reg *registry.Registry, buyer account.Address, amount uint64, payment coin.Coin) (*Share, coin.Coin, error) {
	if err := p.requireValid(reg); err != nil {
		return nil, payment, err
	}
	if !p.SalesOpen {
		return nil, payment, fmt.Errorf("%w: %s", ErrSalesClosed, p.ID)
	}
	if buyer.IsZero() {
		return nil, payment, fmt.Errorf("%w: buyer", ErrNilParam)
	}
	if amount == 0 {
		return nil, payment, ErrZeroAmount
	}
	if amount > p.RemainingSupply() {
		return nil, payment, fmt.Errorf("%w: requested %d, remaining %d", ErrInsufficientSupply, amount, p.RemainingSupply())
	}
	cost, err := coin.Mul(amount, p.UnitPrice)
	if err != nil {
		return nil, payment, fmt.Errorf("%w: cost overflows: %w", ErrInsufficientPayment, err)
	}
	if payment.Value < cost {
		return nil, payment, fmt.Errorf("%w: cost %d, paid %d", ErrInsufficientPayment, cost, payment.Value)
	}
	preCharge, err := coin.MulDiv(amount, p.TotalRevenueDeposited, p.TotalShares)
	if err != nil {
		return nil, payment, err
	}

	funding := p.FundingPool
	change := payment
	paid, err := change.Split(cost)
	if err != nil {
		return nil, payment, err
	}
	if err := funding.Join(paid); err != nil {
		return nil, payment, err
	}

	p.FundingPool = funding
	p.TokensSold += amount
	p.OwnerLegacyRevenue += preCharge

	share := &Share{
		ID:             id.NewShareID(),
		PackageID:      p.ID,
		Owner:          buyer,
		Balance:        amount,
		ClaimedRevenue: preCharge,
	}
	return share, change, nil
}

// WithdrawFunding moves amount out of the funding pool to the bond holder.
func (p *Package) WithdrawFunding(reg *registry.Registry, bond *OwnershipBond, caller account.Address, amount uint64) (coin.Coin, error) {
	if err := p.requireValid(reg); err != nil {
		return coin.Zero(), err
	}
	if err := p.requireBond(bond, caller); err != nil {
		return coin.Zero(), err
	}
	if amount == 0 {
		return coin.Zero(), ErrZeroAmount
	}
	out, err := p.FundingPool.Split(amount)
	if err != nil {
		return coin.Zero(), fmt.Errorf("%w: %w", ErrInsufficientBalance, err)
	}
	return out, nil
}

// DepositRevenue adds payment to the revenue pool.
func (p *Package) DepositRevenue(reg *registry.Registry, bond *OwnershipBond, caller account.Address, payment coin.Coin) error {
	if err := p.requireValid(reg); err != nil {
		return err
	}
	if err := p.requireBond(bond, caller); err != nil {
		return err
	}
	if payment.IsZero() {
		return ErrZeroAmount
	}
	total := p.TotalRevenueDeposited + payment.Value
	if total < p.TotalRevenueDeposited {
		return fmt.Errorf("%w: total revenue overflows", coin.ErrOverflow)
	}
	if err := p.RevenuePool.Join(payment); err != nil {
		return err
	}
	p.TotalRevenueDeposited = total
	return nil
}

// Entitlement returns floor(balance * deposited / total) and what a claim
// on share would pay now.
func (p *Package) Entitlement(share *Share) (entitled, due uint64, err error) {
	if share == nil {
		return 0, 0, fmt.Errorf("%w: share", ErrNilParam)
	}
	entitled, err = coin.MulDiv(share.Balance, p.TotalRevenueDeposited, p.TotalShares)
	if err != nil {
		return 0, 0, err
	}
	if entitled > share.ClaimedRevenue {
		due = entitled - share.ClaimedRevenue
	}
	return entitled, due, nil
}

// OwnerEntitlement returns the owner's total entitlement and what a claim
// on bond would pay now.
func (p *Package) OwnerEntitlement(bond *OwnershipBond) (entitled, due uint64, err error) {
	if bond == nil {
		return 0, 0, fmt.Errorf("%w: bond", ErrNilParam)
	}
	unsold := p.TotalShares - p.TokensSold
	current, err := coin.MulDiv(unsold, p.TotalRevenueDeposited, p.TotalShares)
	if err != nil {
		return 0, 0, err
	}
	entitled = current + p.OwnerLegacyRevenue
	if entitled > bond.ClaimedRevenue {
		due = entitled - bond.ClaimedRevenue
	}
	return entitled, due, nil
}

func (p *Package) payOut(due uint64) (coin.Coin, error) {
	out, err := p.RevenuePool.Split(due)
	if err != nil {
		return coin.Zero(), fmt.Errorf("%w: revenue pool: %w", ErrInsufficientBalance, err)
	}
	p.RevenuePaidOut += due
	return out, nil
}

// ClaimRevenue pays the share holder what has accrued since their last
// claim. A zero payout is not an error. Revocation does not block claims.
func (p *Package) ClaimRevenue(share *Share, caller account.Address) (coin.Coin, error) {
	if err := p.requireShare(share, caller); err != nil {
		return coin.Zero(), err
	}
	entitled, due, err := p.Entitlement(share)
	if err != nil {
		return coin.Zero(), err
	}
	if due == 0 {
		return coin.Zero(), nil
	}
	out, err := p.payOut(due)
	if err != nil {
		return coin.Zero(), err
	}
	share.ClaimedRevenue = entitled
	return out, nil
}

// ClaimOwnerRevenue pays the bond holder what has accrued on unsold shares
// plus the legacy revenue credited on sales. Revocation does not block it.
func (p *Package) ClaimOwnerRevenue(bond *OwnershipBond, caller account.Address) (coin.Coin, error) {
	if err := p.requireBond(bond, caller); err != nil {
		return coin.Zero(), err
	}
	entitled, due, err := p.OwnerEntitlement(bond)
	if err != nil {
		return coin.Zero(), err
	}
	if due == 0 {
		return coin.Zero(), nil
	}
	out, err := p.payOut(due)
	if err != nil {
		return coin.Zero(), err
	}
	bond.ClaimedRevenue = entitled
	return out, nil
}

// TransferBond hands the bond to newOwner using the admin's transfer ticket.
func (p *Package) TransferBond(reg *registry.Registry, bond *OwnershipBond, caller, newOwner account.Address) error {
	if reg == nil {
		return fmt.Errorf("%w: registry", ErrNilParam)
	}
	if err := p.requireBond(bond, caller); err != nil {
		return err
	}
	if err := reg.ConsumeTransferTicket(p.ID, newOwner, registry.ExecutorLedger); err != nil {
		return err
	}
	bond.Owner = newOwner
	return nil
}

// ToggleSales applies the pending sales ticket and returns the new state.
func (p *Package) ToggleSales(reg *registry.Registry) (bool, error) {
	if err := p.requireValid(reg); err != nil {
		return p.SalesOpen, err
	}
	open, err := reg.ConsumeSalesToggleTicket(p.ID, registry.ExecutorLedger)
	if err != nil {
		return p.SalesOpen, err
	}
	p.SalesOpen = open
	return open, nil
}

// VerifyDocument reports whether hash matches the notarized document.
func (p *Package) VerifyDocument(hash registry.DocumentHash) bool {
	return p.DocumentHash == hash
}

// TransferShare moves share to another account. Entitlement travels with it.
func TransferShare(share *Share, caller, to account.Address) error {
	if share == nil {
		return fmt.Errorf("%w: share", ErrNilParam)
	}
	if share.Owner != caller {
		return fmt.Errorf("%w: share %s", ErrNotOwner, share.ID)
	}
	if to.IsZero() {
		return fmt.Errorf("%w: recipient", ErrNilParam)
	}
	share.Owner = to
	return nil
}
