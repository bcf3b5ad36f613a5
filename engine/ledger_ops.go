package engine

import (
	"context"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/coin"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/event"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/ledger"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
)

// PackageParams describes a package to create. Whether sales start open
// is engine policy, see WithSalesOpenOnCreate.
type PackageParams struct {
	Name          string
	TotalShares   uint64
	UnitPrice     uint64
	NominalValue  uint64
	InvestorSplit uint64
	MetadataURI   string
}

func (o *op) packageAndBond(pkgID id.ID) (*ledger.Package, *ledger.OwnershipBond, error) {
	pkg, err := o.tx.Package(pkgID)
	if err != nil {
		return nil, nil, err
	}
	bond, err := o.tx.Bond(pkg.BondID)
	if err != nil {
		return nil, nil, err
	}
	return pkg, bond, nil
}

func (o *op) shareAndPackage(shareID id.ID) (*ledger.Share, *ledger.Package, error) {
	share, err := o.tx.Share(shareID)
	if err != nil {
		return nil, nil, err
	}
	pkg, err := o.tx.Package(share.PackageID)
	if err != nil {
		return nil, nil, err
	}
	return share, pkg, nil
}

// CreatePackage claims nid and opens a package backed by it. The caller
// must be the notarization's authorized creator and receives the bond.
func (e *Engine) CreatePackage(ctx context.Context, caller account.Address, nid id.ID, p PackageParams) (*ledger.Package, *ledger.OwnershipBond, error) {
	var (
		pkg  *ledger.Package
		bond *ledger.OwnershipBond
	)
	err := e.update(ctx, "create_package", func(o *op) error {
		claim, err := o.claim(nid, caller)
		if err != nil {
			return err
		}
		pkg, bond, err = ledger.Create(o.reg, claim, ledger.Params{
			Name:          p.Name,
			TotalShares:   p.TotalShares,
			UnitPrice:     p.UnitPrice,
			NominalValue:  p.NominalValue,
			InvestorSplit: p.InvestorSplit,
			MetadataURI:   p.MetadataURI,
			SalesOpen:     e.salesOpenOnNew,
		}, caller, o.now)
		if err != nil {
			return err
		}
		if err := o.tx.PutPackage(pkg); err != nil {
			return err
		}
		if err := o.tx.PutBond(bond); err != nil {
			return err
		}
		o.emit(event.PackageCreatedEventType, event.PackageCreatedEvent{
			PackageID:         pkg.ID,
			NotarizationID:    pkg.NotarizationID,
			BondID:            bond.ID,
			Owner:             bond.Owner,
			TotalShares:       pkg.TotalShares,
			MaxSellableSupply: pkg.MaxSellableSupply,
			UnitPrice:         pkg.UnitPrice,
			SalesOpen:         pkg.SalesOpen,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return pkg, bond, nil
}

// Buy sells amount shares of pkgID to buyer for payment and returns the
// new share and the change.
func (e *Engine) Buy(ctx context.Context, buyer account.Address, pkgID id.ID, amount uint64, payment coin.Coin) (*ledger.Share, coin.Coin, error) {
	var (
		share  *ledger.Share
		change coin.Coin
	)
	err := e.update(ctx, "buy", func(o *op) error {
		pkg, err := o.tx.Package(pkgID)
		if err != nil {
			return err
		}
		share, change, err = pkg.Buy(o.reg, buyer, amount, payment)
		if err != nil {
			return err
		}
		if err := o.tx.PutPackage(pkg); err != nil {
			return err
		}
		if err := o.tx.PutShare(share); err != nil {
			return err
		}
		o.emit(event.SharesPurchasedEventType, event.SharesPurchasedEvent{
			PackageID: pkg.ID,
			ShareID:   share.ID,
			Buyer:     buyer,
			Amount:    amount,
			Cost:      payment.Value - change.Value,
			PreCharge: share.ClaimedRevenue,
			Change:    change.Value,
		})
		return nil
	})
	if err != nil {
		return nil, payment, err
	}
	return share, change, nil
}

// WithdrawFunding pays amount from the funding pool of pkgID to the bond holder.
func (e *Engine) WithdrawFunding(ctx context.Context, caller account.Address, pkgID id.ID, amount uint64) (coin.Coin, error) {
	var out coin.Coin
	err := e.update(ctx, "withdraw_funding", func(o *op) error {
		pkg, bond, err := o.packageAndBond(pkgID)
		if err != nil {
			return err
		}
		if out, err = pkg.WithdrawFunding(o.reg, bond, caller, amount); err != nil {
			return err
		}
		if err := o.tx.PutPackage(pkg); err != nil {
			return err
		}
		o.emit(event.FundingWithdrawnEventType, event.FundingWithdrawnEvent{
			PackageID: pkg.ID,
			BondID:    bond.ID,
			Owner:     caller,
			Amount:    out.Value,
		})
		return nil
	})
	if err != nil {
		return coin.Zero(), err
	}
	return out, nil
}

// DepositRevenue adds payment to the revenue pool of pkgID.
func (e *Engine) DepositRevenue(ctx context.Context, caller account.Address, pkgID id.ID, payment coin.Coin) error {
	return e.update(ctx, "deposit_revenue", func(o *op) error {
		pkg, bond, err := o.packageAndBond(pkgID)
		if err != nil {
			return err
		}
		if err := pkg.DepositRevenue(o.reg, bond, caller, payment); err != nil {
			return err
		}
		if err := o.tx.PutPackage(pkg); err != nil {
			return err
		}
		o.emit(event.RevenueDepositedEventType, event.RevenueDepositedEvent{
			PackageID:      pkg.ID,
			BondID:         bond.ID,
			Amount:         payment.Value,
			TotalDeposited: pkg.TotalRevenueDeposited,
		})
		return nil
	})
}

// ClaimRevenue pays the holder of shareID what accrued since their last
// claim. Nothing due is a successful zero payout.
func (e *Engine) ClaimRevenue(ctx context.Context, caller account.Address, shareID id.ID) (coin.Coin, error) {
	var out coin.Coin
	err := e.update(ctx, "claim_revenue", func(o *op) error {
		share, pkg, err := o.shareAndPackage(shareID)
		if err != nil {
			return err
		}
		if out, err = pkg.ClaimRevenue(share, caller); err != nil {
			return err
		}
		if out.IsZero() {
			return nil
		}
		if err := o.tx.PutPackage(pkg); err != nil {
			return err
		}
		if err := o.tx.PutShare(share); err != nil {
			return err
		}
		o.emit(event.RevenueClaimedEventType, event.RevenueClaimedEvent{
			PackageID: pkg.ID,
			ShareID:   share.ID,
			Holder:    caller,
			Amount:    out.Value,
		})
		return nil
	})
	if err != nil {
		return coin.Zero(), err
	}
	return out, nil
}

// ClaimOwnerRevenue pays the bond holder of pkgID what accrued on unsold
// shares plus the pre-charges collected on sales.
func (e *Engine) ClaimOwnerRevenue(ctx context.Context, caller account.Address, pkgID id.ID) (coin.Coin, error) {
	var out coin.Coin
	err := e.update(ctx, "claim_owner_revenue", func(o *op) error {
		pkg, bond, err := o.packageAndBond(pkgID)
		if err != nil {
			return err
		}
		if out, err = pkg.ClaimOwnerRevenue(bond, caller); err != nil {
			return err
		}
		if out.IsZero() {
			return nil
		}
		if err := o.tx.PutPackage(pkg); err != nil {
			return err
		}
		if err := o.tx.PutBond(bond); err != nil {
			return err
		}
		o.emit(event.OwnerRevenueClaimedEventType, event.OwnerRevenueClaimedEvent{
			PackageID: pkg.ID,
			BondID:    bond.ID,
			Owner:     caller,
			Amount:    out.Value,
		})
		return nil
	})
	if err != nil {
		return coin.Zero(), err
	}
	return out, nil
}

// TransferBond moves the bond of pkgID to newOwner using the pending
// transfer ticket.
func (e *Engine) TransferBond(ctx context.Context, caller account.Address, pkgID id.ID, newOwner account.Address) error {
	return e.update(ctx, "transfer_bond", func(o *op) error {
		pkg, bond, err := o.packageAndBond(pkgID)
		if err != nil {
			return err
		}
		if err := pkg.TransferBond(o.reg, bond, caller, newOwner); err != nil {
			return err
		}
		if err := o.tx.PutBond(bond); err != nil {
			return err
		}
		o.emit(event.BondTransferredEventType, event.BondTransferredEvent{
			PackageID: pkg.ID,
			BondID:    bond.ID,
			From:      caller,
			To:        newOwner,
		})
		return nil
	})
}

// ToggleSales applies the pending sales ticket of pkgID and returns the
// new sales state. The ticket is the permission; anyone may apply it.
func (e *Engine) ToggleSales(ctx context.Context, pkgID id.ID) (bool, error) {
	var open bool
	err := e.update(ctx, "toggle_sales", func(o *op) error {
		pkg, err := o.tx.Package(pkgID)
		if err != nil {
			return err
		}
		if open, err = pkg.ToggleSales(o.reg); err != nil {
			return err
		}
		if err := o.tx.PutPackage(pkg); err != nil {
			return err
		}
		o.emit(event.SalesToggledEventType, event.SalesToggledEvent{PackageID: pkg.ID, Open: open})
		return nil
	})
	return open, err
}

// TransferShare hands shareID to another account. Accrued and claimed
// revenue travel with it.
func (e *Engine) TransferShare(ctx context.Context, caller account.Address, shareID id.ID, to account.Address) error {
	return e.update(ctx, "transfer_share", func(o *op) error {
		share, err := o.tx.Share(shareID)
		if err != nil {
			return err
		}
		if err := ledger.TransferShare(share, caller, to); err != nil {
			return err
		}
		if err := o.tx.PutShare(share); err != nil {
			return err
		}
		o.emit(event.ShareTransferredEventType, event.ShareTransferredEvent{
			PackageID: share.PackageID,
			ShareID:   share.ID,
			From:      caller,
			To:        to,
		})
		return nil
	})
}

// VerifyDocument reports whether hash matches the document notarized for pkgID.
func (e *Engine) VerifyDocument(ctx context.Context, pkgID id.ID, hash registry.DocumentHash) (bool, error) {
	var ok bool
	err := e.view(ctx, func(o *op) error {
		pkg, err := o.tx.Package(pkgID)
		if err != nil {
			return err
		}
		ok = pkg.VerifyDocument(hash)
		return nil
	})
	return ok, err
}
