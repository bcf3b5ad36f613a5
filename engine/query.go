package engine

import (
	"context"
	"errors"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/fractional"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/ledger"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
)

// Entitlement is a preview of what a claim would pay.
type Entitlement struct {
	Entitled uint64
	Claimed  uint64
	Due      uint64
}

// Registry returns a snapshot of the registry.
func (e *Engine) Registry(ctx context.Context) (*registry.Registry, error) {
	var reg *registry.Registry
	err := e.view(ctx, func(o *op) error {
		reg = o.reg
		return nil
	})
	return reg, err
}

// Notarization returns the record for nid.
func (e *Engine) Notarization(ctx context.Context, nid id.ID) (registry.Notarization, error) {
	var rec registry.Notarization
	err := e.view(ctx, func(o *op) error {
		var err error
		rec, err = o.reg.Notarization(nid)
		return err
	})
	return rec, err
}

// Package returns the ledger of pkgID.
func (e *Engine) Package(ctx context.Context, pkgID id.ID) (*ledger.Package, error) {
	var pkg *ledger.Package
	err := e.view(ctx, func(o *op) error {
		var err error
		pkg, err = o.tx.Package(pkgID)
		return err
	})
	return pkg, err
}

// Packages lists every package.
func (e *Engine) Packages(ctx context.Context) ([]*ledger.Package, error) {
	var pkgs []*ledger.Package
	err := e.view(ctx, func(o *op) error {
		var err error
		pkgs, err = o.tx.Packages()
		return err
	})
	return pkgs, err
}

// Bond returns the ownership bond of pkgID.
func (e *Engine) Bond(ctx context.Context, pkgID id.ID) (*ledger.OwnershipBond, error) {
	var bond *ledger.OwnershipBond
	err := e.view(ctx, func(o *op) error {
		var err error
		_, bond, err = o.packageAndBond(pkgID)
		return err
	})
	return bond, err
}

// Share returns the investor share shareID.
func (e *Engine) Share(ctx context.Context, shareID id.ID) (*ledger.Share, error) {
	var share *ledger.Share
	err := e.view(ctx, func(o *op) error {
		var err error
		share, err = o.tx.Share(shareID)
		return err
	})
	return share, err
}

// SharesByOwner lists the shares owner holds across packages.
func (e *Engine) SharesByOwner(ctx context.Context, owner account.Address) ([]*ledger.Share, error) {
	var shares []*ledger.Share
	err := e.view(ctx, func(o *op) error {
		var err error
		shares, err = o.tx.SharesByOwner(owner)
		return err
	})
	return shares, err
}

// SharesByPackage lists the live shares of pkgID.
func (e *Engine) SharesByPackage(ctx context.Context, pkgID id.ID) ([]*ledger.Share, error) {
	var shares []*ledger.Share
	err := e.view(ctx, func(o *op) error {
		var err error
		shares, err = o.tx.SharesByPackage(pkgID)
		return err
	})
	return shares, err
}

// Vault returns the fractional vault vaultID.
func (e *Engine) Vault(ctx context.Context, vaultID id.ID) (*fractional.Vault, error) {
	var vault *fractional.Vault
	err := e.view(ctx, func(o *op) error {
		var err error
		vault, err = o.tx.Vault(vaultID)
		return err
	})
	return vault, err
}

// Controller returns a supply controller that is not locked in a vault.
func (e *Engine) Controller(ctx context.Context, ctrlID id.ID) (*fractional.SupplyController, error) {
	var ctrl *fractional.SupplyController
	err := e.view(ctx, func(o *op) error {
		var err error
		ctrl, err = o.tx.Controller(ctrlID)
		return err
	})
	return ctrl, err
}

// Units returns owner's balance of unit kind.
func (e *Engine) Units(ctx context.Context, kind id.ID, owner account.Address) (uint64, error) {
	var units fractional.Units
	err := e.view(ctx, func(o *op) error {
		var err error
		units, err = o.tx.Units(kind, owner)
		return err
	})
	return units.Value, err
}

// Entitlement previews a revenue claim on shareID.
func (e *Engine) Entitlement(ctx context.Context, shareID id.ID) (Entitlement, error) {
	var out Entitlement
	err := e.view(ctx, func(o *op) error {
		share, pkg, err := o.shareAndPackage(shareID)
		if err != nil {
			return err
		}
		entitled, due, err := pkg.Entitlement(share)
		if err != nil {
			return err
		}
		out = Entitlement{Entitled: entitled, Claimed: share.ClaimedRevenue, Due: due}
		return nil
	})
	return out, err
}

// OwnerEntitlement previews an owner revenue claim on pkgID.
func (e *Engine) OwnerEntitlement(ctx context.Context, pkgID id.ID) (Entitlement, error) {
	var out Entitlement
	err := e.view(ctx, func(o *op) error {
		pkg, bond, err := o.packageAndBond(pkgID)
		if err != nil {
			return err
		}
		entitled, due, err := pkg.OwnerEntitlement(bond)
		if err != nil {
			return err
		}
		out = Entitlement{Entitled: entitled, Claimed: bond.ClaimedRevenue, Due: due}
		return nil
	})
	return out, err
}

// CheckInvariants recomputes the accounting invariants of pkgID from storage.
func (e *Engine) CheckInvariants(ctx context.Context, pkgID id.ID) error {
	return e.view(ctx, func(o *op) error {
		pkg, bond, err := o.packageAndBond(pkgID)
		if err != nil {
			return err
		}
		shares, err := o.tx.SharesByPackage(pkgID)
		if err != nil {
			return err
		}
		vaults, err := o.tx.VaultsByPackage(pkgID)
		if err != nil {
			return err
		}
		var outstanding uint64
		for _, v := range vaults {
			outstanding += v.Outstanding()
		}
		return ledger.CheckInvariants(pkg, bond, shares, outstanding)
	})
}

// Initialized reports whether the store holds a registry.
func (e *Engine) Initialized(ctx context.Context) (bool, error) {
	err := e.view(ctx, func(*op) error { return nil })
	if errors.Is(err, ErrNotInitialized) {
		return false, nil
	}
	return err == nil, err
}
