package engine

import (
	"context"
	"fmt"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/event"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/fractional"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/ledger"
)

func (o *op) debitUnits(owner account.Address, kind id.ID, amount uint64) (fractional.Units, error) {
	held, err := o.tx.Units(kind, owner)
	if err != nil {
		return fractional.Units{}, err
	}
	part, err := held.Split(amount)
	if err != nil {
		return fractional.Units{}, err
	}
	if err := o.tx.PutUnits(owner, held); err != nil {
		return fractional.Units{}, err
	}
	return part, nil
}

func (o *op) creditUnits(owner account.Address, units fractional.Units) error {
	held, err := o.tx.Units(units.Kind, owner)
	if err != nil {
		return err
	}
	if err := held.Join(units); err != nil {
		return err
	}
	return o.tx.PutUnits(owner, held)
}

// NewSupplyController creates a fresh controller owned by owner. Its ID is
// the unit kind a later fractionalization mints.
func (e *Engine) NewSupplyController(ctx context.Context, owner account.Address) (*fractional.SupplyController, error) {
	var ctrl *fractional.SupplyController
	err := e.update(ctx, "new_controller", func(o *op) error {
		var err error
		if ctrl, err = fractional.NewSupplyController(owner); err != nil {
			return err
		}
		if err := o.tx.PutController(ctrl); err != nil {
			return err
		}
		o.emit(event.ControllerCreatedEventType, event.ControllerCreatedEvent{ControllerID: ctrl.ID, Owner: owner})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ctrl, nil
}

// Fractionalize splits amount off shareID into a new vault that locks
// ctrlID, and credits the caller with amount units of the controller's kind.
func (e *Engine) Fractionalize(ctx context.Context, caller account.Address, shareID, ctrlID id.ID, amount uint64) (*fractional.Vault, error) {
	var vault *fractional.Vault
	err := e.update(ctx, "fractionalize", func(o *op) error {
		share, err := o.tx.Share(shareID)
		if err != nil {
			return err
		}
		ctrl, err := o.tx.Controller(ctrlID)
		if err != nil {
			return err
		}
		pkg, err := o.tx.Package(share.PackageID)
		if err != nil {
			return err
		}
		var units fractional.Units
		if vault, units, err = fractional.Fractionalize(pkg, share, ctrl, caller, amount); err != nil {
			return err
		}
		if err := o.tx.PutShare(share); err != nil {
			return err
		}
		if err := o.tx.DeleteController(ctrl.ID); err != nil {
			return err
		}
		if err := o.tx.PutVault(vault); err != nil {
			return err
		}
		if err := o.creditUnits(caller, units); err != nil {
			return err
		}
		o.emit(event.ShareFractionalizedEventType, event.ShareFractionalizedEvent{
			PackageID:    vault.PackageID,
			ShareID:      share.ID,
			VaultID:      vault.ID,
			Kind:         vault.Kind(),
			Amount:       amount,
			ClaimedSplit: vault.ClaimedSnapshot,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vault, nil
}

// Redeem burns amount of the caller's units of vaultID and mints a new
// share of pkgID to the caller.
func (e *Engine) Redeem(ctx context.Context, caller account.Address, vaultID, pkgID id.ID, amount uint64) (*ledger.Share, error) {
	var share *ledger.Share
	err := e.update(ctx, "redeem", func(o *op) error {
		vault, err := o.tx.Vault(vaultID)
		if err != nil {
			return err
		}
		pkg, err := o.tx.Package(pkgID)
		if err != nil {
			return err
		}
		units, err := o.debitUnits(caller, vault.Kind(), amount)
		if err != nil {
			return err
		}
		claimedBefore := vault.RemainingSnapshot
		if share, err = fractional.Redeem(vault, units, pkg, caller); err != nil {
			return err
		}
		if err := o.tx.PutVault(vault); err != nil {
			return err
		}
		if err := o.tx.PutShare(share); err != nil {
			return err
		}
		o.emit(event.UnitsRedeemedEventType, event.UnitsBurnedEvent{
			PackageID: pkg.ID,
			VaultID:   vault.ID,
			ShareID:   share.ID,
			Holder:    caller,
			Amount:    amount,
			Claimed:   claimedBefore - vault.RemainingSnapshot,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

// MergeBack burns amount of the caller's units of vaultID into shareID.
func (e *Engine) MergeBack(ctx context.Context, caller account.Address, shareID, vaultID id.ID, amount uint64) error {
	return e.update(ctx, "merge_back", func(o *op) error {
		share, err := o.tx.Share(shareID)
		if err != nil {
			return err
		}
		vault, err := o.tx.Vault(vaultID)
		if err != nil {
			return err
		}
		pkg, err := o.tx.Package(vault.PackageID)
		if err != nil {
			return err
		}
		units, err := o.debitUnits(caller, vault.Kind(), amount)
		if err != nil {
			return err
		}
		claimedBefore := vault.RemainingSnapshot
		if err := fractional.MergeBack(pkg, share, vault, units, caller); err != nil {
			return err
		}
		if err := o.tx.PutVault(vault); err != nil {
			return err
		}
		if err := o.tx.PutShare(share); err != nil {
			return err
		}
		o.emit(event.UnitsMergedEventType, event.UnitsBurnedEvent{
			PackageID: vault.PackageID,
			VaultID:   vault.ID,
			ShareID:   share.ID,
			Holder:    caller,
			Amount:    amount,
			Claimed:   claimedBefore - vault.RemainingSnapshot,
		})
		return nil
	})
}

// TransferUnits moves amount units of kind from caller to to.
func (e *Engine) TransferUnits(ctx context.Context, caller account.Address, kind id.ID, to account.Address, amount uint64) error {
	return e.update(ctx, "transfer_units", func(o *op) error {
		if amount == 0 {
			return fractional.ErrZeroAmount
		}
		if to.IsZero() {
			return fmt.Errorf("%w: recipient", fractional.ErrNilParam)
		}
		units, err := o.debitUnits(caller, kind, amount)
		if err != nil {
			return err
		}
		if err := o.creditUnits(to, units); err != nil {
			return err
		}
		o.emit(event.UnitsTransferredEventType, event.UnitsTransferredEvent{
			Kind:   kind,
			From:   caller,
			To:     to,
			Amount: amount,
		})
		return nil
	})
}

// DestroyEmptyVault removes a vault whose units are all burned. Its
// controller is stored back frozen.
func (e *Engine) DestroyEmptyVault(ctx context.Context, vaultID id.ID) (fractional.SupplyController, error) {
	var ctrl fractional.SupplyController
	err := e.update(ctx, "destroy_vault", func(o *op) error {
		vault, err := o.tx.Vault(vaultID)
		if err != nil {
			return err
		}
		if ctrl, err = fractional.DestroyEmptyVault(vault); err != nil {
			return err
		}
		if err := o.tx.DeleteVault(vault.ID); err != nil {
			return err
		}
		if err := o.tx.PutController(&ctrl); err != nil {
			return err
		}
		o.emit(event.VaultDestroyedEventType, event.VaultDestroyedEvent{
			PackageID:    vault.PackageID,
			VaultID:      vault.ID,
			ControllerID: ctrl.ID,
		})
		return nil
	})
	return ctrl, err
}
