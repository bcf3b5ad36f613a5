package engine

import (
	"context"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/event"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
)

// Register records a notarization approved by caller. A nil nid is
// replaced by a fresh one; the stored record is returned.
func (e *Engine) Register(ctx context.Context, caller account.Address, nid id.ID, hash registry.DocumentHash, creator account.Address) (registry.Notarization, error) {
	if nid.IsNil() {
		nid = id.NewNotarizationID()
	}
	var out registry.Notarization
	err := e.update(ctx, "register", func(o *op) error {
		rec, err := o.reg.Register(caller, nid, hash, creator, o.now)
		if err != nil {
			return err
		}
		out = *rec
		o.emit(event.NotarizationRegisteredEventType, event.NotarizationRegisteredEvent{
			NotarizationID:    rec.ID,
			DocumentHash:      rec.DocumentHash,
			Auditor:           rec.Auditor,
			AuthorizedCreator: rec.AuthorizedCreator,
		})
		return nil
	})
	return out, err
}

// Revoke marks a notarization revoked.
func (e *Engine) Revoke(ctx context.Context, caller account.Address, nid id.ID) error {
	return e.update(ctx, "revoke", func(o *op) error {
		if err := o.reg.Revoke(caller, nid); err != nil {
			return err
		}
		o.emit(event.NotarizationRevokedEventType, event.NotarizationEvent{NotarizationID: nid, Actor: caller})
		return nil
	})
}

// Unrevoke clears a revocation.
func (e *Engine) Unrevoke(ctx context.Context, caller account.Address, nid id.ID) error {
	return e.update(ctx, "unrevoke", func(o *op) error {
		if err := o.reg.Unrevoke(caller, nid); err != nil {
			return err
		}
		o.emit(event.NotarizationUnrevokedEventType, event.NotarizationEvent{NotarizationID: nid, Actor: caller})
		return nil
	})
}

// UpdateAuthorizedCreator changes who may claim an unbound notarization.
func (e *Engine) UpdateAuthorizedCreator(ctx context.Context, caller account.Address, nid id.ID, creator account.Address) error {
	return e.update(ctx, "update_creator", func(o *op) error {
		if err := o.reg.UpdateAuthorizedCreator(caller, nid, creator); err != nil {
			return err
		}
		o.emit(event.NotarizationCreatorUpdatedEventType, event.NotarizationCreatorUpdatedEvent{
			NotarizationID:    nid,
			AuthorizedCreator: creator,
		})
		return nil
	})
}

// AddExecutor allow-lists kind. Adding a listed kind succeeds without change.
func (e *Engine) AddExecutor(ctx context.Context, caller account.Address, kind registry.ExecutorKind) (bool, error) {
	var changed bool
	err := e.update(ctx, "add_executor", func(o *op) error {
		var err error
		if changed, err = o.reg.AddExecutor(caller, kind); err != nil {
			return err
		}
		o.emit(event.ExecutorAddedEventType, event.ExecutorEvent{Kind: kind, Changed: changed})
		return nil
	})
	return changed, err
}

// RemoveExecutor drops kind from the allow-list. Removing an absent kind
// succeeds without change.
func (e *Engine) RemoveExecutor(ctx context.Context, caller account.Address, kind registry.ExecutorKind) (bool, error) {
	var changed bool
	err := e.update(ctx, "remove_executor", func(o *op) error {
		var err error
		if changed, err = o.reg.RemoveExecutor(caller, kind); err != nil {
			return err
		}
		o.emit(event.ExecutorRemovedEventType, event.ExecutorEvent{Kind: kind, Changed: changed})
		return nil
	})
	return changed, err
}

// AuthorizeTransfer issues the ticket that lets the bond of pkgID move to newOwner.
func (e *Engine) AuthorizeTransfer(ctx context.Context, caller account.Address, pkgID id.ID, newOwner account.Address, nid id.ID) error {
	return e.update(ctx, "authorize_transfer", func(o *op) error {
		replaced, err := o.reg.AuthorizeTransfer(caller, pkgID, newOwner, nid)
		if err != nil {
			return err
		}
		o.emit(event.TransferAuthorizedEventType, event.TransferAuthorizedEvent{
			PackageID:      pkgID,
			NewOwner:       newOwner,
			NotarizationID: nid,
			Replaced:       replaced,
		})
		return nil
	})
}

// AuthorizeSalesToggle issues the ticket that sets the sales flag of pkgID.
func (e *Engine) AuthorizeSalesToggle(ctx context.Context, caller account.Address, pkgID id.ID, open bool, nid id.ID) error {
	return e.update(ctx, "authorize_sales", func(o *op) error {
		replaced, err := o.reg.AuthorizeSalesToggle(caller, pkgID, open, nid)
		if err != nil {
			return err
		}
		o.emit(event.SalesAuthorizedEventType, event.SalesAuthorizedEvent{
			PackageID:      pkgID,
			Open:           open,
			NotarizationID: nid,
			Replaced:       replaced,
		})
		return nil
	})
}

// CancelTransfer withdraws a pending transfer ticket.
func (e *Engine) CancelTransfer(ctx context.Context, caller account.Address, pkgID id.ID) error {
	return e.update(ctx, "cancel_transfer", func(o *op) error {
		if err := o.reg.CancelTransfer(caller, pkgID); err != nil {
			return err
		}
		o.emit(event.TransferCancelledEventType, event.TicketCancelledEvent{PackageID: pkgID})
		return nil
	})
}

// CancelSalesToggle withdraws a pending sales toggle ticket.
func (e *Engine) CancelSalesToggle(ctx context.Context, caller account.Address, pkgID id.ID) error {
	return e.update(ctx, "cancel_sales", func(o *op) error {
		if err := o.reg.CancelSalesToggle(caller, pkgID); err != nil {
			return err
		}
		o.emit(event.SalesCancelledEventType, event.TicketCancelledEvent{PackageID: pkgID})
		return nil
	})
}
