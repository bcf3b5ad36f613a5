package registry

import (
	"fmt"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
)

// TransferAuthorization permits moving a package's ownership bond to NewOwner.
type TransferAuthorization struct {
	PackageID      id.ID           `json:"package_id"`
	NewOwner       account.Address `json:"new_owner"`
	NotarizationID id.ID           `json:"notarization_id"`
}

// SalesToggleAuthorization permits setting a package's sales flag to Open.
type SalesToggleAuthorization struct {
	PackageID      id.ID `json:"package_id"`
	Open           bool  `json:"open"`
	NotarizationID id.ID `json:"notarization_id"`
}

// backing checks that nid exists and is bound to pkg.
func (r *Registry) backing(pkg, nid id.ID) error {
	if pkg.IsNil() {
		return fmt.Errorf("%w: package id", ErrNilParam)
	}
	rec, err := r.lookup(nid)
	if err != nil {
		return err
	}
	if !rec.BoundContract.Equal(pkg) {
		return fmt.Errorf("%w: %s is bound to %q, not %s", ErrMismatch, nid, rec.BoundContract, pkg)
	}
	return nil
}

// AuthorizeTransfer issues a transfer ticket for pkg, replacing any pending
// one. It reports whether a ticket was replaced.
func (r *Registry) AuthorizeTransfer(caller account.Address, pkg id.ID, newOwner account.Address, nid id.ID) (bool, error) {
	if err := r.requireAdmin(caller); err != nil {
		return false, err
	}
	if newOwner.IsZero() {
		return false, fmt.Errorf("%w: new owner", ErrNilParam)
	}
	if err := r.backing(pkg, nid); err != nil {
		return false, err
	}
	_, replaced := r.TransferTickets[pkg.String()]
	r.TransferTickets[pkg.String()] = &TransferAuthorization{
		PackageID:      pkg,
		NewOwner:       newOwner,
		NotarizationID: nid,
	}
	return replaced, nil
}

// AuthorizeSalesToggle issues a sales toggle ticket for pkg, replacing any
// pending one. It reports whether a ticket was replaced.
func (r *Registry) AuthorizeSalesToggle(caller account.Address, pkg id.ID, open bool, nid id.ID) (bool, error) {
	if err := r.requireAdmin(caller); err != nil {
		return false, err
	}
	if err := r.backing(pkg, nid); err != nil {
		return false, err
	}
	_, replaced := r.SalesTickets[pkg.String()]
	r.SalesTickets[pkg.String()] = &SalesToggleAuthorization{
		PackageID:      pkg,
		Open:           open,
		NotarizationID: nid,
	}
	return replaced, nil
}

// CancelTransfer removes a pending transfer ticket.
func (r *Registry) CancelTransfer(caller account.Address, pkg id.ID) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if _, ok := r.TransferTickets[pkg.String()]; !ok {
		return fmt.Errorf("%w: no transfer ticket for %s", ErrNotAuthorized, pkg)
	}
	delete(r.TransferTickets, pkg.String())
	return nil
}

// CancelSalesToggle removes a pending sales toggle ticket.
func (r *Registry) CancelSalesToggle(caller account.Address, pkg id.ID) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if _, ok := r.SalesTickets[pkg.String()]; !ok {
		return fmt.Errorf("%w: no sales ticket for %s", ErrNotAuthorized, pkg)
	}
	delete(r.SalesTickets, pkg.String())
	return nil
}

// TransferTicket returns the pending transfer ticket for pkg, if any.
func (r *Registry) TransferTicket(pkg id.ID) (TransferAuthorization, bool) {
	t, ok := r.TransferTickets[pkg.String()]
	if !ok {
		return TransferAuthorization{}, false
	}
	return *t, true
}

// SalesTicket returns the pending sales toggle ticket for pkg, if any.
func (r *Registry) SalesTicket(pkg id.ID) (SalesToggleAuthorization, bool) {
	t, ok := r.SalesTickets[pkg.String()]
	if !ok {
		return SalesToggleAuthorization{}, false
	}
	return *t, true
}

// ConsumeTransferTicket spends the transfer ticket for pkg. newOwner must
// match the ticket's target.
func (r *Registry) ConsumeTransferTicket(pkg id.ID, newOwner account.Address, kind ExecutorKind) error {
	if err := r.requireExecutor(kind); err != nil {
		return err
	}
	t, ok := r.TransferTickets[pkg.String()]
	if !ok {
		return fmt.Errorf("%w: no transfer ticket for %s", ErrNotAuthorized, pkg)
	}
	if t.NewOwner != newOwner {
		return fmt.Errorf("%w: ticket for %s names %s, not %s", ErrNotAuthorized, pkg, t.NewOwner, newOwner)
	}
	delete(r.TransferTickets, pkg.String())
	return nil
}

// ConsumeSalesToggleTicket spends the sales toggle ticket for pkg and
// returns its target state.
func (r *Registry) ConsumeSalesToggleTicket(pkg id.ID, kind ExecutorKind) (bool, error) {
	if err := r.requireExecutor(kind); err != nil {
		return false, err
	}
	t, ok := r.SalesTickets[pkg.String()]
	if !ok {
		return false, fmt.Errorf("%w: no sales ticket for %s", ErrNotAuthorized, pkg)
	}
	delete(r.SalesTickets, pkg.String())
	return t.Open, nil
}
