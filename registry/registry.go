// Package registry holds package approvals and the capability tickets that
// gate privileged ledger operations.
//
// A Notarization approves exactly one future package. Package creation
// obtains a single-use Claim for it and binds the claim to the new package
// identity inside the same operation. Later ownership transfers and sales
// toggles are authorized by the admin as durable tickets that the ledger
// consumes.
//
// The Registry is a plain value. Callers serialize access to it; no method
// locks.
package registry

import (
	"fmt"
	"time"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
)

// Notarization is an approved, hash-bound identity a package must reference.
type Notarization struct {
	ID                id.ID           `json:"id"`
	DocumentHash      DocumentHash    `json:"document_hash"`
	ApprovedAt        time.Time       `json:"approved_at"`
	Auditor           account.Address `json:"auditor"`
	Revoked           bool            `json:"revoked"`
	BoundContract     id.ID           `json:"bound_contract"`
	AuthorizedCreator account.Address `json:"authorized_creator"`
}

// IsBound reports whether a package already references this notarization.
func (n *Notarization) IsBound() bool {
	return !n.BoundContract.IsNil()
}

// Registry is the process-wide authorization state.
type Registry struct {
	Admin           account.Address                      `json:"admin"`
	Notarizations   map[string]*Notarization             `json:"notarizations"`
	TransferTickets map[string]*TransferAuthorization    `json:"transfer_tickets"`
	SalesTickets    map[string]*SalesToggleAuthorization `json:"sales_tickets"`
	Executors       map[ExecutorKind]bool                `json:"executors"`
}

// New creates an empty registry administered by admin. The ledger executor
// is allow-listed from the start.
func New(admin account.Address) (*Registry, error) {
	if admin.IsZero() {
		return nil, fmt.Errorf("%w: admin address", ErrNilParam)
	}
	r := &Registry{Admin: admin}
	r.init()
	r.Executors[ExecutorLedger] = true
	return r, nil
}

// init allocates nil maps, which JSON decoding leaves behind for empty objects.
func (r *Registry) init() {
	if r.Notarizations == nil {
		r.Notarizations = make(map[string]*Notarization)
	}
	if r.TransferTickets == nil {
		r.TransferTickets = make(map[string]*TransferAuthorization)
	}
	if r.SalesTickets == nil {
		r.SalesTickets = make(map[string]*SalesToggleAuthorization)
	}
	if r.Executors == nil {
		r.Executors = make(map[ExecutorKind]bool)
	}
}

// Normalize prepares a decoded registry for use.
func (r *Registry) Normalize() {
	r.init()
}

func (r *Registry) requireAdmin(caller account.Address) error {
	if caller != r.Admin {
		return fmt.Errorf("%w: %s is not the admin", ErrUnauthorized, caller)
	}
	return nil
}

func (r *Registry) lookup(nid id.ID) (*Notarization, error) {
	rec, ok := r.Notarizations[nid.String()]
	if !ok || nid.IsNil() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, nid)
	}
	return rec, nil
}

// Register records a new notarization approved by caller.
func (r *Registry) Register(caller account.Address, nid id.ID, hash DocumentHash, creator account.Address, now time.Time) (*Notarization, error) {
	if err := r.requireAdmin(caller); err != nil {
		return nil, err
	}
	if nid.IsNil() {
		return nil, fmt.Errorf("%w: notarization id", ErrNilParam)
	}
	if creator.IsZero() {
		return nil, fmt.Errorf("%w: authorized creator", ErrNilParam)
	}
	if _, ok := r.Notarizations[nid.String()]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, nid)
	}
	rec := &Notarization{
		ID:                nid,
		DocumentHash:      hash,
		ApprovedAt:        now.UTC(),
		Auditor:           caller,
		AuthorizedCreator: creator,
	}
	r.Notarizations[nid.String()] = rec
	return rec, nil
}

// Revoke marks a notarization revoked.
func (r *Registry) Revoke(caller account.Address, nid id.ID) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	rec, err := r.lookup(nid)
	if err != nil {
		return err
	}
	if rec.Revoked {
		return fmt.Errorf("%w: %s", ErrAlreadyRevoked, nid)
	}
	rec.Revoked = true
	return nil
}

// Unrevoke clears the revoked flag.
func (r *Registry) Unrevoke(caller account.Address, nid id.ID) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	rec, err := r.lookup(nid)
	if err != nil {
		return err
	}
	if !rec.Revoked {
		return fmt.Errorf("%w: %s", ErrNotRevoked, nid)
	}
	rec.Revoked = false
	return nil
}

// UpdateAuthorizedCreator changes who may claim an unbound notarization.
func (r *Registry) UpdateAuthorizedCreator(caller account.Address, nid id.ID, creator account.Address) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if creator.IsZero() {
		return fmt.Errorf("%w: authorized creator", ErrNilParam)
	}
	rec, err := r.lookup(nid)
	if err != nil {
		return err
	}
	if rec.IsBound() {
		return fmt.Errorf("%w: %s bound to %s", ErrAlreadyUsed, nid, rec.BoundContract)
	}
	rec.AuthorizedCreator = creator
	return nil
}

// IsValid reports whether the notarization exists and is not revoked.
func (r *Registry) IsValid(nid id.ID) bool {
	rec, err := r.lookup(nid)
	return err == nil && !rec.Revoked
}

// Notarization returns a copy of the record.
func (r *Registry) Notarization(nid id.ID) (Notarization, error) {
	rec, err := r.lookup(nid)
	if err != nil {
		return Notarization{}, err
	}
	return *rec, nil
}

// AddExecutor allow-lists kind. It reports whether the set changed.
func (r *Registry) AddExecutor(caller account.Address, kind ExecutorKind) (bool, error) {
	if err := r.requireAdmin(caller); err != nil {
		return false, err
	}
	if !kind.Valid() {
		return false, fmt.Errorf("%w: %d", ErrUnknownExecutor, uint8(kind))
	}
	if r.Executors[kind] {
		return false, nil
	}
	r.Executors[kind] = true
	return true, nil
}

// RemoveExecutor drops kind from the allow-list. It reports whether the set changed.
func (r *Registry) RemoveExecutor(caller account.Address, kind ExecutorKind) (bool, error) {
	if err := r.requireAdmin(caller); err != nil {
		return false, err
	}
	if !kind.Valid() {
		return false, fmt.Errorf("%w: %d", ErrUnknownExecutor, uint8(kind))
	}
	if !r.Executors[kind] {
		return false, nil
	}
	delete(r.Executors, kind)
	return true, nil
}

// IsExecutor reports whether kind is allow-listed.
func (r *Registry) IsExecutor(kind ExecutorKind) bool {
	return r.Executors[kind]
}

func (r *Registry) requireExecutor(kind ExecutorKind) error {
	if !r.Executors[kind] {
		return fmt.Errorf("%w: %s", ErrUnauthorizedExecutor, kind)
	}
	return nil
}
