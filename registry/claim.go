package registry

import (
	"fmt"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
)

// Claim is a single-use permission to bind one notarization.
//
// A Claim can only be obtained from Registry.Claim. It has no exported
// fields, so it cannot be built by hand or round-tripped through storage,
// and it is only accepted by the registry that issued it. The operation
// that requested it must call Bind before finishing and then Settle to
// confirm consumption.
type Claim struct {
	issuer         *Registry
	notarizationID id.ID
	consumed       bool
}

// NotarizationID returns the notarization this claim is for.
func (c *Claim) NotarizationID() id.ID {
	return c.notarizationID
}

// Consumed reports whether the claim was presented to Bind.
func (c *Claim) Consumed() bool {
	return c.consumed
}

// Settle returns ErrClaimNotConsumed when the claim was never bound.
func (c *Claim) Settle() error {
	if c == nil || c.consumed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrClaimNotConsumed, c.notarizationID)
}

// Claim issues a claim for nid to its authorized creator.
func (r *Registry) Claim(nid id.ID, caller account.Address) (*Claim, error) {
	rec, err := r.lookup(nid)
	if err != nil {
		return nil, err
	}
	if rec.Revoked {
		return nil, fmt.Errorf("%w: %s", ErrRevoked, nid)
	}
	if rec.IsBound() {
		return nil, fmt.Errorf("%w: %s bound to %s", ErrAlreadyUsed, nid, rec.BoundContract)
	}
	if caller != rec.AuthorizedCreator {
		return nil, fmt.Errorf("%w: %s is not the authorized creator of %s", ErrUnauthorized, caller, nid)
	}
	return &Claim{issuer: r, notarizationID: nid}, nil
}

// Bind consumes claim and records contractID as the notarization's bound
// contract. The claim is spent even when binding fails.
func (r *Registry) Bind(claim *Claim, contractID id.ID, kind ExecutorKind) error {
	if claim == nil {
		return fmt.Errorf("%w: claim", ErrNilParam)
	}
	if claim.consumed {
		return fmt.Errorf("%w: %s", ErrClaimConsumed, claim.notarizationID)
	}
	if claim.issuer != r {
		return fmt.Errorf("%w: %s", ErrForeignClaim, claim.notarizationID)
	}
	claim.consumed = true

	if contractID.IsNil() {
		return fmt.Errorf("%w: contract id", ErrNilParam)
	}
	if err := r.requireExecutor(kind); err != nil {
		return err
	}
	rec, err := r.lookup(claim.notarizationID)
	if err != nil {
		return err
	}
	if rec.IsBound() {
		return fmt.Errorf("%w: %s bound to %s", ErrAlreadyUsed, rec.ID, rec.BoundContract)
	}
	rec.BoundContract = contractID
	return nil
}
