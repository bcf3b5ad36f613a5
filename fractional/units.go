package fractional

import (
	"fmt"
	"math"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
)

// SupplyController is the mint and burn authority for one fungible unit kind.
// Its ID doubles as the unit kind.
type SupplyController struct {
	ID      id.ID           `json:"id"`
	Owner   account.Address `json:"owner"`
	Supply  uint64          `json:"supply"`
	Locked  bool            `json:"locked"`
	Frozen  bool            `json:"frozen"`
	VaultID id.ID           `json:"vault_id"`
}

// NewSupplyController creates a fresh controller for owner.
func NewSupplyController(owner account.Address) (*SupplyController, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("%w: owner", ErrNilParam)
	}
	return &SupplyController{ID: id.NewControllerID(), Owner: owner}, nil
}

// Fresh reports whether the controller can be locked into a new vault.
func (c *SupplyController) Fresh() bool {
	return c.Supply == 0 && !c.Locked && !c.Frozen
}

// Units is an amount of one fungible unit kind.
type Units struct {
	Kind  id.ID  `json:"kind"`
	Value uint64 `json:"value"`
}

// Split removes amount from u and returns it.
func (u *Units) Split(amount uint64) (Units, error) {
	if amount > u.Value {
		return Units{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientUnits, u.Value, amount)
	}
	u.Value -= amount
	return Units{Kind: u.Kind, Value: amount}, nil
}

// Join merges other into u. Both must be of the same kind.
func (u *Units) Join(other Units) error {
	if u.Kind.IsNil() {
		u.Kind = other.Kind
	}
	if !u.Kind.Equal(other.Kind) {
		return fmt.Errorf("%w: %s and %s", ErrKindMismatch, u.Kind, other.Kind)
	}
	if other.Value > math.MaxUint64-u.Value {
		return fmt.Errorf("%w: unit value overflows", ErrInvalidAmount)
	}
	u.Value += other.Value
	return nil
}
