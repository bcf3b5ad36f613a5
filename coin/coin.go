// Package coin models payment values and the pools that hold them.
//
// A Coin is a value in flight (a payment, a payout, change). A Balance is a
// value at rest inside a package ledger. Coins are joined into balances and
// split back out; nothing else creates or destroys value.
package coin

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

var (
	// ErrInsufficientBalance indicates a split larger than the available value.
	ErrInsufficientBalance = errors.New("coin: insufficient balance")

	// ErrOverflow indicates a result outside the uint64 range.
	ErrOverflow = errors.New("coin: value overflow")

	// ErrDivideByZero indicates a MulDiv with a zero divisor.
	ErrDivideByZero = errors.New("coin: divide by zero")
)

// Coin is a transferable amount.
type Coin struct {
	Value uint64 `json:"value"`
}

// New returns a coin of the given value.
func New(value uint64) Coin {
	return Coin{Value: value}
}

// Zero returns an empty coin.
func Zero() Coin {
	return Coin{}
}

// IsZero reports whether the coin carries no value.
func (c Coin) IsZero() bool {
	return c.Value == 0
}

// Split removes amount from c and returns it as a new coin.
func (c *Coin) Split(amount uint64) (Coin, error) {
	if amount > c.Value {
		return Coin{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, c.Value, amount)
	}
	c.Value -= amount
	return Coin{Value: amount}, nil
}

// Balance is a pool of value owned by a record.
type Balance struct {
	Value uint64 `json:"value"`
}

// Join adds a coin into the balance.
func (b *Balance) Join(c Coin) error {
	if c.Value > math.MaxUint64-b.Value {
		return fmt.Errorf("%w: %d + %d", ErrOverflow, b.Value, c.Value)
	}
	b.Value += c.Value
	return nil
}

// Split takes amount out of the balance as a coin.
func (b *Balance) Split(amount uint64) (Coin, error) {
	if amount > b.Value {
		return Coin{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, b.Value, amount)
	}
	b.Value -= amount
	return Coin{Value: amount}, nil
}

// MulDiv returns floor(a*b/c) using a 128-bit intermediate product. It
// fails when c is zero or the quotient does not fit in 64 bits.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivideByZero
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, fmt.Errorf("%w: %d * %d / %d", ErrOverflow, a, b, c)
	}
	q, _ := bits.Div64(hi, lo, c)
	return q, nil
}

// Mul returns a*b, failing when the product does not fit in 64 bits.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return lo, nil
}
