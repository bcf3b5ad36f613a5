package ledger

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")

	// ErrSupplyTooLow indicates total shares below MinShares.
	ErrSupplyTooLow = errors.New("ledger: total shares below minimum")

	// ErrInvalidSplit indicates an investor split above MaxInvestorSplit.
	ErrInvalidSplit = errors.New("ledger: investor split exceeds maximum")

	// ErrRevoked indicates the backing notarization is revoked or missing.
	ErrRevoked = errors.New("ledger: notarization not valid")

	// ErrSalesClosed indicates a purchase while sales are closed.
	ErrSalesClosed = errors.New("ledger: sales closed")

	// ErrZeroAmount indicates an amount or payment of zero.
	ErrZeroAmount = errors.New("ledger: zero amount")

	// ErrInsufficientSupply indicates more shares requested than remain sellable.
	ErrInsufficientSupply = errors.New("ledger: insufficient supply")

	// ErrInsufficientPayment indicates the payment does not cover the cost.
	ErrInsufficientPayment = errors.New("ledger: insufficient payment")

	// ErrInsufficientBalance indicates a withdrawal larger than the pool.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrMismatch indicates a bond or share that belongs to another package.
	ErrMismatch = errors.New("ledger: record belongs to a different package")

	// ErrNotOwner indicates the caller does not hold the bond or share.
	ErrNotOwner = errors.New("ledger: caller is not the owner")

	// ErrInvariantViolation indicates stored state breaks a ledger invariant.
	ErrInvariantViolation = errors.New("ledger: invariant violated")
)
