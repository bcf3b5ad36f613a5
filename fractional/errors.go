package fractional

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("fractional: required parameter is nil")

	// ErrFreshnessViolation indicates a controller that already has supply or is in use.
	ErrFreshnessViolation = errors.New("fractional: supply controller not fresh")

	// ErrInvalidAmount indicates an amount outside (0, balance), or one whose
	// rounding would leave a share claimed beyond its entitlement.
	ErrInvalidAmount = errors.New("fractional: invalid amount")

	// ErrZeroAmount indicates units of zero value.
	ErrZeroAmount = errors.New("fractional: zero amount")

	// ErrPackageMismatch indicates a vault used with another package's records.
	ErrPackageMismatch = errors.New("fractional: package mismatch")

	// ErrKindMismatch indicates units minted by a different controller.
	ErrKindMismatch = errors.New("fractional: unit kind mismatch")

	// ErrInsufficientUnits indicates a split or burn larger than available.
	ErrInsufficientUnits = errors.New("fractional: insufficient units")

	// ErrVaultNotEmpty indicates units of the vault are still circulating.
	ErrVaultNotEmpty = errors.New("fractional: vault not empty")

	// ErrNotOwner indicates the caller does not hold the share or controller.
	ErrNotOwner = errors.New("fractional: caller is not the owner")
)
