package engine

import (
	"errors"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/coin"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/fractional"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/ledger"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/store"
)

// Reason codes reported to callers for rejected operations.
const (
	ReasonNone               = ""
	ReasonNotFound           = "NotFound"
	ReasonAlreadyUsed        = "AlreadyUsed"
	ReasonAlreadyExists      = "AlreadyExists"
	ReasonRevoked            = "Revoked"
	ReasonNotRevoked         = "NotRevoked"
	ReasonUnauthorized       = "Unauthorized"
	ReasonStateClosed        = "StateClosed"
	ReasonInsufficientSupply = "InsufficientSupply"
	ReasonInsufficientPay    = "InsufficientPayment"
	ReasonInsufficientBal    = "InsufficientBalance"
	ReasonZeroAmount         = "ZeroAmount"
	ReasonInvalidAmount      = "InvalidAmount"
	ReasonInvalidSplit       = "InvalidSplit"
	ReasonSupplyTooLow       = "SupplyTooLow"
	ReasonMismatch           = "Mismatch"
	ReasonFreshnessViolation = "FreshnessViolation"
	ReasonInvalidInput       = "InvalidInput"
	ReasonInternal           = "Internal"
)

var reasons = []struct {
	reason string
	errs   []error
}{
	{ReasonNotFound, []error{registry.ErrNotFound, store.ErrNotFound, ErrNotInitialized}},
	{ReasonAlreadyUsed, []error{registry.ErrAlreadyUsed, registry.ErrClaimConsumed}},
	{ReasonAlreadyExists, []error{registry.ErrAlreadyExists, ErrAlreadyInitialized}},
	{ReasonRevoked, []error{registry.ErrRevoked, registry.ErrAlreadyRevoked, ledger.ErrRevoked}},
	{ReasonNotRevoked, []error{registry.ErrNotRevoked}},
	{ReasonUnauthorized, []error{
		registry.ErrUnauthorized, registry.ErrUnauthorizedExecutor, registry.ErrNotAuthorized,
		registry.ErrForeignClaim, ledger.ErrNotOwner, fractional.ErrNotOwner,
	}},
	{ReasonStateClosed, []error{ledger.ErrSalesClosed, fractional.ErrVaultNotEmpty}},
	{ReasonInsufficientSupply, []error{ledger.ErrInsufficientSupply}},
	{ReasonInsufficientPay, []error{ledger.ErrInsufficientPayment}},
	{ReasonInsufficientBal, []error{
		ledger.ErrInsufficientBalance, fractional.ErrInsufficientUnits, coin.ErrInsufficientBalance,
	}},
	{ReasonZeroAmount, []error{ledger.ErrZeroAmount, fractional.ErrZeroAmount}},
	{ReasonInvalidAmount, []error{fractional.ErrInvalidAmount, coin.ErrOverflow}},
	{ReasonInvalidSplit, []error{ledger.ErrInvalidSplit}},
	{ReasonSupplyTooLow, []error{ledger.ErrSupplyTooLow}},
	{ReasonMismatch, []error{
		registry.ErrMismatch, ledger.ErrMismatch, fractional.ErrPackageMismatch, fractional.ErrKindMismatch,
	}},
	{ReasonFreshnessViolation, []error{fractional.ErrFreshnessViolation}},
	{ReasonInvalidInput, []error{
		registry.ErrNilParam, registry.ErrUnknownExecutor, registry.ErrInvalidHash,
		ledger.ErrNilParam, fractional.ErrNilParam, store.ErrNilParam,
		account.ErrInvalidAddress, account.ErrNilParam, account.ErrDecryptionFailed, account.ErrChecksumMismatch,
	}},
}

// Reason maps err to its reason code. Nil maps to ReasonNone and anything
// unrecognized to ReasonInternal.
func Reason(err error) string {
	if err == nil {
		return ReasonNone
	}
	for _, r := range reasons {
		for _, target := range r.errs {
			if errors.Is(err, target) {
				return r.reason
			}
		}
	}
	return ReasonInternal
}
