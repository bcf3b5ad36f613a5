// Package account identifies the parties that hold shares, bonds and units.
//
// An Address is the 20-byte HASH160 of a compressed secp256k1 public key,
// the same form used by P2PKH outputs. Its text form is the base58check
// P2PKH address for the configured network.
package account

import (
	"encoding/hex"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// AddressSize is the byte length of an Address.
const AddressSize = 20

// Address is a HASH160 public key hash.
type Address [AddressSize]byte

// Zero is the empty address. It never identifies a real party.
var Zero Address

// FromPublicKey derives the address for a public key.
func FromPublicKey(pub *ec.PublicKey) (Address, error) {
	if pub == nil {
		return Zero, fmt.Errorf("%w: public key", ErrNilParam)
	}
	var a Address
	copy(a[:], bsvhash.Hash160(pub.Compressed()))
	return a, nil
}

// FromHash wraps a 20-byte public key hash.
func FromHash(pkh []byte) (Address, error) {
	if len(pkh) != AddressSize {
		return Zero, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressSize, len(pkh))
	}
	var a Address
	copy(a[:], pkh)
	return a, nil
}

// Parse accepts either a base58check P2PKH address or 40 hex characters.
func Parse(s string) (Address, error) {
	if len(s) == hex.EncodedLen(AddressSize) {
		if b, err := hex.DecodeString(s); err == nil {
			return FromHash(b)
		}
	}
	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	return FromHash(addr.PublicKeyHash)
}

// IsZero reports whether a is the empty address.
func (a Address) IsZero() bool {
	return a == Zero
}

// Hex returns the lowercase hex form of the hash.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// Encode returns the base58check P2PKH address on the given network.
func (a Address) Encode(mainnet bool) (string, error) {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return addr.AddressString, nil
}

// String returns the hex form, which is network independent.
func (a Address) String() string {
	return a.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
