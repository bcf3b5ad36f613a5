// Package id defines TypeID-based identities for every loanshare record.
//
// IDs are K-sortable (UUIDv7-based), globally unique and carry a prefix that
// names the record kind, e.g. "pkg_01h2xcejqtf2nbrexx3vqjhp41".
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record kind encoded in a TypeID.
type Prefix string

// Prefix constants for all record kinds.
const (
	PrefixNotarization Prefix = "ntr" // approved package-to-be
	PrefixPackage      Prefix = "pkg" // package ledger
	PrefixBond         Prefix = "bond"
	PrefixShare        Prefix = "shr"
	PrefixVault        Prefix = "vlt"
	PrefixController   Prefix = "ctl" // fungible supply controller
)

// ID is the identifier type shared by all records.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string into an ID.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses s and checks that its prefix matches expected.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}
	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}
	return parsed
}

// NewNotarizationID generates a new notarization ID.
func NewNotarizationID() ID { return New(PrefixNotarization) }

// NewPackageID generates a new package ID.
func NewPackageID() ID { return New(PrefixPackage) }

// NewBondID generates a new ownership bond ID.
func NewBondID() ID { return New(PrefixBond) }

// NewShareID generates a new investor share ID.
func NewShareID() ID { return New(PrefixShare) }

// NewVaultID generates a new fractional vault ID.
func NewVaultID() ID { return New(PrefixVault) }

// NewControllerID generates a new supply controller ID.
func NewControllerID() ID { return New(PrefixController) }

// String returns the "prefix_suffix" form, or "" for Nil.
func (i ID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}
	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// Equal reports whether i and other name the same record.
func (i ID) Equal(other ID) bool {
	return i.String() == other.String()
}

// Key returns the byte form used as a storage key.
func (i ID) Key() []byte {
	return []byte(i.String())
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}
	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
