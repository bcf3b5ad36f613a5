package registry

import (
	"encoding/hex"
	"fmt"
	"math/big"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// HashSize is the byte length of a DocumentHash.
const HashSize = 32

// DocumentHash is a 256-bit document digest, big-endian.
type DocumentHash [HashSize]byte

// HashDocument returns the SHA-256 digest of a document body.
// Notarization providers normally supply the hash themselves; this helper
// exists for tooling and tests.
func HashDocument(data []byte) DocumentHash {
	var h DocumentHash
	copy(h[:], bsvhash.Sha256(data))
	return h
}

// ParseDocumentHash decodes 64 hex characters.
func ParseDocumentHash(s string) (DocumentHash, error) {
	var h DocumentHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("%w: document hash: %w", ErrInvalidHash, err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: document hash must be %d bytes, got %d", ErrInvalidHash, HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// IsZero reports whether no hash was set.
func (h DocumentHash) IsZero() bool {
	return h == DocumentHash{}
}

// Int returns the hash as an unsigned 256-bit integer.
func (h DocumentHash) Int() *big.Int {
	return new(big.Int).SetBytes(h[:])
}

// String returns the lowercase hex form.
func (h DocumentHash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h DocumentHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *DocumentHash) UnmarshalText(data []byte) error {
	parsed, err := ParseDocumentHash(string(data))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
