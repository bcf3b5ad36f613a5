package account

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("account: required parameter is nil")

	// ErrInvalidAddress indicates the address is malformed.
	ErrInvalidAddress = errors.New("account: invalid address")
)

var (
	// ErrDecryptionFailed indicates a key file could not be decrypted,
	// usually because the password is wrong.
	ErrDecryptionFailed = errors.New("account: key decryption failed")

	// ErrChecksumMismatch indicates a key file decrypted to corrupt data.
	ErrChecksumMismatch = errors.New("account: key checksum mismatch")
)
