package registry

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil or empty.
	ErrNilParam = errors.New("registry: required parameter is nil")

	// ErrUnauthorized indicates the caller is not the admin or not the authorized creator.
	ErrUnauthorized = errors.New("registry: unauthorized caller")

	// ErrNotFound indicates the notarization does not exist.
	ErrNotFound = errors.New("registry: notarization not found")

	// ErrAlreadyExists indicates a notarization with the same identity was already registered.
	ErrAlreadyExists = errors.New("registry: notarization already exists")

	// ErrAlreadyRevoked indicates a revoke of a record that is already revoked.
	ErrAlreadyRevoked = errors.New("registry: notarization already revoked")

	// ErrNotRevoked indicates an unrevoke of a record that is not revoked.
	ErrNotRevoked = errors.New("registry: notarization not revoked")

	// ErrRevoked indicates the notarization is revoked.
	ErrRevoked = errors.New("registry: notarization revoked")

	// ErrAlreadyUsed indicates the notarization is already bound to a contract.
	ErrAlreadyUsed = errors.New("registry: notarization already used")

	// ErrUnknownExecutor indicates an executor kind outside the known set.
	ErrUnknownExecutor = errors.New("registry: unknown executor kind")

	// ErrUnauthorizedExecutor indicates the executor kind is not allow-listed.
	ErrUnauthorizedExecutor = errors.New("registry: unauthorized executor")

	// ErrNotAuthorized indicates a missing ticket or a ticket for a different target.
	ErrNotAuthorized = errors.New("registry: operation not authorized")

	// ErrMismatch indicates the backing notarization is bound to a different package.
	ErrMismatch = errors.New("registry: notarization bound to a different package")

	// ErrClaimConsumed indicates a claim was presented twice.
	ErrClaimConsumed = errors.New("registry: claim already consumed")

	// ErrForeignClaim indicates a claim issued by another registry instance.
	ErrForeignClaim = errors.New("registry: claim issued by another registry")

	// ErrClaimNotConsumed indicates a claim was left unbound at the end of an operation.
	ErrClaimNotConsumed = errors.New("registry: claim not consumed")

	// ErrInvalidHash indicates a malformed document hash.
	ErrInvalidHash = errors.New("registry: invalid document hash")
)
