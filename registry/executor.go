package registry

import "fmt"

// ExecutorKind names a module that may bind notarizations or consume tickets.
// The set is closed; kinds outside it are rejected.
type ExecutorKind uint8

const (
	// ExecutorLedger is the package ledger.
	ExecutorLedger ExecutorKind = iota + 1
	// ExecutorLedgerV2 is the next ledger revision, admitted separately.
	ExecutorLedgerV2
)

var executorNames = map[ExecutorKind]string{
	ExecutorLedger:   "ledger",
	ExecutorLedgerV2: "ledger_v2",
}

// Valid reports whether k is a known kind.
func (k ExecutorKind) Valid() bool {
	_, ok := executorNames[k]
	return ok
}

func (k ExecutorKind) String() string {
	if name, ok := executorNames[k]; ok {
		return name
	}
	return fmt.Sprintf("executor(%d)", uint8(k))
}

// ParseExecutorKind maps a name back to its kind.
func ParseExecutorKind(s string) (ExecutorKind, error) {
	for k, name := range executorNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExecutor, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k ExecutorKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownExecutor, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ExecutorKind) UnmarshalText(data []byte) error {
	parsed, err := ParseExecutorKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
