package account

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// KeyPair is a signing key and its derived address.
type KeyPair struct {
	PrivateKey *ec.PrivateKey
	PublicKey  *ec.PublicKey
	Address    Address
}

// NewKeyPair generates a random key pair.
func NewKeyPair() (*KeyPair, error) {
	priv, err := ec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("account: generate key: %w", err)
	}
	pub := priv.PubKey()
	addr, err := FromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &KeyPair{PrivateKey: priv, PublicKey: pub, Address: addr}, nil
}
