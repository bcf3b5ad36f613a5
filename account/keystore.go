package account

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters for key file encryption.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4

	privateKeyLen = 32
)

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
}

// SealKey encrypts the private key of kp under password.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(argon2id(password,salt), nonce, key||checksum)
//
// The checksum is SHA256(key)[:4].
func SealKey(kp *KeyPair, password string) ([]byte, error) {
	if kp == nil || kp.PrivateKey == nil {
		return nil, fmt.Errorf("%w: key pair", ErrNilParam)
	}
	secret := kp.PrivateKey.Serialize()
	sum := sha256.Sum256(secret)
	plaintext := append(secret, sum[:ChecksumLen]...)

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("account: generate salt: %w", err)
	}
	gcm, err := newGCM(deriveKey(password, salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("account: generate nonce: %w", err)
	}

	out := make([]byte, 0, SaltLen+NonceLen+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// OpenKey decrypts a key file produced by SealKey and rebuilds the key pair.
func OpenKey(sealed []byte, password string) (*KeyPair, error) {
	if len(sealed) < SaltLen+NonceLen+ChecksumLen {
		return nil, ErrDecryptionFailed
	}
	salt := sealed[:SaltLen]
	nonce := sealed[SaltLen : SaltLen+NonceLen]

	gcm, err := newGCM(deriveKey(password, salt))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := gcm.Open(nil, nonce, sealed[SaltLen+NonceLen:], nil)
	if err != nil || len(plaintext) != privateKeyLen+ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	secret := plaintext[:privateKeyLen]
	sum := sha256.Sum256(secret)
	if !bytes.Equal(plaintext[privateKeyLen:], sum[:ChecksumLen]) {
		return nil, ErrChecksumMismatch
	}

	priv, pub := ec.PrivateKeyFromBytes(secret)
	addr, err := FromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &KeyPair{PrivateKey: priv, PublicKey: pub, Address: addr}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("account: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("account: GCM creation failed: %w", err)
	}
	return gcm, nil
}
