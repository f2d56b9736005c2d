package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"

	"gitlab.com/distributed_lab/logan/v3/errors"
)

var ErrDecryption = errors.New("failed to decrypt: wrong key or corrupt ciphertext")

// Keeper encrypts secrets at rest with AES-256-GCM under a single
// process-wide key. GCM authentication turns a wrong-key decrypt into
// ErrDecryption instead of silently wrong plaintext.
type Keeper struct {
	aead cipher.AEAD
}

func NewKeeper(key []byte) (*Keeper, error) {
	if len(key) != SecretLen {
		return nil, &ValidationError{Field: "encryption key", Reason: "must be 32 bytes"}
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}
	return &Keeper{aead: aead}, nil
}

func KeeperFromHex(key string) (*Keeper, error) {
	raw, err := hex.DecodeString(strip0x(key))
	if err != nil {
		return nil, &ValidationError{Field: "encryption key", Reason: "contains non-hex characters"}
	}
	return NewKeeper(raw)
}

// Encrypt seals the plaintext and returns hex(nonce || ciphertext).
func (k *Keeper) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "failed to read nonce")
	}
	sealed := k.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

func (k *Keeper) Decrypt(ciphertext string) (string, error) {
	sealed, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryption
	}
	if len(sealed) < k.aead.NonceSize() {
		return "", ErrDecryption
	}
	nonce, box := sealed[:k.aead.NonceSize()], sealed[k.aead.NonceSize():]
	plain, err := k.aead.Open(nil, nonce, box, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plain), nil
}
