// Package secrets manages the 32-byte swap secrets and their keccak256
// hashlocks, plus the symmetric encryption applied to secrets at rest.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// SecretLen is the raw secret and hashlock length in bytes.
const SecretLen = 32

var ErrSecretMismatch = errors.New("secret does not match hashlock")

// ValidationError reports exactly what is malformed about a secret or
// hashlock instead of a bare false.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GenerateSecret draws a fresh 32-byte secret from crypto/rand,
// returned as a 0x-prefixed hex string.
func GenerateSecret() (string, error) {
	raw := make([]byte, SecretLen)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// Hashlock computes keccak256 over the raw secret bytes. The textual 0x
// prefix is normalized away first, so prefixed and bare forms of the same
// secret always commit to the same hashlock.
func Hashlock(secret string) (string, error) {
	raw, err := decodeFixed(secret, "secret")
	if err != nil {
		return "", err
	}
	return crypto.Keccak256Hash(raw).Hex(), nil
}

// Verify recomputes the hashlock of secret and compares it with the given
// commitment. Malformed inputs are rejected before hashing.
func Verify(secret, hashlock string) error {
	if err := ValidateHashlockFormat(hashlock); err != nil {
		return err
	}
	got, err := Hashlock(secret)
	if err != nil {
		return err
	}
	if got != normalizeHex(hashlock) {
		return ErrSecretMismatch
	}
	return nil
}

func ValidateSecretFormat(secret string) error {
	_, err := decodeFixed(secret, "secret")
	return err
}

func ValidateHashlockFormat(hashlock string) error {
	_, err := decodeFixed(hashlock, "hashlock")
	return err
}

// normalizeHex lower-cases the value and guarantees a single 0x prefix.
func normalizeHex(s string) string {
	return "0x" + hex.EncodeToString(mustDecode(s))
}

func decodeFixed(s, field string) ([]byte, error) {
	stripped := strip0x(s)
	if len(stripped) != SecretLen*2 {
		return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("must be %d bytes, got %d hex chars", SecretLen, len(stripped))}
	}
	raw, err := hex.DecodeString(stripped)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "contains non-hex characters"}
	}
	return raw, nil
}

// mustDecode is only called on values that already passed decodeFixed.
func mustDecode(s string) []byte {
	raw, err := hex.DecodeString(strip0x(s))
	if err != nil {
		panic(err)
	}
	return raw
}

func strip0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
