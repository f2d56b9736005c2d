package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashlockPrefixInsensitive(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(secret, "0x"))

	withPrefix, err := Hashlock(secret)
	require.NoError(t, err)
	bare, err := Hashlock(strings.TrimPrefix(secret, "0x"))
	require.NoError(t, err)
	upper, err := Hashlock("0X" + strings.TrimPrefix(secret, "0x"))
	require.NoError(t, err)

	require.Equal(t, withPrefix, bare)
	require.Equal(t, withPrefix, upper)
}

func TestVerify(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	hashlock, err := Hashlock(secret)
	require.NoError(t, err)

	require.NoError(t, Verify(secret, hashlock))

	other, err := GenerateSecret()
	require.NoError(t, err)
	otherLock, err := Hashlock(other)
	require.NoError(t, err)
	require.ErrorIs(t, Verify(secret, otherLock), ErrSecretMismatch)
}

func TestVerifyRejectsMalformedBeforeHashing(t *testing.T) {
	hashlock, err := Hashlock("0x" + strings.Repeat("ab", 32))
	require.NoError(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, Verify("0x1234", hashlock), &vErr)
	require.Equal(t, "secret", vErr.Field)
}

func TestValidateFormats(t *testing.T) {
	valid := "0x" + strings.Repeat("00", 32)
	require.NoError(t, ValidateSecretFormat(valid))
	require.NoError(t, ValidateHashlockFormat(valid))

	cases := map[string]string{
		"too short":    "0xdeadbeef",
		"too long":     "0x" + strings.Repeat("00", 33),
		"non-hex":      "0x" + strings.Repeat("zz", 32),
		"empty string": "",
	}
	for name, input := range cases {
		var vErr *ValidationError
		require.ErrorAs(t, ValidateSecretFormat(input), &vErr, name)
		require.ErrorAs(t, ValidateHashlockFormat(input), &vErr, name)
	}
}

func TestKeeperRoundTrip(t *testing.T) {
	key := strings.Repeat("11", 32)
	keeper, err := KeeperFromHex(key)
	require.NoError(t, err)

	secret, err := GenerateSecret()
	require.NoError(t, err)

	ct, err := keeper.Encrypt(secret)
	require.NoError(t, err)
	require.NotEqual(t, secret, ct)

	pt, err := keeper.Decrypt(ct)
	require.NoError(t, err)
	require.Equal(t, secret, pt)
}

func TestKeeperWrongKey(t *testing.T) {
	k1, err := KeeperFromHex(strings.Repeat("11", 32))
	require.NoError(t, err)
	k2, err := KeeperFromHex(strings.Repeat("22", 32))
	require.NoError(t, err)

	ct, err := k1.Encrypt("0x" + strings.Repeat("ab", 32))
	require.NoError(t, err)

	_, err = k2.Decrypt(ct)
	require.ErrorIs(t, err, ErrDecryption)
}

func TestKeeperCorruptCiphertext(t *testing.T) {
	keeper, err := KeeperFromHex(strings.Repeat("11", 32))
	require.NoError(t, err)

	_, err = keeper.Decrypt("not-hex")
	require.ErrorIs(t, err, ErrDecryption)
	_, err = keeper.Decrypt("00")
	require.ErrorIs(t, err, ErrDecryption)
}

func TestKeeperRejectsShortKey(t *testing.T) {
	_, err := NewKeeper([]byte("short"))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
