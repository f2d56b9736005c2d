package handlers

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
)

func sampleOrder() resources.OrderToSign {
	return resources.OrderToSign{
		Maker:        "0x1111111111111111111111111111111111111111",
		MakerAsset:   "ETH",
		TakerAsset:   "TON",
		MakingAmount: "1000000000000000000",
		TakingAmount: "2000000000000000000",
		SrcChainID:   1,
		DstChainID:   607,
		Hashlock:     "0x" + strings.Repeat("ab", 32),
		Salt:         "0x" + strings.Repeat("cd", 32),
	}
}

func TestDeriveOrderHashDeterministic(t *testing.T) {
	a, err := deriveOrderHash(sampleOrder())
	require.NoError(t, err)
	b, err := deriveOrderHash(sampleOrder())
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 66)
	require.True(t, strings.HasPrefix(a, "0x"))
}

func TestDeriveOrderHashSensitivity(t *testing.T) {
	base, err := deriveOrderHash(sampleOrder())
	require.NoError(t, err)

	mutations := map[string]func(*resources.OrderToSign){
		"maker":  func(o *resources.OrderToSign) { o.Maker = "0x2222222222222222222222222222222222222222" },
		"amount": func(o *resources.OrderToSign) { o.MakingAmount = "1000000000000000001" },
		"chain":  func(o *resources.OrderToSign) { o.DstChainID = 608 },
		"salt":   func(o *resources.OrderToSign) { o.Salt = "0x" + strings.Repeat("ce", 32) },
	}
	for name, mutate := range mutations {
		order := sampleOrder()
		mutate(&order)
		got, err := deriveOrderHash(order)
		require.NoError(t, err, name)
		require.NotEqual(t, base, got, name)
	}
}

func TestDeriveOrderHashRejectsMalformedInput(t *testing.T) {
	order := sampleOrder()
	order.MakingAmount = "not-a-number"
	_, err := deriveOrderHash(order)
	require.Error(t, err)

	order = sampleOrder()
	order.Hashlock = "0x1234"
	_, err = deriveOrderHash(order)
	require.Error(t, err)
}

func TestRecoverSignerRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	orderHash, err := deriveOrderHash(sampleOrder())
	require.NoError(t, err)

	hashRaw, err := hex.DecodeString(strings.TrimPrefix(orderHash, "0x"))
	require.NoError(t, err)
	digest := crypto.Keccak256Hash([]byte("\x19Ethereum Signed Message:\n32"), hashRaw)
	sig, err := crypto.Sign(digest.Bytes(), key)
	require.NoError(t, err)

	recovered, err := recoverSigner(orderHash, "0x"+hex.EncodeToString(sig))
	require.NoError(t, err)
	require.Equal(t, signer, recovered)

	// wallets commonly add 27 to the recovery byte
	sig[64] += 27
	recovered, err = recoverSigner(orderHash, hex.EncodeToString(sig))
	require.NoError(t, err)
	require.Equal(t, signer, recovered)
}

func TestRecoverSignerRejectsGarbage(t *testing.T) {
	orderHash, err := deriveOrderHash(sampleOrder())
	require.NoError(t, err)

	_, err = recoverSigner(orderHash, "0xzz")
	require.Error(t, err)

	_, err = recoverSigner(orderHash, "0x1234")
	require.Error(t, err)

	_, err = recoverSigner("0x12", "0x"+strings.Repeat("00", 65))
	require.Error(t, err)
}
