package handlers

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/jsonapi"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// deriveOrderHash computes the canonical keccak256 digest of the order:
// maker address, digests of the asset identifiers, amounts as 32-byte
// big-endian words, chain ids, hashlock and salt, packed in this order.
func deriveOrderHash(o resources.OrderToSign) (string, error) {
	making, ok := new(big.Int).SetString(o.MakingAmount, 10)
	if !ok {
		return "", errors.Errorf("malformed making amount %q", o.MakingAmount)
	}
	taking, ok := new(big.Int).SetString(o.TakingAmount, 10)
	if !ok {
		return "", errors.Errorf("malformed taking amount %q", o.TakingAmount)
	}
	hashlock, err := hexWord(o.Hashlock)
	if err != nil {
		return "", errors.Wrap(err, "malformed hashlock")
	}
	salt, err := hexWord(o.Salt)
	if err != nil {
		return "", errors.Wrap(err, "malformed salt")
	}

	var buf []byte
	buf = append(buf, common.HexToAddress(o.Maker).Bytes()...)
	buf = append(buf, crypto.Keccak256([]byte(o.MakerAsset))...)
	buf = append(buf, crypto.Keccak256([]byte(o.TakerAsset))...)
	buf = append(buf, word(making)...)
	buf = append(buf, word(taking)...)
	buf = appendUint64(buf, uint64(o.SrcChainID))
	buf = appendUint64(buf, uint64(o.DstChainID))
	buf = append(buf, hashlock...)
	buf = append(buf, salt...)

	return crypto.Keccak256Hash(buf).Hex(), nil
}

// recoverSigner recovers the EIP-191 personal-sign signer of the order hash.
func recoverSigner(orderHash, signature string) (common.Address, error) {
	hashRaw, err := hexWord(orderHash)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "malformed order hash")
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return common.Address{}, errors.New("signature is not a hex string")
	}
	if len(sig) != 65 {
		return common.Address{}, errors.New("signature must be 65 bytes")
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	digest := crypto.Keccak256Hash([]byte("\x19Ethereum Signed Message:\n32"), hashRaw)
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to recover public key")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func hexWord(s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return nil, errors.New("not a hex string")
	}
	if len(raw) != 32 {
		return nil, errors.Errorf("expected 32 bytes, got %d", len(raw))
	}
	return raw, nil
}

func word(v *big.Int) []byte {
	var out [32]byte
	v.FillBytes(out[:])
	return out[:]
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// codedError builds a jsonapi error object carrying one of the resources
// error codes.
func codedError(status int, code, detail string) *jsonapi.ErrorObject {
	return &jsonapi.ErrorObject{
		Status: strconv.Itoa(status),
		Title:  http.StatusText(status),
		Code:   code,
		Detail: detail,
	}
}
