package evm

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
)

// signedOrder is the payload the relayer persists for an order: the fields
// the maker signed plus the EIP-191 signature over their digest.
type signedOrder struct {
	Order     resources.OrderToSign `json:"order"`
	Signature string                `json:"signature"`
}

var (
	addressType = mustABIType("address")
	bytes32Type = mustABIType("bytes32")
	uint256Type = mustABIType("uint256")

	// extensionArgs is the on-chain encoding of the signed order fields the
	// escrow factory verifies against the maker's signature.
	extensionArgs = abi.Arguments{
		{Name: "maker", Type: addressType},
		{Name: "makerAssetHash", Type: bytes32Type},
		{Name: "takerAssetHash", Type: bytes32Type},
		{Name: "makingAmount", Type: uint256Type},
		{Name: "takingAmount", Type: uint256Type},
		{Name: "srcChainId", Type: uint256Type},
		{Name: "dstChainId", Type: uint256Type},
		{Name: "hashlock", Type: bytes32Type},
		{Name: "salt", Type: bytes32Type},
	}
)

func mustABIType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// decodeSignedOrder turns the stored signed-order JSON into the ABI-packed
// extension bytes and the raw 65-byte maker signature the deposit call needs.
func decodeSignedOrder(raw string) (extension, signature []byte, err error) {
	var so signedOrder
	if err := json.Unmarshal([]byte(raw), &so); err != nil {
		return nil, nil, errors.Wrap(err, "signed data is not a signed order")
	}

	signature, err = hex.DecodeString(strings.TrimPrefix(so.Signature, "0x"))
	if err != nil {
		return nil, nil, errors.Wrap(err, "signature is not a hex string")
	}
	if len(signature) != 65 {
		return nil, nil, errors.Errorf("signature must be 65 bytes, got %d", len(signature))
	}

	making, ok := new(big.Int).SetString(so.Order.MakingAmount, 10)
	if !ok {
		return nil, nil, errors.Errorf("malformed making amount %q", so.Order.MakingAmount)
	}
	taking, ok := new(big.Int).SetString(so.Order.TakingAmount, 10)
	if !ok {
		return nil, nil, errors.Errorf("malformed taking amount %q", so.Order.TakingAmount)
	}
	hashlock, err := hashToBytes32(so.Order.Hashlock)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid hashlock")
	}
	salt, err := hashToBytes32(so.Order.Salt)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid salt")
	}

	extension, err = extensionArgs.Pack(
		common.HexToAddress(so.Order.Maker),
		[32]byte(crypto.Keccak256Hash([]byte(so.Order.MakerAsset))),
		[32]byte(crypto.Keccak256Hash([]byte(so.Order.TakerAsset))),
		making,
		taking,
		big.NewInt(so.Order.SrcChainID),
		big.NewInt(so.Order.DstChainID),
		hashlock,
		salt,
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to pack order extension")
	}
	return extension, signature, nil
}
