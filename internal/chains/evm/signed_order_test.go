package evm

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/executor"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
)

func storedSignedOrder(t *testing.T) string {
	// the exact shape the order book persists on order creation
	payload := signedOrder{
		Order: resources.OrderToSign{
			Maker:        "0x1111111111111111111111111111111111111111",
			MakerAsset:   "ETH",
			TakerAsset:   "TON",
			MakingAmount: "1000000000000000000",
			TakingAmount: "2000000000000000000",
			SrcChainID:   1,
			DstChainID:   607,
			Hashlock:     "0x" + strings.Repeat("ab", 32),
			Salt:         "0x" + strings.Repeat("cd", 32),
		},
		Signature: "0x" + strings.Repeat("11", 64) + "1b",
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(raw)
}

func TestDecodeSignedOrderFromStoredJSON(t *testing.T) {
	extension, signature, err := decodeSignedOrder(storedSignedOrder(t))
	require.NoError(t, err)
	require.Len(t, signature, 65)
	require.EqualValues(t, 0x1b, signature[64])

	values, err := extensionArgs.Unpack(extension)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), values[0])
	require.Equal(t, 0, big.NewInt(1e18).Cmp(values[3].(*big.Int)))
	require.Equal(t, 0, big.NewInt(607).Cmp(values[6].(*big.Int)))
}

func TestDecodeSignedOrderRejectsGarbage(t *testing.T) {
	_, _, err := decodeSignedOrder("0xdeadbeef")
	require.Error(t, err)

	_, _, err = decodeSignedOrder(`{"order":{},"signature":"0x1234"}`)
	require.Error(t, err)
}

func TestDepositRequiresDecodableSignedOrder(t *testing.T) {
	a := &Adapter{}
	order := data.Order{
		OrderHash:    "0x" + strings.Repeat("11", 32),
		Hashlock:     "0x" + strings.Repeat("ab", 32),
		MakingAmount: "1000000000000000000",
		SignedData:   sql.NullString{String: "not json", Valid: true},
	}

	_, err := a.DepositToEscrow(context.Background(), order)
	var incomplete *executor.IncompleteOrderError
	require.ErrorAs(t, err, &incomplete)

	order.SignedData = sql.NullString{}
	_, err = a.DepositToEscrow(context.Background(), order)
	require.ErrorAs(t, err, &incomplete)
}
