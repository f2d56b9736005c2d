package oracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
)

func testSource(strict bool) *Source {
	prices := map[string]*big.Rat{
		"WETH": big.NewRat(1, 2), // 0.5
		"TON":  big.NewRat(2, 1), // 2.0
	}
	return New(prices, big.NewRat(1, 1), strict, logan.New())
}

func TestCheckProfitability(t *testing.T) {
	s := testSource(false)

	making, _ := new(big.Int).SetString("1000000000000000000", 10) // 1e18
	taking, _ := new(big.Int).SetString("2000000000000000000", 10) // 2e18

	res, err := s.CheckProfitability("WETH", "TON", making, taking, big.NewRat(1, 1))
	require.NoError(t, err)

	// orderPrice = (2e18 * 2.0) / (1e18 * 0.5) = 8, oraclePrice = 2.0 / 0.5 = 4
	require.Zero(t, res.OrderPrice.Cmp(big.NewRat(8, 1)))
	require.Zero(t, res.OraclePrice.Cmp(big.NewRat(4, 1)))
	require.Zero(t, res.ProfitPercent.Cmp(big.NewRat(100, 1)))
	require.True(t, res.IsProfitable)
}

func TestCheckProfitabilityBelowThreshold(t *testing.T) {
	s := testSource(false)

	making := big.NewInt(1000)
	taking := big.NewInt(250) // exactly the oracle ratio, zero profit

	res, err := s.CheckProfitability("WETH", "TON", making, taking, big.NewRat(1, 1))
	require.NoError(t, err)
	require.Zero(t, res.ProfitPercent.Sign())
	require.False(t, res.IsProfitable)
}

func TestPriceStrictMode(t *testing.T) {
	s := testSource(true)

	_, err := s.Price("UNKNOWN")
	var pErr *PriceUnavailableError
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, "UNKNOWN", pErr.Asset)

	_, err = s.CheckProfitability("UNKNOWN", "TON", big.NewInt(1), big.NewInt(1), big.NewRat(1, 1))
	require.ErrorAs(t, err, &pErr)
}

func TestPricePlaceholder(t *testing.T) {
	s := testSource(false)

	quote, err := s.Price("UNKNOWN")
	require.NoError(t, err)
	require.Zero(t, quote.Price.Cmp(big.NewRat(1, 1)))
}

func TestSetPriceRefreshes(t *testing.T) {
	s := testSource(true)
	s.SetPrice("NEW", big.NewRat(3, 1))

	quote, err := s.Price("NEW")
	require.NoError(t, err)
	require.Zero(t, quote.Price.Cmp(big.NewRat(3, 1)))
}

func TestRejectsNonPositiveAmounts(t *testing.T) {
	s := testSource(false)

	_, err := s.CheckProfitability("WETH", "TON", big.NewInt(0), big.NewInt(1), big.NewRat(1, 1))
	require.Error(t, err)
	_, err = s.CheckProfitability("WETH", "TON", big.NewInt(1), nil, big.NewRat(1, 1))
	require.Error(t, err)
}
