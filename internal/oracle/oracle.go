// Package oracle supplies reference prices per asset and the profitability
// gate the resolver evaluates before committing funds. Prices come from a
// static config map, a stand-in for a real feed; unknown assets resolve to a
// placeholder price which is fine for a demo and nothing else.
package oracle

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"gitlab.com/distributed_lab/logan/v3"
)

type PriceUnavailableError struct {
	Asset string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no price available for asset %s", e.Asset)
}

type PriceQuote struct {
	Asset     string
	Price     *big.Rat
	Timestamp time.Time
}

type Profitability struct {
	OrderPrice    *big.Rat
	OraclePrice   *big.Rat
	ProfitPercent *big.Rat
	IsProfitable  bool
}

type Source struct {
	log         *logan.Entry
	mu          sync.RWMutex
	prices      map[string]*big.Rat
	placeholder *big.Rat
	strict      bool
	stampedAt   time.Time
}

func New(prices map[string]*big.Rat, placeholder *big.Rat, strict bool, log *logan.Entry) *Source {
	copied := make(map[string]*big.Rat, len(prices))
	for asset, price := range prices {
		copied[asset] = new(big.Rat).Set(price)
	}
	return &Source{
		log:         log,
		prices:      copied,
		placeholder: placeholder,
		strict:      strict,
		stampedAt:   time.Now().UTC(),
	}
}

func (s *Source) Price(asset string) (*PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.prices[asset]
	if !ok {
		if s.strict {
			return nil, &PriceUnavailableError{Asset: asset}
		}
		s.log.WithField("asset", asset).Warn("no configured price, using placeholder")
		price = s.placeholder
	}
	return &PriceQuote{
		Asset:     asset,
		Price:     new(big.Rat).Set(price),
		Timestamp: s.stampedAt,
	}, nil
}

// SetPrice refreshes one asset price and re-stamps the cache.
func (s *Source) SetPrice(asset string, price *big.Rat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[asset] = new(big.Rat).Set(price)
	s.stampedAt = time.Now().UTC()
}

// CheckProfitability compares the order's implied price against the oracle:
//
//	orderPrice  = (takingAmount * takerPrice) / (makingAmount * makerPrice)
//	oraclePrice = takerPrice / makerPrice
//
// profitable iff (orderPrice - oraclePrice) / oraclePrice * 100 >= minProfitPercent.
func (s *Source) CheckProfitability(makerAsset, takerAsset string, makingAmount, takingAmount *big.Int, minProfitPercent *big.Rat) (*Profitability, error) {
	if makingAmount == nil || makingAmount.Sign() <= 0 {
		return nil, fmt.Errorf("making amount must be positive")
	}
	if takingAmount == nil || takingAmount.Sign() <= 0 {
		return nil, fmt.Errorf("taking amount must be positive")
	}

	makerQuote, err := s.Price(makerAsset)
	if err != nil {
		return nil, err
	}
	takerQuote, err := s.Price(takerAsset)
	if err != nil {
		return nil, err
	}
	if makerQuote.Price.Sign() == 0 || takerQuote.Price.Sign() == 0 {
		return nil, &PriceUnavailableError{Asset: makerAsset}
	}

	num := new(big.Rat).Mul(new(big.Rat).SetInt(takingAmount), takerQuote.Price)
	den := new(big.Rat).Mul(new(big.Rat).SetInt(makingAmount), makerQuote.Price)
	orderPrice := new(big.Rat).Quo(num, den)

	oraclePrice := new(big.Rat).Quo(takerQuote.Price, makerQuote.Price)

	profit := new(big.Rat).Sub(orderPrice, oraclePrice)
	profit.Quo(profit, oraclePrice)
	profit.Mul(profit, big.NewRat(100, 1))

	return &Profitability{
		OrderPrice:    orderPrice,
		OraclePrice:   oraclePrice,
		ProfitPercent: profit,
		IsProfitable:  profit.Cmp(minProfitPercent) >= 0,
	}, nil
}
