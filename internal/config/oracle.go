package config

import (
	"fmt"
	"math/big"

	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Oracle is the demo price source: a static asset -> price map from the
// config file. Unknown assets get PlaceholderPrice unless Strict is set.
type Oracle struct {
	Prices           map[string]*big.Rat
	PlaceholderPrice *big.Rat
	Strict           bool
}

func (c *config) Oracle() Oracle {
	return c.oracleOnce.Do(func() interface{} {
		raw := kv.MustGetStringMap(c.getter, "oracle")

		var cfg struct {
			PlaceholderPrice string `fig:"placeholder_price"`
			Strict           bool   `fig:"strict"`
		}
		err := figure.Out(&cfg).From(raw).Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out oracle"))
		}

		if cfg.PlaceholderPrice == "" {
			cfg.PlaceholderPrice = "1.0"
		}
		placeholder, ok := new(big.Rat).SetString(cfg.PlaceholderPrice)
		if !ok {
			panic(errors.Errorf("invalid oracle placeholder_price %q", cfg.PlaceholderPrice))
		}

		prices := make(map[string]*big.Rat)
		if rawPrices, ok := raw["prices"].(map[string]interface{}); ok {
			for asset, v := range rawPrices {
				price, ok := new(big.Rat).SetString(fmt.Sprint(v))
				if !ok {
					panic(errors.Errorf("invalid oracle price %v for asset %s", v, asset))
				}
				prices[asset] = price
			}
		}

		return Oracle{
			Prices:           prices,
			PlaceholderPrice: placeholder,
			Strict:           cfg.Strict,
		}
	}).(Oracle)
}
