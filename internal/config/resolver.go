package config

import (
	"time"

	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Resolver struct {
	MinProfitPercent float64
	PollingInterval  time.Duration
	MaxOrdersPerPoll uint64
	StopAfterFirst   bool
}

// minPollingInterval keeps the resolver from hammering the relayer.
const minPollingInterval = time.Second

func (c *config) Resolver() Resolver {
	return c.resolverOnce.Do(func() interface{} {
		var cfg struct {
			MinProfitPercent float64       `fig:"min_profit_percent,required"`
			PollingInterval  time.Duration `fig:"polling_interval,required"`
			MaxOrdersPerPoll uint64        `fig:"max_orders_per_poll"`
			StopAfterFirst   bool          `fig:"stop_after_first"`
		}

		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "resolver")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out resolver"))
		}

		if cfg.PollingInterval < minPollingInterval {
			cfg.PollingInterval = minPollingInterval
		}
		if cfg.MaxOrdersPerPoll == 0 {
			cfg.MaxOrdersPerPoll = 10
		}

		return Resolver{
			MinProfitPercent: cfg.MinProfitPercent,
			PollingInterval:  cfg.PollingInterval,
			MaxOrdersPerPoll: cfg.MaxOrdersPerPoll,
			StopAfterFirst:   cfg.StopAfterFirst,
		}
	}).(Resolver)
}
