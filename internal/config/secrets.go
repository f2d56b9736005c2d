package config

import (
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type SecretKeeper struct {
	Keeper *secrets.Keeper
}

// SecretKeeper requires an explicit 32-byte hex key. There is no fallback to a
// generated per-process key: secrets encrypted at rest must survive restarts.
func (c *config) SecretKeeper() SecretKeeper {
	return c.keeperOnce.Do(func() interface{} {
		var cfg struct {
			Key string `fig:"key,required"`
		}

		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "secrets")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out secrets"))
		}

		keeper, err := secrets.KeeperFromHex(cfg.Key)
		if err != nil {
			panic(errors.Wrap(err, "failed to create secret keeper"))
		}

		return SecretKeeper{Keeper: keeper}
	}).(SecretKeeper)
}
