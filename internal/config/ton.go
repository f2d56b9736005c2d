package config

import (
	"context"
	"strings"
	"time"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// TON is the destination-chain connection: liteserver pool, the taker wallet
// funding destination escrows and the on-chain order protocol address.
type TON struct {
	API             *ton.APIClient
	Wallet          *wallet.Wallet
	ChainID         int64
	LOPAddress      *address.Address
	TakerAddress    *address.Address
	SafetyDeposit   tlb.Coins
	ConfirmAttempts int
	ConfirmDelay    time.Duration
}

const defaultConfirmAttempts = 60
const defaultConfirmDelay = time.Second

func (c *config) TON() TON {
	return c.tonOnce.Do(func() interface{} {
		var cfg struct {
			ConfigURL       string        `fig:"config_url,required"`
			ChainID         int64         `fig:"chain_id,required"`
			LOPAddress      string        `fig:"lop_address,required"`
			TakerAddress    string        `fig:"taker_address,required"`
			TakerMnemonic   string        `fig:"taker_mnemonic,required"`
			SafetyDeposit   string        `fig:"safety_deposit"`
			ConfirmAttempts int           `fig:"confirm_attempts"`
			ConfirmDelay    time.Duration `fig:"confirm_delay"`
		}

		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "ton")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out ton"))
		}

		pool := liteclient.NewConnectionPool()
		err = pool.AddConnectionsFromConfigUrl(context.Background(), cfg.ConfigURL)
		if err != nil {
			panic(errors.Wrap(err, "failed to connect to liteservers"))
		}
		api := ton.NewAPIClient(pool)

		w, err := wallet.FromSeed(api, strings.Fields(cfg.TakerMnemonic), wallet.V4R2)
		if err != nil {
			panic(errors.Wrap(err, "failed to derive taker wallet from mnemonic"))
		}

		lop, err := address.ParseAddr(cfg.LOPAddress)
		if err != nil {
			panic(errors.Wrap(err, "failed to parse lop_address"))
		}
		taker, err := address.ParseAddr(cfg.TakerAddress)
		if err != nil {
			panic(errors.Wrap(err, "failed to parse taker_address"))
		}

		if cfg.SafetyDeposit == "" {
			cfg.SafetyDeposit = "0.1"
		}
		deposit, err := tlb.FromTON(cfg.SafetyDeposit)
		if err != nil {
			panic(errors.Wrap(err, "failed to parse safety_deposit"))
		}
		if cfg.ConfirmAttempts == 0 {
			cfg.ConfirmAttempts = defaultConfirmAttempts
		}
		if cfg.ConfirmDelay == 0 {
			cfg.ConfirmDelay = defaultConfirmDelay
		}

		return TON{
			API:             api,
			Wallet:          w,
			ChainID:         cfg.ChainID,
			LOPAddress:      lop,
			TakerAddress:    taker,
			SafetyDeposit:   deposit,
			ConfirmAttempts: cfg.ConfirmAttempts,
			ConfirmDelay:    cfg.ConfirmDelay,
		}
	}).(TON)
}
