package config

import (
	"gitlab.com/distributed_lab/kit/comfig"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/kit/pgdb"
)

type Config interface {
	comfig.Logger
	pgdb.Databaser
	comfig.Listenerer

	EVM() EVM
	TON() TON
	RelayerClient() RelayerClient
	Resolver() Resolver
	Oracle() Oracle
	SecretKeeper() SecretKeeper
}

type config struct {
	comfig.Logger
	pgdb.Databaser
	comfig.Listenerer
	getter kv.Getter

	evmOnce      comfig.Once
	tonOnce      comfig.Once
	relayerOnce  comfig.Once
	resolverOnce comfig.Once
	oracleOnce   comfig.Once
	keeperOnce   comfig.Once
}

func New(getter kv.Getter) Config {
	return &config{
		getter:     getter,
		Databaser:  pgdb.NewDatabaser(getter),
		Listenerer: comfig.NewListenerer(getter),
		Logger:     comfig.NewLogger(getter, comfig.LoggerOpts{}),
	}
}
