// Package resolver polls the relayer for active orders and executes the
// profitable ones end to end.
package resolver

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/distributed_lab/running"

	"github.com/moleswap/moleswap-svc/internal/chains/evm"
	"github.com/moleswap/moleswap-svc/internal/chains/ton"
	"github.com/moleswap/moleswap-svc/internal/config"
	"github.com/moleswap/moleswap-svc/internal/executor"
	"github.com/moleswap/moleswap-svc/internal/oracle"
)

type service struct {
	log      *logan.Entry
	cfg      config.Resolver
	relayer  relayerAPI
	executor orderExecutor
	stats    *stats
	stop     context.CancelFunc
}

func (s *service) run(ctx context.Context) error {
	s.log.WithFields(logan.F{
		"polling_interval":    s.cfg.PollingInterval.String(),
		"min_profit_percent":  s.cfg.MinProfitPercent,
		"max_orders_per_poll": s.cfg.MaxOrdersPerPoll,
	}).Info("resolver started")

	running.WithBackOff(ctx, s.log, "resolver", s.worker,
		s.cfg.PollingInterval, s.cfg.PollingInterval, 5*time.Minute)
	return nil
}

func newService(cfg config.Config, stop context.CancelFunc) *service {
	log := cfg.Log()

	evmAdapter, err := evm.New(cfg.EVM(), log)
	if err != nil {
		panic(errors.Wrap(err, "failed to init evm adapter"))
	}
	tonAdapter := ton.New(cfg.TON(), log)
	relayer := NewRelayer(cfg.RelayerClient())

	oracleCfg := cfg.Oracle()
	prices := oracle.New(oracleCfg.Prices, oracleCfg.PlaceholderPrice, oracleCfg.Strict, log)

	resolverCfg := cfg.Resolver()
	exec := executor.New(evmAdapter, tonAdapter, relayer, prices, resolverCfg.MinProfitPercent, log)

	return &service{
		log:      log,
		cfg:      resolverCfg,
		relayer:  relayer,
		executor: exec,
		stats:    newStats(),
		stop:     stop,
	}
}

func Run(cfg config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newService(cfg, stop).run(ctx); err != nil {
		panic(err)
	}
}
