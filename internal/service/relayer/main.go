// Package relayer runs the order book and secret escrow HTTP API.
package relayer

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/moleswap/moleswap-svc/internal/chains/evm"
	"github.com/moleswap/moleswap-svc/internal/chains/ton"
	"github.com/moleswap/moleswap-svc/internal/config"
	"github.com/moleswap/moleswap-svc/internal/data/postgres"
	"github.com/moleswap/moleswap-svc/internal/escrow"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"gitlab.com/distributed_lab/ape"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type service struct {
	log *logan.Entry
	cfg config.Config

	escrows  *escrow.Service
	registry *escrow.Registry
	keeper   *secrets.Keeper
}

func (s *service) run(ctx context.Context) error {
	s.log.Info("relayer started")
	ape.Serve(ctx, s.router(), s.cfg, ape.ServeOpts{})
	return nil
}

func newService(cfg config.Config) *service {
	log := cfg.Log()

	evmAdapter, err := evm.New(cfg.EVM(), log)
	if err != nil {
		panic(errors.Wrap(err, "failed to init evm adapter"))
	}
	tonAdapter := ton.New(cfg.TON(), log)

	registry := escrow.NewRegistry(evmAdapter, tonAdapter)
	escrows := escrow.NewService(registry, postgres.NewEscrowValidations(cfg.DB()), 0, log)

	return &service{
		log:      log,
		cfg:      cfg,
		escrows:  escrows,
		registry: registry,
		keeper:   cfg.SecretKeeper().Keeper,
	}
}

func Run(cfg config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newService(cfg).run(ctx); err != nil {
		panic(err)
	}
}
