package cli

import (
	"github.com/alecthomas/kingpin"
	"github.com/moleswap/moleswap-svc/internal/config"
	"github.com/moleswap/moleswap-svc/internal/service/relayer"
	"github.com/moleswap/moleswap-svc/internal/service/resolver"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3"
)

func Run(args []string) bool {
	log := logan.New()

	defer func() {
		if rvr := recover(); rvr != nil {
			log.WithRecover(rvr).Error("app panicked")
		}
	}()

	cfg := config.New(kv.MustFromEnv())
	log = cfg.Log()

	app := kingpin.New("moleswap-svc", "cross-chain atomic swap relayer and resolver")

	runCmd := app.Command("run", "run command")
	relayerCmd := runCmd.Command("relayer", "run the order book and secret escrow API")
	resolverCmd := runCmd.Command("resolver", "run the order execution service")

	cmd, err := app.Parse(args[1:])
	if err != nil {
		log.WithError(err).Error("failed to parse arguments")
		return false
	}

	switch cmd {
	case relayerCmd.FullCommand():
		relayer.Run(cfg)
	case resolverCmd.FullCommand():
		resolver.Run(cfg)
	default:
		log.Errorf("unknown command %s", cmd)
		return false
	}

	return true
}
