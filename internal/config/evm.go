package config

import (
	"crypto/ecdsa"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// EVM is the source-chain connection: limit order protocol, escrow factory
// and the taker key that pays for deposits and withdrawals.
type EVM struct {
	Client             *ethclient.Client
	ChainID            *big.Int
	LimitOrderProtocol common.Address
	EscrowFactory      common.Address
	ResolverProxy      common.Address
	TakerKey           *ecdsa.PrivateKey
	TakerAddress       common.Address
	GasLimit           uint64
	RequestTimeout     time.Duration
}

const defaultRequestTimeout = 10 * time.Second
const defaultGasLimit = 500_000
const maxChainID int64 = math.MaxUint64/2 - 36

func (c *config) EVM() EVM {
	return c.evmOnce.Do(func() interface{} {
		var cfg struct {
			RPC                string         `fig:"rpc,required"`
			ChainID            int64          `fig:"chain_id,required"`
			LimitOrderProtocol common.Address `fig:"lop,required"`
			EscrowFactory      common.Address `fig:"escrow_factory,required"`
			ResolverProxy      common.Address `fig:"resolver_proxy"`
			TakerPriv          string         `fig:"taker_priv,required"`
			GasLimit           uint64         `fig:"gas_limit"`
			RequestTimeout     time.Duration  `fig:"request_timeout"`
		}

		err := figure.Out(&cfg).
			With(figure.BaseHooks, figure.EthereumHooks).
			From(kv.MustGetStringMap(c.getter, "evm")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out evm"))
		}

		if cfg.ChainID > maxChainID || cfg.ChainID <= 0 {
			panic("chain_id value out of range due to EIP 2294")
		}
		cli, err := ethclient.Dial(cfg.RPC)
		if err != nil {
			panic(errors.Wrap(err, "failed to connect to RPC provider"))
		}
		key, err := crypto.HexToECDSA(strip0x(cfg.TakerPriv))
		if err != nil {
			panic(errors.Wrap(err, "failed to parse taker private key"))
		}

		if cfg.GasLimit == 0 {
			cfg.GasLimit = defaultGasLimit
		}
		if cfg.RequestTimeout == 0 {
			cfg.RequestTimeout = defaultRequestTimeout
		}

		return EVM{
			Client:             cli,
			ChainID:            big.NewInt(cfg.ChainID),
			LimitOrderProtocol: cfg.LimitOrderProtocol,
			EscrowFactory:      cfg.EscrowFactory,
			ResolverProxy:      cfg.ResolverProxy,
			TakerKey:           key,
			TakerAddress:       crypto.PubkeyToAddress(key.PublicKey),
			GasLimit:           cfg.GasLimit,
			RequestTimeout:     cfg.RequestTimeout,
		}
	}).(EVM)
}

func strip0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
