// Package evm is the source-chain adapter: escrow deposits, withdrawals and
// read-only escrow validation against an EVM node.
package evm

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/moleswap/moleswap-svc/internal/config"
	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/escrow"
	"github.com/moleswap/moleswap-svc/internal/executor"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Adapter struct {
	log            *logan.Entry
	client         *ethclient.Client
	factory        *EscrowFactory
	takerKey       *ecdsa.PrivateKey
	takerAddress   common.Address
	chainID        *big.Int
	gasLimit       uint64
	requestTimeout time.Duration
}

func New(cfg config.EVM, log *logan.Entry) (*Adapter, error) {
	factory, err := NewEscrowFactory(cfg.EscrowFactory, cfg.Client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to bind escrow factory")
	}
	return &Adapter{
		log:            log.WithField("chain", "evm"),
		client:         cfg.Client,
		factory:        factory,
		takerKey:       cfg.TakerKey,
		takerAddress:   cfg.TakerAddress,
		chainID:        cfg.ChainID,
		gasLimit:       cfg.GasLimit,
		requestTimeout: cfg.RequestTimeout,
	}, nil
}

func (a *Adapter) ChainID() int64 { return a.chainID.Int64() }
func (a *Adapter) Name() string   { return "evm" }

func (a *Adapter) Healthy(ctx context.Context) error {
	child, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()
	_, err := a.client.BlockNumber(child)
	return errors.Wrap(err, "failed to get eth_blockNumber")
}

// DepositToEscrow locks makingAmount in the deterministic escrow for the
// order. The signed extension is a hard precondition: without it the deposit
// cannot be authorized on chain.
func (a *Adapter) DepositToEscrow(ctx context.Context, order data.Order) (*executor.DepositResult, error) {
	if !order.SignedData.Valid || order.SignedData.String == "" {
		return nil, &executor.IncompleteOrderError{OrderHash: order.OrderHash, Missing: "signed extension"}
	}

	orderHash, err := hashToBytes32(order.OrderHash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order hash")
	}
	hashlock, err := hashToBytes32(order.Hashlock)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hashlock")
	}
	amount, ok := new(big.Int).SetString(order.MakingAmount, 10)
	if !ok {
		return nil, errors.Errorf("malformed making amount %q", order.MakingAmount)
	}
	extension, signature, err := decodeSignedOrder(order.SignedData.String)
	if err != nil {
		return nil, &executor.IncompleteOrderError{OrderHash: order.OrderHash, Missing: "decodable signed order"}
	}

	child, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()

	escrowAddr, err := a.factory.AddressOfEscrow(&bind.CallOpts{Context: child}, orderHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive escrow address")
	}

	opts, err := a.transactOpts(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := a.factory.Deposit(opts, orderHash, hashlock, common.HexToAddress(order.MakerAsset), amount, extension, signature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send deposit transaction")
	}

	receipt, err := bind.WaitMined(ctx, a.client, tx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to wait for deposit to be mined")
	}

	header, err := a.client.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get deposit block header")
	}

	return &executor.DepositResult{
		EscrowAddress: escrowAddr.Hex(),
		TxHash:        tx.Hash().Hex(),
		BlockTime:     time.Unix(int64(header.Time), 0).UTC(),
	}, nil
}

func (a *Adapter) Withdraw(ctx context.Context, order data.Order, secret string) (string, error) {
	if !order.SrcEscrowAddress.Valid {
		return "", errors.New("order has no source escrow address")
	}
	secretBytes, err := hashToBytes32(secret)
	if err != nil {
		return "", errors.Wrap(err, "invalid secret")
	}

	esc, err := NewEscrow(common.HexToAddress(order.SrcEscrowAddress.String), a.client)
	if err != nil {
		return "", err
	}
	opts, err := a.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := esc.Withdraw(opts, secretBytes)
	if err != nil {
		return "", errors.Wrap(err, "failed to send withdraw transaction")
	}
	if _, err := bind.WaitMined(ctx, a.client, tx); err != nil {
		return "", errors.Wrap(err, "failed to wait for withdraw to be mined")
	}
	return tx.Hash().Hex(), nil
}

// CancelEscrow claims the deposit back through the timelock cancellation path.
func (a *Adapter) CancelEscrow(ctx context.Context, order data.Order) (string, error) {
	if !order.SrcEscrowAddress.Valid {
		return "", errors.New("order has no source escrow address")
	}
	esc, err := NewEscrow(common.HexToAddress(order.SrcEscrowAddress.String), a.client)
	if err != nil {
		return "", err
	}
	opts, err := a.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := esc.Cancel(opts)
	if err != nil {
		return "", errors.Wrap(err, "failed to send cancel transaction")
	}
	if _, err := bind.WaitMined(ctx, a.client, tx); err != nil {
		return "", errors.Wrap(err, "failed to wait for cancel to be mined")
	}
	return tx.Hash().Hex(), nil
}

// CheckBalance asserts the taker wallet can cover gasLimit at the current
// gas price.
func (a *Adapter) CheckBalance(ctx context.Context) error {
	child, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()

	balance, err := a.client.BalanceAt(child, a.takerAddress, nil)
	if err != nil {
		return errors.Wrap(err, "failed to get taker balance")
	}
	gasPrice, err := a.client.SuggestGasPrice(child)
	if err != nil {
		return errors.Wrap(err, "failed to get gas price")
	}

	need := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(a.gasLimit))
	if balance.Cmp(need) <= 0 {
		return errors.Errorf("insufficient balance: have %s wei, need %s wei", balance, need)
	}
	return nil
}

// ValidateEscrow implements escrow.Validator.
func (a *Adapter) ValidateEscrow(ctx context.Context, req escrow.Request) (*escrow.Result, error) {
	child, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()

	addr := common.HexToAddress(req.EscrowAddress)
	code, err := a.client.CodeAt(child, addr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get code at escrow address")
	}
	if len(code) == 0 {
		return &escrow.Result{Valid: false, Reason: "no contract at escrow address"}, nil
	}

	esc, err := NewEscrow(addr, a.client)
	if err != nil {
		return nil, err
	}
	callOpts := &bind.CallOpts{Context: child}

	balance, err := esc.Balance(callOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read escrow balance")
	}
	hashlock, err := esc.Hashlock(callOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read escrow hashlock")
	}
	expires, err := esc.ExpiresAt(callOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read escrow expiry")
	}

	result := &escrow.Result{
		Exists:        true,
		Balance:       balance,
		HashlockMatch: "0x"+hex.EncodeToString(hashlock[:]) == strings.ToLower(ensure0x(req.Hashlock)),
		ExpiresAt:     time.Unix(expires.Int64(), 0).UTC(),
	}

	switch {
	case balance.Cmp(req.ExpectedAmount) < 0:
		result.Reason = "escrow balance below expected amount"
	case !result.HashlockMatch:
		result.Reason = "on-chain hashlock does not match order"
	case !result.ExpiresAt.After(time.Now()):
		result.Reason = "escrow already expired"
	default:
		result.Valid = true
	}
	return result, nil
}

func (a *Adapter) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(a.takerKey, a.chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transactor")
	}
	opts.Context = ctx
	opts.GasLimit = a.gasLimit
	return opts, nil
}

func hashToBytes32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return out, errors.Wrap(err, "not a hex string")
	}
	if len(raw) != 32 {
		return out, errors.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func ensure0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return "0x" + s[2:]
	}
	return "0x" + s
}
