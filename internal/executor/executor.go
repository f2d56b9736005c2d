// Package executor drives one order across both chains: deposit to the
// source escrow, create the destination escrow, obtain the secret, then
// withdraw destination-first so the secret is revealed where it is learned.
package executor

import (
	"context"
	"math/big"
	"time"

	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/oracle"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type State string

const (
	StateCreated         State = "created"
	StateSrcDeposited    State = "src_deposited"
	StateDstCreated      State = "dst_created"
	StateSecretDisclosed State = "secret_disclosed"
	StateDstWithdrawn    State = "dst_withdrawn"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

// Result is the outcome of one execution attempt. ExecutionTime is always
// measured end to end, success or not.
type Result struct {
	OrderHash       string
	Success         bool
	State           State
	TransactionHash string
	TonWithdrawTx   string
	EvmWithdrawTx   string
	Profit          *big.Rat
	ExecutionTime   time.Duration
	RefundRequired  bool
	Error           error
}

type Executor struct {
	log       *logan.Entry
	src       SourceChain
	dst       DestinationChain
	secrets   SecretSource
	oracle    *oracle.Source
	minProfit *big.Rat
}

func New(src SourceChain, dst DestinationChain, secretSource SecretSource, priceSource *oracle.Source, minProfitPercent float64, log *logan.Entry) *Executor {
	return &Executor{
		log:       log,
		src:       src,
		dst:       dst,
		secrets:   secretSource,
		oracle:    priceSource,
		minProfit: new(big.Rat).SetFloat64(minProfitPercent),
	}
}

// IsOrderProfitable evaluates the oracle gate for one order.
func (e *Executor) IsOrderProfitable(order data.Order) (*oracle.Profitability, error) {
	making, ok := new(big.Int).SetString(order.MakingAmount, 10)
	if !ok {
		return nil, errors.Errorf("order %s has malformed making amount", order.OrderHash)
	}
	taking, ok := new(big.Int).SetString(order.TakingAmount, 10)
	if !ok {
		return nil, errors.Errorf("order %s has malformed taking amount", order.OrderHash)
	}
	return e.oracle.CheckProfitability(order.MakerAsset, order.TakerAsset, making, taking, e.minProfit)
}

// CheckBalance is the pre-flight gas gate, evaluated outside the hot path.
func (e *Executor) CheckBalance(ctx context.Context) error {
	return e.src.CheckBalance(ctx)
}

// ExecuteOrder runs the five-step sequence. Every error is absorbed into a
// failed Result so one bad order never kills the poll loop.
func (e *Executor) ExecuteOrder(ctx context.Context, order data.Order) *Result {
	started := time.Now()
	log := e.log.WithField("order_hash", order.OrderHash)

	result := &Result{OrderHash: order.OrderHash, State: StateCreated}
	defer func() { result.ExecutionTime = time.Since(started) }()

	fail := func(err error) *Result {
		result.Success = false
		result.Error = err
		result.State = StateFailed
		log.WithError(err).Error("order execution failed")
		return result
	}

	profitability, err := e.IsOrderProfitable(order)
	if err != nil {
		return fail(errors.Wrap(err, "failed to evaluate profitability"))
	}
	if !profitability.IsProfitable {
		return fail(errors.Errorf("order is not profitable: %s%% < %s%%",
			profitability.ProfitPercent.FloatString(4), e.minProfit.FloatString(4)))
	}
	result.Profit = profitability.ProfitPercent

	// Step 1: deposit makingAmount into the source escrow.
	deposit, err := e.src.DepositToEscrow(ctx, order)
	if err != nil {
		return fail(errors.Wrap(err, "failed to deposit to source escrow"))
	}
	result.State = StateSrcDeposited
	result.TransactionHash = deposit.TxHash
	order.SrcEscrowAddress.String, order.SrcEscrowAddress.Valid = deposit.EscrowAddress, true
	log.WithFields(logan.F{"escrow": deposit.EscrowAddress, "tx": deposit.TxHash}).
		Info("deposited to source escrow")

	// Step 2: fund the destination escrow. A failure here strands the
	// source deposit, so try the refund path before giving up.
	created, err := e.dst.CreateEscrow(ctx, order)
	if err != nil {
		e.refundSource(ctx, order, result, log)
		return fail(errors.Wrap(err, "failed to create destination escrow"))
	}
	result.State = StateDstCreated
	order.DstEscrowAddress.String, order.DstEscrowAddress.Valid = created.EscrowAddress, true
	log.WithField("escrow", created.EscrowAddress).Info("created destination escrow")

	// Step 3: the relayer validates both escrows before releasing the secret.
	secret, err := e.secrets.RequestSecret(ctx, order.OrderHash,
		deposit.EscrowAddress, created.EscrowAddress, order.SrcChainID, order.DstChainID)
	if err != nil {
		e.refundSource(ctx, order, result, log)
		return fail(errors.Wrap(err, "failed to obtain secret"))
	}
	if err := secrets.Verify(secret, order.Hashlock); err != nil {
		e.refundSource(ctx, order, result, log)
		return fail(errors.Wrap(err, "relayer returned a secret that does not match the hashlock"))
	}
	result.State = StateSecretDisclosed

	// Step 4: destination first. The withdrawal reveals the secret on the
	// destination chain; only then can it be used on the source side.
	tonTx, err := e.dst.Withdraw(ctx, order, secret)
	if err != nil {
		return fail(errors.Wrap(err, "failed to withdraw from destination escrow"))
	}
	result.State = StateDstWithdrawn
	result.TonWithdrawTx = tonTx

	evmTx, err := e.src.Withdraw(ctx, order, secret)
	if err != nil {
		return fail(errors.Wrap(err, "failed to withdraw from source escrow"))
	}
	result.EvmWithdrawTx = evmTx

	result.State = StateCompleted
	result.Success = true
	log.WithFields(logan.F{"ton_tx": tonTx, "evm_tx": evmTx}).Info("order executed")
	return result
}

func (e *Executor) refundSource(ctx context.Context, order data.Order, result *Result, log *logan.Entry) {
	tx, err := e.src.CancelEscrow(ctx, order)
	if err != nil {
		// the deposit stays stranded until the timelock cancel window
		result.RefundRequired = true
		log.WithError(err).Error("failed to cancel source escrow, deposit stranded")
		return
	}
	log.WithField("tx", tx).Info("cancelled source escrow after failed destination leg")
}
