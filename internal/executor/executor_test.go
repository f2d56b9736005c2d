package executor

import (
	"context"
	"database/sql"
	"math/big"
	"testing"
	"time"

	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/oracle"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
)

type fakeSource struct {
	calls      *[]string
	depositErr error
	cancelErr  error
}

func (f *fakeSource) DepositToEscrow(_ context.Context, _ data.Order) (*DepositResult, error) {
	*f.calls = append(*f.calls, "src.deposit")
	if f.depositErr != nil {
		return nil, f.depositErr
	}
	return &DepositResult{EscrowAddress: "0xescrow", TxHash: "0xdeposit"}, nil
}

func (f *fakeSource) Withdraw(_ context.Context, _ data.Order, _ string) (string, error) {
	*f.calls = append(*f.calls, "src.withdraw")
	return "0xevmwithdraw", nil
}

func (f *fakeSource) CancelEscrow(_ context.Context, _ data.Order) (string, error) {
	*f.calls = append(*f.calls, "src.cancel")
	if f.cancelErr != nil {
		return "", f.cancelErr
	}
	return "0xcancel", nil
}

func (f *fakeSource) CheckBalance(context.Context) error { return nil }

type fakeDestination struct {
	calls     *[]string
	createErr error
}

func (f *fakeDestination) CreateEscrow(_ context.Context, _ data.Order) (*CreateResult, error) {
	*f.calls = append(*f.calls, "dst.create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &CreateResult{EscrowAddress: "EQescrow", MessageHash: "tonmsg"}, nil
}

func (f *fakeDestination) Withdraw(_ context.Context, _ data.Order, _ string) (string, error) {
	*f.calls = append(*f.calls, "dst.withdraw")
	return "tonwithdraw", nil
}

type fakeSecrets struct {
	calls  *[]string
	secret string
	err    error
}

func (f *fakeSecrets) RequestSecret(_ context.Context, _, _, _ string, _, _ int64) (string, error) {
	*f.calls = append(*f.calls, "secrets.request")
	return f.secret, f.err
}

func testOracle() *oracle.Source {
	return oracle.New(map[string]*big.Rat{
		"WETH": big.NewRat(1, 2),
		"TON":  big.NewRat(2, 1),
	}, big.NewRat(1, 1), false, logan.New())
}

func profitableOrder(t *testing.T) (data.Order, string) {
	secret, err := secrets.GenerateSecret()
	require.NoError(t, err)
	hashlock, err := secrets.Hashlock(secret)
	require.NoError(t, err)

	return data.Order{
		OrderHash:    "0xorder",
		Maker:        "0xmaker",
		MakerAsset:   "WETH",
		TakerAsset:   "TON",
		MakingAmount: "1000000000000000000",
		TakingAmount: "2000000000000000000",
		SrcChainID:   11155111,
		DstChainID:   608,
		Hashlock:     hashlock,
		Status:       data.OrderStatusActive,
		SignedData:   sql.NullString{String: "0xsigned", Valid: true},
	}, secret
}

func newExecutor(src SourceChain, dst DestinationChain, sec SecretSource) *Executor {
	return New(src, dst, sec, testOracle(), 1.0, logan.New())
}

func TestExecuteOrderHappyPath(t *testing.T) {
	order, secret := profitableOrder(t)
	var calls []string
	src := &fakeSource{calls: &calls}
	dst := &fakeDestination{calls: &calls}
	sec := &fakeSecrets{calls: &calls, secret: secret}

	res := newExecutor(src, dst, sec).ExecuteOrder(context.Background(), order)

	require.True(t, res.Success)
	require.NoError(t, res.Error)
	require.Equal(t, StateCompleted, res.State)
	require.Equal(t, "0xdeposit", res.TransactionHash)
	require.Equal(t, "tonwithdraw", res.TonWithdrawTx)
	require.Equal(t, "0xevmwithdraw", res.EvmWithdrawTx)
	require.False(t, res.RefundRequired)
	require.Positive(t, res.Profit.Sign())

	// destination withdrawal must precede source withdrawal
	require.Equal(t, []string{
		"src.deposit", "dst.create", "secrets.request", "dst.withdraw", "src.withdraw",
	}, calls)
}

func TestExecuteOrderUnprofitableStopsBeforeDeposit(t *testing.T) {
	order, _ := profitableOrder(t)
	order.TakingAmount = order.MakingAmount // 1:1, far below oracle ratio

	var calls []string
	src := &fakeSource{calls: &calls}
	dst := &fakeDestination{calls: &calls}
	sec := &fakeSecrets{calls: &calls}

	res := newExecutor(src, dst, sec).ExecuteOrder(context.Background(), order)

	require.False(t, res.Success)
	require.Error(t, res.Error)
	require.Empty(t, calls)
}

func TestExecuteOrderDepositFailureAbortsEarly(t *testing.T) {
	order, _ := profitableOrder(t)
	var calls []string
	src := &fakeSource{calls: &calls, depositErr: &IncompleteOrderError{OrderHash: order.OrderHash, Missing: "extension"}}
	dst := &fakeDestination{calls: &calls}
	sec := &fakeSecrets{calls: &calls}

	res := newExecutor(src, dst, sec).ExecuteOrder(context.Background(), order)

	require.False(t, res.Success)
	require.Equal(t, StateFailed, res.State)
	require.Equal(t, []string{"src.deposit"}, calls)
}

func TestExecuteOrderDestinationFailureTriggersRefund(t *testing.T) {
	order, _ := profitableOrder(t)
	var calls []string
	src := &fakeSource{calls: &calls}
	dst := &fakeDestination{calls: &calls, createErr: &TimeoutError{Op: "escrow create", Attempts: 60, Waited: time.Minute}}
	sec := &fakeSecrets{calls: &calls}

	res := newExecutor(src, dst, sec).ExecuteOrder(context.Background(), order)

	require.False(t, res.Success)
	require.False(t, res.RefundRequired) // cancel succeeded
	require.Equal(t, []string{"src.deposit", "dst.create", "src.cancel"}, calls)
}

func TestExecuteOrderStrandedDepositFlagged(t *testing.T) {
	order, _ := profitableOrder(t)
	var calls []string
	src := &fakeSource{calls: &calls, cancelErr: context.DeadlineExceeded}
	dst := &fakeDestination{calls: &calls, createErr: context.DeadlineExceeded}
	sec := &fakeSecrets{calls: &calls}

	res := newExecutor(src, dst, sec).ExecuteOrder(context.Background(), order)

	require.False(t, res.Success)
	require.True(t, res.RefundRequired)
}

func TestExecuteOrderRejectsMismatchedSecret(t *testing.T) {
	order, _ := profitableOrder(t)
	wrong, err := secrets.GenerateSecret()
	require.NoError(t, err)

	var calls []string
	src := &fakeSource{calls: &calls}
	dst := &fakeDestination{calls: &calls}
	sec := &fakeSecrets{calls: &calls, secret: wrong}

	res := newExecutor(src, dst, sec).ExecuteOrder(context.Background(), order)

	require.False(t, res.Success)
	// no withdrawal may happen with an unverified secret
	require.NotContains(t, calls, "dst.withdraw")
	require.NotContains(t, calls, "src.withdraw")
}

func TestExecutionTimeAlwaysMeasured(t *testing.T) {
	order, _ := profitableOrder(t)
	order.MakingAmount = "garbage"

	var calls []string
	res := newExecutor(&fakeSource{calls: &calls}, &fakeDestination{calls: &calls}, &fakeSecrets{calls: &calls}).
		ExecuteOrder(context.Background(), order)

	require.False(t, res.Success)
	require.GreaterOrEqual(t, res.ExecutionTime, time.Duration(0))
}
