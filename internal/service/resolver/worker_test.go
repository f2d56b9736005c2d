package resolver

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/moleswap/moleswap-svc/internal/config"
	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/executor"
	"github.com/moleswap/moleswap-svc/internal/oracle"
)

type fakeRelayer struct {
	orders      []data.Order
	listErr     error
	statusCalls []string
	statusErr   error
}

func (f *fakeRelayer) ActiveOrders(limit uint64) ([]data.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if uint64(len(f.orders)) > limit {
		return f.orders[:limit], nil
	}
	return f.orders, nil
}

func (f *fakeRelayer) UpdateStatus(_ context.Context, orderHash string, status data.OrderStatus) error {
	f.statusCalls = append(f.statusCalls, orderHash+":"+string(status))
	return f.statusErr
}

type fakeExecutor struct {
	profitable map[string]bool
	results    map[string]*executor.Result
	executed   []string
	balanceErr error
}

func (f *fakeExecutor) CheckBalance(context.Context) error {
	return f.balanceErr
}

func (f *fakeExecutor) IsOrderProfitable(order data.Order) (*oracle.Profitability, error) {
	return &oracle.Profitability{
		ProfitPercent: big.NewRat(5, 1),
		IsProfitable:  f.profitable[order.OrderHash],
	}, nil
}

func (f *fakeExecutor) ExecuteOrder(_ context.Context, order data.Order) *executor.Result {
	f.executed = append(f.executed, order.OrderHash)
	if r, ok := f.results[order.OrderHash]; ok {
		return r
	}
	return &executor.Result{OrderHash: order.OrderHash, Success: true, State: executor.StateCompleted}
}

func newTestService(relayer *fakeRelayer, exec *fakeExecutor, cfg config.Resolver) *service {
	return &service{
		log:      logan.New(),
		cfg:      cfg,
		relayer:  relayer,
		executor: exec,
		stats:    newStats(),
		stop:     func() {},
	}
}

func activeOrder(hash string) data.Order {
	return data.Order{
		OrderHash:    hash,
		Maker:        "0x1111111111111111111111111111111111111111",
		MakerAsset:   "ETH",
		TakerAsset:   "TON",
		MakingAmount: "1000000000000000000",
		TakingAmount: "2000000000000000000",
		SrcChainID:   1,
		DstChainID:   607,
		Status:       data.OrderStatusActive,
	}
}

func TestWorkerExecutesProfitableOrders(t *testing.T) {
	relayer := &fakeRelayer{orders: []data.Order{activeOrder("0xaa"), activeOrder("0xbb")}}
	exec := &fakeExecutor{profitable: map[string]bool{"0xaa": true, "0xbb": false}}
	s := newTestService(relayer, exec, config.Resolver{MaxOrdersPerPoll: 10})

	require.NoError(t, s.worker(context.Background()))

	require.Equal(t, []string{"0xaa"}, exec.executed)
	require.Equal(t, 2, s.stats.ordersProcessed)
	require.Equal(t, 1, s.stats.successfulExecutions)
	require.Equal(t, 0, s.stats.failedExecutions)
	require.Equal(t, []string{"0xaa:completed"}, relayer.statusCalls)
}

func TestWorkerAbsorbsExecutionFailures(t *testing.T) {
	relayer := &fakeRelayer{orders: []data.Order{activeOrder("0xaa"), activeOrder("0xbb")}}
	exec := &fakeExecutor{
		profitable: map[string]bool{"0xaa": true, "0xbb": true},
		results: map[string]*executor.Result{
			"0xaa": {OrderHash: "0xaa", Success: false, State: executor.StateFailed, Error: errors.New("boom")},
		},
	}
	s := newTestService(relayer, exec, config.Resolver{MaxOrdersPerPoll: 10})

	require.NoError(t, s.worker(context.Background()))

	// the second order still runs after the first one fails
	require.Equal(t, []string{"0xaa", "0xbb"}, exec.executed)
	require.Equal(t, 1, s.stats.failedExecutions)
	require.Equal(t, 1, s.stats.successfulExecutions)
	require.Equal(t, []string{"0xbb:completed"}, relayer.statusCalls)
}

func TestWorkerSkipsCycleOnBalancePreflightFailure(t *testing.T) {
	relayer := &fakeRelayer{orders: []data.Order{activeOrder("0xaa")}}
	exec := &fakeExecutor{
		profitable: map[string]bool{"0xaa": true},
		balanceErr: errors.New("insufficient balance"),
	}
	s := newTestService(relayer, exec, config.Resolver{MaxOrdersPerPoll: 10})

	require.NoError(t, s.worker(context.Background()))
	require.Empty(t, exec.executed)
	require.Equal(t, 0, s.stats.ordersProcessed)
}

func TestWorkerPropagatesRelayerErrors(t *testing.T) {
	relayer := &fakeRelayer{listErr: errors.New("connection refused")}
	s := newTestService(relayer, &fakeExecutor{}, config.Resolver{MaxOrdersPerPoll: 10})

	require.Error(t, s.worker(context.Background()))
}

func TestWorkerRespectsMaxOrdersPerPoll(t *testing.T) {
	relayer := &fakeRelayer{orders: []data.Order{activeOrder("0xaa"), activeOrder("0xbb"), activeOrder("0xcc")}}
	exec := &fakeExecutor{profitable: map[string]bool{"0xaa": true, "0xbb": true, "0xcc": true}}
	s := newTestService(relayer, exec, config.Resolver{MaxOrdersPerPoll: 2})

	require.NoError(t, s.worker(context.Background()))
	require.Equal(t, []string{"0xaa", "0xbb"}, exec.executed)
}

func TestWorkerStopAfterFirst(t *testing.T) {
	relayer := &fakeRelayer{orders: []data.Order{activeOrder("0xaa"), activeOrder("0xbb")}}
	exec := &fakeExecutor{profitable: map[string]bool{"0xaa": true, "0xbb": true}}

	stopped := false
	s := newTestService(relayer, exec, config.Resolver{MaxOrdersPerPoll: 10, StopAfterFirst: true})
	s.stop = func() { stopped = true }

	require.NoError(t, s.worker(context.Background()))

	require.Equal(t, []string{"0xaa"}, exec.executed)
	require.True(t, stopped)
}

func TestWorkerAccumulatesProfit(t *testing.T) {
	relayer := &fakeRelayer{orders: []data.Order{activeOrder("0xaa"), activeOrder("0xbb")}}
	exec := &fakeExecutor{
		profitable: map[string]bool{"0xaa": true, "0xbb": true},
		results: map[string]*executor.Result{
			"0xaa": {OrderHash: "0xaa", Success: true, State: executor.StateCompleted, Profit: big.NewRat(3, 1)},
			"0xbb": {OrderHash: "0xbb", Success: true, State: executor.StateCompleted, Profit: big.NewRat(2, 1)},
		},
	}
	s := newTestService(relayer, exec, config.Resolver{MaxOrdersPerPoll: 10})

	require.NoError(t, s.worker(context.Background()))
	require.Equal(t, 0, big.NewRat(5, 1).Cmp(s.stats.totalProfit))
}
