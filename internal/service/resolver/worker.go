package resolver

import (
	"context"
	"math/big"

	"gitlab.com/distributed_lab/logan/v3"

	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/executor"
	"github.com/moleswap/moleswap-svc/internal/oracle"
)

// orderExecutor is what the worker needs from the execution engine.
type orderExecutor interface {
	CheckBalance(ctx context.Context) error
	IsOrderProfitable(order data.Order) (*oracle.Profitability, error)
	ExecuteOrder(ctx context.Context, order data.Order) *executor.Result
}

// relayerAPI is what the worker needs from the relayer.
type relayerAPI interface {
	ActiveOrders(limit uint64) ([]data.Order, error)
	UpdateStatus(ctx context.Context, orderHash string, status data.OrderStatus) error
}

type stats struct {
	ordersProcessed      int
	successfulExecutions int
	failedExecutions     int
	totalProfit          *big.Rat
}

func newStats() *stats {
	return &stats{totalProfit: new(big.Rat)}
}

// worker runs one polling round: fetch active orders, gate each by
// profitability, execute sequentially. Executor failures are absorbed per
// order; only relayer connectivity errors propagate to the backoff loop.
func (s *service) worker(ctx context.Context) error {
	// pre-flight: no point polling orders the taker wallet cannot execute
	if err := s.executor.CheckBalance(ctx); err != nil {
		s.log.WithError(err).Warn("balance pre-flight failed, skipping cycle")
		return nil
	}

	orders, err := s.relayer.ActiveOrders(s.cfg.MaxOrdersPerPoll)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		s.log.Debug("no active orders")
		return nil
	}
	s.log.WithField("count", len(orders)).Info("polled active orders")

	for _, order := range orders {
		if ctx.Err() != nil {
			return nil
		}
		s.processOrder(ctx, order)
		if s.cfg.StopAfterFirst && s.stats.successfulExecutions > 0 {
			s.log.Info("stop_after_first is set, shutting down")
			s.stop()
			return nil
		}
	}

	s.logStats()
	return nil
}

func (s *service) processOrder(ctx context.Context, order data.Order) {
	log := s.log.WithField("order_hash", order.OrderHash)
	s.stats.ordersProcessed++

	profitability, err := s.executor.IsOrderProfitable(order)
	if err != nil {
		log.WithError(err).Warn("failed to evaluate profitability, skipping order")
		return
	}
	if !profitability.IsProfitable {
		log.WithField("profit_percent", profitability.ProfitPercent.FloatString(4)).
			Debug("order is not profitable, skipping")
		return
	}

	result := s.executor.ExecuteOrder(ctx, order)
	if !result.Success {
		s.stats.failedExecutions++
		log = log.WithField("state", result.State)
		if result.RefundRequired {
			log = log.WithField("refund_required", true)
		}
		log.WithError(result.Error).Error("order execution failed")
		return
	}

	s.stats.successfulExecutions++
	if result.Profit != nil {
		s.stats.totalProfit.Add(s.stats.totalProfit, result.Profit)
	}
	log.WithFields(logan.F{
		"execution_time": result.ExecutionTime.String(),
		"ton_tx":         result.TonWithdrawTx,
		"evm_tx":         result.EvmWithdrawTx,
	}).Info("order executed")

	if err := s.relayer.UpdateStatus(ctx, order.OrderHash, data.OrderStatusCompleted); err != nil {
		log.WithError(err).Warn("failed to report completed status to relayer")
	}
}

func (s *service) logStats() {
	s.log.WithFields(logan.F{
		"orders_processed":      s.stats.ordersProcessed,
		"successful_executions": s.stats.successfulExecutions,
		"failed_executions":     s.stats.failedExecutions,
		"total_profit":          s.stats.totalProfit.FloatString(6),
	}).Info("resolver stats")
}
