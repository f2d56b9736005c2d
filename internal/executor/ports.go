package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/moleswap/moleswap-svc/internal/data"
)

// IncompleteOrderError marks an order missing the signed extension needed to
// move funds. This is a hard precondition, never papered over with mocks.
type IncompleteOrderError struct {
	OrderHash string
	Missing   string
}

func (e *IncompleteOrderError) Error() string {
	return fmt.Sprintf("order %s is incomplete: missing %s", e.OrderHash, e.Missing)
}

// TimeoutError reports an exhausted confirmation-polling budget.
type TimeoutError struct {
	Op       string
	Attempts int
	Waited   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s not confirmed after %d attempts (%s)", e.Op, e.Attempts, e.Waited)
}

type DepositResult struct {
	EscrowAddress string
	TxHash        string
	BlockTime     time.Time
}

type CreateResult struct {
	EscrowAddress string
	MessageHash   string
}

// SourceChain is the maker-side chain: holds the maker's deposit, pays out
// to the taker once the secret is public.
type SourceChain interface {
	DepositToEscrow(ctx context.Context, order data.Order) (*DepositResult, error)
	Withdraw(ctx context.Context, order data.Order, secret string) (string, error)
	// CancelEscrow is the refund path for a stranded source deposit.
	CancelEscrow(ctx context.Context, order data.Order) (string, error)
	CheckBalance(ctx context.Context) error
}

// DestinationChain is the taker-side chain: the resolver funds it, the maker
// claims from it by revealing the secret.
type DestinationChain interface {
	CreateEscrow(ctx context.Context, order data.Order) (*CreateResult, error)
	Withdraw(ctx context.Context, order data.Order, secret string) (string, error)
}

// SecretSource releases the swap secret once the relayer has validated both
// escrows; the gate lives on the relayer side.
type SecretSource interface {
	RequestSecret(ctx context.Context, orderHash, srcEscrow, dstEscrow string, srcChainID, dstChainID int64) (string, error)
}
