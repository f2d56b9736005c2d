// Package ton is the destination-chain adapter: it funds escrows on TON,
// withdraws by revealing the secret and reads escrow state for validation.
// Confirmation is detected by polling the wallet seqno until it advances.
package ton

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/moleswap/moleswap-svc/internal/config"
	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/escrow"
	"github.com/moleswap/moleswap-svc/internal/executor"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// op codes of the escrow protocol messages
const (
	opCreateEscrow = 0x1f04537a
	opWithdraw     = 0x3d2e8f91
)

// withdrawGas covers message forwarding fees on the withdraw path.
var withdrawGas = tlb.MustFromTON("0.05")

type Adapter struct {
	log             *logan.Entry
	api             *ton.APIClient
	wallet          *wallet.Wallet
	chainID         int64
	lop             *address.Address
	taker           *address.Address
	safetyDeposit   tlb.Coins
	confirmAttempts int
	confirmDelay    time.Duration
}

func New(cfg config.TON, log *logan.Entry) *Adapter {
	return &Adapter{
		log:             log.WithField("chain", "ton"),
		api:             cfg.API,
		wallet:          cfg.Wallet,
		chainID:         cfg.ChainID,
		lop:             cfg.LOPAddress,
		taker:           cfg.TakerAddress,
		safetyDeposit:   cfg.SafetyDeposit,
		confirmAttempts: cfg.ConfirmAttempts,
		confirmDelay:    cfg.ConfirmDelay,
	}
}

func (a *Adapter) ChainID() int64 { return a.chainID }
func (a *Adapter) Name() string   { return "ton" }

func (a *Adapter) Healthy(ctx context.Context) error {
	_, err := a.api.CurrentMasterchainInfo(ctx)
	return errors.Wrap(err, "failed to get masterchain info")
}

// CreateEscrow sends a fill message to the order protocol funded with
// takingAmount plus the safety deposit, then waits for wallet seqno advance.
func (a *Adapter) CreateEscrow(ctx context.Context, order data.Order) (*executor.CreateResult, error) {
	orderHash, err := hashToInt(order.OrderHash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order hash")
	}
	hashlock, err := hashToInt(order.Hashlock)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hashlock")
	}
	taking, ok := new(big.Int).SetString(order.TakingAmount, 10)
	if !ok {
		return nil, errors.Errorf("malformed taking amount %q", order.TakingAmount)
	}

	body := cell.BeginCell().
		MustStoreUInt(opCreateEscrow, 32).
		MustStoreUInt(uint64(time.Now().UnixNano()), 64).
		MustStoreBigUInt(orderHash, 256).
		MustStoreBigUInt(hashlock, 256).
		MustStoreBigCoins(taking).
		MustStoreAddr(a.taker).
		EndCell()

	total := new(big.Int).Add(taking, a.safetyDeposit.Nano())

	seqno, err := a.seqno(ctx)
	if err != nil {
		return nil, err
	}

	err = a.wallet.Send(ctx, &wallet.Message{
		Mode: 3,
		InternalMessage: &tlb.InternalMessage{
			IHRDisabled: true,
			Bounce:      true,
			DstAddr:     a.lop,
			Amount:      tlb.FromNanoTON(total),
			Body:        body,
		},
	}, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send escrow create message")
	}

	if err := a.waitSeqnoAdvance(ctx, seqno, "escrow create"); err != nil {
		return nil, err
	}

	// the protocol deploys the escrow at an address derived from the order
	// hash; read it back from the protocol state
	escrowAddr, err := a.escrowAddress(ctx, orderHash)
	if err != nil {
		return nil, err
	}

	return &executor.CreateResult{
		EscrowAddress: escrowAddr.String(),
		MessageHash:   hex.EncodeToString(body.Hash()),
	}, nil
}

// Withdraw reveals the secret to the escrow, releasing funds to the maker's
// destination address and making the secret public on chain.
func (a *Adapter) Withdraw(ctx context.Context, order data.Order, secret string) (string, error) {
	if !order.DstEscrowAddress.Valid {
		return "", errors.New("order has no destination escrow address")
	}
	dst, err := address.ParseAddr(order.DstEscrowAddress.String)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse destination escrow address")
	}
	secretInt, err := hashToInt(secret)
	if err != nil {
		return "", errors.Wrap(err, "invalid secret")
	}

	body := cell.BeginCell().
		MustStoreUInt(opWithdraw, 32).
		MustStoreUInt(uint64(time.Now().UnixNano()), 64).
		MustStoreBigUInt(secretInt, 256).
		EndCell()

	seqno, err := a.seqno(ctx)
	if err != nil {
		return "", err
	}

	err = a.wallet.Send(ctx, &wallet.Message{
		Mode: 3,
		InternalMessage: &tlb.InternalMessage{
			IHRDisabled: true,
			Bounce:      true,
			DstAddr:     dst,
			Amount:      withdrawGas,
			Body:        body,
		},
	}, false)
	if err != nil {
		return "", errors.Wrap(err, "failed to send withdraw message")
	}

	if err := a.waitSeqnoAdvance(ctx, seqno, "withdraw"); err != nil {
		return "", err
	}
	return hex.EncodeToString(body.Hash()), nil
}

// ValidateEscrow implements escrow.Validator.
func (a *Adapter) ValidateEscrow(ctx context.Context, req escrow.Request) (*escrow.Result, error) {
	addr, err := address.ParseAddr(req.EscrowAddress)
	if err != nil {
		return &escrow.Result{Valid: false, Reason: "malformed escrow address"}, nil
	}

	block, err := a.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get masterchain info")
	}
	acc, err := a.api.GetAccount(ctx, block, addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get escrow account")
	}
	if !acc.IsActive {
		return &escrow.Result{Valid: false, Reason: "escrow account is not active"}, nil
	}

	res, err := a.api.RunGetMethod(ctx, block, addr, "get_escrow_data")
	if err != nil {
		return nil, errors.Wrap(err, "failed to run get_escrow_data")
	}
	hashlock, err := res.Int(0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read escrow hashlock")
	}
	expiry, err := res.Int(1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read escrow expiry")
	}

	wantLock, err := hashToInt(req.Hashlock)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hashlock in request")
	}

	result := &escrow.Result{
		Exists:        true,
		Balance:       acc.State.Balance.Nano(),
		HashlockMatch: hashlock.Cmp(wantLock) == 0,
		ExpiresAt:     time.Unix(expiry.Int64(), 0).UTC(),
	}

	switch {
	case result.Balance.Cmp(req.ExpectedAmount) < 0:
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

func (a *Adapter) seqno(ctx context.Context) (uint64, error) {
	block, err := a.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get masterchain info")
	}
	res, err := a.api.RunGetMethod(ctx, block, a.wallet.WalletAddress(), "seqno")
	if err != nil {
		// an uninitialized wallet has no seqno yet
		return 0, nil
	}
	v, err := res.Int(0)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read seqno")
	}
	return v.Uint64(), nil
}

// waitSeqnoAdvance polls the wallet seqno with a bounded retry budget.
func (a *Adapter) waitSeqnoAdvance(ctx context.Context, before uint64, op string) error {
	for attempt := 0; attempt < a.confirmAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.confirmDelay):
		}

		current, err := a.seqno(ctx)
		if err != nil {
			a.log.WithError(err).Debug("failed to poll seqno, retrying")
			continue
		}
		if current > before {
			return nil
		}
	}
	return &executor.TimeoutError{
		Op:       op,
		Attempts: a.confirmAttempts,
		Waited:   time.Duration(a.confirmAttempts) * a.confirmDelay,
	}
}

func (a *Adapter) escrowAddress(ctx context.Context, orderHash *big.Int) (*address.Address, error) {
	block, err := a.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get masterchain info")
	}
	res, err := a.api.RunGetMethod(ctx, block, a.lop, "get_escrow_address", orderHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to run get_escrow_address")
	}
	slice, err := res.Slice(0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read escrow address slice")
	}
	addr, err := slice.LoadAddr()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load escrow address")
	}
	return addr, nil
}

func hashToInt(s string) (*big.Int, error) {
	stripped := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(stripped)
	if err != nil {
		return nil, errors.Wrap(err, "not a hex string")
	}
	if len(raw) != 32 {
		return nil, errors.Errorf("expected 32 bytes, got %d", len(raw))
	}
	return new(big.Int).SetBytes(raw), nil
}
