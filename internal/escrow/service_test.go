package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
)

type fakeValidator struct {
	chainID int64
	result  Result
	calls   int
}

func (f *fakeValidator) ChainID() int64 { return f.chainID }
func (f *fakeValidator) Name() string   { return "fake" }
func (f *fakeValidator) Healthy(context.Context) error {
	return nil
}
func (f *fakeValidator) ValidateEscrow(_ context.Context, _ Request) (*Result, error) {
	f.calls++
	r := f.result
	return &r, nil
}

type memValidations struct {
	records []data.EscrowValidation
}

func (m *memValidations) Insert(r data.EscrowValidation) error {
	r.ID = int64(len(m.records) + 1)
	m.records = append(m.records, r)
	return nil
}

func (m *memValidations) LatestValid(orderHash string, chainID int64, notBefore time.Time) (*data.EscrowValidation, error) {
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.OrderHash == orderHash && r.ChainID == chainID && r.IsValid && !r.ValidatedAt.Before(notBefore) {
			return &r, nil
		}
	}
	return nil, nil
}

func testOrder() data.Order {
	return data.Order{
		OrderHash:    "0xabc",
		MakingAmount: "1000",
		TakingAmount: "2000",
		Hashlock:     "0xdeadbeef",
	}
}

func pairRequest() PairRequest {
	return PairRequest{
		Order:            testOrder(),
		SrcEscrowAddress: "0xsrc",
		DstEscrowAddress: "0xdst",
		SrcChainID:       1,
		DstChainID:       2,
	}
}

func TestValidateEscrowsAllValid(t *testing.T) {
	src := &fakeValidator{chainID: 1, result: Result{Valid: true, Exists: true, HashlockMatch: true}}
	dst := &fakeValidator{chainID: 2, result: Result{Valid: true, Exists: true, HashlockMatch: true}}
	store := &memValidations{}
	svc := NewService(NewRegistry(src, dst), store, time.Minute, logan.New())

	res, err := svc.ValidateEscrows(context.Background(), pairRequest())
	require.NoError(t, err)
	require.True(t, res.AllValid)
	require.Len(t, store.records, 2)
}

func TestValidateEscrowsUnsupportedChainFailsSoftly(t *testing.T) {
	dst := &fakeValidator{chainID: 2, result: Result{Valid: true}}
	svc := NewService(NewRegistry(dst), &memValidations{}, time.Minute, logan.New())

	req := pairRequest()
	req.SrcChainID = 999

	res, err := svc.ValidateEscrows(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.AllValid)
	require.False(t, res.Src.Valid)
	require.Contains(t, res.Src.Reason, "999")
	require.True(t, res.Dst.Valid)
}

func TestValidateEscrowsReusesFreshRecord(t *testing.T) {
	src := &fakeValidator{chainID: 1, result: Result{Valid: true}}
	dst := &fakeValidator{chainID: 2, result: Result{Valid: true}}
	svc := NewService(NewRegistry(src, dst), &memValidations{}, time.Minute, logan.New())

	_, err := svc.ValidateEscrows(context.Background(), pairRequest())
	require.NoError(t, err)
	_, err = svc.ValidateEscrows(context.Background(), pairRequest())
	require.NoError(t, err)

	require.Equal(t, 1, src.calls)
	require.Equal(t, 1, dst.calls)
}

func TestValidateEscrowsIgnoresStaleAndMismatchedRecords(t *testing.T) {
	src := &fakeValidator{chainID: 1, result: Result{Valid: true}}
	dst := &fakeValidator{chainID: 2, result: Result{Valid: true}}
	store := &memValidations{}
	svc := NewService(NewRegistry(src, dst), store, time.Minute, logan.New())

	_, err := svc.ValidateEscrows(context.Background(), pairRequest())
	require.NoError(t, err)

	// same order but different escrow address must re-query the chain
	req := pairRequest()
	req.SrcEscrowAddress = "0xother"
	_, err = svc.ValidateEscrows(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
}

func TestValidateEscrowsRejectsBadAmounts(t *testing.T) {
	svc := NewService(NewRegistry(), &memValidations{}, time.Minute, logan.New())

	req := pairRequest()
	req.Order.MakingAmount = "not-a-number"
	_, err := svc.ValidateEscrows(context.Background(), req)
	require.Error(t, err)
}
