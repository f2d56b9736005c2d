package escrow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/moleswap/moleswap-svc/internal/data"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// PairRequest asks for both sides of one order to be validated.
type PairRequest struct {
	Order            data.Order
	SrcEscrowAddress string
	DstEscrowAddress string
	SrcChainID       int64
	DstChainID       int64
}

type PairResult struct {
	Src      *Result
	Dst      *Result
	AllValid bool
}

type Service struct {
	log       *logan.Entry
	registry  *Registry
	records   data.EscrowValidations
	freshness time.Duration
}

const defaultFreshness = 30 * time.Second

func NewService(registry *Registry, records data.EscrowValidations, freshness time.Duration, log *logan.Entry) *Service {
	if freshness == 0 {
		freshness = defaultFreshness
	}
	return &Service{
		log:       log,
		registry:  registry,
		records:   records,
		freshness: freshness,
	}
}

// ValidateEscrows checks the source and destination escrows of one order.
// A recent valid audit record short-circuits the chain query for that side.
func (s *Service) ValidateEscrows(ctx context.Context, req PairRequest) (*PairResult, error) {
	makingAmount, err := amountOf(req.Order.MakingAmount)
	if err != nil {
		return nil, errors.Wrap(err, "invalid making amount")
	}
	takingAmount, err := amountOf(req.Order.TakingAmount)
	if err != nil {
		return nil, errors.Wrap(err, "invalid taking amount")
	}

	src, err := s.validateSide(ctx, Request{
		OrderHash:      req.Order.OrderHash,
		EscrowAddress:  req.SrcEscrowAddress,
		ChainID:        req.SrcChainID,
		Hashlock:       req.Order.Hashlock,
		ExpectedAmount: makingAmount,
	}, data.ValidationTypeSource)
	if err != nil {
		return nil, err
	}

	dst, err := s.validateSide(ctx, Request{
		OrderHash:      req.Order.OrderHash,
		EscrowAddress:  req.DstEscrowAddress,
		ChainID:        req.DstChainID,
		Hashlock:       req.Order.Hashlock,
		ExpectedAmount: takingAmount,
	}, data.ValidationTypeDestination)
	if err != nil {
		return nil, err
	}

	return &PairResult{
		Src:      src,
		Dst:      dst,
		AllValid: src.Valid && dst.Valid,
	}, nil
}

func (s *Service) validateSide(ctx context.Context, req Request, side string) (*Result, error) {
	log := s.log.WithFields(logan.F{
		"order_hash": req.OrderHash,
		"chain_id":   req.ChainID,
		"side":       side,
	})

	if prior, err := s.checkExistingValidation(req); err != nil {
		return nil, err
	} else if prior != nil {
		log.Debug("reusing recent valid escrow validation")
		return prior, nil
	}

	validator, err := s.registry.Get(req.ChainID)
	if err != nil {
		if _, ok := err.(*ChainNotSupportedError); ok {
			// unsupported chain is a failed validation, not a crash
			result := &Result{Valid: false, Reason: err.Error()}
			s.persist(req, side, result, log)
			return result, nil
		}
		return nil, err
	}

	result, err := validator.ValidateEscrow(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate escrow on chain", logan.F{"chain_id": req.ChainID})
	}

	s.persist(req, side, result, log)
	return result, nil
}

func (s *Service) checkExistingValidation(req Request) (*Result, error) {
	notBefore := time.Now().UTC().Add(-s.freshness)
	record, err := s.records.LatestValid(req.OrderHash, req.ChainID, notBefore)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up prior validations")
	}
	if record == nil || record.EscrowAddress != req.EscrowAddress {
		return nil, nil
	}

	var result Result
	if err := json.Unmarshal([]byte(record.Details), &result); err != nil {
		// unreadable audit details are not fatal, just re-validate
		return nil, nil
	}
	return &result, nil
}

func (s *Service) persist(req Request, side string, result *Result, log *logan.Entry) {
	details, err := json.Marshal(result)
	if err != nil {
		log.WithError(err).Error("failed to marshal validation details")
		details = []byte("{}")
	}

	record := data.EscrowValidation{
		OrderHash:      req.OrderHash,
		ChainID:        req.ChainID,
		EscrowAddress:  req.EscrowAddress,
		ValidationType: side,
		IsValid:        result.Valid,
		Details:        string(details),
		ValidatedAt:    time.Now().UTC(),
	}
	if err := s.records.Insert(record); err != nil {
		// the audit trail must not block secret release
		log.WithError(err).Error("failed to persist escrow validation")
	}
}
