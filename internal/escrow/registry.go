// Package escrow gates secret release: before the relayer hands out a
// secret it confirms that both on-chain escrows exist, are funded, are not
// expired and commit to the order's hashlock.
package escrow

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"
)

type ChainNotSupportedError struct {
	ChainID int64
}

func (e *ChainNotSupportedError) Error() string {
	return fmt.Sprintf("no escrow validator registered for chain %d", e.ChainID)
}

// Request describes one escrow to check on one chain.
type Request struct {
	OrderHash      string
	EscrowAddress  string
	ChainID        int64
	Hashlock       string
	ExpectedAmount *big.Int
}

// Result is the outcome of one on-chain check. Reason is set when Valid is
// false.
type Result struct {
	Valid         bool
	Reason        string
	Exists        bool
	Balance       *big.Int
	HashlockMatch bool
	ExpiresAt     time.Time
}

// Validator is the per-chain capability consumed by the validation service.
type Validator interface {
	ChainID() int64
	Name() string
	ValidateEscrow(ctx context.Context, req Request) (*Result, error)
	Healthy(ctx context.Context) error
}

type Registry struct {
	mu         sync.RWMutex
	validators map[int64]Validator
}

func NewRegistry(validators ...Validator) *Registry {
	r := &Registry{validators: make(map[int64]Validator)}
	for _, v := range validators {
		r.Register(v)
	}
	return r
}

func (r *Registry) Register(v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[v.ChainID()] = v
}

func (r *Registry) Get(chainID int64) (Validator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[chainID]
	if !ok {
		return nil, &ChainNotSupportedError{ChainID: chainID}
	}
	return v, nil
}

func (r *Registry) Chains() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.validators))
	for id := range r.validators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) All() []Validator {
	ids := r.Chains()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Validator, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.validators[id])
	}
	return out
}
