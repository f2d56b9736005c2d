package data

import "time"

// EscrowValidation is an immutable audit record of one on-chain escrow check.
// Multiple records may exist per order; the most recent valid one wins.
type EscrowValidation struct {
	ID             int64     `structs:"-" db:"id"`
	OrderHash      string    `structs:"order_hash" db:"order_hash"`
	ChainID        int64     `structs:"chain_id" db:"chain_id"`
	EscrowAddress  string    `structs:"escrow_address" db:"escrow_address"`
	ValidationType string    `structs:"validation_type" db:"validation_type"`
	IsValid        bool      `structs:"is_valid" db:"is_valid"`
	Details        string    `structs:"details" db:"details"`
	ValidatedAt    time.Time `structs:"validated_at,omitnested" db:"validated_at"`
}

const (
	ValidationTypeSource      = "source"
	ValidationTypeDestination = "destination"
)

type EscrowValidations interface {
	Insert(EscrowValidation) error
	// LatestValid returns the newest valid record for the order and chain
	// validated at notBefore or later, or nil.
	LatestValid(orderHash string, chainID int64, notBefore time.Time) (*EscrowValidation, error)
}
