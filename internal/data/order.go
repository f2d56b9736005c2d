package data

import (
	"database/sql"
	"fmt"
	"time"

	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// allowedTransitions is the full lifecycle table; completed and cancelled
// are terminal, nothing ever re-enters pending.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusActive, OrderStatusCancelled},
	OrderStatusActive:    {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

type Order struct {
	ID        int64  `structs:"-" db:"id"`
	OrderHash string `structs:"order_hash" db:"order_hash"`

	Maker string         `structs:"maker" db:"maker"`
	Taker sql.NullString `structs:"taker,omitnested" db:"taker"`

	MakerAsset   string `structs:"maker_asset" db:"maker_asset"`
	TakerAsset   string `structs:"taker_asset" db:"taker_asset"`
	MakingAmount string `structs:"making_amount" db:"making_amount"`
	TakingAmount string `structs:"taking_amount" db:"taking_amount"`

	SrcChainID       int64          `structs:"src_chain_id" db:"src_chain_id"`
	DstChainID       int64          `structs:"dst_chain_id" db:"dst_chain_id"`
	SrcEscrowAddress sql.NullString `structs:"src_escrow_address,omitnested" db:"src_escrow_address"`
	DstEscrowAddress sql.NullString `structs:"dst_escrow_address,omitnested" db:"dst_escrow_address"`

	Hashlock string `structs:"hashlock" db:"hashlock"`
	// Secret holds the encrypted-at-rest secret once disclosed.
	Secret     sql.NullString `structs:"secret,omitnested" db:"secret"`
	SignedData sql.NullString `structs:"signed_data,omitnested" db:"signed_data"`

	Status OrderStatus `structs:"status" db:"status"`

	CreatedAt time.Time `structs:"created_at,omitnested" db:"created_at"`
	UpdatedAt time.Time `structs:"updated_at,omitnested" db:"updated_at"`
}

type OrderFilters struct {
	Status  *OrderStatus
	Maker   *string
	Asset   *string
	ChainID *int64
}

type OrdersPage struct {
	Orders  []Order
	Total   int64
	HasMore bool
}

type Orders interface {
	Insert(Order) (*Order, error)
	Get(orderHash string) (*Order, error)
	Select(OrderFilters, pgdb.OffsetPageParams) (*OrdersPage, error)
	// UpdateStatus enforces the transition table under a row lock and
	// returns InvalidTransitionError on an illegal pair.
	UpdateStatus(orderHash string, to OrderStatus) (*Order, error)
	SetEscrows(orderHash, srcEscrow, dstEscrow string) error
	SetSecret(orderHash, ciphertext string) error
}
