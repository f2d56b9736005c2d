package resources

import (
	"time"

	"github.com/moleswap/moleswap-svc/internal/data"
)

// OrderToSign is the payload the maker signs; its keccak digest is the
// order hash.
type OrderToSign struct {
	Maker        string `json:"maker"`
	MakerAsset   string `json:"makerAsset"`
	TakerAsset   string `json:"takerAsset"`
	MakingAmount string `json:"makingAmount"`
	TakingAmount string `json:"takingAmount"`
	SrcChainID   int64  `json:"srcChainId"`
	DstChainID   int64  `json:"dstChainId"`
	Hashlock     string `json:"hashlock"`
	Salt         string `json:"salt"`
}

type OrderDataResponse struct {
	OrderToSign OrderToSign `json:"orderToSign"`
	OrderHash   string      `json:"orderHash"`
}

type Order struct {
	OrderHash        string    `json:"orderHash"`
	Maker            string    `json:"maker"`
	Taker            *string   `json:"taker,omitempty"`
	MakerAsset       string    `json:"makerAsset"`
	TakerAsset       string    `json:"takerAsset"`
	MakingAmount     string    `json:"makingAmount"`
	TakingAmount     string    `json:"takingAmount"`
	SrcChainID       int64     `json:"srcChainId"`
	DstChainID       int64     `json:"dstChainId"`
	SrcEscrowAddress *string   `json:"srcEscrowAddress,omitempty"`
	DstEscrowAddress *string   `json:"dstEscrowAddress,omitempty"`
	Hashlock         string    `json:"hashlock"`
	// SignedData carries the maker-signed order payload a resolver needs
	// to fill the order on-chain.
	SignedData *string   `json:"signedData,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewOrder(o data.Order) Order {
	out := Order{
		OrderHash:    o.OrderHash,
		Maker:        o.Maker,
		MakerAsset:   o.MakerAsset,
		TakerAsset:   o.TakerAsset,
		MakingAmount: o.MakingAmount,
		TakingAmount: o.TakingAmount,
		SrcChainID:   o.SrcChainID,
		DstChainID:   o.DstChainID,
		Hashlock:     o.Hashlock,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.Taker.Valid {
		out.Taker = &o.Taker.String
	}
	if o.SrcEscrowAddress.Valid {
		out.SrcEscrowAddress = &o.SrcEscrowAddress.String
	}
	if o.DstEscrowAddress.Valid {
		out.DstEscrowAddress = &o.DstEscrowAddress.String
	}
	if o.SignedData.Valid {
		out.SignedData = &o.SignedData.String
	}
	return out
}

type OrderListResponse struct {
	Data    []Order `json:"data"`
	Total   int64   `json:"total"`
	HasMore bool    `json:"hasMore"`
}

type CreateOrderResponse struct {
	OrderHash string    `json:"orderHash"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
