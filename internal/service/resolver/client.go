package resolver

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/moleswap/moleswap-svc/internal/config"
	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
)

// Relayer is the resolver's client of the relayer API. It also implements
// executor.SecretSource: the executor asks it for the secret once both
// escrows are in place.
type Relayer struct {
	collector *jsonapi.Connector
}

func NewRelayer(cfg config.RelayerClient) *Relayer {
	return &Relayer{collector: cfg.Connector}
}

func (r *Relayer) ActiveOrders(limit uint64) ([]data.Order, error) {
	u, _ := url.Parse(fmt.Sprintf("/api/orders?filter[status]=%s&page[limit]=%d", data.OrderStatusActive, limit))

	var page resources.OrderListResponse
	if err := r.collector.Get(u, &page); err != nil {
		return nil, errors.Wrap(err, "failed to list active orders")
	}

	orders := make([]data.Order, 0, len(page.Data))
	for _, o := range page.Data {
		orders = append(orders, orderFromResource(o))
	}
	return orders, nil
}

// RequestSecret asks the relayer to disclose the secret for an order. The
// relayer validates both escrows before answering, so a successful response
// means the swap is safe to finish.
func (r *Relayer) RequestSecret(ctx context.Context, orderHash, srcEscrow, dstEscrow string, srcChainID, dstChainID int64) (string, error) {
	u, _ := url.Parse("/api/secrets/" + orderHash)
	body := struct {
		SrcEscrowAddress string `json:"srcEscrowAddress"`
		DstEscrowAddress string `json:"dstEscrowAddress"`
		SrcChainID       int64  `json:"srcChainId"`
		DstChainID       int64  `json:"dstChainId"`
	}{
		SrcEscrowAddress: srcEscrow,
		DstEscrowAddress: dstEscrow,
		SrcChainID:       srcChainID,
		DstChainID:       dstChainID,
	}

	var response resources.SecretResponse
	if err := r.collector.PostJSON(u, body, ctx, &response); err != nil {
		return "", errors.Wrap(err, "failed to request secret")
	}
	return response.Secret, nil
}

func (r *Relayer) UpdateStatus(ctx context.Context, orderHash string, status data.OrderStatus) error {
	u, _ := url.Parse("/api/orders/" + orderHash + "/status")
	body := struct {
		Status string `json:"status"`
	}{Status: string(status)}

	err := r.collector.PostJSON(u, body, ctx, nil)
	return errors.Wrap(err, "failed to update order status")
}

func orderFromResource(o resources.Order) data.Order {
	order := data.Order{
		OrderHash:    o.OrderHash,
		Maker:        o.Maker,
		MakerAsset:   o.MakerAsset,
		TakerAsset:   o.TakerAsset,
		MakingAmount: o.MakingAmount,
		TakingAmount: o.TakingAmount,
		SrcChainID:   o.SrcChainID,
		DstChainID:   o.DstChainID,
		Hashlock:     o.Hashlock,
		Status:       data.OrderStatus(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.Taker != nil {
		order.Taker = nullString(*o.Taker)
	}
	if o.SrcEscrowAddress != nil {
		order.SrcEscrowAddress = nullString(*o.SrcEscrowAddress)
	}
	if o.DstEscrowAddress != nil {
		order.DstEscrowAddress = nullString(*o.DstEscrowAddress)
	}
	if o.SignedData != nil {
		order.SignedData = nullString(*o.SignedData)
	}
	return order
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

