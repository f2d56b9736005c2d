package requests

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type CreateOrder struct {
	SignedOrder struct {
		Order     resources.OrderToSign `json:"order"`
		Signature string                `json:"signature"`
	} `json:"signedOrder"`
}

func NewCreateOrder(r *http.Request) (CreateOrder, error) {
	var request CreateOrder
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return request, errors.Wrap(err, "failed to decode body")
	}
	return request, request.validate()
}

func (r CreateOrder) validate() error {
	o := r.SignedOrder.Order
	return validation.Errors{
		"signedOrder/signature":          validation.Validate(r.SignedOrder.Signature, validation.Required),
		"signedOrder/order/maker":        validation.Validate(o.Maker, validation.Required, validation.By(isHexAddress)),
		"signedOrder/order/makerAsset":   validation.Validate(o.MakerAsset, validation.Required),
		"signedOrder/order/takerAsset":   validation.Validate(o.TakerAsset, validation.Required),
		"signedOrder/order/makingAmount": validation.Validate(o.MakingAmount, validation.Required, validation.By(isPositiveAmount)),
		"signedOrder/order/takingAmount": validation.Validate(o.TakingAmount, validation.Required, validation.By(isPositiveAmount)),
		"signedOrder/order/srcChainId":   validation.Validate(o.SrcChainID, validation.Required, validation.Min(1)),
		"signedOrder/order/dstChainId":   validation.Validate(o.DstChainID, validation.Required, validation.Min(1)),
		"signedOrder/order/hashlock":     validation.Validate(o.Hashlock, validation.Required, validation.By(isHash)),
		"signedOrder/order/salt":         validation.Validate(o.Salt, validation.Required, validation.By(isHash)),
	}.Filter()
}

func isHash(v interface{}) error {
	s, _ := v.(string)
	return secrets.ValidateHashlockFormat(s)
}
