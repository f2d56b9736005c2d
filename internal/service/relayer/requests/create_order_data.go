package requests

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type CreateOrderData struct {
	Maker        string `json:"maker"`
	MakerAsset   string `json:"makerAsset"`
	TakerAsset   string `json:"takerAsset"`
	MakingAmount string `json:"makingAmount"`
	TakingAmount string `json:"takingAmount"`
	SrcChainID   int64  `json:"srcChainId"`
	DstChainID   int64  `json:"dstChainId"`
}

func NewCreateOrderData(r *http.Request) (CreateOrderData, error) {
	var request CreateOrderData
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return request, errors.Wrap(err, "failed to decode body")
	}
	return request, request.validate()
}

func (r CreateOrderData) validate() error {
	return validation.Errors{
		"maker":        validation.Validate(r.Maker, validation.Required, validation.By(isHexAddress)),
		"makerAsset":   validation.Validate(r.MakerAsset, validation.Required),
		"takerAsset":   validation.Validate(r.TakerAsset, validation.Required),
		"makingAmount": validation.Validate(r.MakingAmount, validation.Required, validation.By(isPositiveAmount)),
		"takingAmount": validation.Validate(r.TakingAmount, validation.Required, validation.By(isPositiveAmount)),
		"srcChainId":   validation.Validate(r.SrcChainID, validation.Required, validation.Min(1)),
		"dstChainId":   validation.Validate(r.DstChainID, validation.Required, validation.Min(1)),
	}.Filter()
}

func isHexAddress(v interface{}) error {
	s, _ := v.(string)
	if !common.IsHexAddress(s) {
		return errors.New("must be a valid hex address")
	}
	return nil
}

func isPositiveAmount(v interface{}) error {
	s, _ := v.(string)
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok || amount.Sign() <= 0 {
		return errors.New("must be a positive decimal integer")
	}
	return nil
}
