package requests

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type ValidateEscrow struct {
	ChainID        int64  `json:"-"`
	OrderHash      string `json:"orderHash"`
	EscrowAddress  string `json:"escrowAddress"`
	Hashlock       string `json:"hashlock"`
	ExpectedAmount string `json:"expectedAmount"`
}

func NewValidateEscrow(r *http.Request) (ValidateEscrow, error) {
	var request ValidateEscrow

	chainID, err := strconv.ParseInt(chi.URLParam(r, "chainId"), 10, 64)
	if err != nil {
		return request, errors.Wrap(err, "invalid chain id")
	}
	request.ChainID = chainID

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return request, errors.Wrap(err, "failed to decode body")
	}
	return request, request.validate()
}

func (r ValidateEscrow) validate() error {
	return validation.Errors{
		"orderHash":      validation.Validate(r.OrderHash, validation.Required, validation.By(isHash)),
		"escrowAddress":  validation.Validate(r.EscrowAddress, validation.Required),
		"hashlock":       validation.Validate(r.Hashlock, validation.Required, validation.By(isHash)),
		"expectedAmount": validation.Validate(r.ExpectedAmount, validation.Required, validation.By(isPositiveAmount)),
	}.Filter()
}
