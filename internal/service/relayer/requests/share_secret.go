package requests

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"github.com/xssnick/tonutils-go/address"
)

type ShareSecret struct {
	OrderHash        string `json:"-"`
	SrcEscrowAddress string `json:"srcEscrowAddress"`
	DstEscrowAddress string `json:"dstEscrowAddress"`
	SrcChainID       int64  `json:"srcChainId"`
	DstChainID       int64  `json:"dstChainId"`
}

// NewShareSecret separates hash-format errors from address errors so the
// handler can map them to distinct error codes.
func NewShareSecret(r *http.Request) (ShareSecret, error) {
	request := ShareSecret{OrderHash: chi.URLParam(r, "orderHash")}

	if err := secrets.ValidateHashlockFormat(request.OrderHash); err != nil {
		return request, &secrets.ValidationError{Field: "orderHash", Reason: err.Error()}
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return request, &secrets.ValidationError{Field: "body", Reason: "failed to decode body"}
	}
	if request.SrcChainID <= 0 || request.DstChainID <= 0 {
		return request, &secrets.ValidationError{Field: "chain ids", Reason: "must be positive"}
	}
	return request, request.validateAddresses()
}

// AddressError marks a malformed escrow address.
type AddressError struct {
	Field string
}

func (e *AddressError) Error() string {
	return e.Field + " is not a valid address"
}

func (r ShareSecret) validateAddresses() error {
	if !common.IsHexAddress(r.SrcEscrowAddress) {
		return &AddressError{Field: "srcEscrowAddress"}
	}
	if _, err := address.ParseAddr(r.DstEscrowAddress); err != nil {
		return &AddressError{Field: "dstEscrowAddress"}
	}
	return nil
}
