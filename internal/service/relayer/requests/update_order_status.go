package requests

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type UpdateOrderStatus struct {
	OrderHash string `json:"-"`
	Status    data.OrderStatus
}

func NewUpdateOrderStatus(r *http.Request) (UpdateOrderStatus, error) {
	request := UpdateOrderStatus{OrderHash: chi.URLParam(r, "hash")}
	if err := secrets.ValidateHashlockFormat(request.OrderHash); err != nil {
		return request, errors.Wrap(err, "invalid order hash")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return request, errors.Wrap(err, "failed to decode body")
	}

	request.Status = data.OrderStatus(body.Status)
	if !request.Status.Valid() {
		return request, errors.Errorf("unknown status %q", body.Status)
	}
	return request, nil
}
