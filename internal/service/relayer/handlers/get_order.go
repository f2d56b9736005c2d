package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/ape"
	"gitlab.com/distributed_lab/ape/problems"
)

func GetOrder(w http.ResponseWriter, r *http.Request) {
	orderHash := chi.URLParam(r, "hash")
	if err := secrets.ValidateHashlockFormat(orderHash); err != nil {
		ape.RenderErr(w, problems.BadRequest(err)...)
		return
	}

	order, err := OrdersQ(r).Get(orderHash)
	if err != nil {
		Log(r).WithError(err).Error("failed to get order")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	if order == nil {
		ape.RenderErr(w, problems.NotFound())
		return
	}

	ape.Render(w, resources.NewOrder(*order))
}
