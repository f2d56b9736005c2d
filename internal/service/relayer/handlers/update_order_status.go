package handlers

import (
	"net/http"

	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/requests"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/ape"
	"gitlab.com/distributed_lab/ape/problems"
)

func UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	request, err := requests.NewUpdateOrderStatus(r)
	if err != nil {
		ape.RenderErr(w, problems.BadRequest(err)...)
		return
	}

	order, err := OrdersQ(r).UpdateStatus(request.OrderHash, request.Status)
	if err != nil {
		switch cause := err.(type) {
		case *data.InvalidTransitionError:
			ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidTransition, cause.Error()))
		default:
			if err == data.ErrOrderNotFound {
				ape.RenderErr(w, problems.NotFound())
				return
			}
			Log(r).WithError(err).Error("failed to update order status")
			ape.RenderErr(w, problems.InternalError())
		}
		return
	}

	ape.Render(w, resources.NewOrder(*order))
}
