package handlers

import (
	"net/http"

	"github.com/moleswap/moleswap-svc/internal/service/relayer/requests"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/ape"
	"gitlab.com/distributed_lab/ape/problems"
)

func ListOrders(w http.ResponseWriter, r *http.Request) {
	request, err := requests.NewListOrders(r)
	if err != nil {
		ape.RenderErr(w, problems.BadRequest(err)...)
		return
	}

	page, err := OrdersQ(r).Select(request.Filters(), request.OffsetPageParams)
	if err != nil {
		Log(r).WithError(err).Error("failed to select orders")
		ape.RenderErr(w, problems.InternalError())
		return
	}

	response := resources.OrderListResponse{
		Data:    make([]resources.Order, 0, len(page.Orders)),
		Total:   page.Total,
		HasMore: page.HasMore,
	}
	for _, order := range page.Orders {
		response.Data = append(response.Data, resources.NewOrder(order))
	}
	ape.Render(w, response)
}
