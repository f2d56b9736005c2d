package requests

import (
	"net/http"

	"github.com/moleswap/moleswap-svc/internal/data"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/distributed_lab/urlval/v4"
)

const maxPageLimit = 100

type ListOrders struct {
	pgdb.OffsetPageParams
	FilterStatus *string `filter:"status"`
	FilterMaker  *string `filter:"maker"`
	FilterAsset  *string `filter:"asset"`
	FilterChain  *int64  `filter:"chain"`
}

func NewListOrders(r *http.Request) (ListOrders, error) {
	var request ListOrders
	if err := urlval.Decode(r.URL.Query(), &request); err != nil {
		return request, errors.Wrap(err, "failed to decode query")
	}
	if request.FilterStatus != nil && !data.OrderStatus(*request.FilterStatus).Valid() {
		return request, errors.Errorf("unknown status %q", *request.FilterStatus)
	}
	if request.Limit > maxPageLimit {
		return request, errors.Errorf("page limit must not exceed %d", maxPageLimit)
	}
	return request, nil
}

func (r ListOrders) Filters() data.OrderFilters {
	filters := data.OrderFilters{
		Maker:   r.FilterMaker,
		Asset:   r.FilterAsset,
		ChainID: r.FilterChain,
	}
	if r.FilterStatus != nil {
		status := data.OrderStatus(*r.FilterStatus)
		filters.Status = &status
	}
	return filters
}
