package handlers

import (
	"math/big"
	"net/http"

	"github.com/moleswap/moleswap-svc/internal/escrow"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/requests"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/ape"
	"gitlab.com/distributed_lab/ape/problems"
)

// PluginsStatus lists the registered chain validators without touching
// their node connections.
func PluginsStatus(w http.ResponseWriter, r *http.Request) {
	validators := Registry(r).All()
	response := resources.PluginsStatusResponse{
		Plugins: make([]resources.ChainPlugin, 0, len(validators)),
	}
	for _, v := range validators {
		response.Plugins = append(response.Plugins, resources.ChainPlugin{
			ChainID: v.ChainID(),
			Name:    v.Name(),
			Healthy: true,
		})
	}
	ape.Render(w, response)
}

// HealthCheck pings every registered validator's node connection.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	validators := Registry(r).All()
	response := resources.PluginsStatusResponse{
		Plugins: make([]resources.ChainPlugin, 0, len(validators)),
	}
	for _, v := range validators {
		plugin := resources.ChainPlugin{
			ChainID: v.ChainID(),
			Name:    v.Name(),
			Healthy: true,
		}
		if err := v.Healthy(r.Context()); err != nil {
			plugin.Healthy = false
			plugin.Error = err.Error()
		}
		response.Plugins = append(response.Plugins, plugin)
	}
	ape.Render(w, response)
}

func SupportedChains(w http.ResponseWriter, r *http.Request) {
	ape.Render(w, resources.ChainsResponse{Chains: Registry(r).Chains()})
}

// ValidateEscrow runs a single-side on-chain escrow check on demand.
func ValidateEscrow(w http.ResponseWriter, r *http.Request) {
	request, err := requests.NewValidateEscrow(r)
	if err != nil {
		ape.RenderErr(w, problems.BadRequest(err)...)
		return
	}

	validator, err := Registry(r).Get(request.ChainID)
	if err != nil {
		ape.RenderErr(w, codedError(http.StatusNotFound, resources.CodeChainNotSupported, err.Error()))
		return
	}

	expected, _ := new(big.Int).SetString(request.ExpectedAmount, 10)
	result, err := validator.ValidateEscrow(r.Context(), escrow.Request{
		OrderHash:      request.OrderHash,
		EscrowAddress:  request.EscrowAddress,
		ChainID:        request.ChainID,
		Hashlock:       request.Hashlock,
		ExpectedAmount: expected,
	})
	if err != nil {
		Log(r).WithError(err).Error("escrow validation query failed")
		ape.RenderErr(w, problems.InternalError())
		return
	}

	ape.Render(w, resources.ValidateEscrowResponse{
		ChainID: request.ChainID,
		Result:  resources.NewSideValidation(result),
	})
}
