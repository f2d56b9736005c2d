package handlers

import (
	"net/http"
	"time"

	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/escrow"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/requests"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/ape"
	"gitlab.com/distributed_lab/ape/problems"
)

// ShareSecret discloses the escrowed secret for an active order once both
// escrows pass on-chain validation.
func ShareSecret(w http.ResponseWriter, r *http.Request) {
	request, err := requests.NewShareSecret(r)
	if err != nil {
		switch err.(type) {
		case *requests.AddressError:
			ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidAddress, err.Error()))
		default:
			ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidSecretRequest, err.Error()))
		}
		return
	}

	order, err := OrdersQ(r).Get(request.OrderHash)
	if err != nil {
		Log(r).WithError(err).Error("failed to get order")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	if order == nil {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidSecretRequest,
			"order "+request.OrderHash+" does not exist"))
		return
	}
	if order.Status != data.OrderStatusActive {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidSecretRequest,
			"order is "+string(order.Status)+", secrets are shared for active orders only"))
		return
	}
	if order.SrcChainID != request.SrcChainID || order.DstChainID != request.DstChainID {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidSecretRequest,
			"chain ids do not match the order"))
		return
	}

	pair, err := Escrows(r).ValidateEscrows(r.Context(), escrowPairRequest(order, request))
	if err != nil {
		Log(r).WithError(err).Error("failed to validate escrows")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	result := resources.NewValidationResult(pair)
	if !pair.AllValid {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeEscrowValidationFailed,
			"src: "+pair.Src.Reason+"; dst: "+pair.Dst.Reason))
		return
	}

	ciphertext, err := SecretsQ(r).Get(order.OrderHash)
	if err != nil {
		Log(r).WithError(err).Error("failed to load escrowed secret")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	if ciphertext == "" {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidSecretRequest,
			"no secret is escrowed for this order"))
		return
	}
	secret, err := Keeper(r).Decrypt(ciphertext)
	if err != nil {
		Log(r).WithError(err).Error("failed to decrypt escrowed secret")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	if err := secrets.Verify(secret, order.Hashlock); err != nil {
		Log(r).WithError(err).Error("escrowed secret does not match the hashlock")
		ape.RenderErr(w, problems.InternalError())
		return
	}

	if err := OrdersQ(r).SetEscrows(order.OrderHash, request.SrcEscrowAddress, request.DstEscrowAddress); err != nil {
		Log(r).WithError(err).Error("failed to persist escrow addresses")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	if err := OrdersQ(r).SetSecret(order.OrderHash, ciphertext); err != nil {
		Log(r).WithError(err).Error("failed to persist disclosed secret")
		ape.RenderErr(w, problems.InternalError())
		return
	}

	ape.Render(w, resources.SecretResponse{
		Secret:           secret,
		OrderHash:        order.OrderHash,
		ValidationResult: result,
		SharedAt:         time.Now().UTC(),
	})
}

func escrowPairRequest(order *data.Order, request requests.ShareSecret) escrow.PairRequest {
	return escrow.PairRequest{
		Order:            *order,
		SrcEscrowAddress: request.SrcEscrowAddress,
		DstEscrowAddress: request.DstEscrowAddress,
		SrcChainID:       request.SrcChainID,
		DstChainID:       request.DstChainID,
	}
}
