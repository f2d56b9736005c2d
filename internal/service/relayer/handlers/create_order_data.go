package handlers

import (
	"net/http"

	"github.com/moleswap/moleswap-svc/internal/secrets"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/requests"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/ape"
	"gitlab.com/distributed_lab/ape/problems"
)

// CreateOrderData builds the payload the maker will sign. The secret is
// generated here and escrowed encrypted; only its hashlock leaves the
// relayer until both escrows are validated.
func CreateOrderData(w http.ResponseWriter, r *http.Request) {
	request, err := requests.NewCreateOrderData(r)
	if err != nil {
		ape.RenderErr(w, problems.BadRequest(err)...)
		return
	}

	secret, err := secrets.GenerateSecret()
	if err != nil {
		Log(r).WithError(err).Error("failed to generate secret")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	hashlock, err := secrets.Hashlock(secret)
	if err != nil {
		Log(r).WithError(err).Error("failed to compute hashlock")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	// a fresh 32-byte value doubles as the uniqueness salt
	salt, err := secrets.GenerateSecret()
	if err != nil {
		Log(r).WithError(err).Error("failed to generate salt")
		ape.RenderErr(w, problems.InternalError())
		return
	}

	orderToSign := resources.OrderToSign{
		Maker:        request.Maker,
		MakerAsset:   request.MakerAsset,
		TakerAsset:   request.TakerAsset,
		MakingAmount: request.MakingAmount,
		TakingAmount: request.TakingAmount,
		SrcChainID:   request.SrcChainID,
		DstChainID:   request.DstChainID,
		Hashlock:     hashlock,
		Salt:         salt,
	}
	orderHash, err := deriveOrderHash(orderToSign)
	if err != nil {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidOrder, err.Error()))
		return
	}

	ciphertext, err := Keeper(r).Encrypt(secret)
	if err != nil {
		Log(r).WithError(err).Error("failed to encrypt secret")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	if err := SecretsQ(r).Store(orderHash, ciphertext); err != nil {
		Log(r).WithError(err).Error("failed to escrow secret")
		ape.RenderErr(w, problems.InternalError())
		return
	}

	ape.Render(w, resources.OrderDataResponse{
		OrderToSign: orderToSign,
		OrderHash:   orderHash,
	})
}
