package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/requests"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/resources"
	"gitlab.com/distributed_lab/ape"
	"gitlab.com/distributed_lab/ape/problems"
)

func CreateOrder(w http.ResponseWriter, r *http.Request) {
	request, err := requests.NewCreateOrder(r)
	if err != nil {
		ape.RenderErr(w, problems.BadRequest(err)...)
		return
	}

	order := request.SignedOrder.Order
	orderHash, err := deriveOrderHash(order)
	if err != nil {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidOrder, err.Error()))
		return
	}

	signer, err := recoverSigner(orderHash, request.SignedOrder.Signature)
	if err != nil {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidSignature, err.Error()))
		return
	}
	if signer != common.HexToAddress(order.Maker) {
		ape.RenderErr(w, codedError(http.StatusBadRequest, resources.CodeInvalidSignature,
			"signature does not match the maker"))
		return
	}

	existing, err := OrdersQ(r).Get(orderHash)
	if err != nil {
		Log(r).WithError(err).Error("failed to get order")
		ape.RenderErr(w, problems.InternalError())
		return
	}
	if existing != nil {
		ape.RenderErr(w, codedError(http.StatusConflict, resources.CodeOrderAlreadyExists,
			"order "+orderHash+" already exists"))
		return
	}

	signedData, err := json.Marshal(request.SignedOrder)
	if err != nil {
		Log(r).WithError(err).Error("failed to marshal signed order")
		ape.RenderErr(w, problems.InternalError())
		return
	}

	inserted, err := OrdersQ(r).Insert(data.Order{
		OrderHash:    orderHash,
		Maker:        strings.ToLower(order.Maker),
		MakerAsset:   order.MakerAsset,
		TakerAsset:   order.TakerAsset,
		MakingAmount: order.MakingAmount,
		TakingAmount: order.TakingAmount,
		SrcChainID:   order.SrcChainID,
		DstChainID:   order.DstChainID,
		Hashlock:     order.Hashlock,
		SignedData:   nullString(string(signedData)),
		Status:       data.OrderStatusPending,
	})
	if err != nil {
		Log(r).WithError(err).Error("failed to insert order")
		ape.RenderErr(w, problems.InternalError())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resources.CreateOrderResponse{
		OrderHash: inserted.OrderHash,
		Status:    string(inserted.Status),
		CreatedAt: inserted.CreatedAt,
	}); err != nil {
		Log(r).WithError(err).Error("failed to write response")
	}
}
