package handlers

import (
	"context"
	"net/http"

	"github.com/moleswap/moleswap-svc/internal/data"
	"github.com/moleswap/moleswap-svc/internal/escrow"
	"github.com/moleswap/moleswap-svc/internal/secrets"
	"gitlab.com/distributed_lab/logan/v3"
)

type ctxKey int

const (
	logCtxKey ctxKey = iota
	ordersQCtxKey
	secretsQCtxKey
	keeperCtxKey
	escrowsCtxKey
	registryCtxKey
)

func CtxLog(entry *logan.Entry) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return context.WithValue(ctx, logCtxKey, entry)
	}
}

func Log(r *http.Request) *logan.Entry {
	return r.Context().Value(logCtxKey).(*logan.Entry)
}

func CtxOrdersQ(q data.Orders) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return context.WithValue(ctx, ordersQCtxKey, q)
	}
}

func OrdersQ(r *http.Request) data.Orders {
	return r.Context().Value(ordersQCtxKey).(data.Orders)
}

func CtxSecretsQ(q data.Secrets) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return context.WithValue(ctx, secretsQCtxKey, q)
	}
}

func SecretsQ(r *http.Request) data.Secrets {
	return r.Context().Value(secretsQCtxKey).(data.Secrets)
}

func CtxKeeper(k *secrets.Keeper) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return context.WithValue(ctx, keeperCtxKey, k)
	}
}

func Keeper(r *http.Request) *secrets.Keeper {
	return r.Context().Value(keeperCtxKey).(*secrets.Keeper)
}

func CtxEscrows(s *escrow.Service) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return context.WithValue(ctx, escrowsCtxKey, s)
	}
}

func Escrows(r *http.Request) *escrow.Service {
	return r.Context().Value(escrowsCtxKey).(*escrow.Service)
}

func CtxRegistry(reg *escrow.Registry) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return context.WithValue(ctx, registryCtxKey, reg)
	}
}

func Registry(r *http.Request) *escrow.Registry {
	return r.Context().Value(registryCtxKey).(*escrow.Registry)
}
