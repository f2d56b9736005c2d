package relayer

import (
	"github.com/go-chi/chi"
	"github.com/moleswap/moleswap-svc/internal/data/postgres"
	"github.com/moleswap/moleswap-svc/internal/service/relayer/handlers"
	"gitlab.com/distributed_lab/ape"
)

func (s *service) router() chi.Router {
	r := chi.NewRouter()

	r.Use(
		ape.RecoverMiddleware(s.log),
		ape.LoganMiddleware(s.log),
		ape.CtxMiddleware(
			handlers.CtxLog(s.log),
			handlers.CtxOrdersQ(postgres.NewOrders(s.cfg.DB())),
			handlers.CtxSecretsQ(postgres.NewSecrets(s.cfg.DB())),
			handlers.CtxKeeper(s.keeper),
			handlers.CtxEscrows(s.escrows),
			handlers.CtxRegistry(s.registry),
		),
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/data", handlers.CreateOrderData)
			r.Post("/", handlers.CreateOrder)
			r.Get("/", handlers.ListOrders)
			r.Get("/{hash}", handlers.GetOrder)
			r.Post("/{hash}/status", handlers.UpdateOrderStatus)
		})
		r.Post("/secrets/{orderHash}", handlers.ShareSecret)
		r.Route("/plugins", func(r chi.Router) {
			r.Get("/status", handlers.PluginsStatus)
			r.Post("/health-check", handlers.HealthCheck)
			r.Get("/chains", handlers.SupportedChains)
			r.Post("/validate-escrow/{chainId}", handlers.ValidateEscrow)
		})
	})

	return r
}
