package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hos-market/storefront-api/api/controllers"
	"github.com/hos-market/storefront-api/api/middleware"
	cartsvc "github.com/hos-market/storefront-api/internal/cart"
	"github.com/hos-market/storefront-api/internal/multicheckout"
	"github.com/hos-market/storefront-api/pkg/config"
	"github.com/hos-market/storefront-api/pkg/logger"
	"github.com/hos-market/storefront-api/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	backend controllers.Pinger,
	cartService cartsvc.Service,
	checkoutService multicheckout.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"redis":    redisClient,
			"commerce": backend,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ClientKey(logg))
		r.Use(middleware.Idempotency(redisClient, logg, cfg.Checkout.IdempotencyTTL))

		r.Get("/cart/{checkoutID}", controllers.CartView(cartService, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/split", controllers.CheckoutSplit(checkoutService, logg))
			r.Post("/complete", controllers.CheckoutComplete(checkoutService, logg))
			r.Get("/plan", controllers.CheckoutPlan(checkoutService, logg))
			r.Delete("/plan", controllers.CheckoutAbandon(checkoutService, logg))
		})
	})

	return r
}
