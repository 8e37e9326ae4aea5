package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kmensah/boutique-backend/api/controllers"
	webhookcontrollers "github.com/kmensah/boutique-backend/api/controllers/webhooks"
	"github.com/kmensah/boutique-backend/api/middleware"
	checkoutsvc "github.com/kmensah/boutique-backend/internal/checkout"
	croninternal "github.com/kmensah/boutique-backend/internal/cron"
	"github.com/kmensah/boutique-backend/internal/customorders"
	"github.com/kmensah/boutique-backend/internal/lifecycle"
	ordersvc "github.com/kmensah/boutique-backend/internal/orders"
	"github.com/kmensah/boutique-backend/internal/payments"
	returnsvc "github.com/kmensah/boutique-backend/internal/returns"
	"github.com/kmensah/boutique-backend/pkg/config"
	"github.com/kmensah/boutique-backend/pkg/db"
	"github.com/kmensah/boutique-backend/pkg/logger"
	"github.com/kmensah/boutique-backend/pkg/redis"
)

type Services struct {
	Checkout          *checkoutsvc.Service
	Lifecycle         *lifecycle.Service
	Returns           *returnsvc.Service
	Delivery          *ordersvc.DeliveryService
	CustomOrderIntake *customorders.Service

	PayDunya *payments.PayDunya
	Stripe   *payments.Stripe

	OrderAdvancer *croninternal.OrderAdvancerJob
	CustomOrders  *croninternal.CustomOrderJob
	Cleanup       *croninternal.CleanupJob
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	cache redis.Pinger,
	services Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, database, cache))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/paydunya", webhookcontrollers.PaymentWebhook(services.PayDunya, services.Lifecycle, logg))
			r.Post("/stripe", webhookcontrollers.PaymentWebhook(services.Stripe, services.Lifecycle, logg))
		})

		r.Post("/checkout", controllers.Checkout(services.Checkout, logg))
		r.Post("/custom-orders", controllers.CreateCustomOrder(services.CustomOrderIntake, logg))

		r.Route("/orders/{orderId}/returns", func(r chi.Router) {
			r.Post("/", controllers.CreateReturn(services.Returns, logg))
			r.Get("/", controllers.ListReturns(services.Returns, logg))
		})
		r.Route("/returns/{returnId}", func(r chi.Router) {
			r.Put("/", controllers.UpdateReturn(services.Returns, logg))
			r.Delete("/", controllers.DeleteReturn(services.Returns, logg))
		})

		r.Route("/cron", func(r chi.Router) {
			r.Use(middleware.CronSecret(cfg.App, cfg.Cron, logg))
			r.Post("/advance-orders", controllers.CronAdvanceOrders(services.OrderAdvancer, logg))
			r.Post("/advance-custom-orders", controllers.CronAdvanceCustomOrders(services.CustomOrders, logg))
			r.Post("/cleanup", controllers.CronCleanup(services.Cleanup, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWT, logg))
		r.Put("/orders/{orderId}/delivery", controllers.AdminUpdateDelivery(services.Delivery, logg))
		r.Post("/orders/{orderId}/cancel", controllers.AdminCancelOrder(services.Lifecycle, logg))
	})

	return r
}
