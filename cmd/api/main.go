package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kmensah/boutique-backend/api/routes"
	"github.com/kmensah/boutique-backend/internal/carts"
	checkoutsvc "github.com/kmensah/boutique-backend/internal/checkout"
	croninternal "github.com/kmensah/boutique-backend/internal/cron"
	"github.com/kmensah/boutique-backend/internal/customorders"
	"github.com/kmensah/boutique-backend/internal/lifecycle"
	"github.com/kmensah/boutique-backend/internal/notifications"
	ordersvc "github.com/kmensah/boutique-backend/internal/orders"
	"github.com/kmensah/boutique-backend/internal/payments"
	"github.com/kmensah/boutique-backend/internal/reservations"
	returnsvc "github.com/kmensah/boutique-backend/internal/returns"
	"github.com/kmensah/boutique-backend/pkg/config"
	"github.com/kmensah/boutique-backend/pkg/db"
	"github.com/kmensah/boutique-backend/pkg/logger"
	"github.com/kmensah/boutique-backend/pkg/migrate"
	"github.com/kmensah/boutique-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	services, err := buildServices(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, *services),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*routes.Services, error) {
	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	customsRepo := customorders.NewRepository(dbClient.DB())
	returnsRepo := returnsvc.NewRepository(dbClient.DB())
	cartsRepo := carts.NewRepository(dbClient.DB())
	ledger := reservations.NewLedger(dbClient.DB())

	emailSender, err := notifications.NewEmailSender(cfg.Notifications)
	if err != nil {
		return nil, err
	}
	whatsappSender, err := notifications.NewWhatsAppSender(cfg.Notifications)
	if err != nil {
		return nil, err
	}
	dispatcher := notifications.NewDispatcher(logg, cfg.Notifications.SendTimeout, emailSender, whatsappSender)

	guard, err := lifecycle.NewWebhookGuard(redisClient, cfg.Payments.WebhookDedupTTL)
	if err != nil {
		return nil, err
	}

	lifecycleService, err := lifecycle.NewService(lifecycle.ServiceParams{
		Orders:       ordersRepo,
		CustomOrders: customsRepo,
		Reservations: ledger,
		Guard:        guard,
		Notifier:     dispatcher,
		Logger:       logg,
	})
	if err != nil {
		return nil, err
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Orders:       ordersRepo,
		Reservations: ledger,
		TxRunner:     dbClient,
		OrderNumbers: redisClient,
		Config:       cfg.Checkout,
		Logger:       logg,
	})
	if err != nil {
		return nil, err
	}

	returnsService, err := returnsvc.NewService(returnsvc.ServiceParams{
		Repo:     returnsRepo,
		Orders:   ordersRepo,
		Notifier: dispatcher,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}

	deliveryService, err := ordersvc.NewDeliveryService(ordersRepo, logg)
	if err != nil {
		return nil, err
	}

	intakeService, err := customorders.NewService(customorders.ServiceParams{
		Repo:         customsRepo,
		OrderNumbers: redisClient,
		Logger:       logg,
	})
	if err != nil {
		return nil, err
	}

	paydunya, err := payments.NewPayDunya(cfg.Payments.PayDunyaSecret)
	if err != nil {
		return nil, err
	}
	stripeProvider, err := payments.NewStripe(cfg.Payments.StripeSecret)
	if err != nil {
		return nil, err
	}

	advancerJob, err := croninternal.NewOrderAdvancerJob(croninternal.OrderAdvancerJobParams{
		Logger:   logg,
		Orders:   ordersRepo,
		Notifier: dispatcher,
	})
	if err != nil {
		return nil, err
	}
	customJob, err := croninternal.NewCustomOrderJob(croninternal.CustomOrderJobParams{
		Logger:       logg,
		CustomOrders: customsRepo,
		Notifier:     dispatcher,
	})
	if err != nil {
		return nil, err
	}
	cleanupJob, err := croninternal.NewCleanupJob(croninternal.CleanupJobParams{
		Logger:       logg,
		Reservations: ledger,
		Carts:        cartsRepo,
	})
	if err != nil {
		return nil, err
	}

	return &routes.Services{
		Checkout:          checkoutService,
		Lifecycle:         lifecycleService,
		Returns:           returnsService,
		Delivery:          deliveryService,
		CustomOrderIntake: intakeService,
		PayDunya:          paydunya,
		Stripe:            stripeProvider,
		OrderAdvancer:     advancerJob,
		CustomOrders:      customJob,
		Cleanup:           cleanupJob,
	}, nil
}
