package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kmensah/boutique-backend/internal/carts"
	croninternal "github.com/kmensah/boutique-backend/internal/cron"
	"github.com/kmensah/boutique-backend/internal/customorders"
	"github.com/kmensah/boutique-backend/internal/notifications"
	ordersvc "github.com/kmensah/boutique-backend/internal/orders"
	"github.com/kmensah/boutique-backend/internal/reservations"
	"github.com/kmensah/boutique-backend/pkg/config"
	"github.com/kmensah/boutique-backend/pkg/db"
	"github.com/kmensah/boutique-backend/pkg/logger"
	"github.com/kmensah/boutique-backend/pkg/metrics"
	"github.com/kmensah/boutique-backend/pkg/migrate"
	"github.com/kmensah/boutique-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	customsRepo := customorders.NewRepository(dbClient.DB())
	cartsRepo := carts.NewRepository(dbClient.DB())
	ledger := reservations.NewLedger(dbClient.DB())

	emailSender, err := notifications.NewEmailSender(cfg.Notifications)
	if err != nil {
		logg.Error(context.Background(), "failed to create email sender", err)
		os.Exit(1)
	}
	whatsappSender, err := notifications.NewWhatsAppSender(cfg.Notifications)
	if err != nil {
		logg.Error(context.Background(), "failed to create whatsapp sender", err)
		os.Exit(1)
	}
	dispatcher := notifications.NewDispatcher(logg, cfg.Notifications.SendTimeout, emailSender, whatsappSender)

	advancerJob, err := croninternal.NewOrderAdvancerJob(croninternal.OrderAdvancerJobParams{
		Logger:   logg,
		Orders:   ordersRepo,
		Notifier: dispatcher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order advancer job", err)
		os.Exit(1)
	}
	customJob, err := croninternal.NewCustomOrderJob(croninternal.CustomOrderJobParams{
		Logger:       logg,
		CustomOrders: customsRepo,
		Notifier:     dispatcher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create custom order job", err)
		os.Exit(1)
	}
	cleanupJob, err := croninternal.NewCleanupJob(croninternal.CleanupJobParams{
		Logger:       logg,
		Reservations: ledger,
		Carts:        cartsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := croninternal.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := croninternal.NewRegistry(advancerJob, customJob, cleanupJob)
	service, err := croninternal.NewService(croninternal.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
