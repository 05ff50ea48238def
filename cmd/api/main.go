package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	paymentcontrollers "github.com/abhinavece/matchpay-backend/api/controllers/payments"
	"github.com/abhinavece/matchpay-backend/api/routes"
	"github.com/abhinavece/matchpay-backend/internal/audit"
	"github.com/abhinavece/matchpay-backend/internal/messaging"
	"github.com/abhinavece/matchpay-backend/internal/payments"
	"github.com/abhinavece/matchpay-backend/internal/roster"
	"github.com/abhinavece/matchpay-backend/pkg/config"
	"github.com/abhinavece/matchpay-backend/pkg/db"
	"github.com/abhinavece/matchpay-backend/pkg/events"
	"github.com/abhinavece/matchpay-backend/pkg/logger"
	"github.com/abhinavece/matchpay-backend/pkg/metrics"
	"github.com/abhinavece/matchpay-backend/pkg/migrate"
	"github.com/abhinavece/matchpay-backend/pkg/redis"
	"github.com/abhinavece/matchpay-backend/pkg/storage/gcs"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	var evidence paymentcontrollers.EvidenceSigner
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing gcs", err)
			}
		}()
		evidence = gcsClient
	}

	var publisher *events.Publisher
	if cfg.GCP.ProjectID != "" && cfg.PubSub.LedgerTopic != "" {
		publisher, err = events.NewPublisher(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub publisher", err)
			os.Exit(1)
		}
		defer publisher.Close()
	}

	rosterClient, err := roster.NewClient(cfg.Roster)
	if err != nil {
		logg.Error(context.Background(), "failed to create roster client", err)
		os.Exit(1)
	}

	dispatcher, err := messaging.NewWhatsAppDispatcher(cfg.Messaging)
	if err != nil {
		logg.Error(context.Background(), "failed to create whatsapp dispatcher", err)
		os.Exit(1)
	}

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceDeps{
		Tx:         dbClient,
		Repo:       payments.NewRepository(dbClient.DB()),
		Audit:      auditService,
		Dispatcher: dispatcher,
		Logger:     logg,
		Metrics:    ledgerMetrics,
		Events:     publisher,
		Dispatch: messaging.FanOutOptions{
			Concurrency:      cfg.Messaging.Concurrency,
			RecipientTimeout: cfg.Messaging.RecipientTimeout,
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterDeps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Cache:    redisClient,
			Idem:     redisClient,
			Payments: paymentsService,
			Audit:    auditService,
			Roster:   rosterClient,
			Evidence: evidence,
			Gatherer: prometheus.DefaultGatherer,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
