// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tax-filing-service/internal/config"
	"tax-filing-service/internal/domain/ports/adapter"
	notifyAdapters "tax-filing-service/internal/infra/adapters/notify"
	payAdapters "tax-filing-service/internal/infra/adapters/payment"
	procAdapters "tax-filing-service/internal/infra/adapters/processor"
	pg "tax-filing-service/internal/infra/db/postgres"
	"tax-filing-service/internal/infra/logging"
	"tax-filing-service/internal/infra/metrics"
	red "tax-filing-service/internal/infra/redis"
	"tax-filing-service/internal/infra/security"
	"tax-filing-service/internal/infra/web"
	"tax-filing-service/internal/infra/worker"
	"tax-filing-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop payment/notify adapters)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	brokerCache := red.NewBrokerCache(redisClient, cfg.Redis.TTL)
	locker := red.NewLocker(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		log.Fatalf("encryption: %v", err)
	}

	// ---- Repositories ----
	packRepo := pg.NewPackRepo(pool)
	ledgerRepo := pg.NewUserPackRepo(pool)
	subRepo := pg.NewSubmissionRepo(pool, encSvc)
	fileRepo := pg.NewSubmissionFileRepo(pool)
	resultRepo := pg.NewSubmissionResultRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- External adapters ----
	processor, err := procAdapters.NewHTTPProcessor(cfg.Processor.BaseURL, cfg.Processor.APIKey, cfg.Processor.Timeout)
	if err != nil {
		log.Fatalf("processor: %v", err)
	}

	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev || cfg.Payment.MerchantID == "" {
		logger.Warn().Msg("payment gateway not configured; using noop gateway")
		gateway = payAdapters.NewNoopPaymentGateway()
	} else {
		gateway, err = payAdapters.NewCheckoutGateway(cfg.Payment.MerchantID, cfg.Payment.CallbackURL, cfg.Payment.BaseURL)
		if err != nil {
			log.Fatalf("payment gateway: %v", err)
		}
	}

	var notifier adapter.Notifier
	if cfg.Notify.SlackWebhookURL != "" {
		notifier, err = notifyAdapters.NewSlackNotifier(cfg.Notify.SlackWebhookURL)
		if err != nil {
			log.Fatalf("notifier: %v", err)
		}
	} else {
		notifier = notifyAdapters.NewNoopNotifier(logger)
	}

	// ---- Notification dispatch pool ----
	dispatch := worker.NewPool(cfg.Notify.Workers)
	dispatch.Start(ctx)
	defer dispatch.Stop()

	// ---- Use cases ----
	ledgerUC := usecase.NewUserPackUseCase(packRepo, ledgerRepo, logger)
	packUC := usecase.NewPackUseCase(packRepo)
	subUC := usecase.NewSubmissionUseCase(subRepo, fileRepo, resultRepo, ledgerUC, processor, notifier, dispatch, locker, txm, logger)
	fileUC := usecase.NewFileUseCase(subRepo, fileRepo, processor, brokerCache, logger)
	paymentUC := usecase.NewPaymentUseCase(payRepo, packRepo, ledgerUC, gateway, logger)
	statsUC := usecase.NewStatsUseCase(subRepo, ledgerRepo, payRepo, logger)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.HTTP.JWTSecret, 24*time.Hour)
	srv := web.NewServer(
		subUC, fileUC, packUC, ledgerUC, paymentUC, statsUC,
		auth, cfg.HTTP.AdminKey, cfg.Payment.CallbackURL,
		rateLimiter, cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow,
		logger,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
