package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fincontrol/internal/amqp"
	"fincontrol/internal/backend"
	"fincontrol/internal/cache"
	"fincontrol/internal/cli"
	apphttp "fincontrol/internal/http"
	"fincontrol/internal/log"
	"fincontrol/internal/memory"
	"fincontrol/internal/ports"
	"fincontrol/internal/services"
)

var version = "dev"

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger("info", log.ComponentApp)
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(bootLogger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

	flushSentry, err := cli.InitSentry(cfg, version)
	if err != nil {
		logger.Warn("Sentry disabled", log.FieldError, err.Error())
	}
	defer flushSentry()

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize data backend", err)
	}
	store := result.Store

	// Stays a nil interface when AMQP is not configured.
	var publisher ports.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		publisher = amqpClient
		logger.Info("Change events enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP_URL not set, change events disabled")
	}

	dashboard := services.NewDashboardService(store, cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(dashboard.Cache())

	svc := apphttp.Services{
		Auth:         services.NewAuthService(store, cfg.JWTSecret, cfg.JWTTTL),
		Transactions: services.NewTransactionService(store, publisher, dashboard),
		Bills:        services.NewBillService(store, publisher, dashboard),
		Goals:        services.NewGoalService(store, dashboard),
		Dashboard:    dashboard,
		Taxonomy:     memory.NewTaxonomyFromFiles("data"),
		Health:       store,
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}, svc)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err.Error())
			}
		}
		if err := result.Close(); err != nil {
			logger.Warn("Backend close error", log.FieldError, err.Error())
		}
	})

	go cacheManager.Run(runCtx, time.Minute)

	logger.Info("Starting fincontrol API",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"version", version)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}
