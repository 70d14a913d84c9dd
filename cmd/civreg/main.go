package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/civreg-ph/civreg/internal/accounts"
	"github.com/civreg-ph/civreg/internal/app"
	"github.com/civreg-ph/civreg/internal/documents"
	"github.com/civreg-ph/civreg/internal/observability"
	"github.com/civreg-ph/civreg/internal/officials"
	"github.com/civreg-ph/civreg/internal/platform/db"
	"github.com/civreg-ph/civreg/internal/requests"
	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/sequence"
	"github.com/civreg-ph/civreg/internal/shared"
	"github.com/civreg-ph/civreg/internal/voters"
	"github.com/civreg-ph/civreg/jobs"
	"github.com/civreg-ph/civreg/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "civreg_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()

	residentRepo := residents.NewRepository(pool)
	residentService := residents.NewService(residentRepo, sequence.NewAllocator(residentRepo), auditLogger, logger)
	residentHandler := residents.NewHandler(logger, residentService)

	accountRepo := accounts.NewRepository(pool)
	accountService := accounts.NewService(accountRepo, residentRepo, auditLogger, logger)
	accountHandler := accounts.NewHandler(logger, accountService, sessionManager, csrfManager)
	actorLoader := accounts.Middleware{Service: accountService, Logger: logger}

	if cfg.SeedAdminPassword != "" {
		if err := accountService.SeedTopAdmin(ctx, cfg.SeedAdminUsername, cfg.SeedAdminPassword); err != nil {
			logger.Error("seed top admin", slog.Any("error", err))
			os.Exit(1)
		}
	}

	requestRepo := requests.NewRepository(pool)
	requestService := requests.NewService(requestRepo, residentRepo, sequence.NewAllocator(requestRepo), auditLogger, logger).WithMetrics(metrics)
	requestHandler := requests.NewHandler(logger, requestService)

	voterRepo := voters.NewRepository(pool)
	voterService := voters.NewService(voterRepo, residentRepo, sequence.NewAllocator(voterRepo), auditLogger, logger).WithMetrics(metrics)
	voterHandler := voters.NewHandler(logger, voterService)

	documentRepo := documents.NewRepository(pool)
	documentService := documents.NewService(documentRepo, residentRepo, requestRepo, sequence.NewAllocator(documentRepo), auditLogger, logger).WithMetrics(metrics)
	documentHandler := documents.NewHandler(logger, documentService)

	officialRepo := officials.NewRepository(pool)
	officialService := officials.NewService(officialRepo)
	officialHandler := officials.NewHandler(logger, officialService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger, documentService, voterService, residentRepo, officialService, cfg.BarangayName)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		ActorLoader:      actorLoader,
		AccountsHandler:  accountHandler,
		ResidentsHandler: residentHandler,
		RequestsHandler:  requestHandler,
		VotersHandler:    voterHandler,
		DocumentsHandler: documentHandler,
		OfficialsHandler: officialHandler,
		ReportHandler:    reportHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
