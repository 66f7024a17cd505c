package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/docs"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/config"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/crm"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/handler"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/logger"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/queue"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/queue/sqs"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository/clickhouse"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository/postgres"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/scoring"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/service"
)

const shutdownTimeout = 20 * time.Second

// @title Leki Scoring API
// @version 1.0
// @description Lead scoring, session attribution and CRM sync for the Leki storefront
// @host localhost:3000
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := cfg.Database.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	if cfg.Service.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy, err := scoring.LoadPolicy(cfg.Scoring.PolicyFile)
	if err != nil {
		log.Fatal("Failed to load scoring policy", zap.Error(err))
	}

	pg, err := postgres.NewClient(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to create Postgres client", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Database.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal("Failed to migrate Postgres schema", zap.Error(err))
		}
	}

	sessionRepo := postgres.NewSessionRepository(pg.Pool(), log)
	leadRepo := postgres.NewLeadRepository(pg.Pool(), log)
	eventRepo := postgres.NewEventRepository(pg.Pool(), log)
	reportRepo := postgres.NewReportRepository(pg.Pool(), log)

	if !cfg.CRM.Enabled() {
		log.Warn("CRM API key not configured, CRM sync disabled")
	}
	crmAdapter := crm.NewAdapter(
		crm.NewClient(crm.ClientConfig{
			APIKey:   cfg.CRM.APIKey,
			BaseURL:  cfg.CRM.BaseURL,
			Revision: cfg.CRM.Revision,
			Timeout:  cfg.CRM.Timeout(),
		}, log),
		crm.NewTagCache(),
		policy,
		log,
	)

	var publisher queue.QueuePublisher
	if cfg.SQS.Enabled() {
		sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
		if err != nil {
			log.Fatal("Failed to create SQS client", zap.Error(err))
		}
		publisher = sqsClient
	} else {
		log.Info("SQS queue not configured, analytics publishing disabled")
	}

	var analytics repository.AnalyticsRepository
	if cfg.ClickHouse.Enabled() {
		chClient, err := clickhouse.NewClient(ctx, cfg.ClickHouse, log)
		if err != nil {
			log.Fatal("Failed to create ClickHouse client", zap.Error(err))
		}
		repo := clickhouse.NewRepository(chClient, log)
		defer func() {
			if err := repo.Close(); err != nil {
				log.Error("Failed to close ClickHouse repository", zap.Error(err))
			}
		}()
		analytics = repo
	} else {
		log.Info("ClickHouse not configured, /metrics disabled")
	}

	sessions := service.NewSessionService(sessionRepo, log)
	tracking := service.NewTrackingService(service.TrackingDeps{
		Guard:     service.NewFrequencyGuard(eventRepo, policy, log),
		Ledger:    service.NewLeadLedger(leadRepo, log),
		Sessions:  sessions,
		Events:    eventRepo,
		Engine:    scoring.NewEngine(policy),
		Policy:    policy,
		CRM:       crmAdapter,
		Publisher: publisher,
	}, log)

	h := handler.NewHandler(handler.Services{
		Sessions: sessions,
		Tracking: tracking,
		Reports:  service.NewReportService(reportRepo, policy, log),
		Metrics:  service.NewMetricsService(analytics, log),
	}, cfg.CORS.AllowedOrigins, log)

	server := &http.Server{
		Addr:              ":" + cfg.Service.APIPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}
}
