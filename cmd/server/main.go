package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	reconciliationapp "github.com/erp/reconciler/internal/application/reconciliation"
	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/infrastructure/cache"
	"github.com/erp/reconciler/internal/infrastructure/config"
	"github.com/erp/reconciler/internal/infrastructure/event"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/infrastructure/persistence"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"github.com/erp/reconciler/internal/interfaces/http/handler"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/erp/reconciler/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting expense reconciler",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	integrationMetrics, err := telemetry.NewIntegrationMetrics(telemetry.IntegrationMetricsConfig{
		Meter:  mp.Meter("reconciliation"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to register integration metrics", zap.Error(err))
	}

	db, err := persistence.NewDatabaseFromConfig(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	locker, err := cache.NewLockerFactory(*cfg, cache.WithLogger(log)).CreateLocker()
	if err != nil {
		log.Fatal("Failed to create integration lock", zap.Error(err))
	}

	bus := event.NewInMemoryEventBus(log)
	audit := reconciliationapp.NewIntegrationAuditHandler(log)
	bus.Subscribe(audit, audit.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	classifier := reconciliation.NewClassifier(reconciliation.WithKeywords(map[reconciliation.EntityType][]string{
		reconciliation.EntityTypeTruck:    cfg.Reconciliation.VehicleKeywords,
		reconciliation.EntityTypeEmployee: cfg.Reconciliation.EmployeeKeywords,
		reconciliation.EntityTypeSupplier: cfg.Reconciliation.SupplierKeywords,
	}), nil)

	handlers := reconciliationapp.NewHandlerRegistry(
		reconciliationapp.NewVendorHandler(
			persistence.NewGormVendorPaymentRepository(db.DB),
			persistence.NewGormVendorBillRepository(db.DB),
		),
		reconciliationapp.NewEmployeeHandler(persistence.NewGormPayrollRecordRepository(db.DB)),
		reconciliationapp.NewVehicleHandler(
			persistence.NewGormTruckRepository(db.DB),
			persistence.NewGormVehicleLogRepository(db.DB),
		),
	)

	service := reconciliationapp.NewExpenseIntegrationService(reconciliationapp.ExpenseIntegrationServiceConfig{
		Expenses:   persistence.NewGormExpenseRepository(db.DB),
		Handlers:   handlers,
		Classifier: classifier,
		Locker:     locker,
		LockTTL:    cfg.Reconciliation.LockTTL,
		Strict:     cfg.Reconciliation.StrictSecondaryWrites,
		Events:     bus,
		Metrics:    integrationMetrics,
		Logger:     log,
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.AllowOrigins

	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		Reconciliation: handler.NewReconciliationHandler(service),
		System:         handler.NewSystemHandler(db, version),
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MeterProvider:  mp,
		CORS:           cors,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	})
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
