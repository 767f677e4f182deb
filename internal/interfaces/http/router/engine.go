package router

import (
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"github.com/erp/reconciler/internal/interfaces/http/handler"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig carries everything NewEngine wires into the HTTP surface
type EngineConfig struct {
	Logger         *zap.Logger
	Reconciliation *handler.ReconciliationHandler
	System         *handler.SystemHandler

	ServiceName    string
	TracingEnabled bool
	MeterProvider  *telemetry.MeterProvider
	CORS           middleware.CORSConfig
	MaxBodyBytes   int64
}

// NewEngine builds the gin engine: middleware chain, /health, system routes
// and the versioned reconciliation API.
func NewEngine(cfg EngineConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = middleware.DefaultMaxBodyBytes
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = middleware.DefaultTracingConfig().ServiceName
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.TracingEnabled,
		}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(cfg.Logger),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: cfg.MeterProvider,
			Enabled:       cfg.MeterProvider != nil,
		}),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodyBytes),
	)

	r := NewRouter(engine)
	if cfg.System != nil {
		engine.GET("/health", cfg.System.Health)

		system := NewDomainGroup("system", "/system").
			GET("/info", cfg.System.GetSystemInfo).
			GET("/ping", cfg.System.Ping)
		r.Register(system)
	}
	if cfg.Reconciliation != nil {
		r.Register(cfg.Reconciliation)
	}
	r.Setup()

	return engine
}
