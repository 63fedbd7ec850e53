package router

import (
	"github.com/erp/salesengine/internal/infrastructure/config"
	"github.com/erp/salesengine/internal/infrastructure/logger"
	"github.com/erp/salesengine/internal/interfaces/http/handler"
	"github.com/erp/salesengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig controls the engine-wide middleware stack
type EngineConfig struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Tracing     bool
	// Profiling adds pprof labels per route; only useful with a running profiler
	Profiling bool
	// Meter may be nil when metrics are disabled
	Meter  metric.Meter
	Logger *zap.Logger
}

// Handlers groups the handlers served by the API
type Handlers struct {
	Sales   *handler.SaleHandler
	Returns *handler.SaleReturnHandler
	System  *handler.SystemHandler
}

// Engine is the assembled gin engine plus the background resources its
// middleware owns
type Engine struct {
	*gin.Engine
	limiter *middleware.RateLimiter
}

// Close stops middleware background work
func (e *Engine) Close() {
	if e.limiter != nil {
		e.limiter.Stop()
	}
}

// NewEngine builds the gin engine with the full middleware chain and all routes
func NewEngine(cfg EngineConfig, h Handlers) (*Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Actor(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.Tracing}),
		middleware.SpanAttributes(),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:   cfg.Profiling,
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		}),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(cfg.Meter),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSFromConfig(cfg.HTTP)),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	e := &Engine{Engine: engine}
	if cfg.HTTP.RateLimitEnabled && cfg.HTTP.RateLimitRequests > 0 {
		e.limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(e.limiter))
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine)
	for _, group := range apiGroups(h) {
		r.Register(group)
	}
	r.Setup()

	return e, nil
}

func apiGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Sales != nil || h.Returns != nil {
		sales := NewDomainGroup("sales", "/sales")
		if h.Sales != nil {
			sales.POST("", h.Sales.Create)
			sales.GET("/:id", h.Sales.GetByID)
		}
		if h.Returns != nil {
			sales.POST("/:id/returns", h.Returns.FileReturn)
			sales.GET("/:id/returns", h.Returns.ListBySale)
		}
		groups = append(groups, sales)
	}

	if h.Returns != nil {
		groups = append(groups, NewDomainGroup("returns", "/returns").
			PATCH("/:id/status", h.Returns.UpdateStatus))
	}

	if h.System != nil {
		groups = append(groups, NewDomainGroup("system", "/system").
			GET("/info", h.System.GetSystemInfo))
	}

	return groups
}
