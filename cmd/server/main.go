package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tradeapp "github.com/erp/salesengine/internal/application/trade"
	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/infrastructure/cache"
	"github.com/erp/salesengine/internal/infrastructure/config"
	"github.com/erp/salesengine/internal/infrastructure/logger"
	"github.com/erp/salesengine/internal/infrastructure/persistence"
	"github.com/erp/salesengine/internal/infrastructure/telemetry"
	"github.com/erp/salesengine/internal/interfaces/http/handler"
	"github.com/erp/salesengine/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromConfig(cfg.Log, cfg.App.Name))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting sales engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if err := run(cfg, log); err != nil {
		log.Fatal("Server terminated", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Database.Driver, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	if providers.Logs.IsEnabled() {
		log = logger.Tee(log, providers.Logs.Core(logger.ParseLevel(cfg.Log.Level)))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := providers.DB.Register(db.DB); err != nil {
		return err
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Postgres schemas are owned by cmd/migrate; sqlite is a single-file dev setup
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}

	store, err := openFingerprintStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeFingerprintStore(store, log)

	saleHandler, returnHandler := buildTradeHandlers(cfg, db, store, providers.Sales, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	var meter = providers.Meter.Meter(telemetry.TracerName)
	if !providers.Meter.IsEnabled() {
		meter = nil
	}
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		HTTP:        cfg.HTTP,
		Tracing:     providers.Tracer.IsEnabled(),
		Profiling:   providers.Profiler.IsEnabled(),
		Meter:       meter,
		Logger:      log,
	}, router.Handlers{
		Sales:   saleHandler,
		Returns: returnHandler,
		System:  handler.NewSystemHandler(cfg.App.Name, version, db, log),
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openFingerprintStore returns nil when the fingerprint cache is disabled
func openFingerprintStore(cfg *config.Config, log *zap.Logger) (shared.FingerprintStore, error) {
	return cache.NewFingerprintStoreFactory(cfg.Redis, cache.WithLogger(log)).
		CreateStore(cfg.Sales.FingerprintCache)
}

func closeFingerprintStore(store shared.FingerprintStore, log *zap.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing fingerprint store", zap.Error(err))
	}
}

// buildTradeHandlers wires repositories, the sale pipeline and the return
// lifecycle into their HTTP handlers
func buildTradeHandlers(cfg *config.Config, db *persistence.Database, store shared.FingerprintStore, metrics *telemetry.SalesMetrics, log *zap.Logger) (*handler.SaleHandler, *handler.SaleReturnHandler) {
	poolRepo := persistence.NewGormPoolRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	districtRepo := persistence.NewGormDistrictRepository(db.DB)
	salespersonRepo := persistence.NewGormSalespersonRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	returnRepo := persistence.NewGormSaleReturnRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB, cfg.Sales.ReferenceDigits)

	duplicates := tradeapp.NewDuplicateDetector(store, shared.FingerprintConfig{
		ReplayWindow: cfg.Sales.ReplayWindow,
		CacheEnabled: store != nil,
	}, log)

	pricing := trade.NewPricingCalculator(cfg.Sales.OverpaymentTolerance)
	validator := tradeapp.NewSaleValidator(poolRepo, districtRepo, salespersonRepo, customerRepo, pricing,
		tradeapp.SaleValidatorConfig{MaxDueDays: cfg.Sales.MaxDueDays})

	sales := tradeapp.NewSaleService(uow, saleRepo, validator, duplicates, inventory.NewAvailabilityChecker(), pricing, log)
	sales.SetSalesMetrics(metrics)

	returns := tradeapp.NewSaleReturnService(uow, saleRepo, returnRepo, log)
	returns.SetSalesMetrics(metrics)

	return handler.NewSaleHandler(sales, log), handler.NewSaleReturnHandler(returns, log)
}
