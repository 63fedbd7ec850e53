package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/salesengine/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Providers owns the process-wide telemetry pipeline
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	Sales    *SalesMetrics
	DB       *DBTracingPlugin
}

// Setup builds tracing, metrics, log export, profiling and database tracing
// from configuration. With telemetry disabled every OTLP provider is a no-op
// and Sales still records into the global no-op meter. Profiling has its own
// switch since it talks to Pyroscope rather than the collector.
func Setup(ctx context.Context, cfg config.TelemetryConfig, dbDriver string, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tp, err := NewTracerProvider(ctx, Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, err
	}

	mp, err := NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	lp, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           cfg.Enabled && cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, err
	}

	sales, err := NewSalesMetrics(SalesMetricsConfig{
		Meter:  mp.Meter(TracerName),
		Logger: logger,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		_ = lp.Shutdown(ctx)
		return nil, fmt.Errorf("create sales metrics: %w", err)
	}

	profiler, err := NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.ProfilerAddress,
		ApplicationName: cfg.ServiceName,
		ProfileTypes:    cfg.ProfileTypes,
	}, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		_ = lp.Shutdown(ctx)
		return nil, fmt.Errorf("start profiler: %w", err)
	}
	if profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	db := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
		DBSystem:        dbSystem(dbDriver),
	}, logger)

	return &Providers{Tracer: tp, Meter: mp, Logs: lp, Profiler: profiler, Sales: sales, DB: db}, nil
}

// Shutdown flushes and stops every provider. Logs go last so shutdown
// messages from the others are still exported.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Profiler.Stop(),
		p.Tracer.Shutdown(ctx),
		p.Meter.Shutdown(ctx),
		p.Logs.Shutdown(ctx),
	)
}

func dbSystem(driver string) string {
	if driver == config.DriverSQLite {
		return "sqlite"
	}
	return "postgresql"
}
