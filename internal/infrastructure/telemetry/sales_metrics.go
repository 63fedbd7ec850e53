package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SalesMetrics tracks sale creation, duplicate rejection and return activity.
// All record methods are safe to call on a nil receiver.
type SalesMetrics struct {
	logger *zap.Logger

	salesCreatedTotal      *Counter
	saleLinesTotal         *Counter
	saleUnitsTotal         *Counter
	duplicatesTotal        *Counter
	returnsFiledTotal      *Counter
	returnTransitionsTotal *Counter
	unitsRestockedTotal    *Counter
	batchDuration          *Histogram
	poolQuantity           *Gauge
}

// SalesMetricsConfig holds configuration for sales metrics.
type SalesMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// DuplicateKind labels why a submission was rejected as a duplicate.
type DuplicateKind string

const (
	DuplicateKindBatch  DuplicateKind = "batch"
	DuplicateKindCache  DuplicateKind = "cache"
	DuplicateKindStored DuplicateKind = "stored"
	DuplicateKindRace   DuplicateKind = "race"
)

// NewSalesMetrics creates a new SalesMetrics instance.
func NewSalesMetrics(cfg SalesMetricsConfig) (*SalesMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &SalesMetrics{logger: logger}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&sm.salesCreatedTotal, "sales_batches_total", "Total number of sale submissions by outcome", "{batches}"},
		{&sm.saleLinesTotal, "sales_records_created_total", "Total number of sale records created", "{records}"},
		{&sm.saleUnitsTotal, "sales_units_sold_total", "Total quantity deducted from inventory pools", "{units}"},
		{&sm.duplicatesTotal, "sales_duplicates_rejected_total", "Total number of submissions rejected as duplicates", "{submissions}"},
		{&sm.returnsFiledTotal, "sales_returns_filed_total", "Total number of returns filed", "{returns}"},
		{&sm.returnTransitionsTotal, "sales_return_transitions_total", "Total number of return status transitions", "{transitions}"},
		{&sm.unitsRestockedTotal, "sales_units_restocked_total", "Total quantity restocked by processed returns", "{units}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	sm.batchDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "sales_batch_duration_seconds",
		Description: "Time from receiving a sale submission to its commit or rejection",
		Unit:        "s",
		Boundaries:  BatchDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	sm.poolQuantity, err = NewGauge(cfg.Meter, "inventory_pool_quantity", "Remaining quantity of a pool after its last sale", "{units}")
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordSaleLine records one created sale record.
func (sm *SalesMetrics) RecordSaleLine(ctx context.Context, terms, method string, quantity int64) {
	if sm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrPaymentTerms.String(terms),
		AttrPaymentMethod.String(method),
	}
	sm.saleLinesTotal.Inc(ctx, attrs...)
	sm.saleUnitsTotal.Add(ctx, quantity, attrs...)
}

// RecordBatch records one submission and how long it took. outcome is
// "committed" or the lower-cased error kind that rejected it.
func (sm *SalesMetrics) RecordBatch(ctx context.Context, d time.Duration, outcome string) {
	if sm == nil {
		return
	}
	attr := AttrOutcome.String(outcome)
	sm.salesCreatedTotal.Inc(ctx, attr)
	sm.batchDuration.RecordDuration(ctx, d, attr)
}

// RecordPoolLevel records the remaining quantity of a pool.
func (sm *SalesMetrics) RecordPoolLevel(ctx context.Context, batchNumber string, quantity int64) {
	if sm == nil {
		return
	}
	sm.poolQuantity.Record(ctx, quantity, AttrPoolCode.String(batchNumber))
}

// RecordDuplicate records a submission rejected as a duplicate.
func (sm *SalesMetrics) RecordDuplicate(ctx context.Context, kind DuplicateKind) {
	if sm == nil {
		return
	}
	sm.duplicatesTotal.Inc(ctx, AttrDuplicateKind.String(string(kind)))
}

// RecordReturnFiled records a newly filed return.
func (sm *SalesMetrics) RecordReturnFiled(ctx context.Context, restockable bool) {
	if sm == nil {
		return
	}
	sm.returnsFiledTotal.Inc(ctx, AttrRestockable.Bool(restockable))
}

// RecordReturnTransition records a return reaching status, and the quantity
// put back into inventory when it was restocked.
func (sm *SalesMetrics) RecordReturnTransition(ctx context.Context, status string, restocked int64) {
	if sm == nil {
		return
	}
	sm.returnTransitionsTotal.Inc(ctx, AttrReturnStatus.String(status))
	if restocked > 0 {
		sm.unitsRestockedTotal.Add(ctx, restocked)
	}
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewSalesMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
