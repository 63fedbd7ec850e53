package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DuplicateDetector rejects identical lines within a batch and resubmissions
// of a sale recorded within the replay window.
type DuplicateDetector struct {
	store   shared.FingerprintStore // optional fast path
	config  shared.FingerprintConfig
	logger  *zap.Logger
	metrics *telemetry.SalesMetrics
	now     func() time.Time
}

// NewDuplicateDetector creates a new DuplicateDetector. store may be nil.
func NewDuplicateDetector(store shared.FingerprintStore, config shared.FingerprintConfig, logger *zap.Logger) *DuplicateDetector {
	if config.ReplayWindow <= 0 {
		config.ReplayWindow = shared.DefaultFingerprintConfig().ReplayWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicateDetector{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// SetSalesMetrics sets the sales metrics collector
func (d *DuplicateDetector) SetSalesMetrics(sm *telemetry.SalesMetrics) {
	d.metrics = sm
}

// ReplayWindow returns the configured replay window
func (d *DuplicateDetector) ReplayWindow() time.Duration {
	return d.config.ReplayWindow
}

// Fingerprints computes one fingerprint per validated line and rejects the
// batch when two lines hash identically. Batches from SaleValidator never
// reach the conflict: identical lines already fail there as DUPLICATE_LINE.
// The check holds for batches assembled any other way.
func (d *DuplicateDetector) Fingerprints(ctx context.Context, actorID uuid.UUID, batch *ValidatedBatch) ([]string, error) {
	fps := make([]string, len(batch.Lines))
	seen := make(map[string]int, len(batch.Lines))
	for i, l := range batch.Lines {
		fp, err := trade.Fingerprint(actorID, l.Request)
		if err != nil {
			return nil, fmt.Errorf("fingerprint line %d: %w", l.Line, err)
		}
		if first, ok := seen[fp]; ok {
			d.metrics.RecordDuplicate(ctx, telemetry.DuplicateKindBatch)
			return nil, shared.NewConflictError("DUPLICATE_IN_BATCH",
				fmt.Sprintf("Sale is identical to line %d of the same submission", first)).AtLine(l.Line)
		}
		seen[fp] = l.Line
		fps[i] = fp
	}
	return fps, nil
}

// CheckRecent consults the fast-path store. A store failure is logged and
// ignored; the persisted check inside the transaction stays authoritative.
func (d *DuplicateDetector) CheckRecent(ctx context.Context, fingerprints []string) error {
	if d.store == nil || !d.config.CacheEnabled {
		return nil
	}
	for i, fp := range fingerprints {
		hit, err := d.store.IsProcessed(ctx, fp)
		if err != nil {
			d.logger.Warn("Fingerprint store lookup failed, falling back to database",
				zap.Error(err))
			return nil
		}
		if hit {
			d.metrics.RecordDuplicate(ctx, telemetry.DuplicateKindCache)
			return duplicateSubmission(d.config.ReplayWindow).AtLine(i + 1)
		}
	}
	return nil
}

// CheckPersisted looks for a stored sale with the same fingerprint inside the
// replay window. It must run in the creating transaction. On success it returns
// the occurrence number the new sale's idempotency key is built from.
func (d *DuplicateDetector) CheckPersisted(ctx context.Context, sales trade.SaleRepository, fingerprint string, line int) (int64, error) {
	latest, err := sales.FindLatestByFingerprint(ctx, fingerprint)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("lookup fingerprint: %w", err)
	}

	if d.now().Sub(latest.CreatedAt) < d.config.ReplayWindow {
		d.metrics.RecordDuplicate(ctx, telemetry.DuplicateKindStored)
		d.logger.Warn("Duplicate sale submission rejected",
			zap.String("existing_reference", latest.ReferenceCode),
			zap.Int("line", line))
		return 0, duplicateSubmission(d.config.ReplayWindow).AtLine(line)
	}

	count, err := sales.CountByFingerprint(ctx, fingerprint)
	if err != nil {
		return 0, fmt.Errorf("count fingerprint: %w", err)
	}
	return count, nil
}

// Remember marks committed fingerprints in the fast-path store for the replay window
func (d *DuplicateDetector) Remember(ctx context.Context, fingerprints []string) {
	if d.store == nil || !d.config.CacheEnabled {
		return
	}
	for _, fp := range fingerprints {
		if _, err := d.store.MarkProcessed(ctx, fp, d.config.ReplayWindow); err != nil {
			d.logger.Warn("Failed to mark fingerprint as processed", zap.Error(err))
			return
		}
	}
}

// RecordRace counts a duplicate caught by the storage uniqueness constraint
func (d *DuplicateDetector) RecordRace(ctx context.Context) {
	d.metrics.RecordDuplicate(ctx, telemetry.DuplicateKindRace)
}

func duplicateSubmission(window time.Duration) *shared.DomainError {
	return shared.NewConflictError("DUPLICATE_SUBMISSION",
		fmt.Sprintf("An identical sale was already recorded within the last %s", window))
}
