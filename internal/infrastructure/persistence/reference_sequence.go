package persistence

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultReferenceDigits is the zero-padded width of the numeric part of a reference code
const DefaultReferenceDigits = 6

// GormReferenceCodeGenerator issues codes like SALE-000123 from one
// reference_sequences row per prefix. It must run on a transaction handle:
// the row lock taken by Next is held until that transaction ends, so codes
// are gap-free for committed transactions and never issued twice.
type GormReferenceCodeGenerator struct {
	db     *gorm.DB
	digits int
}

// NewGormReferenceCodeGenerator creates a generator padding numbers to digits
func NewGormReferenceCodeGenerator(db *gorm.DB, digits int) *GormReferenceCodeGenerator {
	if digits <= 0 {
		digits = DefaultReferenceDigits
	}
	return &GormReferenceCodeGenerator{db: db, digits: digits}
}

// Next increments the prefix's sequence and formats the new value
func (g *GormReferenceCodeGenerator) Next(ctx context.Context, prefix string) (string, error) {
	db := g.db.WithContext(ctx)

	// First use of a prefix creates its row; a concurrent creator wins silently
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ReferenceSequenceModel{Prefix: prefix, UpdatedAt: time.Now()}).Error; err != nil {
		return "", fmt.Errorf("failed to ensure reference sequence %s: %w", prefix, err)
	}

	var seq models.ReferenceSequenceModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "prefix = ?", prefix).Error; err != nil {
		return "", fmt.Errorf("failed to lock reference sequence %s: %w", prefix, err)
	}

	next := seq.LastValue + 1
	if float64(next) >= math.Pow10(g.digits) {
		return "", shared.NewInvariantViolationError("REFERENCE_SEQUENCE_EXHAUSTED",
			fmt.Sprintf("Reference sequence %s exceeded %d digits", prefix, g.digits))
	}

	if err := db.Model(&models.ReferenceSequenceModel{}).
		Where("prefix = ?", prefix).
		Updates(map[string]interface{}{
			"last_value": next,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return "", fmt.Errorf("failed to advance reference sequence %s: %w", prefix, err)
	}

	return FormatReferenceCode(prefix, g.digits, next), nil
}

// FormatReferenceCode renders prefix-NNNNNN
func FormatReferenceCode(prefix string, digits int, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, digits, n)
}

var _ trade.ReferenceCodeGenerator = (*GormReferenceCodeGenerator)(nil)
