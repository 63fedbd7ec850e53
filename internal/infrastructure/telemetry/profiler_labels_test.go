package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLabels(t *testing.T) {
	long := strings.Repeat("x", MaxLabelValueLength+10)

	pairs := sanitizeLabels(map[string]string{
		"Operation":      "sale.create",
		"payment-terms":  "CREDIT",
		"request_id":     "req-123",
		"reference_code": "SALE-000001",
		"region":         "",
		"":               "orphan",
		"route":          long,
	})

	assert.Equal(t, []string{
		"operation", "sale.create",
		"payment_terms", "CREDIT",
		"route", long[:MaxLabelValueLength],
	}, pairs)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestWithProfilingLabels(t *testing.T) {
	labels := OperationLabels("sale.create", map[string]string{ProfilingLabelRegion: "pricing"})

	var operation, region string
	var ran bool
	WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		ran = true
		operation, _ = pprof.Label(ctx, ProfilingLabelOperation)
		region, _ = pprof.Label(ctx, ProfilingLabelRegion)
	})

	assert.True(t, ran)
	assert.Equal(t, "sale.create", operation)
	assert.Equal(t, "pricing", region)
}

func TestWithProfilingLabels_NothingToAttach(t *testing.T) {
	for _, labels := range []map[string]string{nil, {"trace_id": "abc"}} {
		var labelled bool
		WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
			_, labelled = pprof.Label(ctx, "trace_id")
		})
		assert.False(t, labelled)
	}
}
