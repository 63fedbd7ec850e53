package shared

import (
	"context"
	"time"
)

// FingerprintStore remembers recently committed request fingerprints.
// It is a latency optimization in front of the storage uniqueness constraint,
// never the authoritative duplicate check.
type FingerprintStore interface {
	// MarkProcessed marks a fingerprint as seen for ttl.
	// Returns true if the fingerprint was newly marked, false if it was already present
	MarkProcessed(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a fingerprint was marked and has not expired
	IsProcessed(ctx context.Context, fingerprint string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// FingerprintConfig holds configuration for fingerprint replay handling
type FingerprintConfig struct {
	// ReplayWindow is how long an identical request is treated as an accidental resubmission
	ReplayWindow time.Duration

	// CacheEnabled turns the fast-path store on or off
	CacheEnabled bool
}

// DefaultFingerprintConfig returns the default fingerprint configuration
func DefaultFingerprintConfig() FingerprintConfig {
	return FingerprintConfig{
		ReplayWindow: 5 * time.Minute,
		CacheEnabled: true,
	}
}
