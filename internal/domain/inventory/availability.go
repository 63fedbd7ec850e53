package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
)

// DemandLine is one batch line's request against a pool
type DemandLine struct {
	Line     int // 1-based position in the submission
	PoolID   uuid.UUID
	Quantity int64
}

// PoolDemand is the cumulative demand of a whole batch against a single pool
type PoolDemand struct {
	PoolID   uuid.UUID
	Quantity int64
	Lines    []int
}

// AggregateDemand groups lines by pool and sums their quantities.
// Pools are returned in order of first appearance.
func AggregateDemand(lines []DemandLine) []PoolDemand {
	index := make(map[uuid.UUID]int, len(lines))
	demands := make([]PoolDemand, 0, len(lines))

	for _, l := range lines {
		i, ok := index[l.PoolID]
		if !ok {
			index[l.PoolID] = len(demands)
			demands = append(demands, PoolDemand{PoolID: l.PoolID})
			i = len(demands) - 1
		}
		demands[i].Quantity += l.Quantity
		demands[i].Lines = append(demands[i].Lines, l.Line)
	}
	return demands
}

// PoolIDs returns the distinct pool ids of the demands sorted ascending,
// the order in which pools are locked.
func PoolIDs(demands []PoolDemand) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(demands))
	for _, d := range demands {
		ids = append(ids, d.PoolID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// AvailabilityChecker validates cumulative batch demand against live pools
type AvailabilityChecker struct {
	now func() time.Time
}

// NewAvailabilityChecker creates an AvailabilityChecker using the wall clock
func NewAvailabilityChecker() *AvailabilityChecker {
	return &AvailabilityChecker{now: time.Now}
}

// NewAvailabilityCheckerWithClock creates an AvailabilityChecker with an injected clock
func NewAvailabilityCheckerWithClock(now func() time.Time) *AvailabilityChecker {
	return &AvailabilityChecker{now: now}
}

// Check verifies that every pool exists, is active, is not expired and holds at
// least the summed demand of all lines drawing from it.
func (c *AvailabilityChecker) Check(lines []DemandLine, pools map[uuid.UUID]*Pool) error {
	now := c.now()
	for _, d := range AggregateDemand(lines) {
		pool, ok := pools[d.PoolID]
		if !ok || pool == nil {
			return shared.NewReferenceNotFoundError("POOL_NOT_FOUND",
				fmt.Sprintf("Inventory pool %s not found", d.PoolID)).AtLine(d.Lines[0])
		}
		if err := pool.CheckSupply(d.Quantity, now); err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) {
				return err
			}
			if len(d.Lines) > 1 {
				de = shared.NewDomainError(de.Kind, de.Code,
					fmt.Sprintf("%s (cumulative demand of lines %s)", de.Message, joinLines(d.Lines)))
			}
			return de.AtLine(d.Lines[0])
		}
	}
	return nil
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return strings.Join(parts, ", ")
}
