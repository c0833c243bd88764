// Package counting keeps the per-vehicle running passenger count, scoped to
// one trip instance.
package counting

import (
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/apc-anonymizer/schema"
)

// Journey identifies one scheduled trip instance. Two journeys are the same
// exactly when all five fields are equal.
type Journey struct {
	DirectionID int
	RouteID     string
	StartDate   string
	StartTime   string
	TripID      string
}

// JourneyOf extracts the trip instance a matched APC message belongs to.
func JourneyOf(msg *schema.MatchedApc) Journey {
	return Journey{
		DirectionID: msg.GtfsrtDirectionID,
		RouteID:     msg.GtfsrtRouteID,
		StartDate:   msg.GtfsrtStartDate,
		StartTime:   msg.GtfsrtStartTime,
		TripID:      msg.GtfsrtTripID,
	}
}

// Multiplier is the occupancy weight of one counted passenger. Mobility
// equipment takes roughly the footprint of two seated adults.
func Multiplier(class schema.CountClass) int {
	switch class {
	case schema.CountClassPram, schema.CountClassBike, schema.CountClassWheelchair:
		return 2
	default:
		return 1
	}
}

// SumDoorClassCounts collapses one message's door records into a single
// weighted passenger delta. The delta can be negative when more passengers
// alight than boarded within the same message.
func SumDoorClassCounts(counts []schema.DoorClassCount) int {
	total := 0
	for _, c := range counts {
		total += Multiplier(c.CountClass) * (c.In - c.Out)
	}
	return total
}

type entry struct {
	journey  Journey
	total    int
	lastSeen time.Time
}

// Cache accumulates weighted passenger deltas per vehicle across one trip.
// A message for a different journey restarts the total from that message
// alone, so a previous trip's residue never leaks into a new one.
//
// Entries idle longer than the configured threshold are discarded on next
// access; there is no background sweep.
type Cache struct {
	mu      sync.Mutex
	idle    time.Duration
	entries map[string]*entry
	now     func() time.Time
}

// NewCache returns an empty cache. idle <= 0 disables the idle reset.
func NewCache(idle time.Duration) *Cache {
	return &Cache{
		idle:    idle,
		entries: map[string]*entry{},
		now:     time.Now,
	}
}

// Accumulate folds one message's door counts into the vehicle's running
// total and returns the new total.
func (c *Cache) Accumulate(vehicleID string, journey Journey, counts []schema.DoorClassCount) int {
	delta := SumDoorClassCounts(counts)
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[vehicleID]
	if ok && e.journey == journey && !c.expired(e, now) {
		e.total += delta
		e.lastSeen = now
		return e.total
	}
	c.entries[vehicleID] = &entry{journey: journey, total: delta, lastSeen: now}
	return delta
}

func (c *Cache) expired(e *entry, now time.Time) bool {
	return c.idle > 0 && now.Sub(e.lastSeen) > c.idle
}

// Len returns the number of vehicles currently tracked.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
