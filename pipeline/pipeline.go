// Package pipeline turns one matched APC message into at most one
// anonymized occupancy message.
package pipeline

import (
	"time"

	"github.com/theoremus-urban-solutions/apc-anonymizer/counting"
	"github.com/theoremus-urban-solutions/apc-anonymizer/profile"
	"github.com/theoremus-urban-solutions/apc-anonymizer/registry"
	"github.com/theoremus-urban-solutions/apc-anonymizer/sampling"
	"github.com/theoremus-urban-solutions/apc-anonymizer/schema"
)

// Pipeline holds the lookup capabilities one APC message needs on its way
// to an anonymized occupancy bucket. Profile, count and device state live in
// their own packages; the pipeline owns none of it.
type Pipeline struct {
	profiles  *profile.Store
	counts    *counting.Cache
	devices   *registry.Registry
	authority map[string]string
	warnings  *WarningAggregator
	now       func() time.Time
}

// New wires a pipeline over the shared state structures. authority maps a
// Waltti authority ID to a feed publisher ID.
func New(profiles *profile.Store, counts *counting.Cache, devices *registry.Registry, authority map[string]string, warnings *WarningAggregator) *Pipeline {
	return &Pipeline{
		profiles:  profiles,
		counts:    counts,
		devices:   devices,
		authority: authority,
		warnings:  warnings,
		now:       time.Now,
	}
}

// Warnings exposes the aggregator so the hosting loop can flush it.
func (p *Pipeline) Warnings() *WarningAggregator { return p.warnings }

// Process runs the anonymization decision chain for one message. A false
// result means the message produced no output; every skip reason has been
// recorded on the warning aggregator, so callers just acknowledge and move
// on.
func (p *Pipeline) Process(msg *schema.MatchedApc) (*schema.AnonymizedApc, bool) {
	feedPublisherID, ok := p.authority[msg.AuthorityID]
	if !ok {
		p.warnings.Add(WarningUnknownAuthority, msg.AuthorityID)
		return nil, false
	}
	vehicleID := feedPublisherID + ":" + msg.GtfsrtVehicleID
	prof, ok := p.profiles.Resolve(vehicleID)
	if !ok {
		// Expected transiently until the profiler has covered the fleet.
		p.warnings.Add(WarningNoProfile, vehicleID)
		return nil, false
	}
	if !p.devices.IsAccepted(vehicleID, msg.CountingDeviceID) {
		p.warnings.Add(WarningDeviceNotAccepted, vehicleID+" device "+msg.CountingDeviceID)
		return nil, false
	}
	if msg.CountQuality != schema.CountQualityRegular {
		// The counts are used anyway.
		p.warnings.Add(WarningIrregularQuality, vehicleID)
	}
	total := p.counts.Accumulate(vehicleID, counting.JourneyOf(msg), msg.DoorClassCounts)
	label, ok := sampling.Sample(prof, total)
	if !ok {
		p.warnings.Add(WarningSampleFailed, vehicleID)
		return nil, false
	}
	status, ok := schema.MatchOccupancyStatus(label)
	if !ok {
		p.warnings.Add(WarningUnknownCategory, label)
		return nil, false
	}
	return &schema.AnonymizedApc{
		SchemaVersion:       schema.AnonymizedApcSchemaVersion,
		Timestamp:           schema.Iso8601UTCMillis(p.now()),
		AuthorityID:         msg.AuthorityID,
		CurrentStopSequence: msg.GtfsrtCurrentStopSequence,
		DirectionID:         msg.GtfsrtDirectionID,
		OccupancyStatus:     status,
		RouteID:             msg.GtfsrtRouteID,
		StartDate:           msg.GtfsrtStartDate,
		StartTime:           msg.GtfsrtStartTime,
		StopID:              msg.GtfsrtStopID,
		TripID:              msg.GtfsrtTripID,
		VehicleID:           msg.GtfsrtVehicleID,
	}, true
}
