package schema

import (
	"encoding/json"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// AnonymizedApcSchemaVersion is the SchemaVer tag stamped on every outbound
// message.
const AnonymizedApcSchemaVersion = "1-0-0"

// OccupancyStatus is an occupancy_status literal from the GTFS Realtime
// specification. Published messages only ever carry values from EMPTY to
// FULL; the signal states NOT_ACCEPTING_PASSENGERS, NO_DATA_AVAILABLE and
// NOT_BOARDABLE are downstream concerns.
type OccupancyStatus string

// MatchOccupancyStatus maps a profile category label onto the closed
// occupancy enumeration. The label must match a GTFS Realtime
// VehiclePosition.OccupancyStatus literal between EMPTY and FULL exactly; a
// miss usually means the vehicle profile was compiled from a CSV with an
// unexpected header.
func MatchOccupancyStatus(label string) (OccupancyStatus, bool) {
	v, ok := gtfsrtpb.VehiclePosition_OccupancyStatus_value[label]
	if !ok {
		return "", false
	}
	if v < int32(gtfsrtpb.VehiclePosition_EMPTY) || v > int32(gtfsrtpb.VehiclePosition_FULL) {
		return "", false
	}
	return OccupancyStatus(label), true
}

// AnonymizedApc is the outbound anonymized occupancy message. The trip
// descriptor fields keep their GTFS Realtime meanings; the raw door counts
// are gone.
type AnonymizedApc struct {
	SchemaVersion       string          `json:"schemaVersion"`
	Timestamp           string          `json:"timestamp"`
	AuthorityID         string          `json:"authorityId"`
	CurrentStopSequence int             `json:"currentStopSequence"`
	DirectionID         int             `json:"directionId"`
	OccupancyStatus     OccupancyStatus `json:"occupancyStatus"`
	RouteID             string          `json:"routeId"`
	StartDate           string          `json:"startDate"`
	StartTime           string          `json:"startTime"`
	StopID              string          `json:"stopId"`
	TripID              string          `json:"tripId"`
	VehicleID           string          `json:"vehicleId"`
}

// Marshal encodes the message for publication.
func (a *AnonymizedApc) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

// Iso8601UTCMillis formats t as an ISO 8601 UTC timestamp with millisecond
// precision, e.g. "2022-11-22T11:27:31.847Z".
func Iso8601UTCMillis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
