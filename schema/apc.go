package schema

import (
	"encoding/json"
	"fmt"
)

// CountClass is the passenger class of one door count.
type CountClass string

const (
	CountClassAdult      CountClass = "adult"
	CountClassChild      CountClass = "child"
	CountClassPram       CountClass = "pram"
	CountClassBike       CountClass = "bike"
	CountClassWheelchair CountClass = "wheelchair"
	CountClassOther      CountClass = "other"
)

// CountQuality describes how reliable the counting hardware considered its
// own output for this message.
type CountQuality string

const (
	CountQualityRegular CountQuality = "regular"
	CountQualityDefect  CountQuality = "defect"
	CountQualityOther   CountQuality = "other"
)

// DoorClassCount is one boarding/alighting record for a specific door and
// passenger class within one APC message.
type DoorClassCount struct {
	Door       string     `json:"door"`
	CountClass CountClass `json:"countClass"`
	In         int        `json:"in"`
	Out        int        `json:"out"`
}

// MatchedApc is an inbound APC message whose counts have already been
// matched to a GTFS Realtime trip by an upstream service.
type MatchedApc struct {
	SchemaVersion             string           `json:"schemaVersion,omitempty"`
	AuthorityID               string           `json:"authorityId"`
	CountingDeviceID          string           `json:"countingDeviceId"`
	CountingVendorName        string           `json:"countingVendorName"`
	CountQuality              CountQuality     `json:"countQuality"`
	DoorClassCounts           []DoorClassCount `json:"doorClassCounts"`
	GtfsrtVehicleID           string           `json:"gtfsrtVehicleId"`
	GtfsrtDirectionID         int              `json:"gtfsrtDirectionId"`
	GtfsrtRouteID             string           `json:"gtfsrtRouteId"`
	GtfsrtStartDate           string           `json:"gtfsrtStartDate"`
	GtfsrtStartTime           string           `json:"gtfsrtStartTime"`
	GtfsrtTripID              string           `json:"gtfsrtTripId"`
	GtfsrtCurrentStopSequence int              `json:"gtfsrtCurrentStopSequence"`
	GtfsrtStopID              string           `json:"gtfsrtStopId"`
}

// ParseMatchedApc decodes one matched APC payload.
func ParseMatchedApc(data []byte) (*MatchedApc, error) {
	var msg MatchedApc
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.AuthorityID == "" {
		return nil, fmt.Errorf("matched APC message missing authorityId")
	}
	if msg.GtfsrtVehicleID == "" {
		return nil, fmt.Errorf("matched APC message missing gtfsrtVehicleId")
	}
	return &msg, nil
}
