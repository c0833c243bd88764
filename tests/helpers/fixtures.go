package helpers

import (
	"encoding/json"
	"testing"

	"github.com/theoremus-urban-solutions/apc-anonymizer/profile"
	"github.com/theoremus-urban-solutions/apc-anonymizer/schema"
)

// DeterministicCSV is a probability table whose rows leave nothing to
// chance: count 0 always samples EMPTY, count 1 and above always FULL.
const DeterministicCSV = "passenger_count,EMPTY,FULL\n0,1,0\n1,0,1\n"

// UniformCSV splits every count evenly between EMPTY and FULL.
const UniformCSV = "passenger_count,EMPTY,FULL\n0,0.5,0.5\n"

// NewProfileStore builds a profile store where every listed vehicle follows
// the same CSV table.
func NewProfileStore(t *testing.T, csvText string, vehicleIDs ...string) *profile.Store {
	t.Helper()
	models := map[string]string{}
	for _, id := range vehicleIDs {
		models[id] = "test-model"
	}
	store := profile.NewStore()
	err := store.ApplyCollection(&schema.ProfileCollection{
		VehicleModels: models,
		ModelProfiles: map[string]string{"test-model": csvText},
	})
	if err != nil {
		t.Fatalf("Failed to build profile store: %v", err)
	}
	return store
}

// NewMatchedApc returns a valid matched APC message for authority 203 and
// vehicle short name vehicleID, carrying a single adult door count.
func NewMatchedApc(vehicleID string, in, out int) *schema.MatchedApc {
	return &schema.MatchedApc{
		AuthorityID:        "203",
		CountingDeviceID:   "test-device",
		CountingVendorName: "test-vendor",
		CountQuality:       schema.CountQualityRegular,
		DoorClassCounts: []schema.DoorClassCount{
			{Door: "1", CountClass: schema.CountClassAdult, In: in, Out: out},
		},
		GtfsrtVehicleID:           vehicleID,
		GtfsrtDirectionID:         0,
		GtfsrtRouteID:             "4",
		GtfsrtStartDate:           "20240506",
		GtfsrtStartTime:           "07:15:00",
		GtfsrtTripID:              "test-trip",
		GtfsrtCurrentStopSequence: 1,
		GtfsrtStopID:              "test-stop",
	}
}

// MarshalMatchedApc encodes a matched APC message the way the broker would
// deliver it.
func MarshalMatchedApc(t *testing.T, msg *schema.MatchedApc) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal matched APC message: %v", err)
	}
	return data
}
