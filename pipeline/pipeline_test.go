package pipeline

import (
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/apc-anonymizer/counting"
	"github.com/theoremus-urban-solutions/apc-anonymizer/profile"
	"github.com/theoremus-urban-solutions/apc-anonymizer/registry"
	"github.com/theoremus-urban-solutions/apc-anonymizer/schema"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	profiles := profile.NewStore()
	err := profiles.ApplyCollection(&schema.ProfileCollection{
		VehicleModels: map[string]string{"fi:test:42": "test-model"},
		ModelProfiles: map[string]string{"test-model": "passenger_count,EMPTY,FULL\n0,1,0\n"},
	})
	if err != nil {
		t.Fatalf("ApplyCollection failed: %v", err)
	}
	authority := map[string]string{"203": "fi:test"}
	return New(profiles, counting.NewCache(0), registry.New(), authority, NewWarningAggregator())
}

func apcMessage() *schema.MatchedApc {
	return &schema.MatchedApc{
		AuthorityID:        "203",
		CountingDeviceID:   "device-1",
		CountingVendorName: "vendor",
		CountQuality:       schema.CountQualityRegular,
		DoorClassCounts: []schema.DoorClassCount{
			{Door: "1", CountClass: schema.CountClassAdult, In: 2, Out: 2},
		},
		GtfsrtVehicleID:           "42",
		GtfsrtDirectionID:         1,
		GtfsrtRouteID:             "4",
		GtfsrtStartDate:           "20240506",
		GtfsrtStartTime:           "07:15:00",
		GtfsrtTripID:              "trip-1",
		GtfsrtCurrentStopSequence: 7,
		GtfsrtStopID:              "stop-9",
	}
}

func TestProcess_EndToEnd(t *testing.T) {
	p := testPipeline(t)
	fixed := time.Date(2024, 5, 6, 7, 20, 0, 123_000_000, time.UTC)
	p.now = func() time.Time { return fixed }

	// The profile's only CDF row is deterministic, so a net count of zero
	// must always anonymize to EMPTY.
	for i := 0; i < 100; i++ {
		out, ok := p.Process(apcMessage())
		if !ok {
			t.Fatal("expected an anonymized message")
		}
		if out.OccupancyStatus != "EMPTY" {
			t.Fatalf("expected EMPTY, got %s", out.OccupancyStatus)
		}
	}

	out, _ := p.Process(apcMessage())
	if out.SchemaVersion != schema.AnonymizedApcSchemaVersion {
		t.Errorf("unexpected schema version %q", out.SchemaVersion)
	}
	if out.Timestamp != "2024-05-06T07:20:00.123Z" {
		t.Errorf("timestamp must be the processing time, got %q", out.Timestamp)
	}
	if out.AuthorityID != "203" || out.VehicleID != "42" || out.TripID != "trip-1" {
		t.Errorf("unexpected identifiers: %+v", out)
	}
	if out.CurrentStopSequence != 7 || out.DirectionID != 1 || out.StopID != "stop-9" {
		t.Errorf("unexpected trip descriptor fields: %+v", out)
	}
	if out.RouteID != "4" || out.StartDate != "20240506" || out.StartTime != "07:15:00" {
		t.Errorf("unexpected trip descriptor fields: %+v", out)
	}
}

func TestProcess_UnknownAuthority(t *testing.T) {
	p := testPipeline(t)
	msg := apcMessage()
	msg.AuthorityID = "999"
	if _, ok := p.Process(msg); ok {
		t.Error("an unmapped authority must produce no output")
	}
}

func TestProcess_UnknownVehicle(t *testing.T) {
	p := testPipeline(t)
	msg := apcMessage()
	msg.GtfsrtVehicleID = "no-profile-yet"
	if _, ok := p.Process(msg); ok {
		t.Error("a vehicle without a profile must produce no output")
	}
}

func TestProcess_RejectedDevice(t *testing.T) {
	profiles := profile.NewStore()
	err := profiles.ApplyCollection(&schema.ProfileCollection{
		VehicleModels: map[string]string{"fi:test:42": "m"},
		ModelProfiles: map[string]string{"m": "passenger_count,EMPTY,FULL\n0,1,0\n"},
	})
	if err != nil {
		t.Fatalf("ApplyCollection failed: %v", err)
	}
	devices := registry.NewFromSeed(map[string][]string{"fi:test:42": {"only-this-device"}})
	p := New(profiles, counting.NewCache(0), devices, map[string]string{"203": "fi:test"}, NewWarningAggregator())

	msg := apcMessage()
	if _, ok := p.Process(msg); ok {
		t.Error("a device outside the accepted set must produce no output")
	}
	msg.CountingDeviceID = "ONLY-THIS-DEVICE"
	if _, ok := p.Process(msg); !ok {
		t.Error("the accepted device must produce output regardless of case")
	}
}

func TestProcess_IrregularQualityIsUsedAnyway(t *testing.T) {
	p := testPipeline(t)
	msg := apcMessage()
	msg.CountQuality = schema.CountQualityDefect
	if _, ok := p.Process(msg); !ok {
		t.Error("non-regular count quality is warned about but still processed")
	}
}

func TestProcess_CountAccumulatesAcrossMessages(t *testing.T) {
	profiles := profile.NewStore()
	// Counts 0 and 1 map deterministically to different categories.
	err := profiles.ApplyCollection(&schema.ProfileCollection{
		VehicleModels: map[string]string{"fi:test:42": "m"},
		ModelProfiles: map[string]string{"m": "passenger_count,EMPTY,FULL\n0,1,0\n1,0,1\n"},
	})
	if err != nil {
		t.Fatalf("ApplyCollection failed: %v", err)
	}
	p := New(profiles, counting.NewCache(0), registry.New(), map[string]string{"203": "fi:test"}, NewWarningAggregator())

	boarding := apcMessage()
	boarding.DoorClassCounts = []schema.DoorClassCount{
		{Door: "1", CountClass: schema.CountClassAdult, In: 1, Out: 0},
	}
	out, ok := p.Process(boarding)
	if !ok {
		t.Fatal("expected output")
	}
	if out.OccupancyStatus != "FULL" {
		t.Errorf("after one boarding the count is 1, expected FULL, got %s", out.OccupancyStatus)
	}

	alighting := apcMessage()
	alighting.DoorClassCounts = []schema.DoorClassCount{
		{Door: "1", CountClass: schema.CountClassAdult, In: 0, Out: 1},
	}
	out, ok = p.Process(alighting)
	if !ok {
		t.Fatal("expected output")
	}
	if out.OccupancyStatus != "EMPTY" {
		t.Errorf("the running total is back to 0, expected EMPTY, got %s", out.OccupancyStatus)
	}

	// A new trip restarts the total from the message's own delta.
	newTrip := apcMessage()
	newTrip.GtfsrtTripID = "trip-2"
	newTrip.DoorClassCounts = []schema.DoorClassCount{
		{Door: "1", CountClass: schema.CountClassAdult, In: 1, Out: 0},
	}
	out, ok = p.Process(newTrip)
	if !ok {
		t.Fatal("expected output")
	}
	if out.OccupancyStatus != "FULL" {
		t.Errorf("expected FULL on the new trip, got %s", out.OccupancyStatus)
	}
}

func TestProcess_CategoryOutsideEnumeration(t *testing.T) {
	profiles := profile.NewStore()
	err := profiles.ApplyCollection(&schema.ProfileCollection{
		VehicleModels: map[string]string{"fi:test:42": "m"},
		ModelProfiles: map[string]string{"m": "passenger_count,NOT_A_STATUS\n0,1\n"},
	})
	if err != nil {
		t.Fatalf("ApplyCollection failed: %v", err)
	}
	p := New(profiles, counting.NewCache(0), registry.New(), map[string]string{"203": "fi:test"}, NewWarningAggregator())
	if _, ok := p.Process(apcMessage()); ok {
		t.Error("a category label outside the occupancy enumeration must produce no output")
	}
}
