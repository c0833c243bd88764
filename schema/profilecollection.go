package schema

import (
	"encoding/json"
	"fmt"
)

// ProfileCollection is an inbound profile message: which statistical model
// each vehicle follows and the CSV probability table of each model.
//
// Two wire shapes are accepted: the current profiler format carries a
// schemaVersion tag next to the maps, an earlier format carried the maps
// alone. Both decode into this struct.
type ProfileCollection struct {
	SchemaVersion string            `json:"schemaVersion,omitempty"`
	VehicleModels map[string]string `json:"vehicleModels"`
	ModelProfiles map[string]string `json:"modelProfiles"`
}

// ParseProfileCollection decodes one profile collection payload.
func ParseProfileCollection(data []byte) (*ProfileCollection, error) {
	var c ProfileCollection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if len(c.VehicleModels) == 0 && len(c.ModelProfiles) == 0 {
		return nil, fmt.Errorf("profile collection has neither vehicleModels nor modelProfiles")
	}
	return &c, nil
}
