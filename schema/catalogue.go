package schema

import "encoding/json"

// EquipmentTypePassengerCounter marks equipment entries that count
// passengers; only these matter for device acceptance.
const EquipmentTypePassengerCounter = "PASSENGER_COUNTER"

// Equipment is one installed device listed for a catalogue vehicle.
type Equipment struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ApcSystem string `json:"apcSystem,omitempty"`
}

// CatalogueVehicle is one vehicle entry of a vehicle catalogue message.
type CatalogueVehicle struct {
	OperatorID       string      `json:"operatorId"`
	VehicleShortName string      `json:"vehicleShortName"`
	Equipment        []Equipment `json:"equipment"`
}

// ParseVehicleCatalogue decodes one vehicle catalogue payload, a JSON array
// of vehicles.
func ParseVehicleCatalogue(data []byte) ([]CatalogueVehicle, error) {
	var vehicles []CatalogueVehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}
