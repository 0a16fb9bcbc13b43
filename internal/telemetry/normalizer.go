package telemetry

import (
	"errors"
	"fmt"

	"github.com/nerrad567/fusionsolar2mqtt/internal/fusionsolar"
)

// ErrDuplicateName is returned when two plants share a name or two
// devices map to the same qualified key. Names are a precondition of
// the export format, not a runtime-recoverable condition.
var ErrDuplicateName = errors.New("telemetry: duplicate export name")

// Record is the flat structure published to MQTT. Each entry maps a
// human-readable name to scalar field values only: no nested device or
// plant references ever appear.
type Record struct {
	Plants  map[string]map[string]any `json:"plants"`
	Devices map[string]map[string]any `json:"devices"`
}

// Normalize converts readings plus composed metrics into the export
// record.
//
// Plant entries are keyed by plant name; device entries by
// "<plant-name>.<device-name>" to guarantee uniqueness across plants.
// Only the statically declared export schema fields are extracted from
// each reading. Each plant's computed power balance, when present, is
// merged into that plant's entry under "power".
func Normalize(plantReadings []fusionsolar.PlantReading, deviceReadings []fusionsolar.DeviceReading, computed map[*fusionsolar.Plant]PowerMetrics) (Record, error) {
	record := Record{
		Plants:  make(map[string]map[string]any, len(plantReadings)),
		Devices: make(map[string]map[string]any, len(deviceReadings)),
	}

	for _, reading := range plantReadings {
		name := reading.Plant.Name
		if _, exists := record.Plants[name]; exists {
			return Record{}, fmt.Errorf("%w: plant %q", ErrDuplicateName, name)
		}
		record.Plants[name] = fusionsolar.ExportItems(reading.Items, fusionsolar.PlantExportSchema)
	}

	for plant, metrics := range computed {
		entry, ok := record.Plants[plant.Name]
		if !ok {
			continue
		}
		entry["power"] = metrics.Map()
	}

	for _, reading := range deviceReadings {
		device := reading.Device
		key := fmt.Sprintf("%s.%s", device.Plant.Name, device.Name)
		if _, exists := record.Devices[key]; exists {
			return Record{}, fmt.Errorf("%w: device %q", ErrDuplicateName, key)
		}
		schema := fusionsolar.DeviceExportSchema(device.Capabilities)
		record.Devices[key] = fusionsolar.ExportItems(reading.Items, schema)
	}

	return record, nil
}
