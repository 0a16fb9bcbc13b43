package fusionsolar

import (
	"strconv"
	"strings"
	"time"
)

// Capability classifies the telemetry a device reports.
// A device may hold several capabilities at once.
type Capability uint8

const (
	// CapabilityProduction marks devices reporting PV production (inverters).
	CapabilityProduction Capability = 1 << iota

	// CapabilityBattery marks devices reporting battery charge/discharge.
	CapabilityBattery

	// CapabilityMeter marks devices reporting grid exchange (power sensors).
	CapabilityMeter
)

// Has reports whether all capabilities in want are present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// String returns a stable, comma-separated capability list for logging.
func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	if c.Has(CapabilityProduction) {
		parts = append(parts, "production")
	}
	if c.Has(CapabilityBattery) {
		parts = append(parts, "battery")
	}
	if c.Has(CapabilityMeter) {
		parts = append(parts, "meter")
	}
	return strings.Join(parts, ",")
}

// Northbound device type IDs (devTypeId) relevant to this bridge.
const (
	DevTypeStringInverter      int64 = 1
	DevTypeEMI                 int64 = 10
	DevTypeGridMeter           int64 = 17
	DevTypeResidentialInverter int64 = 38
	DevTypeBattery             int64 = 39
	DevTypePowerSensor         int64 = 47
)

// capabilitiesByType maps northbound device type IDs to capabilities.
// Types not listed (EMI, dongles, loggers) carry no telemetry this
// bridge derives metrics from; their readings are still exported.
var capabilitiesByType = map[int64]Capability{
	DevTypeStringInverter:      CapabilityProduction,
	DevTypeResidentialInverter: CapabilityProduction,
	DevTypeBattery:             CapabilityBattery,
	DevTypeGridMeter:           CapabilityMeter,
	DevTypePowerSensor:         CapabilityMeter,
}

// CapabilitiesForType returns the capability set for a device type ID.
func CapabilitiesForType(typeID int64) Capability {
	return capabilitiesByType[typeID]
}

// Plant is a physical installation site. It owns its devices.
type Plant struct {
	Code    string
	Name    string
	Devices []*Device
}

// Device is a piece of equipment at a plant.
// The Plant pointer is a non-owning back-reference.
type Device struct {
	ID           int64
	Name         string
	TypeID       int64
	Capabilities Capability
	Plant        *Plant
}

// AddDevice appends a device to the plant and sets its back-reference.
func (p *Plant) AddDevice(d *Device) {
	d.Plant = p
	p.Devices = append(p.Devices, d)
}

// PlantReading is an immutable snapshot of plant-level telemetry.
// Items holds the raw northbound dataItemMap.
type PlantReading struct {
	Plant *Plant
	Items map[string]any
}

// DeviceReading is an immutable snapshot of device-level telemetry.
// Items holds the raw northbound dataItemMap.
type DeviceReading struct {
	Device *Device
	Items  map[string]any
}

// Float returns a named numeric item, coercing from the loosely typed
// JSON the northbound API returns. The second result is false when the
// item is absent or not numeric.
func (r PlantReading) Float(name string) (float64, bool) {
	return itemFloat(r.Items, name)
}

// Float returns a named numeric item from the device reading.
func (r DeviceReading) Float(name string) (float64, bool) {
	return itemFloat(r.Items, name)
}

func itemFloat(items map[string]any, name string) (float64, bool) {
	value, ok := items[name]
	if !ok {
		return 0, false
	}
	return toFloat(value)
}

// toFloat coerces northbound JSON values to float64.
// The API mixes numbers and numeric strings across firmware versions.
func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int:
		return float64(typed), true
	case string:
		if typed == "" {
			return 0, false
		}
		if parsed, err := strconv.ParseFloat(typed, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// toBool coerces northbound JSON values to bool.
func toBool(value any) (bool, bool) {
	switch typed := value.(type) {
	case bool:
		return typed, true
	case string:
		if parsed, err := strconv.ParseBool(typed); err == nil {
			return parsed, true
		}
	}
	return false, false
}

// toTime coerces a northbound epoch-milliseconds value to time.Time.
func toTime(value any) (time.Time, bool) {
	millis, ok := toFloat(value)
	if !ok || millis <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(millis)).UTC(), true
}
