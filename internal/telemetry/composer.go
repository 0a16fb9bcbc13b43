package telemetry

import (
	"math"

	"github.com/nerrad567/fusionsolar2mqtt/internal/fusionsolar"
)

// PowerMetrics is the derived power balance for one plant, in watts.
// It exists only for plants where both a production-capable and a
// meter-capable reading were present in the current run.
type PowerMetrics struct {
	// Production is the PV output.
	Production float64

	// Consumption is the load served from PV, grid and battery.
	Consumption float64

	// ConsumptionPV is self-consumption from PV, capped at production.
	ConsumptionPV float64

	// ChBattery and DisBattery split the signed battery power into a
	// mutually exclusive non-negative charge/discharge pair. They are
	// meaningful only when HasBattery is true.
	ChBattery  float64
	DisBattery float64
	HasBattery bool
}

// Map returns the exportable "power" sub-mapping for this record.
// Battery keys appear only when a battery reading contributed.
func (m PowerMetrics) Map() map[string]any {
	power := map[string]any{
		"production":     m.Production,
		"consumption":    m.Consumption,
		"consumption_pv": m.ConsumptionPV,
	}
	if m.HasBattery {
		power["ch_battery"] = m.ChBattery
		power["dis_battery"] = m.DisBattery
	}
	return power
}

// Compose derives per-plant power metrics from the current readings.
//
// For each plant with a plant-level reading, the device readings owned
// by that plant are scanned once. Every capability a device declares
// contributes:
//
//   - production: mppt_power, converted from kW to W. If a plant has
//     several production devices the last scanned wins; multi-inverter
//     aggregation is a known simplification.
//   - battery: the signed ch_discharge_power (positive = charging) is
//     split into non-negative charge and discharge figures.
//   - meter: active_power, signed, negative when exporting to grid.
//
// A plant is present in the result iff both production and meter were
// found; battery figures are included iff a battery reading was also
// found. Plants missing a required signal are omitted rather than
// zero-filled.
func Compose(plantReadings []fusionsolar.PlantReading, deviceReadings []fusionsolar.DeviceReading) map[*fusionsolar.Plant]PowerMetrics {
	result := make(map[*fusionsolar.Plant]PowerMetrics)

	for _, plantReading := range plantReadings {
		plant := plantReading.Plant
		var production, meter, chBattery, disBattery *float64

		for _, reading := range deviceReadings {
			device := reading.Device
			if device == nil || device.Plant != plant {
				continue
			}
			if device.Capabilities.Has(fusionsolar.CapabilityProduction) {
				if value, ok := reading.Float("mppt_power"); ok {
					production = ptr(value * 1000) // kW → W
				}
			}
			if device.Capabilities.Has(fusionsolar.CapabilityBattery) {
				if value, ok := reading.Float("ch_discharge_power"); ok {
					chBattery = ptr(math.Max(value, 0))
					disBattery = ptr(math.Max(-value, 0))
				}
			}
			if device.Capabilities.Has(fusionsolar.CapabilityMeter) {
				if value, ok := reading.Float("active_power"); ok {
					meter = ptr(value)
				}
			}
		}

		if production == nil || meter == nil {
			continue
		}

		var charge, discharge float64
		if chBattery != nil {
			charge = *chBattery
		}
		if disBattery != nil {
			discharge = *disBattery
		}

		consumption := *production - *meter - charge + discharge
		metrics := PowerMetrics{
			Production:    *production,
			Consumption:   consumption,
			ConsumptionPV: math.Min(*production, consumption+charge),
		}
		if chBattery != nil && disBattery != nil {
			metrics.ChBattery = charge
			metrics.DisBattery = discharge
			metrics.HasBattery = true
		}
		result[plant] = metrics
	}

	return result
}

func ptr(v float64) *float64 {
	return &v
}
