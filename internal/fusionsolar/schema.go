package fusionsolar

// FieldKind is the scalar kind of an exportable reading field.
type FieldKind int

const (
	// KindNumber exports as a float64.
	KindNumber FieldKind = iota

	// KindString exports as a string.
	KindString

	// KindBool exports as a bool.
	KindBool

	// KindTime exports an epoch-milliseconds value as time.Time (UTC).
	KindTime
)

// Field declares one exportable reading field: its dataItemMap name
// and the scalar kind it is exported as.
type Field struct {
	Name string
	Kind FieldKind
}

// PlantExportSchema is the fixed set of exportable plant reading
// fields, as returned by getStationRealKpi.
var PlantExportSchema = []Field{
	{Name: "day_power", Kind: KindNumber},
	{Name: "month_power", Kind: KindNumber},
	{Name: "total_power", Kind: KindNumber},
	{Name: "day_income", Kind: KindNumber},
	{Name: "total_income", Kind: KindNumber},
	{Name: "health_state", Kind: KindNumber},
}

// deviceBaseSchema holds fields reported by every device type.
var deviceBaseSchema = []Field{
	{Name: "run_state", Kind: KindNumber},
}

// productionSchema holds inverter realtime fields (devTypeId 1, 38).
var productionSchema = []Field{
	{Name: "mppt_power", Kind: KindNumber},
	{Name: "active_power", Kind: KindNumber},
	{Name: "reactive_power", Kind: KindNumber},
	{Name: "efficiency", Kind: KindNumber},
	{Name: "temperature", Kind: KindNumber},
	{Name: "elec_freq", Kind: KindNumber},
	{Name: "day_cap", Kind: KindNumber},
	{Name: "total_cap", Kind: KindNumber},
	{Name: "open_time", Kind: KindTime},
	{Name: "close_time", Kind: KindTime},
	{Name: "inverter_state", Kind: KindNumber},
}

// batterySchema holds battery realtime fields (devTypeId 39).
var batterySchema = []Field{
	{Name: "battery_status", Kind: KindNumber},
	{Name: "battery_soc", Kind: KindNumber},
	{Name: "battery_soh", Kind: KindNumber},
	{Name: "ch_discharge_power", Kind: KindNumber},
	{Name: "ch_discharge_model", Kind: KindNumber},
	{Name: "charge_cap", Kind: KindNumber},
	{Name: "discharge_cap", Kind: KindNumber},
	{Name: "max_charge_power", Kind: KindNumber},
	{Name: "max_discharge_power", Kind: KindNumber},
	{Name: "busbar_u", Kind: KindNumber},
}

// meterSchema holds power sensor realtime fields (devTypeId 17, 47).
var meterSchema = []Field{
	{Name: "meter_status", Kind: KindNumber},
	{Name: "meter_u", Kind: KindNumber},
	{Name: "meter_i", Kind: KindNumber},
	{Name: "active_power", Kind: KindNumber},
	{Name: "reactive_power", Kind: KindNumber},
	{Name: "power_factor", Kind: KindNumber},
	{Name: "grid_frequency", Kind: KindNumber},
	{Name: "active_cap", Kind: KindNumber},
	{Name: "reverse_active_cap", Kind: KindNumber},
}

// DeviceExportSchema returns the fixed, ordered set of exportable
// fields for a device with the given capabilities: the base fields
// followed by one block per declared capability.
func DeviceExportSchema(c Capability) []Field {
	schema := make([]Field, 0, len(deviceBaseSchema))
	schema = append(schema, deviceBaseSchema...)
	if c.Has(CapabilityProduction) {
		schema = append(schema, productionSchema...)
	}
	if c.Has(CapabilityBattery) {
		schema = append(schema, batterySchema...)
	}
	if c.Has(CapabilityMeter) {
		schema = append(schema, meterSchema...)
	}
	return schema
}

// ExportItems extracts the schema's fields from a raw dataItemMap,
// coercing each to its declared scalar kind. Fields that are absent or
// fail coercion are skipped; nothing outside the schema is ever
// exported.
func ExportItems(items map[string]any, schema []Field) map[string]any {
	out := make(map[string]any, len(schema))
	for _, field := range schema {
		value, ok := items[field.Name]
		if !ok || value == nil {
			continue
		}
		switch field.Kind {
		case KindNumber:
			if v, ok := toFloat(value); ok {
				out[field.Name] = v
			}
		case KindString:
			if v, ok := value.(string); ok {
				out[field.Name] = v
			}
		case KindBool:
			if v, ok := toBool(value); ok {
				out[field.Name] = v
			}
		case KindTime:
			if v, ok := toTime(value); ok {
				out[field.Name] = v
			}
		}
	}
	return out
}
