package telemetry

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/nerrad567/fusionsolar2mqtt/internal/fusionsolar"
)

func TestNormalize_PlantAndDeviceKeys(t *testing.T) {
	plant := testPlant("Home", fusionsolar.DevTypeResidentialInverter)
	plant.Devices[0].Name = "Inverter"

	plantReadings := []fusionsolar.PlantReading{
		{Plant: plant, Items: map[string]any{"day_power": 12.5, "total_power": 830.0}},
	}
	deviceReadings := []fusionsolar.DeviceReading{
		{Device: plant.Devices[0], Items: map[string]any{"mppt_power": 5.0, "run_state": 1.0}},
	}

	record, err := Normalize(plantReadings, deviceReadings, nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	entry, ok := record.Plants["Home"]
	if !ok {
		t.Fatal("plant entry keyed by name is missing")
	}
	if entry["day_power"] != 12.5 {
		t.Errorf("day_power = %v, want 12.5", entry["day_power"])
	}

	device, ok := record.Devices["Home.Inverter"]
	if !ok {
		t.Fatal(`device entry "Home.Inverter" is missing`)
	}
	if device["mppt_power"] != 5.0 {
		t.Errorf("mppt_power = %v, want 5.0", device["mppt_power"])
	}
}

func TestNormalize_OnlySchemaFieldsExported(t *testing.T) {
	plant := testPlant("Home", fusionsolar.DevTypeResidentialInverter)

	plantReadings := []fusionsolar.PlantReading{
		{Plant: plant, Items: map[string]any{
			"day_power":     12.5,
			"internal_blob": map[string]any{"nested": true},
			"stationCode":   "NE=123",
		}},
	}

	record, err := Normalize(plantReadings, nil, nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	entry := record.Plants["Home"]
	if _, exists := entry["internal_blob"]; exists {
		t.Error("non-schema field internal_blob was exported")
	}
	if _, exists := entry["stationCode"]; exists {
		t.Error("non-schema field stationCode was exported")
	}
}

func TestNormalize_MergesPowerMetrics(t *testing.T) {
	plant := testPlant("Home", fusionsolar.DevTypeResidentialInverter)
	other := testPlant("Cabin")

	plantReadings := []fusionsolar.PlantReading{
		{Plant: plant, Items: map[string]any{"day_power": 1.0}},
		{Plant: other, Items: map[string]any{"day_power": 2.0}},
	}
	computed := map[*fusionsolar.Plant]PowerMetrics{
		plant: {Production: 5000, Consumption: 6200, ConsumptionPV: 5000},
	}

	record, err := Normalize(plantReadings, nil, computed)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	power, ok := record.Plants["Home"]["power"].(map[string]any)
	if !ok {
		t.Fatal("power sub-mapping missing for composed plant")
	}
	want := map[string]any{
		"production":     5000.0,
		"consumption":    6200.0,
		"consumption_pv": 5000.0,
	}
	if !reflect.DeepEqual(power, want) {
		t.Errorf("power = %v, want %v", power, want)
	}

	if _, exists := record.Plants["Cabin"]["power"]; exists {
		t.Error("power sub-mapping present for plant without composed metrics")
	}
}

func TestNormalize_DuplicatePlantName(t *testing.T) {
	first := testPlant("Home")
	second := testPlant("Home")

	plantReadings := []fusionsolar.PlantReading{
		{Plant: first, Items: map[string]any{}},
		{Plant: second, Items: map[string]any{}},
	}

	_, err := Normalize(plantReadings, nil, nil)
	if err == nil {
		t.Fatal("Normalize() expected error for duplicate plant names")
	}
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Normalize() error = %v, want ErrDuplicateName", err)
	}
}

func TestNormalize_DuplicateDeviceKey(t *testing.T) {
	plant := testPlant("Home", fusionsolar.DevTypeResidentialInverter, fusionsolar.DevTypeResidentialInverter)
	plant.Devices[0].Name = "Inverter"
	plant.Devices[1].Name = "Inverter"

	deviceReadings := []fusionsolar.DeviceReading{
		{Device: plant.Devices[0], Items: map[string]any{}},
		{Device: plant.Devices[1], Items: map[string]any{}},
	}

	_, err := Normalize(nil, deviceReadings, nil)
	if err == nil {
		t.Fatal("Normalize() expected error for duplicate device keys")
	}
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Normalize() error = %v, want ErrDuplicateName", err)
	}
}

func TestNormalize_SameDeviceNameAcrossPlants(t *testing.T) {
	plantA := testPlant("A", fusionsolar.DevTypeResidentialInverter)
	plantB := testPlant("B", fusionsolar.DevTypeResidentialInverter)
	plantA.Devices[0].Name = "Inverter"
	plantB.Devices[0].Name = "Inverter"

	deviceReadings := []fusionsolar.DeviceReading{
		{Device: plantA.Devices[0], Items: map[string]any{}},
		{Device: plantB.Devices[0], Items: map[string]any{}},
	}

	record, err := Normalize(nil, deviceReadings, nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v; plant qualification should disambiguate", err)
	}
	if len(record.Devices) != 2 {
		t.Errorf("len(Devices) = %d, want 2", len(record.Devices))
	}
}

func TestNormalize_TimestampFields(t *testing.T) {
	plant := testPlant("Home", fusionsolar.DevTypeResidentialInverter)
	opened := time.Date(2026, 8, 31, 6, 12, 0, 0, time.UTC)

	deviceReadings := []fusionsolar.DeviceReading{
		{Device: plant.Devices[0], Items: map[string]any{
			"open_time": float64(opened.UnixMilli()),
		}},
	}

	record, err := Normalize(nil, deviceReadings, nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	value, ok := record.Devices["Home.Home-dev1"]["open_time"].(time.Time)
	if !ok {
		t.Fatal("open_time was not exported as time.Time")
	}
	if !value.Equal(opened) {
		t.Errorf("open_time = %v, want %v", value, opened)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	plant := testPlant("Home", fusionsolar.DevTypeResidentialInverter, fusionsolar.DevTypePowerSensor)
	plantReadings := []fusionsolar.PlantReading{
		{Plant: plant, Items: map[string]any{"day_power": 12.5}},
	}
	deviceReadings := []fusionsolar.DeviceReading{
		{Device: plant.Devices[0], Items: map[string]any{"mppt_power": 5.0}},
		{Device: plant.Devices[1], Items: map[string]any{"active_power": -1200.0}},
	}
	computed := Compose(plantReadings, deviceReadings)

	first, err := Normalize(plantReadings, deviceReadings, computed)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	second, err := Normalize(plantReadings, deviceReadings, computed)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Normalize() is not idempotent for identical inputs")
	}
}
