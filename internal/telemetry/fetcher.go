package telemetry

import (
	"context"
	"fmt"

	"github.com/nerrad567/fusionsolar2mqtt/internal/fusionsolar"
)

// Source supplies realtime readings. Implemented by the fusionsolar
// client; tests use fakes.
type Source interface {
	PlantRealtime(ctx context.Context, plants map[string]*fusionsolar.Plant) ([]fusionsolar.PlantReading, error)
	DeviceRealtime(ctx context.Context, devices map[int64]*fusionsolar.Device) ([]fusionsolar.DeviceReading, error)
}

// Fetch requests current readings for every plant and every device.
//
// It builds the union of all devices across all plants (deduplicated
// by device ID), then issues one bulk plant-level request and one bulk
// device-level request. There is no retry: a remote error aborts the
// run.
func Fetch(ctx context.Context, src Source, plants map[string]*fusionsolar.Plant) ([]fusionsolar.PlantReading, []fusionsolar.DeviceReading, error) {
	devices := make(map[int64]*fusionsolar.Device)
	for _, plant := range plants {
		for _, device := range plant.Devices {
			devices[device.ID] = device
		}
	}

	plantReadings, err := src.PlantRealtime(ctx, plants)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching plant readings: %w", err)
	}

	deviceReadings, err := src.DeviceRealtime(ctx, devices)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching device readings: %w", err)
	}

	return plantReadings, deviceReadings, nil
}
