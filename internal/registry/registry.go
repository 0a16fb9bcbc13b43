package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nerrad567/fusionsolar2mqtt/internal/fusionsolar"
)

// Source supplies plant and device identities. Implemented by the
// fusionsolar client; tests use fakes.
type Source interface {
	ListPlants(ctx context.Context) ([]*fusionsolar.Plant, error)
	ListDevices(ctx context.Context, plants []*fusionsolar.Plant) error
}

// Logger defines the logging interface used by Resolve.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// cachedDevice is the on-disk form of a device identity.
type cachedDevice struct {
	ID        int64  `json:"id"`
	Name      string `json:"devName"`
	DevTypeID int64  `json:"devTypeId"`
}

// cachedPlant is the on-disk form of a plant identity with its devices.
type cachedPlant struct {
	Code    string         `json:"stationCode"`
	Name    string         `json:"stationName"`
	Devices []cachedDevice `json:"devices"`
}

// Resolve returns the set of plants with their devices, keyed by plant
// code.
//
// If a cache file exists at path it is parsed first; a parse failure
// is logged and resolution falls back to the remote source. When the
// remote source is used, the fully resolved set is persisted back to
// path (pretty-printed) before returning. Remote errors propagate and
// are fatal for the run.
func Resolve(ctx context.Context, src Source, path string, logger Logger) (map[string]*fusionsolar.Plant, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	if data, err := os.ReadFile(path); err == nil {
		logger.Info("reading device list from cache file", "path", path)
		logger.Info("remove this file to refresh the device list")

		plants, parseErr := fromCache(data)
		if parseErr == nil {
			return plants, nil
		}
		logger.Error("unable to parse device cache file", "path", path, "error", parseErr)
	}

	logger.Info("requesting device list from FusionSolar")
	listed, err := src.ListPlants(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving plants: %w", err)
	}
	if err := src.ListDevices(ctx, listed); err != nil {
		return nil, fmt.Errorf("resolving devices: %w", err)
	}

	plants := make(map[string]*fusionsolar.Plant, len(listed))
	for _, plant := range listed {
		plants[plant.Code] = plant
	}

	if err := writeCache(path, listed); err != nil {
		return nil, fmt.Errorf("writing device cache: %w", err)
	}
	logger.Info("device cache written", "path", path, "plants", len(listed))

	return plants, nil
}

// fromCache reconstructs plants, devices and capability sets from the
// snapshot data.
func fromCache(data []byte) (map[string]*fusionsolar.Plant, error) {
	var records []cachedPlant
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	plants := make(map[string]*fusionsolar.Plant, len(records))
	for _, record := range records {
		plant := &fusionsolar.Plant{
			Code: record.Code,
			Name: record.Name,
		}
		for _, cached := range record.Devices {
			plant.AddDevice(&fusionsolar.Device{
				ID:           cached.ID,
				Name:         cached.Name,
				TypeID:       cached.DevTypeID,
				Capabilities: fusionsolar.CapabilitiesForType(cached.DevTypeID),
			})
		}
		plants[plant.Code] = plant
	}
	return plants, nil
}

// writeCache persists the resolved set as a pretty-printed JSON list.
func writeCache(path string, plants []*fusionsolar.Plant) error {
	records := make([]cachedPlant, 0, len(plants))
	for _, plant := range plants {
		record := cachedPlant{
			Code:    plant.Code,
			Name:    plant.Name,
			Devices: make([]cachedDevice, 0, len(plant.Devices)),
		}
		for _, device := range plant.Devices {
			record.Devices = append(record.Devices, cachedDevice{
				ID:        device.ID,
				Name:      device.Name,
				DevTypeID: device.TypeID,
			})
		}
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
