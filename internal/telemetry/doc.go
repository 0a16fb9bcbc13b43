// Package telemetry turns raw FusionSolar readings into the record
// published over MQTT.
//
// The pipeline is strictly linear per run:
//
//	Fetch → Compose → Normalize
//
// Fetch collects one bulk plant-level and one bulk device-level
// snapshot. Compose derives a plant power balance from the device
// readings, degrading gracefully when a plant lacks the required
// signals. Normalize flattens everything into the exportable record.
//
// Compose and Normalize are pure functions of their inputs: nothing is
// persisted, and calling either twice with identical inputs yields
// identical output.
package telemetry
