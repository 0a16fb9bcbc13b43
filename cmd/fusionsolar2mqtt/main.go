// fusionsolar2mqtt - FusionSolar to MQTT bridge
//
// Polls the FusionSolar northbound API for plant and device telemetry,
// derives plant-level power metrics, and publishes the flattened result
// as a single MQTT message. Designed to be run periodically by an
// external scheduler (cron, systemd timer) and exit.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/fusionsolar2mqtt/internal/fusionsolar"
	"github.com/nerrad567/fusionsolar2mqtt/internal/infrastructure/config"
	"github.com/nerrad567/fusionsolar2mqtt/internal/infrastructure/logging"
	"github.com/nerrad567/fusionsolar2mqtt/internal/infrastructure/mqtt"
	"github.com/nerrad567/fusionsolar2mqtt/internal/registry"
	"github.com/nerrad567/fusionsolar2mqtt/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0"
var version = "dev"

// options holds the parsed command line.
type options struct {
	settingsPath string
	deviceFile   string
	list         bool
	debug        bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := parseFlags(os.Args[1:])

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags defines and parses the command line surface.
func parseFlags(args []string) options {
	fs := flag.NewFlagSet("fusionsolar2mqtt", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Request data from Fusion Solar and publish as MQTT")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.settingsPath, "settings", "settings.yml", "Settings file in Yaml format")
	fs.StringVar(&opts.deviceFile, "device-file", "devices.json", "Devices retrieved from Fusion Solar")
	fs.BoolVar(&opts.list, "list", false, "List Plant/Devices values and exit without publishing")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug messages")

	// ExitOnError: parse failures print usage and exit 2.
	_ = fs.Parse(args)

	if _, err := os.Stat(opts.settingsPath); err != nil {
		fmt.Fprintf(fs.Output(), "Settings file %s does not exist\n", opts.settingsPath)
		os.Exit(2)
	}

	return opts
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.settingsPath)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	level := cfg.System.LogLevel
	if opts.debug {
		level = "debug"
	}
	log := logging.New(level, version)
	log.Debug("settings loaded", "path", opts.settingsPath)

	record, err := collect(ctx, cfg, opts.deviceFile, log)
	if err != nil {
		return err
	}

	if opts.list {
		log.Info("list of variables reported to MQTT")
		fmt.Printf("%s:\n", cfg.MQTT.Topic)
		fmt.Println(formatRecord(record))
		return nil
	}

	return publish(cfg.MQTT, record, log)
}

// collect acquires a FusionSolar session, resolves the device
// registry, fetches realtime readings and assembles the export record.
// The session is released before returning, regardless of outcome.
func collect(ctx context.Context, cfg *config.Config, deviceFile string, log *logging.Logger) (telemetry.Record, error) {
	client := fusionsolar.NewClient(fusionsolar.Config{
		Username: cfg.FusionSolar.Username,
		Password: cfg.FusionSolar.Password,
	})

	if err := client.Login(ctx); err != nil {
		return telemetry.Record{}, fmt.Errorf("logging in to FusionSolar: %w", err)
	}
	defer func() {
		if err := client.Logout(ctx); err != nil {
			log.Warn("FusionSolar logout failed", "error", err)
		}
	}()
	log.Debug("FusionSolar session acquired")

	plants, err := registry.Resolve(ctx, client, deviceFile, log.With("component", "registry"))
	if err != nil {
		return telemetry.Record{}, err
	}
	log.Info("device registry resolved", "plants", len(plants))

	plantReadings, deviceReadings, err := telemetry.Fetch(ctx, client, plants)
	if err != nil {
		return telemetry.Record{}, err
	}
	log.Info("realtime readings fetched",
		"plant_readings", len(plantReadings),
		"device_readings", len(deviceReadings),
	)

	computed := telemetry.Compose(plantReadings, deviceReadings)
	log.Debug("power metrics composed", "plants", len(computed))

	record, err := telemetry.Normalize(plantReadings, deviceReadings, computed)
	if err != nil {
		return telemetry.Record{}, fmt.Errorf("normalizing readings: %w", err)
	}
	return record, nil
}

// publish serializes the record and sends it to the configured topic.
// Delivery failure is logged as a warning and surfaced as a non-zero
// exit so schedulers notice silent delivery loss.
func publish(cfg config.MQTTConfig, record telemetry.Record, log *logging.Logger) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding export record: %w", err)
	}

	client, err := mqtt.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Debug("MQTT connected", "broker", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))

	if err := client.Publish(cfg.Topic, payload, 0, false); err != nil {
		log.Warn("error publishing the message", "topic", cfg.Topic, "error", err)
		return fmt.Errorf("publishing export record: %w", err)
	}
	log.Info("message published", "topic", cfg.Topic, "bytes", len(payload))
	return nil
}
