package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the validated settings structure consumed by the bridge.
// It is produced by Load; all fields are guaranteed present.
type Config struct {
	System      SystemConfig
	FusionSolar FusionSolarConfig
	MQTT        MQTTConfig
}

// SystemConfig contains process-wide settings.
type SystemConfig struct {
	LogLevel string
}

// FusionSolarConfig contains northbound API credentials.
type FusionSolarConfig struct {
	Username string
	Password string
}

// MQTTConfig contains broker connection and publish settings.
type MQTTConfig struct {
	Auth            bool
	ConnectTimeout  int // seconds
	Host            string
	Password        string
	Port            int
	ReconnectPeriod int // seconds
	Topic           string
	Username        string
}

// GetConnectTimeout returns the connect/publish acknowledgment timeout
// as a Duration.
func (c MQTTConfig) GetConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// GetReconnectPeriod returns the reconnect period as a Duration.
func (c MQTTConfig) GetReconnectPeriod() time.Duration {
	return time.Duration(c.ReconnectPeriod) * time.Second
}

// logLevels is the set of accepted system.logLevel values.
var logLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warning": true,
	"error":   true,
}

// fileConfig mirrors the settings file. Every required sub-key is a
// pointer so that absence is distinguishable from a zero value: a
// missing key is a fatal startup error, never silently defaulted.
type fileConfig struct {
	System      *systemSection      `yaml:"system"`
	FusionSolar *fusionSolarSection `yaml:"fusionsolar"`
	MQTT        *mqttSection        `yaml:"mqtt"`
}

type systemSection struct {
	LogLevel *string `yaml:"logLevel"`
}

type fusionSolarSection struct {
	Username *string `yaml:"username"`
	Password *string `yaml:"password"`
}

type mqttSection struct {
	Auth            *bool   `yaml:"auth"`
	ConnectTimeout  *int    `yaml:"connectTimeout"`
	Host            *string `yaml:"host"`
	Password        *string `yaml:"password"`
	Port            *int    `yaml:"port"`
	ReconnectPeriod *int    `yaml:"reconnectPeriod"`
	Topic           *string `yaml:"topic"`
	Username        *string `yaml:"username"`
}

// Load reads the settings file, applies environment variable
// overrides for credentials, and validates that every required key is
// present and well-formed.
//
// Environment overrides:
//
//	FUSIONSOLAR2MQTT_FUSIONSOLAR_PASSWORD
//	FUSIONSOLAR2MQTT_MQTT_PASSWORD
//
// Parameters:
//   - path: Path to the YAML settings file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails;
//     validation errors name every missing or invalid key
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}

	applyEnvOverrides(&raw)

	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}

	return &Config{
		System: SystemConfig{
			LogLevel: *raw.System.LogLevel,
		},
		FusionSolar: FusionSolarConfig{
			Username: *raw.FusionSolar.Username,
			Password: *raw.FusionSolar.Password,
		},
		MQTT: MQTTConfig{
			Auth:            *raw.MQTT.Auth,
			ConnectTimeout:  *raw.MQTT.ConnectTimeout,
			Host:            *raw.MQTT.Host,
			Password:        *raw.MQTT.Password,
			Port:            *raw.MQTT.Port,
			ReconnectPeriod: *raw.MQTT.ReconnectPeriod,
			Topic:           *raw.MQTT.Topic,
			Username:        *raw.MQTT.Username,
		},
	}, nil
}

// applyEnvOverrides applies environment variable overrides so secrets
// can be kept out of the settings file.
func applyEnvOverrides(raw *fileConfig) {
	if v := os.Getenv("FUSIONSOLAR2MQTT_FUSIONSOLAR_PASSWORD"); v != "" {
		if raw.FusionSolar == nil {
			raw.FusionSolar = &fusionSolarSection{}
		}
		raw.FusionSolar.Password = &v
	}
	if v := os.Getenv("FUSIONSOLAR2MQTT_MQTT_PASSWORD"); v != "" {
		if raw.MQTT == nil {
			raw.MQTT = &mqttSection{}
		}
		raw.MQTT.Password = &v
	}
}

// validate checks that every required key and sub-key is present and
// that values are well-formed. All problems are collected and reported
// together.
func validate(raw *fileConfig) error {
	var errs []string

	if raw.System == nil {
		errs = append(errs, "missing key: system")
	} else {
		if raw.System.LogLevel == nil {
			errs = append(errs, "missing key: system.logLevel")
		} else if !logLevels[strings.ToLower(*raw.System.LogLevel)] {
			errs = append(errs, fmt.Sprintf("system.logLevel %q not supported: debug, info, warning, error", *raw.System.LogLevel))
		}
	}

	if raw.FusionSolar == nil {
		errs = append(errs, "missing key: fusionsolar")
	} else {
		if raw.FusionSolar.Username == nil {
			errs = append(errs, "missing key: fusionsolar.username")
		}
		if raw.FusionSolar.Password == nil {
			errs = append(errs, "missing key: fusionsolar.password")
		}
	}

	if raw.MQTT == nil {
		errs = append(errs, "missing key: mqtt")
	} else {
		required := []struct {
			name    string
			present bool
		}{
			{"mqtt.auth", raw.MQTT.Auth != nil},
			{"mqtt.connectTimeout", raw.MQTT.ConnectTimeout != nil},
			{"mqtt.host", raw.MQTT.Host != nil},
			{"mqtt.password", raw.MQTT.Password != nil},
			{"mqtt.port", raw.MQTT.Port != nil},
			{"mqtt.reconnectPeriod", raw.MQTT.ReconnectPeriod != nil},
			{"mqtt.topic", raw.MQTT.Topic != nil},
			{"mqtt.username", raw.MQTT.Username != nil},
		}
		for _, key := range required {
			if !key.present {
				errs = append(errs, "missing key: "+key.name)
			}
		}
		if raw.MQTT.Port != nil && (*raw.MQTT.Port < 1 || *raw.MQTT.Port > 65535) {
			errs = append(errs, "mqtt.port must be between 1 and 65535")
		}
		if raw.MQTT.ConnectTimeout != nil && *raw.MQTT.ConnectTimeout < 1 {
			errs = append(errs, "mqtt.connectTimeout must be at least 1 second")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
