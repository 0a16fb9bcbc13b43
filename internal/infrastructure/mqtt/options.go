package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/fusionsolar2mqtt/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultDisconnectQuiesce is the time to wait for pending operations
	// on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// clientIDPrefix identifies the bridge on the broker. The random
	// suffix keeps concurrent manual runs from kicking each other off.
	clientIDPrefix = "fusionsolar-mqtt-"
)

// buildClientOptions creates paho MQTT options from bridge config.
//
// This configures:
//   - Broker URL (tcp://host:port)
//   - Randomised client ID
//   - Authentication credentials (when mqtt.auth is enabled)
//   - Keepalive and reconnect interval from mqtt.reconnectPeriod
//   - Connection timeout from mqtt.connectTimeout
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(randomClientID())

	if cfg.Auth {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// Clean session - the bridge publishes once per run and holds no
	// broker-side state between runs.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(cfg.GetReconnectPeriod())
	opts.SetKeepAlive(cfg.GetReconnectPeriod())
	opts.SetConnectTimeout(cfg.GetConnectTimeout())

	return opts
}

// randomClientID returns a fresh per-run client identifier.
func randomClientID() string {
	return clientIDPrefix + uuid.NewString()[:8]
}
