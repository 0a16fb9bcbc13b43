package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/fusionsolar2mqtt/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for the bridge's single publish per
// run.
//
// It provides connection management and message publishing with a
// bounded acknowledgment wait. Subscriptions are out of scope: the
// bridge is a pure producer.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
}

// Connect establishes a connection to the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, client ID)
//  2. Attempts the initial connection with the configured timeout
//
// Parameters:
//   - cfg: MQTT configuration from the settings file
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the initial connection fails within connectTimeout
func Connect(cfg config.MQTTConfig) (*Client, error) {
	opts := buildClientOptions(cfg)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.GetConnectTimeout()) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, cfg.GetConnectTimeout())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// Close disconnects from the MQTT broker, waiting briefly for pending
// operations to drain. Safe to call on a zero Client.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}
