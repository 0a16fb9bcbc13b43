// Package mqtt provides the publish sink for the bridge.
//
// This package manages:
//   - Connection to the broker with the configured timeout
//   - Publishing the export record with a bounded acknowledgment wait
//
// The bridge is a one-shot producer: it connects, publishes a single
// message, and disconnects. Publish failures are non-fatal at this
// layer; the caller decides how delivery failure affects the process
// exit status.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(cfg.MQTT.Topic, payload, 0, false)
package mqtt
