// Package config loads and validates the bridge settings file.
//
// Settings live in a single YAML document with three required
// sections:
//
//	system:
//	  logLevel: info
//	fusionsolar:
//	  username: apiuser
//	  password: secret
//	mqtt:
//	  auth: true
//	  connectTimeout: 5
//	  host: broker.local
//	  password: secret
//	  port: 1883
//	  reconnectPeriod: 60
//	  topic: fusionsolar
//	  username: bridge
//
// Every key above is required. Validation is strict: a missing key or
// sub-key is a fatal startup error naming the key, and no defaults are
// substituted. Credentials may be overridden via
// FUSIONSOLAR2MQTT_FUSIONSOLAR_PASSWORD and
// FUSIONSOLAR2MQTT_MQTT_PASSWORD so settings files can be committed
// without secrets.
package config
