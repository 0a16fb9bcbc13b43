// Package fusionsolar provides the FusionSolar data model and the
// northbound API client.
//
// This package contains:
//   - Plant and Device identities with capability classification
//   - Realtime reading snapshots (plant-level and device-level)
//   - Static export schemas declaring which reading fields are exportable
//   - An HTTP client for the FusionSolar northbound interface with
//     session-scoped authentication
//
// # Capability Model
//
// Devices are classified by what telemetry they report, not by vendor
// subtype. A device declares zero or more of the Production, Battery
// and Meter capabilities, derived from its northbound device type ID.
// Consumers switch on capabilities, never on type IDs.
//
// # Sessions
//
// The northbound API is session-scoped. Callers acquire a session with
// Login and must guarantee release with Logout regardless of outcome:
//
//	client := fusionsolar.NewClient(cfg)
//	if err := client.Login(ctx); err != nil {
//	    return err
//	}
//	defer client.Logout(ctx)
//
// # Related Documents
//
//   - Huawei FusionSolar Northbound Interface Reference (thirdData API)
package fusionsolar
