// Package device is an HTTP client for the temperature controller's REST
// API: alarm configuration retrieval and partial updates, device status,
// the sensor inventory, and the min/max reset. Every call applies a
// bounded wait and surfaces non-success statuses as StatusError.
package device
