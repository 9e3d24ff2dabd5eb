// Package inspect implements the read-side diagnostic commands: device
// status and the sensor inventory, with an optional min/max reset.
package inspect
