// Package recorder optionally mirrors fetched measurement points and
// verification outcomes into InfluxDB, so repeated runs against the same
// controller build a trend of its temperatures and thresholds.
package recorder
