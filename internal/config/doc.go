// Package config loads and validates the YAML settings shared by the
// thermo-verify commands: the target controller address, the per-call
// bounded wait, the log level, and the optional InfluxDB recording block.
package config
