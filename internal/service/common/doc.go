// Package common holds setup shared by the thermo-verify command services:
// settings loading, log level application, device address resolution, and
// device client construction.
package common
