// Package verifier implements the alarm configuration smoke test: fetch the
// current configuration and report per-field presence on the first point,
// apply a fixed sample change, then re-fetch to confirm the device persisted
// it. Call failures are printed and never abort the remaining steps.
package verifier
