package recorder

import (
	"context"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/oshokin/thermo-verify/internal/config"
	"github.com/oshokin/thermo-verify/internal/device"
)

// runMeasurementSuffix is appended to the configured measurement name
// for per-run summary points.
const runMeasurementSuffix = "_runs"

// Recorder writes fetched measurement points and run outcomes to InfluxDB.
// A nil *Recorder is a valid no-op, so callers never branch on whether
// recording is configured.
type Recorder struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
}

// RunSummary captures the outcome of one verification run.
type RunSummary struct {
	// RunID correlates the summary with log output.
	RunID string
	// PointsFound is the point count of the initial fetch.
	PointsFound int
	// MissingFields counts required fields absent from the first point.
	MissingFields int
	// Verified reports whether the applied change was confirmed by re-fetch.
	Verified bool
}

// New creates a recorder from the optional influx settings block.
// It returns nil when recording is not configured.
func New(cfg *config.InfluxConfig) *Recorder {
	if cfg == nil {
		return nil
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	return &Recorder{
		client:      client,
		writeAPI:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: cfg.Measurement,
	}
}

// Close releases the underlying InfluxDB client.
func (r *Recorder) Close() {
	if r == nil {
		return
	}

	r.client.Close()
}

// RecordPoints writes one point per measurement point from a fetched snapshot.
func (r *Recorder) RecordPoints(ctx context.Context, deviceAddress string, points []device.MeasurementPoint) error {
	if r == nil {
		return nil
	}

	for _, p := range pointsFor(r.measurement, deviceAddress, points, time.Now()) {
		if err := r.writeAPI.WritePoint(ctx, p); err != nil {
			return fmt.Errorf("write point: %w", err)
		}
	}

	return nil
}

// RecordRun writes a single summary point for a completed verification run.
func (r *Recorder) RecordRun(ctx context.Context, deviceAddress string, summary RunSummary) error {
	if r == nil {
		return nil
	}

	p := influxdb2.NewPoint(r.measurement+runMeasurementSuffix,
		map[string]string{"device": deviceAddress, "run": summary.RunID},
		map[string]interface{}{
			"pointsFound":   summary.PointsFound,
			"missingFields": summary.MissingFields,
			"verified":      summary.Verified,
		},
		time.Now())

	if err := r.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}

	return nil
}

// pointsFor converts measurement points into InfluxDB write points.
func pointsFor(
	measurement, deviceAddress string,
	points []device.MeasurementPoint,
	at time.Time,
) []*write.Point {
	result := make([]*write.Point, 0, len(points))

	for _, point := range points {
		result = append(result, influxdb2.NewPoint(measurement,
			map[string]string{
				"device":  deviceAddress,
				"address": strconv.Itoa(point.Address),
				"name":    point.Name,
			},
			map[string]interface{}{
				"currentTemp":   point.CurrentTemp,
				"lowThreshold":  point.LowThreshold,
				"highThreshold": point.HighThreshold,
				"hysteresis":    point.Hysteresis,
			},
			at))
	}

	return result
}
