package verifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/oshokin/thermo-verify/internal/device"
	"github.com/oshokin/thermo-verify/internal/logger"
	"github.com/oshokin/thermo-verify/internal/recorder"
	"github.com/oshokin/thermo-verify/internal/service/common"
)

// Options configures a verification run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// DeviceAddress overrides the configured controller address when set.
	DeviceAddress string
	// Out receives the human-readable report, defaulting to stdout.
	Out io.Writer
}

// updateAddress is the measurement point targeted by the sample change.
const updateAddress = 0

// bannerWidth matches the separator width of the report.
const bannerWidth = 50

// runner carries the state of one command invocation.
type runner struct {
	session *common.Session
	rec     *recorder.Recorder
	out     io.Writer
	summary recorder.RunSummary
}

// Run executes the full smoke test: fetch the alarm configuration, apply
// the sample change, re-fetch to verify. The two steps run unconditionally
// and sequentially; a failed fetch never stops the apply. Only setup faults
// (unloadable settings, unusable address) are returned as errors.
func Run(ctx context.Context, opts *Options) error {
	ctx, r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer r.rec.Close()

	fmt.Fprintf(r.out, "Testing alarm configuration API on %s\n", r.session.DeviceAddress)
	r.separator()

	r.fetchStep(ctx)
	r.applyStep(ctx)

	fmt.Fprintln(r.out)
	r.separator()
	fmt.Fprintln(r.out, "Test complete!")

	if err := r.rec.RecordRun(ctx, r.session.DeviceAddress, r.summary); err != nil {
		logger.WarnKV(ctx, "Recording run summary failed", "error", err)
	}

	return nil
}

// Fetch executes only the configuration fetch and field presence report.
func Fetch(ctx context.Context, opts *Options) error {
	ctx, r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer r.rec.Close()

	r.fetchStep(ctx)

	return nil
}

// Apply executes only the sample change and its re-fetch verification.
func Apply(ctx context.Context, opts *Options) error {
	ctx, r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer r.rec.Close()

	r.applyStep(ctx)

	return nil
}

// newRunner builds the session and tags the context with a run id
// so log lines from one invocation can be correlated.
func newRunner(ctx context.Context, opts *Options) (context.Context, *runner, error) {
	ctx = logger.WithName(ctx, "verifier")

	session, err := common.NewSession(opts.ConfigPath, opts.DeviceAddress)
	if err != nil {
		return ctx, nil, err
	}

	runID := uuid.NewString()
	ctx = logger.WithKV(ctx, "run_id", runID)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	logger.InfoKV(ctx, "Starting verification",
		"device_address", session.DeviceAddress,
		"timeout", session.Config.Timeout.String(),
	)

	return ctx, &runner{
		session: session,
		rec:     recorder.New(session.Config.Influx),
		out:     out,
		summary: recorder.RunSummary{RunID: runID},
	}, nil
}

// fetchStep fetches the alarm configuration and reports the point count and
// per-field presence on the first point. Failures are printed, never raised.
func (r *runner) fetchStep(ctx context.Context) {
	fmt.Fprintf(r.out, "\n=== GET %s ===\n", device.AlarmConfigPath)

	snapshot, err := r.session.Client.GetAlarmConfig(ctx)
	if err != nil {
		r.reportCallFailure(ctx, err)
		return
	}

	r.summary.PointsFound = len(snapshot.Points)
	fmt.Fprintf(r.out, "Found %d measurement points\n", len(snapshot.Points))

	if err := r.rec.RecordPoints(ctx, r.session.DeviceAddress, snapshot.Points); err != nil {
		logger.WarnKV(ctx, "Recording points failed", "error", err)
	}

	if len(snapshot.RawPoints) == 0 {
		return
	}

	fmt.Fprintln(r.out, "\nFirst point structure:")

	r.summary.MissingFields = writeFieldReport(r.out, snapshot.RawPoints[0])
}

// applyStep posts the sample change for point 0, then re-fetches and prints
// the changed fields. When the updated point is absent from the re-fetch,
// no claim is made either way.
func (r *runner) applyStep(ctx context.Context) {
	fmt.Fprintf(r.out, "\n=== POST %s ===\n", device.AlarmConfigPath)

	response, err := r.session.Client.ApplyAlarmConfig(ctx, SampleChange())
	if err != nil {
		r.reportCallFailure(ctx, err)
		return
	}

	fmt.Fprintf(r.out, "Response: %s\n", response)
	fmt.Fprintln(r.out, "\nVerifying changes...")

	snapshot, err := r.session.Client.GetAlarmConfig(ctx)
	if err != nil {
		r.reportCallFailure(ctx, err)
		return
	}

	point, ok := snapshot.FindByAddress(updateAddress)
	if !ok {
		fmt.Fprintf(r.out, "No point with address %d in response, cannot verify the update\n", updateAddress)
		return
	}

	fmt.Fprintf(r.out, "Point %d after update:\n", updateAddress)
	fmt.Fprintf(r.out, "  Name: %s\n", point.Name)
	fmt.Fprintf(r.out, "  Low threshold: %g\n", point.LowThreshold)
	fmt.Fprintf(r.out, "  High threshold: %g\n", point.HighThreshold)
	fmt.Fprintf(r.out, "  Low enabled: %t\n", point.LowEnabled)
	fmt.Fprintf(r.out, "  High enabled: %t\n", point.HighEnabled)
	fmt.Fprintf(r.out, "  Hysteresis: %g\n", point.Hysteresis)

	r.summary.Verified = true
}

// separator prints the report's horizontal rule.
func (r *runner) separator() {
	fmt.Fprintln(r.out, strings.Repeat("=", bannerWidth))
}

// SampleChange returns the fixed update exercised against point 0:
// fresh thresholds, hysteresis, priorities, and enable flags. Reapplying
// it is idempotent with respect to its own result.
func SampleChange() []device.PointChange {
	var (
		name          = "Test Point 0"
		low           = -5.0
		high          = 85.0
		hysteresis    = 3.0
		lowEnabled    = true
		highEnabled   = true
		errorEnabled  = false
		lowPriority   = device.PriorityHigh
		highPriority  = device.PriorityCritical
		errorPriority = device.PriorityCritical
	)

	return []device.PointChange{
		{
			Address:       updateAddress,
			Name:          &name,
			LowThreshold:  &low,
			HighThreshold: &high,
			Hysteresis:    &hysteresis,
			LowEnabled:    &lowEnabled,
			HighEnabled:   &highEnabled,
			ErrorEnabled:  &errorEnabled,
			LowPriority:   &lowPriority,
			HighPriority:  &highPriority,
			ErrorPriority: &errorPriority,
		},
	}
}
