package verifier

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oshokin/thermo-verify/internal/device"
	"github.com/oshokin/thermo-verify/internal/logger"
)

// RequiredFields is the full field set every measurement point is expected
// to expose on the wire.
//
//nolint:gochecknoglobals // Fixed contract shared by the report and its tests.
var RequiredFields = []string{
	"address", "name", "currentTemp", "sensorBound",
	"lowThreshold", "highThreshold", "hysteresis",
	"lowEnabled", "highEnabled", "errorEnabled",
	"lowPriority", "highPriority", "errorPriority",
}

// writeFieldReport prints one line per required field, marking it present
// (with its value) or missing. Checks are independent: a missing field
// never suppresses the rest. Returns the number of missing fields.
func writeFieldReport(out io.Writer, point device.RawPoint) int {
	missing := 0

	for _, field := range RequiredFields {
		if point.Has(field) {
			fmt.Fprintf(out, "  ✓ %s: %v\n", field, point.Value(field))
		} else {
			fmt.Fprintf(out, "  ✗ %s: MISSING\n", field)
			missing++
		}
	}

	return missing
}

// reportCallFailure prints a failed call in the report and logs it.
// The failure is terminal for the current step only.
func (r *runner) reportCallFailure(ctx context.Context, err error) {
	var statusErr *device.StatusError

	switch {
	case errors.Is(err, device.ErrNoPointsField):
		fmt.Fprintln(r.out, "ERROR: no \"points\" field in response")
	case errors.As(err, &statusErr):
		fmt.Fprintf(r.out, "ERROR: HTTP %d\n%s\n", statusErr.Code, statusErr.Body)
	default:
		fmt.Fprintf(r.out, "ERROR: request failed - %v\n", err)
	}

	logger.ErrorKV(ctx, "Device call failed", "error", err)
}
