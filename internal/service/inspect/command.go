package inspect

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/thermo-verify/internal/logger"
	"github.com/oshokin/thermo-verify/internal/service/common"
)

// Options configures the status and sensors commands.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// DeviceAddress overrides the configured controller address when set.
	DeviceAddress string
	// Out receives the printed report, defaulting to stdout.
	Out io.Writer
	// ResetMinMax clears recorded min/max temperatures before listing sensors.
	ResetMinMax bool
}

// Status fetches and prints device identity, sensor counts, and uptime.
func Status(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "status")

	session, out, err := setup(opts)
	if err != nil {
		return err
	}

	status, err := session.Client.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("fetch status: %w", err)
	}

	fmt.Fprintf(out, "Device %d (firmware %d) at %s\n",
		status.DeviceID, status.FirmwareVersion, session.DeviceAddress)
	fmt.Fprintf(out, "  DS18B20 sensors:    %d\n", status.DS18B20Count)
	fmt.Fprintf(out, "  PT1000 sensors:     %d\n", status.PT1000Count)
	fmt.Fprintf(out, "  Measurement period: %ds\n", status.MeasurementPeriod)
	fmt.Fprintf(out, "  Uptime:             %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
	fmt.Fprintf(out, "  Status registers:   %v\n", status.DeviceStatus)

	return nil
}

// Sensors fetches and prints the sensor inventory with binding information,
// optionally resetting min/max temperatures first.
func Sensors(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sensors")

	session, out, err := setup(opts)
	if err != nil {
		return err
	}

	if opts.ResetMinMax {
		if err := session.Client.ResetMinMax(ctx); err != nil {
			return fmt.Errorf("reset min/max: %w", err)
		}

		fmt.Fprintln(out, "Min/max values reset")
	}

	sensors, err := session.Client.GetSensors(ctx)
	if err != nil {
		return fmt.Errorf("fetch sensors: %w", err)
	}

	fmt.Fprintf(out, "Found %d sensors on %s\n", len(sensors), session.DeviceAddress)

	for _, sensor := range sensors {
		binding := "unbound"
		if sensor.BoundPoint != nil {
			binding = fmt.Sprintf("point %d", *sensor.BoundPoint)
		}

		identity := sensor.RomString
		if identity == "" && sensor.ChipSelectPin != nil {
			identity = fmt.Sprintf("CS pin %d", *sensor.ChipSelectPin)
		}

		fmt.Fprintf(out, "  [%s] %s (%s): %.1f°C (min %.1f, max %.1f), %s\n",
			sensor.Type, sensor.Name, identity,
			sensor.CurrentTemp, sensor.MinTemp, sensor.MaxTemp, binding)
	}

	return nil
}

// setup builds the session and resolves the output writer.
func setup(opts *Options) (*common.Session, io.Writer, error) {
	session, err := common.NewSession(opts.ConfigPath, opts.DeviceAddress)
	if err != nil {
		return nil, nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return session, out, nil
}
