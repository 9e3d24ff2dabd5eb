package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/thermo-verify/internal/service/inspect"
)

// resetMinMax clears recorded min/max temperatures before listing sensors.
var resetMinMax bool

// statusCmd prints device identity, sensor counts, and uptime.
var statusCmd = &cobra.Command{
	Use:   "status [device-address]",
	Short: "Print device identity, sensor counts, and uptime.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := newSignalContext()
		defer stop()

		return inspect.Status(ctx, &inspect.Options{
			ConfigPath:    cfgPath,
			DeviceAddress: addressArg(args),
		})
	},
}

// sensorsCmd prints the sensor inventory with binding information.
var sensorsCmd = &cobra.Command{
	Use:   "sensors [device-address]",
	Short: "List the device's sensors and their measurement point bindings.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := newSignalContext()
		defer stop()

		return inspect.Sensors(ctx, &inspect.Options{
			ConfigPath:    cfgPath,
			DeviceAddress: addressArg(args),
			ResetMinMax:   resetMinMax,
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	sensorsCmd.Flags().BoolVar(&resetMinMax, "reset-minmax", false, "reset min/max temperatures before listing")

	rootCmd.AddCommand(statusCmd, sensorsCmd)
}
