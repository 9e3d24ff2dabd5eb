package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/thermo-verify/internal/service/verifier"
)

// fetchCmd runs only the configuration fetch and field presence report.
var fetchCmd = &cobra.Command{
	Use:   "fetch [device-address]",
	Short: "Fetch the alarm configuration and report field presence.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := newSignalContext()
		defer stop()

		return verifier.Fetch(ctx, &verifier.Options{
			ConfigPath:    cfgPath,
			DeviceAddress: addressArg(args),
		})
	},
}

// applyCmd runs only the sample change and its re-fetch verification.
var applyCmd = &cobra.Command{
	Use:   "apply [device-address]",
	Short: "Apply the sample configuration change and verify it took effect.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := newSignalContext()
		defer stop()

		return verifier.Apply(ctx, &verifier.Options{
			ConfigPath:    cfgPath,
			DeviceAddress: addressArg(args),
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(fetchCmd, applyCmd)
}
