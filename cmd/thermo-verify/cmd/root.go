package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/thermo-verify/internal/config"
	"github.com/oshokin/thermo-verify/internal/service/verifier"
	"github.com/oshokin/thermo-verify/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string

	// rootCmd runs the full alarm configuration smoke test.
	rootCmd = &cobra.Command{
		Use:   "thermo-verify [device-address]",
		Short: "Smoke-test a temperature controller's alarm configuration API.",
		Long: `Exercises the controller's alarm configuration REST endpoints end to end.

Fetches the current alarm configuration and reports field presence on the first
measurement point, applies a fixed sample change for point 0, then re-fetches to
confirm the device persisted it. Both steps always run: a failed fetch never
skips the update attempt, and the run always finishes with a completion banner.

The device address can be given as an argument or loaded from the settings file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := newSignalContext()
			defer stop()

			return verifier.Run(ctx, &verifier.Options{
				ConfigPath:    cfgPath,
				DeviceAddress: addressArg(args),
			})
		},
	}
)

// Execute runs the thermo-verify CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file",
	)
}

// newSignalContext returns a context cancelled by SIGTERM or SIGINT.
func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// addressArg extracts the optional positional device address.
func addressArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return ""
}
