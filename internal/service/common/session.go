//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"github.com/oshokin/thermo-verify/internal/config"
	"github.com/oshokin/thermo-verify/internal/device"
	"github.com/oshokin/thermo-verify/internal/logger"
)

// Session bundles the loaded settings and a ready device client for one
// command invocation.
type Session struct {
	// Config is the loaded and validated settings.
	Config *config.Config
	// Client talks to the controller at the resolved address.
	Client *device.Client
	// DeviceAddress is the address actually used, after any CLI override.
	DeviceAddress string
}

// NewSession loads settings, applies the configured log level, resolves the
// device address (command-line override wins over the settings file), and
// builds the device client with the configured bounded wait.
func NewSession(configPath, addressOverride string) (*Session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.LogLevel != "" {
		if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
			logger.SetLevel(level)
		}
	}

	address := cfg.DeviceAddress
	if addressOverride != "" {
		address = addressOverride
	}

	client, err := device.New(address, device.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	return &Session{
		Config:        cfg,
		Client:        client,
		DeviceAddress: address,
	}, nil
}
