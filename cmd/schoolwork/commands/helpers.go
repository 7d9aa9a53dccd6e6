package commands

import (
	"github.com/spf13/cobra"

	"github.com/marcus/schoolwork/internal/config"
	"github.com/marcus/schoolwork/internal/logging"
	"github.com/marcus/schoolwork/internal/providers"
)

// currentConfig is set by setup for the running command.
var currentConfig *config.Config

// loadConfig honours --config, falling back to the global and project files.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// resolveProvider builds the configured provider once for the session.
func resolveProvider(cfg *config.Config) (providers.Provider, error) {
	p, name, err := providers.DefaultRegistry().ResolveDescriptor(cfg.Descriptor())
	if err != nil {
		logging.Component("cli").Err(err).Str("provider", cfg.Provider).Msg("provider resolution failed")
		return nil, err
	}
	logging.Component("cli").InfoCtx("provider resolved", map[string]any{"provider": name})
	return p, nil
}

func closeLogger() {
	_ = logging.Get().Close()
}
