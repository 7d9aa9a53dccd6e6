// Package commands implements the schoolwork CLI commands using cobra.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/schoolwork/internal/config"
	"github.com/marcus/schoolwork/internal/logging"
	"github.com/marcus/schoolwork/internal/shell"
)

var (
	// Version is set at build time
	Version = "0.1.0"
)

// skipSetup marks commands that load config themselves or need none.
const skipSetup = "skip-setup"

var rootCmd = &cobra.Command{
	Use:   "schoolwork",
	Short: "AI study assistant for questions, summaries, paraphrasing and math",
	Long: `Schoolwork is a terminal study assistant. Pick a mode, enter your text,
and the configured AI provider answers.

Providers are selected in schoolwork.yaml (or ~/.config/schoolwork/config.yaml):
the cloud provider talks to a hosted model with an API key, the local-server
provider talks to a model server on your machine.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runShell,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file to use instead of the global and project files")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}

// setup loads configuration and initializes logging before any command that
// talks to a provider.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipSetup] != "" {
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logCfg := cfg.LogConfig()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logCfg.Level = "debug"
	}
	if err := logging.Init(logCfg); err != nil {
		return err
	}

	logging.Component("cli").DebugCtx("config loaded", map[string]any{
		"provider": cfg.Provider,
		"files":    cfg.Files,
	})
	currentConfig = cfg
	return nil
}

func runShell(cmd *cobra.Command, args []string) error {
	defer closeLogger()

	p, err := resolveProvider(currentConfig)
	if err != nil {
		return err
	}

	sh := shell.New(p,
		shell.WithInput(cmd.InOrStdin()),
		shell.WithOutput(cmd.OutOrStdout()),
		shell.WithTUI(shell.IsTerminal(cmd.InOrStdin())),
	)
	return sh.Run(cmd.Context())
}
