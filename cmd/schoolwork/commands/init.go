package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/marcus/schoolwork/internal/config"
	"github.com/marcus/schoolwork/internal/providers"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#22863a", Dark: "#3fb950"})
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b08800", Dark: "#d29922"})
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0366d6", Dark: "#58a6ff"})
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create configuration file",
	Long: `Initialize a new schoolwork configuration file.

By default, creates schoolwork.yaml in the current directory.
Use --global to create a global config at ~/.config/schoolwork/config.yaml`,
	Annotations: map[string]string{skipSetup: "true"},
	RunE:        runInit,
}

func init() {
	initCmd.Flags().Bool("global", false, "Create global config instead of project config")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config without prompting")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	global, _ := cmd.Flags().GetBool("global")
	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()

	var configPath string
	var configType string

	if global {
		configPath = config.GlobalConfigPath()
		configType = "global"
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		configPath = filepath.Join(cwd, config.ProjectConfigName)
		configType = "project"
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(out, "%s %s\n", warnStyle.Render("Config already exists:"), configPath)
		fmt.Fprint(out, "Overwrite? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	// The file may hold an API key.
	if err := os.WriteFile(configPath, []byte(generateDefaultConfig()), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(out, "\n%s %s\n\n", successStyle.Render("Created "+configType+" config:"), configPath)
	fmt.Fprintln(out, headingStyle.Render("Next steps:"))
	fmt.Fprintf(out, "  1. Replace %s with your API key, or set GEMINI_API_KEY\n", providers.PlaceholderAPIKey)
	fmt.Fprintln(out, "  2. Or set provider: local-server to use a model on this machine")
	fmt.Fprintln(out, "  3. Run 'schoolwork doctor' to verify")
	fmt.Fprintln(out)

	return nil
}

// generateDefaultConfig creates the default config YAML with helpful comments.
func generateDefaultConfig() string {
	return fmt.Sprintf(`# Schoolwork Configuration
#
# Global file: ~/.config/schoolwork/config.yaml
# Project file: ./schoolwork.yaml (overrides the global file)

# Which AI provider to use: cloud or local-server
# (aliases: gemini, google, ollama, local)
provider: %s

# Cloud provider (hosted model, needs an API key)
# Get a key from https://aistudio.google.com/app/apikey
# GEMINI_API_KEY in the environment overrides api_key.
cloud:
  api_key: %s
  model: %s
  # base_url: %s
  # timeout: %s

# Local server provider (e.g. Ollama running on this machine)
# OLLAMA_HOST and OLLAMA_MODEL in the environment override these.
local_server:
  host: %s
  model: %s
  # timeout: %s

logging:
  level: info                    # debug | info | warn | error
  format: json                   # json | text
  # path: ~/.local/share/schoolwork/logs
  retention_days: 7
`,
		config.DefaultProvider,
		providers.PlaceholderAPIKey,
		providers.DefaultCloudModel,
		providers.DefaultCloudBaseURL,
		providers.DefaultCloudTimeout,
		providers.DefaultLocalServerHost,
		providers.DefaultLocalServerModel,
		providers.DefaultLocalServerTimeout,
	)
}
