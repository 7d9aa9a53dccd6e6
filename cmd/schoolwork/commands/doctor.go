package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/schoolwork/internal/config"
	"github.com/marcus/schoolwork/internal/logging"
	"github.com/marcus/schoolwork/internal/providers"
	"github.com/marcus/schoolwork/internal/security"
)

type checkStatus string

const (
	statusOK   checkStatus = "OK"
	statusWarn checkStatus = "WARN"
	statusFail checkStatus = "FAIL"
)

type checkResult struct {
	name   string
	status checkStatus
	detail string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check schoolwork configuration and provider setup",
	Long: `Run diagnostics to detect configuration issues.

Checks that the config loads and validates, that the selected provider exists,
that its config section is present, and that it can be built.`,
	Annotations: map[string]string{skipSetup: "true"},
	RunE:        runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	results := make([]checkResult, 0)
	hasFail := false

	add := func(name string, status checkStatus, detail string) {
		if status == statusFail {
			hasFail = true
		}
		results = append(results, checkResult{name: name, status: status, detail: detail})
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		add("config", statusFail, err.Error())
		printDoctorResults(out, results)
		return fmt.Errorf("config load failed")
	}
	if len(cfg.Files) == 0 {
		add("config", statusWarn, "no config file found; run 'schoolwork init'")
	} else {
		add("config", statusOK, strings.Join(cfg.Files, ", "))
	}

	if err := config.Validate(cfg); err != nil {
		add("validation", statusFail, err.Error())
	} else {
		add("validation", statusOK, "valid")
	}

	checkLogging(cfg, add)
	checkProvider(cfg, add)

	printDoctorResults(out, results)

	if hasFail {
		return fmt.Errorf("doctor found failures")
	}
	return nil
}

func checkLogging(cfg *config.Config, add func(string, checkStatus, string)) {
	dir := logging.ExpandPath(cfg.Logging.Path)
	if dir == "" {
		add("logging", statusOK, "stderr")
		return
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		add("logging", statusOK, dir)
	case err == nil:
		add("logging", statusFail, dir+" is not a directory")
	case errors.Is(err, os.ErrNotExist):
		add("logging", statusWarn, dir+" will be created on first run")
	default:
		add("logging", statusFail, err.Error())
	}
}

func checkProvider(cfg *config.Config, add func(string, checkStatus, string)) {
	entry, ok := providers.DefaultRegistry().Lookup(cfg.Provider)
	if !ok {
		add("provider", statusFail, fmt.Sprintf("unknown provider %q (supported: %s)",
			cfg.Provider, strings.Join(providers.Names(), ", ")))
		return
	}
	detail := entry.Name
	if !strings.EqualFold(strings.TrimSpace(cfg.Provider), entry.Name) {
		detail = fmt.Sprintf("%s (via %q)", entry.Name, cfg.Provider)
	}
	add("provider", statusOK, detail)

	if _, ok := cfg.Sections[entry.Section]; !ok {
		add("section", statusFail, fmt.Sprintf("missing %q section", entry.Section))
		return
	}
	add("section", statusOK, entry.Section)

	if entry.Name == providers.KindCloud {
		checkCredential(cfg, add)
	}

	p, _, err := providers.DefaultRegistry().ResolveDescriptor(cfg.Descriptor())
	if err != nil {
		add("resolve", statusFail, err.Error())
		return
	}
	add("resolve", statusOK, describeProvider(p))
}

func checkCredential(cfg *config.Config, add func(string, checkStatus, string)) {
	fileKey := cfg.Sections[providers.SectionCloud]["api_key"]
	switch security.KeySource(fileKey) {
	case security.SourceEnv:
		add("credential", statusOK, fmt.Sprintf("%s from %s", security.MaskCredential(os.Getenv(security.EnvCloudKey)), security.EnvCloudKey))
		return
	case security.SourceNone:
		add("credential", statusFail, fmt.Sprintf("no api_key in the cloud section and %s is not set", security.EnvCloudKey))
		return
	}

	if fileKey == providers.PlaceholderAPIKey {
		add("credential", statusWarn, "api_key is still the placeholder")
		return
	}
	for _, path := range cfg.Files {
		if err := security.CheckFilePermissions(path); err != nil {
			add("credential", statusWarn, err.Error())
			return
		}
	}
	add("credential", statusOK, security.MaskCredential(fileKey)+" from config file")
}

func describeProvider(p providers.Provider) string {
	switch v := p.(type) {
	case *providers.LocalServer:
		return fmt.Sprintf("model %s at %s", v.Model(), v.Endpoint())
	case *providers.Cloud:
		return fmt.Sprintf("model %s at %s", v.Model(), v.BaseURL())
	default:
		return p.Name()
	}
}

func printDoctorResults(w io.Writer, results []checkResult) {
	fmt.Fprintln(w, "Schoolwork doctor")
	fmt.Fprintln(w, "=================")
	for _, result := range results {
		fmt.Fprintf(w, "[%s] %-12s %s\n", result.status, result.name, result.detail)
	}
	fmt.Fprintln(w)
}
