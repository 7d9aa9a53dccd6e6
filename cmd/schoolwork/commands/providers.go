package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marcus/schoolwork/internal/providers"
)

var providersCmd = &cobra.Command{
	Use:         "providers",
	Short:       "List the available AI providers",
	Annotations: map[string]string{skipSetup: "true"},
	RunE:        runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tALIASES\tCONFIG SECTION")
	for _, e := range providers.Entries() {
		aliases := strings.Join(e.Aliases, ", ")
		if aliases == "" {
			aliases = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, aliases, e.Section)
	}
	return w.Flush()
}
