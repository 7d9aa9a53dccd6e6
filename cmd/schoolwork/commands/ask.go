package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/schoolwork/internal/shell"
)

var askCmd = &cobra.Command{
	Use:   "ask [text...]",
	Short: "Ask a single question without the interactive menu",
	Long: `Send one piece of text to the configured provider and print the answer.

The text is taken from the arguments, or from stdin when no arguments are given:

  schoolwork ask "What causes the seasons?"
  schoolwork ask --mode summarize < chapter3.txt
  schoolwork ask --mode math "12 * (3 + 4)"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("mode", "m", shell.ModeQuestion.String(), "Mode: question, summarize, paraphrase, math")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	defer closeLogger()

	modeName, _ := cmd.Flags().GetString("mode")
	mode, err := shell.ParseMode(modeName)
	if err != nil {
		return err
	}
	if mode == shell.ModeExit {
		return fmt.Errorf("mode %q cannot be used with ask", modeName)
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no text given (pass it as arguments or on stdin)")
	}

	p, err := resolveProvider(currentConfig)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), shell.Ask(cmd.Context(), p, mode, text))
	return nil
}
