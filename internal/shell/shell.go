package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/marcus/schoolwork/internal/logging"
	"github.com/marcus/schoolwork/internal/providers"
)

const (
	// Banner is printed when the shell starts.
	Banner = "--- AI School Work Helper ---"
	// ExitWord typed at any prompt ends the session.
	ExitWord = "exit"
)

// Shell runs the interactive loop against a single provider instance.
type Shell struct {
	provider providers.Provider
	rawIn    io.Reader
	in       *bufio.Reader
	out      io.Writer
	tui      bool
	styles   *Styles
	log      *logging.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithInput sets the reader user input comes from.
func WithInput(r io.Reader) Option {
	return func(s *Shell) {
		s.rawIn = r
	}
}

// WithOutput sets where prompts and answers are written.
func WithOutput(w io.Writer) Option {
	return func(s *Shell) {
		s.out = w
	}
}

// WithTUI toggles the bubbletea menu and styled output.
func WithTUI(enabled bool) Option {
	return func(s *Shell) {
		s.tui = enabled
	}
}

// New creates a shell over p. By default it reads stdin, writes stdout and
// uses the bubbletea menu when stdin is a terminal.
func New(p providers.Provider, opts ...Option) *Shell {
	s := &Shell{
		provider: p,
		rawIn:    os.Stdin,
		out:      os.Stdout,
		styles:   newStyles(),
		log:      logging.Component("shell"),
	}
	s.tui = IsTerminal(s.rawIn)
	for _, opt := range opts {
		opt(s)
	}
	s.in = bufio.NewReader(s.rawIn)
	return s
}

// IsTerminal reports whether r is a terminal file.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run prints the banner and loops until the user exits or input ends.
// Provider failures arrive as answer text, so Run only returns I/O errors.
func (s *Shell) Run(ctx context.Context) error {
	s.printf("%s\n", s.render(s.styles.Title, Banner))
	s.printf("Using AI provider: %s\n", s.provider.Name())
	s.printf("Type '%s' at any prompt to quit.\n", ExitWord)

	for {
		mode, err := s.chooseMode()
		if err != nil {
			return err
		}
		if mode == ModeExit {
			s.printf("\nGoodbye!\n")
			return nil
		}
		s.log.DebugCtx("mode selected", map[string]any{"mode": mode.String()})

		text, ok, err := s.collect(mode)
		if err != nil {
			return err
		}
		if !ok {
			s.printf("\nGoodbye!\n")
			return nil
		}
		if strings.TrimSpace(text) == "" {
			s.printf("Nothing entered.\n")
			continue
		}

		answer := Ask(ctx, s.provider, mode, text)
		s.printf("\n%s\n%s\n", s.render(s.styles.Answer, "AI Assistant:"), answer)
	}
}

// Ask turns text into a prompt for mode and returns the answer. Math mode
// answers plain arithmetic locally and falls back to the provider otherwise.
func Ask(ctx context.Context, p providers.Provider, mode Mode, text string) string {
	if mode == ModeMath {
		expr := strings.TrimSpace(text)
		if result, err := Evaluate(expr); err == nil {
			logging.Component("shell").DebugCtx("math evaluated locally", map[string]any{"expr": expr})
			return fmt.Sprintf("%s = %s", expr, result)
		}
	}
	return p.Assist(ctx, BuildPrompt(mode, text))
}

func (s *Shell) chooseMode() (Mode, error) {
	if s.tui {
		return runMenu(s.provider.Name(), s.rawIn, s.out)
	}

	for {
		s.printf("\nWhat would you like to do?\n")
		for i, m := range Modes {
			s.printf("  %d. %s\n", i+1, m.Title())
		}
		s.printf("Choose an option (1-%d): ", len(Modes))

		line, eof, err := s.readLine()
		if err != nil {
			return ModeExit, err
		}
		if eof {
			return ModeExit, nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		mode, err := ParseMode(line)
		if err != nil {
			s.printf("Invalid choice: %v\n", err)
			continue
		}
		return mode, nil
	}
}

// collect reads the user's text for mode. Questions and math problems are a
// single line; summarize and paraphrase read until an empty line. ok is false
// when the user typed the exit word or input ended before any text.
func (s *Shell) collect(mode Mode) (text string, ok bool, err error) {
	multiline := mode == ModeSummarize || mode == ModeParaphrase
	switch mode {
	case ModeMath:
		s.printf("Enter a math problem:\n> ")
	case ModeQuestion:
		s.printf("Enter your question:\n> ")
	default:
		s.printf("Paste your text and finish with an empty line:\n")
	}

	var lines []string
	for {
		line, eof, err := s.readLine()
		if err != nil {
			return "", false, err
		}
		if eof {
			if len(lines) == 0 {
				return "", false, nil
			}
			break
		}
		if len(lines) == 0 && isExit(line) {
			return "", false, nil
		}
		if !multiline {
			return line, true, nil
		}
		if strings.TrimSpace(line) == "" {
			if len(lines) == 0 {
				continue
			}
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), true, nil
}

// readLine returns the next line without its terminator. eof is true only
// when no more input remains.
func (s *Shell) readLine() (line string, eof bool, err error) {
	line, err = s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			return "", true, nil
		}
	}
	return strings.TrimRight(line, "\r\n"), false, nil
}

func isExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), ExitWord)
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) render(style lipgloss.Style, text string) string {
	if !s.tui {
		return text
	}
	return style.Render(text)
}
