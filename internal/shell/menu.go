package shell

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// menuModel is the bubbletea mode picker.
type menuModel struct {
	provider string
	cursor   int
	chosen   bool
	quitting bool
	styles   *Styles
}

func newMenuModel(provider string) menuModel {
	return menuModel{provider: provider, styles: newStyles()}
}

// Init implements tea.Model.
func (m menuModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m menuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(Modes)-1 {
			m.cursor++
		}
		return m, nil

	case "home", "g":
		m.cursor = 0
		return m, nil

	case "end", "G":
		m.cursor = len(Modes) - 1
		return m, nil

	case "enter", " ":
		m.chosen = true
		return m, tea.Quit

	case "1", "2", "3", "4", "5":
		m.cursor = int(msg.String()[0] - '1')
		m.chosen = true
		return m, tea.Quit
	}
	return m, nil
}

// selected returns the picked mode; quitting maps to ModeExit.
func (m menuModel) selected() Mode {
	if m.quitting || !m.chosen {
		return ModeExit
	}
	return Modes[m.cursor]
}

// View implements tea.Model.
func (m menuModel) View() string {
	if m.chosen || m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("What would you like to do?"))
	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("Provider: " + m.provider))
	b.WriteString("\n\n")

	for i, mode := range Modes {
		line := fmt.Sprintf("%d. %s", i+1, mode.Title())
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(m.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.HelpKey.Render("↑/↓"))
	b.WriteString(m.styles.HelpText.Render(" move  "))
	b.WriteString(m.styles.HelpKey.Render("enter"))
	b.WriteString(m.styles.HelpText.Render(" select  "))
	b.WriteString(m.styles.HelpKey.Render("q"))
	b.WriteString(m.styles.HelpText.Render(" quit"))
	b.WriteString("\n")
	return b.String()
}

// runMenu shows the bubbletea picker on in/out and returns the chosen mode.
func runMenu(provider string, in io.Reader, out io.Writer) (Mode, error) {
	p := tea.NewProgram(newMenuModel(provider), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return ModeExit, fmt.Errorf("run menu: %w", err)
	}
	m, ok := final.(menuModel)
	if !ok {
		return ModeExit, nil
	}
	return m.selected(), nil
}
