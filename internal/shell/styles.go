package shell

import "github.com/charmbracelet/lipgloss"

// Styles holds lipgloss styles for shell output.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Answer   lipgloss.Style
	HelpKey  lipgloss.Style
	HelpText lipgloss.Style
}

func newStyles() *Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#666", Dark: "#888"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	blue := lipgloss.AdaptiveColor{Light: "#0366d6", Dark: "#58a6ff"}

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight),

		Label: lipgloss.NewStyle().
			Foreground(subtle),

		Muted: lipgloss.NewStyle().
			Foreground(subtle),

		Selected: lipgloss.NewStyle().
			Background(highlight).
			Foreground(lipgloss.Color("#fff")).
			Bold(true),

		Normal: lipgloss.NewStyle(),

		Answer: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),

		HelpKey: lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true),

		HelpText: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
