package shell

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(m menuModel, keys ...tea.KeyMsg) (menuModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(menuModel)
	}
	return m, cmd
}

func TestMenu_Navigation(t *testing.T) {
	m := newMenuModel("fake")
	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	m, _ = press(m, down, down)
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}

	m, _ = press(m, up, up, up)
	if m.cursor != 0 {
		t.Errorf("cursor should stop at 0, got %d", m.cursor)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if m.cursor != len(Modes)-1 {
		t.Errorf("end key: cursor = %d", m.cursor)
	}

	m, _ = press(m, down)
	if m.cursor != len(Modes)-1 {
		t.Errorf("cursor should stop at last entry, got %d", m.cursor)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if m.cursor != len(Modes)-2 {
		t.Errorf("k should move up, got %d", m.cursor)
	}
}

func TestMenu_EnterSelects(t *testing.T) {
	m := newMenuModel("fake")

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("enter should quit the program")
	}
	if got := m.selected(); got != ModeSummarize {
		t.Errorf("selected() = %v, want summarize", got)
	}
	if m.View() != "" {
		t.Error("view should clear after selection")
	}
}

func TestMenu_NumberSelects(t *testing.T) {
	m := newMenuModel("fake")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})

	if got := m.selected(); got != ModeMath {
		t.Errorf("selected() = %v, want math", got)
	}
}

func TestMenu_QuitMeansExit(t *testing.T) {
	m := newMenuModel("fake")

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	if cmd == nil {
		t.Fatal("q should quit the program")
	}
	if got := m.selected(); got != ModeExit {
		t.Errorf("selected() = %v, want exit", got)
	}
}

func TestMenu_View(t *testing.T) {
	m := newMenuModel("local-server")
	view := m.View()

	if !strings.Contains(view, "Provider: local-server") {
		t.Error("view should show the provider")
	}
	for _, mode := range Modes {
		if !strings.Contains(view, mode.Title()) {
			t.Errorf("view missing %q", mode.Title())
		}
	}
	if !strings.Contains(view, "> 1. Ask a question") {
		t.Error("first entry should be highlighted")
	}
}
