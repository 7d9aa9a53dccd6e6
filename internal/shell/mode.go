// Package shell implements the interactive study assistant loop: a mode menu,
// text collection and prompt building on top of a resolved provider.
package shell

import (
	"fmt"
	"strings"
)

// Mode selects how user text is turned into a prompt.
type Mode int

const (
	ModeQuestion Mode = iota
	ModeSummarize
	ModeParaphrase
	ModeMath
	ModeExit
)

// Modes lists the menu entries in display order.
var Modes = []Mode{ModeQuestion, ModeSummarize, ModeParaphrase, ModeMath, ModeExit}

func (m Mode) String() string {
	switch m {
	case ModeQuestion:
		return "question"
	case ModeSummarize:
		return "summarize"
	case ModeParaphrase:
		return "paraphrase"
	case ModeMath:
		return "math"
	case ModeExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Title is the menu label for the mode.
func (m Mode) Title() string {
	switch m {
	case ModeQuestion:
		return "Ask a question"
	case ModeSummarize:
		return "Summarize text"
	case ModeParaphrase:
		return "Paraphrase text"
	case ModeMath:
		return "Solve a math problem"
	case ModeExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

// ParseMode accepts a mode name or its 1-based menu number.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, m := range Modes {
		if s == m.String() || s == fmt.Sprint(i+1) {
			return m, nil
		}
	}
	switch s {
	case "q", "quit":
		return ModeExit, nil
	case "summary":
		return ModeSummarize, nil
	}
	return 0, fmt.Errorf("unknown mode %q (choose %s)", s, modeNames())
}

func modeNames() string {
	names := make([]string, 0, len(Modes))
	for _, m := range Modes {
		if m == ModeExit {
			continue
		}
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

// BuildPrompt wraps text in the instruction template for the mode.
// Questions are sent verbatim.
func BuildPrompt(m Mode, text string) string {
	switch m {
	case ModeSummarize:
		return "Summarize the following text for a student. Keep the key points and use plain language.\n\n" + text
	case ModeParaphrase:
		return "Paraphrase the following text in different words while keeping its meaning.\n\n" + text
	case ModeMath:
		return "Solve the following math problem step by step and state the final answer clearly.\n\n" + text
	default:
		return text
	}
}
