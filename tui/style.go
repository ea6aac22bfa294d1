package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/questline/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusWarn = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	stylePrompt = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Italic(true)

	styleReply = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	styleFailure = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindPrompt
	kindReply // interaction replies and taken items
	kindSuccess
	kindFailure
	kindSystem
	kindTrace
	kindInput // echoed player input
)

// classifyResult assigns a kind to each output line of a step. The engine
// reports what happened, so only the prompt and the chapter's flavour reply
// need a text comparison. reply is "" when the answer had none.
func classifyResult(result types.Result, prompt, reply string) []lineKind {
	kinds := make([]lineKind, len(result.Output))
	last := len(result.Output) - 1
	for i, line := range result.Output {
		switch {
		case line == prompt:
			kinds[i] = kindPrompt
		case result.Completed:
			kinds[i] = kindSuccess
		case result.GameOver:
			kinds[i] = kindFailure
		case result.Advanced:
			kinds[i] = kindNarrative
		case i == last && result.Match != nil && !result.Match.Matched && line != reply:
			kinds[i] = kindFailure
		default:
			kinds[i] = kindReply
		}
	}
	return kinds
}

// classifyLine styles lines that do not come from a step: the opening
// chapter and meta-command output.
func classifyLine(line, prompt string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case line == prompt:
		return kindPrompt
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindPrompt:
		return stylePrompt.Render(line)
	case kindReply:
		return styleReply.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindFailure:
		return styleFailure.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	case kindInput:
		return stylePlayerInput.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
