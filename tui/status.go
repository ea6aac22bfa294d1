package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/questline/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// language, chapter progress, attempts left and collected items.
func (m Model) renderStatusBar() string {
	s := m.engine.Session
	b := m.engine.Bundle

	left := fmt.Sprintf(" %s | Chapter %s (%d/%d)",
		strings.ToUpper(s.Language), s.Chapter, state.ChapterNumber(s, b), len(b.Order))

	remaining := m.engine.Remaining()
	attempts := fmt.Sprintf("Tries: %d/%d ", remaining, m.engine.MaxAttempts())
	if s.Finished {
		attempts = "Finished "
	}

	// Show item names if they fit, otherwise just the count.
	right := attempts
	if n := len(s.Items); n > 0 {
		candidate := fmt.Sprintf("Items: %s | %s", strings.Join(s.Items, ", "), attempts)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Items: %d | %s", n, attempts)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	style := styleStatusBar
	if !s.Finished && remaining <= 1 {
		style = styleStatusWarn
	}
	return style.Width(m.width).Render(bar)
}
