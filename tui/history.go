// Package tui provides a Bubble Tea terminal UI for the questline engine.
package tui

import "strings"

// History is a fixed-capacity ring of submitted answers with cursor-based
// navigation. Once full, each push overwrites the oldest entry.
type History struct {
	ring   []string
	start  int // index of the oldest entry
	size   int
	cursor int // -1 = not navigating, 0..size-1 = age order position
}

// NewHistory creates a history holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{ring: make([]string, capacity), cursor: -1}
}

// Seed fills the history from a session command log, oldest first, so a
// loaded game can recall the answers that led to it. Blank lines are
// skipped.
func (h *History) Seed(log []string) {
	for _, cmd := range log {
		if strings.TrimSpace(cmd) != "" {
			h.Push(cmd)
		}
	}
	h.cursor = -1
}

// Push adds a command. Consecutive duplicates are skipped.
func (h *History) Push(cmd string) {
	if h.size > 0 && h.at(h.size-1) == cmd {
		return
	}
	if h.size < len(h.ring) {
		h.ring[(h.start+h.size)%len(h.ring)] = cmd
		h.size++
		return
	}
	h.ring[h.start] = cmd
	h.start = (h.start + 1) % len(h.ring)
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return h.size
}

// Prev returns the previous (older) entry, stopping at the oldest.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if h.size == 0 {
		return "", false
	}
	if h.cursor == -1 {
		h.cursor = h.size - 1
	} else if h.cursor > 0 {
		h.cursor--
	}
	return h.at(h.cursor), true
}

// Next returns the next (newer) entry. Returns ("", false) when moving past
// the newest entry, back to fresh input.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= h.size {
		h.cursor = -1
		return "", false
	}
	return h.at(h.cursor), true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.cursor = -1
}

// at returns the entry at age position i, 0 being the oldest.
func (h *History) at(i int) string {
	return h.ring[(h.start+i)%len(h.ring)]
}
