// Package state manages a player's mutable session against an immutable
// bundle: current chapter, attempt counter and collected items.
package state

import "github.com/nathoo/questline/types"

// NewSession creates a fresh session positioned at the bundle's first chapter.
func NewSession(b *types.Bundle) *types.Session {
	s := &types.Session{
		Language: b.Language,
		Items:    []string{},
		Log:      []string{},
	}
	s.Chapter = FirstChapter(b)
	return s
}

// Reset returns the session to the first chapter with an empty inventory.
// The language and command log are kept.
func Reset(s *types.Session, b *types.Bundle) {
	s.Chapter = FirstChapter(b)
	s.Attempts = 0
	s.Items = []string{}
	s.Finished = false
}

// FirstChapter returns the ID of the first chapter in play order, or "".
func FirstChapter(b *types.Bundle) string {
	if len(b.Order) == 0 {
		return ""
	}
	return b.Order[0]
}

// NextChapter returns the chapter that follows current in play order.
// The bool is false when current is the last chapter or unknown.
func NextChapter(b *types.Bundle, current string) (string, bool) {
	for i, id := range b.Order {
		if id == current {
			if i+1 < len(b.Order) {
				return b.Order[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// CurrentChapter returns the session's chapter definition.
func CurrentChapter(s *types.Session, b *types.Bundle) (types.Chapter, bool) {
	ch, ok := b.Chapters[s.Chapter]
	return ch, ok
}

// ChapterNumber returns the 1-based position of the current chapter, or 0.
func ChapterNumber(s *types.Session, b *types.Bundle) int {
	for i, id := range b.Order {
		if id == s.Chapter {
			return i + 1
		}
	}
	return 0
}

// HasItem returns true if the player has collected the given item.
func HasItem(s *types.Session, item string) bool {
	for _, it := range s.Items {
		if it == item {
			return true
		}
	}
	return false
}

// AddItem adds item to the inventory. Returns false if it was already there.
func AddItem(s *types.Session, item string) bool {
	if item == "" || HasItem(s, item) {
		return false
	}
	s.Items = append(s.Items, item)
	return true
}

// RemainingAttempts returns how many attempts are left out of max.
func RemainingAttempts(s *types.Session, max int) int {
	return max - s.Attempts
}
