// Package types defines the shared data structures for the questline engine.
// This package contains only type definitions: no logic, no methods.
package types

import "github.com/nathoo/questline/engine/pattern"

// ParsedCommand is the structured reading of one player utterance.
// Empty fields are absent. At most one of Direction and Object is set.
type ParsedCommand struct {
	Action    string
	Direction string
	Object    string
	Raw       string // normalized input that produced the command
}

// Method names the matcher tier that produced a verdict.
type Method string

const (
	MethodExact      Method = "exact"
	MethodPattern    Method = "pattern"
	MethodSimilarity Method = "similarity"
)

// MatchResult is the matcher's verdict for one answer.
type MatchResult struct {
	Matched    bool
	Confidence float64 // in [0, 1]
	Method     Method
}

// RequirementKind distinguishes navigation from action requirements.
type RequirementKind string

const (
	RequireNavigation RequirementKind = "navigation"
	RequireAction     RequirementKind = "action"
)

// Requirement is the structured condition that solves a chapter.
type Requirement struct {
	Kind      RequirementKind
	Direction string // navigation only
	Action    string // action only
	Object    string // action only, optional
}

// Synonym maps a canonical direction to its accepted aliases.
type Synonym struct {
	Canonical string
	Aliases   []string
}

// NavigationRule recognises movement. Patterns are tried in order and must
// expose a named group "direction".
type NavigationRule struct {
	Patterns []pattern.Pattern
	Synonyms []Synonym
}

// ActionRule recognises one named action and the objects it may apply to.
type ActionRule struct {
	Name    string
	Pattern pattern.Pattern
	Objects []string
}

// Commands is the rule set of a bundle. Actions keep declaration order.
type Commands struct {
	Navigation NavigationRule
	Actions    []ActionRule
}

// Chapter is one stage of the narrative.
type Chapter struct {
	ID           string
	Text         string
	Requirement  *Requirement      // nil means legacy answers
	Answers      []string          // legacy accepted answers
	Interactions map[string]string // normalized answer → flavour reply
}

// Bundle is the per-language configuration a session plays against.
// It is immutable once loaded.
type Bundle struct {
	Language string
	Title    string
	Info     string
	Commands Commands
	Chapters map[string]Chapter
	Order    []string // chapter IDs in play order
	Messages map[string]string
}

// Session holds one player's progression state.
type Session struct {
	Language string   `json:"language"`
	Chapter  string   `json:"chapter"`
	Attempts int      `json:"attempts"`
	Items    []string `json:"items"`
	Finished bool     `json:"finished"`
	Turn     int      `json:"turn"`
	Log      []string `json:"log"`
}

// Result is the output of a single engine step.
type Result struct {
	Output    []string
	Parsed    ParsedCommand
	Match     *MatchResult // nil when no matching was attempted
	Advanced  bool
	Completed bool
	GameOver  bool
}
