// Package matcher decides whether a player's answer solves the current
// chapter. Three tiers are tried in order and the first success wins:
// exact structural match, pattern match, and fuzzy similarity against the
// canonical answer. Chapters without a structured requirement fall back to
// their legacy answer list.
package matcher

import (
	"log/slog"

	"github.com/nathoo/questline/engine/canonical"
	"github.com/nathoo/questline/engine/normalize"
	"github.com/nathoo/questline/engine/parser"
	"github.com/nathoo/questline/engine/pattern"
	"github.com/nathoo/questline/engine/similarity"
	"github.com/nathoo/questline/types"
)

// DefaultThreshold is the minimum similarity score accepted as a match.
const DefaultThreshold = 0.75

// PatternConfidence is reported for every pattern-tier match.
const PatternConfidence = 0.9

// Config tunes a Matcher.
type Config struct {
	// Threshold in (0, 1]. Anything else selects DefaultThreshold.
	Threshold float64
}

// Matcher is stateless apart from its configuration and safe for
// concurrent use.
type Matcher struct {
	threshold float64
	logger    *slog.Logger
}

// New creates a Matcher. A nil logger logs to slog.Default().
func New(cfg Config, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold, logger: logger}
}

// Threshold returns the similarity threshold in effect.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match checks answer against the chapter using the bundle's rules.
func (m *Matcher) Match(answer string, ch types.Chapter, cmds types.Commands) types.MatchResult {
	normalized := normalize.Normalize(answer)

	if ch.Requirement == nil {
		m.logger.Debug("legacy_match",
			slog.String("chapter", ch.ID))
		return m.matchLegacy(normalized, ch)
	}
	req := *ch.Requirement

	parsed := parser.Parse(answer, cmds, parser.WithLogger(m.logger))
	if MatchesRequirement(parsed, req) {
		m.logger.Debug("exact_match",
			slog.String("chapter", ch.ID),
			slog.String("answer", normalized))
		return types.MatchResult{Matched: true, Confidence: 1, Method: types.MethodExact}
	}

	if res := m.matchPattern(normalized, req, cmds); res.Matched {
		m.logger.Debug("pattern_match",
			slog.String("chapter", ch.ID),
			slog.String("answer", normalized))
		return res
	}

	return m.matchSimilarity(normalized, canonical.ForRequirement(req), ch.ID)
}

// matchPattern tests the answer against the patterns tied to the
// requirement: all navigation patterns, or the required action's pattern.
func (m *Matcher) matchPattern(normalized string, req types.Requirement, cmds types.Commands) types.MatchResult {
	for _, p := range candidatePatterns(req, cmds) {
		ok, err := p.MatchString(normalized)
		if err != nil {
			m.logger.Warn("pattern_eval_failed",
				slog.String("pattern", p.Source()),
				slog.Any("error", err))
			continue
		}
		if ok {
			return types.MatchResult{Matched: true, Confidence: PatternConfidence, Method: types.MethodPattern}
		}
	}
	return types.MatchResult{Matched: false, Confidence: 0, Method: types.MethodPattern}
}

func candidatePatterns(req types.Requirement, cmds types.Commands) []pattern.Pattern {
	switch req.Kind {
	case types.RequireNavigation:
		return cmds.Navigation.Patterns
	case types.RequireAction:
		for _, rule := range cmds.Actions {
			if rule.Name == req.Action {
				return []pattern.Pattern{rule.Pattern}
			}
		}
	}
	return nil
}

// matchSimilarity is the terminal tier and always produces a verdict.
func (m *Matcher) matchSimilarity(normalized, expected, chapterID string) types.MatchResult {
	score := similarity.Similarity(expected, normalized)
	m.logger.Debug("similarity_match",
		slog.String("chapter", chapterID),
		slog.String("answer", normalized),
		slog.String("canonical", expected),
		slog.Float64("score", score),
		slog.Float64("threshold", m.threshold))
	return types.MatchResult{
		Matched:    score >= m.threshold,
		Confidence: score,
		Method:     types.MethodSimilarity,
	}
}

func (m *Matcher) matchLegacy(normalized string, ch types.Chapter) types.MatchResult {
	if len(ch.Answers) == 0 {
		m.logger.Debug("legacy_answers_missing",
			slog.String("chapter", ch.ID))
		return types.MatchResult{Matched: false, Confidence: 0, Method: types.MethodExact}
	}

	for _, accepted := range ch.Answers {
		if normalize.Normalize(accepted) == normalized {
			return types.MatchResult{Matched: true, Confidence: 1, Method: types.MethodExact}
		}
	}

	return m.matchSimilarity(normalized, ch.Answers[0], ch.ID)
}
