// Package parser converts player input into ParsedCommand structs using the
// navigation and action rules of a bundle.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"log/slog"
	"strings"

	"github.com/nathoo/questline/engine/normalize"
	"github.com/nathoo/questline/engine/pattern"
	"github.com/nathoo/questline/types"
)

// NavigateAction is the action reported for every navigation command.
const NavigateAction = "navigate"

// DirectionGroup is the named group navigation patterns must capture.
const DirectionGroup = "direction"

// Option configures a Parse call.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger logs pattern evaluation failures to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Parse normalizes input and classifies it. Navigation rules take priority
// over action rules; within each pass the first declared rule wins.
// Input nothing recognises yields a command with only Raw set.
func Parse(input string, cmds types.Commands, opts ...Option) types.ParsedCommand {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	normalized := normalize.Normalize(input)

	for _, p := range cmds.Navigation.Patterns {
		dir, ok, err := p.Group(normalized, DirectionGroup)
		if err != nil {
			o.warn(p, err)
			continue
		}
		if !ok || dir == "" {
			continue
		}
		return types.ParsedCommand{
			Action:    NavigateAction,
			Direction: ResolveDirection(dir, cmds.Navigation.Synonyms),
			Raw:       normalized,
		}
	}

	for _, rule := range cmds.Actions {
		ok, err := rule.Pattern.MatchString(normalized)
		if err != nil {
			o.warn(rule.Pattern, err)
			continue
		}
		if !ok {
			continue
		}
		return types.ParsedCommand{
			Action: rule.Name,
			Object: ExtractObject(normalized, rule.Objects),
			Raw:    normalized,
		}
	}

	return types.ParsedCommand{Raw: normalized}
}

// ResolveDirection maps a captured direction to its canonical name. Aliases
// are checked first, then canonical names; unknown directions come back
// lower-cased as captured.
func ResolveDirection(direction string, synonyms []types.Synonym) string {
	direction = strings.ToLower(strings.TrimSpace(direction))

	for _, syn := range synonyms {
		for _, alias := range syn.Aliases {
			if strings.EqualFold(alias, direction) {
				return syn.Canonical
			}
		}
	}
	for _, syn := range synonyms {
		if strings.EqualFold(syn.Canonical, direction) {
			return syn.Canonical
		}
	}

	return direction
}

// ExtractObject returns the first declared object that appears in the
// normalized text as whole words, or "" if none does. Objects are
// normalized before comparison, so "lâmpada" matches "pegue a lampada".
func ExtractObject(normalized string, objects []string) string {
	padded := " " + strings.Join(strings.Fields(normalized), " ") + " "
	for _, obj := range objects {
		want := strings.Join(strings.Fields(normalize.Normalize(obj)), " ")
		if want == "" {
			continue
		}
		if strings.Contains(padded, " "+want+" ") {
			return obj
		}
	}
	return ""
}

func (o options) warn(p pattern.Pattern, err error) {
	if o.logger == nil {
		return
	}
	o.logger.Warn("pattern_eval_failed",
		slog.String("pattern", p.Source()),
		slog.Any("error", err),
	)
}
