package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/questline/engine/parser"
	"github.com/nathoo/questline/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks a compiled bundle for consistency. Warnings are returned
// even when validation succeeds; the error is a *ValidationError.
func validate(b *types.Bundle) ([]string, error) {
	ve := &ValidationError{}

	if b.Language == "" {
		ve.Errors = append(ve.Errors, "Bundle.language is required")
	}
	if len(b.Order) == 0 {
		ve.Errors = append(ve.Errors, "at least one chapter is required")
	}

	validateCommands(b.Commands, ve)

	declared := map[string]bool{}
	for _, a := range b.Commands.Actions {
		declared[a.Name] = true
	}

	seen := map[string]bool{}
	for _, id := range b.Order {
		if id == "" {
			ve.Errors = append(ve.Errors, "chapter with empty ID")
			continue
		}
		if seen[id] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("chapter %q is defined more than once", id))
			continue
		}
		seen[id] = true
		validateChapter(b.Chapters[id], declared, ve)
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateCommands(cmds types.Commands, ve *ValidationError) {
	for _, p := range cmds.Navigation.Patterns {
		if !p.HasGroup(parser.DirectionGroup) {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"navigation pattern %q has no %q group and can only satisfy the pattern tier",
				p.Source(), parser.DirectionGroup))
		}
	}

	for _, syn := range cmds.Navigation.Synonyms {
		if syn.Canonical == "" {
			ve.Errors = append(ve.Errors, "synonym with empty canonical direction")
		}
	}

	names := map[string]bool{}
	for _, a := range cmds.Actions {
		if a.Name == "" {
			ve.Errors = append(ve.Errors, "action with empty name")
			continue
		}
		if names[a.Name] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("action %q is declared more than once", a.Name))
		}
		names[a.Name] = true
		if a.Pattern.Source() == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("action %q has no pattern", a.Name))
		}
	}
}

func validateChapter(ch types.Chapter, declared map[string]bool, ve *ValidationError) {
	if ch.Requirement == nil {
		if len(ch.Answers) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"chapter %q has neither a requirement nor answers and cannot be solved", ch.ID))
		}
		return
	}

	req := ch.Requirement
	switch req.Kind {
	case types.RequireNavigation:
		if req.Direction == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"chapter %q navigation requirement has no direction", ch.ID))
		}
	case types.RequireAction:
		if req.Action == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"chapter %q action requirement has no action", ch.ID))
		} else if !declared[req.Action] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"chapter %q requires undeclared action %q", ch.ID, req.Action))
		}
	default:
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"chapter %q has unknown requirement type %q", ch.ID, req.Kind))
	}
}
