package matcher

import (
	"github.com/nathoo/questline/engine/parser"
	"github.com/nathoo/questline/types"
)

// MatchesRequirement checks if a parsed command structurally satisfies a
// requirement.
func MatchesRequirement(cmd types.ParsedCommand, req types.Requirement) bool {
	switch req.Kind {
	case types.RequireNavigation:
		// Direction is required and must match.
		return cmd.Action == parser.NavigateAction && cmd.Direction == req.Direction

	case types.RequireAction:
		if cmd.Action == "" || cmd.Action != req.Action {
			return false
		}
		// If the requirement names an object, it must match the parsed one.
		if req.Object != "" && cmd.Object != req.Object {
			return false
		}
		return true
	}

	return false
}
