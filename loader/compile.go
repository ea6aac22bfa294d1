package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questline/engine/normalize"
	"github.com/nathoo/questline/engine/pattern"
	"github.com/nathoo/questline/types"
)

// rawBundle is the format-independent form of a bundle before compilation.
// Lua and YAML/JSON sources both produce one.
type rawBundle struct {
	declared bool

	language string
	title    string
	info     string

	navPatterns []string
	synonyms    []types.Synonym
	actions     []rawAction
	chapters    []rawChapter
	messages    map[string]string
}

type rawAction struct {
	name    string
	pattern string
	objects []string
}

type rawChapter struct {
	id           string
	text         string
	requires     *rawRequirement
	answers      []string
	interactions map[string]string
}

type rawRequirement struct {
	kind      string
	direction string
	action    string
	object    string
}

func newRawBundle() *rawBundle {
	return &rawBundle{messages: map[string]string{}}
}

// compile converts raw declarations into an immutable Bundle. Pattern
// compilation failures are errors; everything else is left to validate.
func compile(raw *rawBundle) (*types.Bundle, error) {
	b := &types.Bundle{
		Language: raw.language,
		Title:    raw.title,
		Info:     raw.info,
		Chapters: map[string]types.Chapter{},
		Messages: map[string]string{},
	}
	for k, v := range raw.messages {
		b.Messages[k] = v
	}

	for _, src := range raw.navPatterns {
		p, err := pattern.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("navigation: %w", err)
		}
		b.Commands.Navigation.Patterns = append(b.Commands.Navigation.Patterns, p)
	}
	b.Commands.Navigation.Synonyms = raw.synonyms

	for _, ra := range raw.actions {
		p, err := pattern.Compile(ra.pattern)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", ra.name, err)
		}
		b.Commands.Actions = append(b.Commands.Actions, types.ActionRule{
			Name:    ra.name,
			Pattern: p,
			Objects: ra.objects,
		})
	}

	// Order keeps duplicates so validate can report them.
	for _, rc := range raw.chapters {
		ch := types.Chapter{
			ID:      rc.id,
			Text:    rc.text,
			Answers: rc.answers,
		}
		if ch.Text == "" {
			ch.Text = raw.messages[rc.id]
		}
		if rc.requires != nil {
			ch.Requirement = &types.Requirement{
				Kind:      types.RequirementKind(rc.requires.kind),
				Direction: rc.requires.direction,
				Action:    rc.requires.action,
				Object:    rc.requires.object,
			}
		}
		if len(rc.interactions) > 0 {
			ch.Interactions = map[string]string{}
			for answer, reply := range rc.interactions {
				ch.Interactions[normalize.Normalize(answer)] = reply
			}
		}
		b.Chapters[ch.ID] = ch
		b.Order = append(b.Order, ch.ID)
	}

	return b, nil
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToStrings converts the array part of a Lua table to strings,
// skipping non-string elements.
func tableToStrings(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// getAnswers reads a chapter's accepted answers, given either as a list or
// as a single string.
func getAnswers(tbl *lua.LTable) []string {
	if s, ok := tbl.RawGetString("answers").(lua.LString); ok {
		return []string{string(s)}
	}
	return tableToStrings(getTable(tbl, "answers"))
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// compileRequirement reads a table built by Go or Do.
func compileRequirement(tbl *lua.LTable) *rawRequirement {
	if tbl == nil {
		return nil
	}
	return &rawRequirement{
		kind:      getString(tbl, "type"),
		direction: getString(tbl, "direction"),
		action:    getString(tbl, "action"),
		object:    getString(tbl, "object"),
	}
}
