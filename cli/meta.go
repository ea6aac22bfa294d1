package cli

import (
	"fmt"
	"strings"

	"github.com/nathoo/questline/engine"
	"github.com/nathoo/questline/engine/save"
	"github.com/nathoo/questline/engine/state"
	"github.com/nathoo/questline/types"
)

// Line is one line of meta-command output. System lines are status
// messages rather than story text.
type Line struct {
	Text   string
	System bool
}

// MetaResult is what a meta-command did.
type MetaResult struct {
	Lines     []Line
	Quit      bool
	Trace     bool           // trace setting after the command
	Restarted bool           // the story went back to its first chapter
	Loaded    *save.SaveData // non-nil after a successful /load
}

// Meta runs the slash commands shared by every front end.
type Meta struct {
	Engine  *engine.Engine
	Bundles BundleSource
	SaveDir string

	// HelpFooter is appended to /help output.
	HelpFooter []string
}

// Dispatch runs one meta-command. trace is the current trace setting.
func (m *Meta) Dispatch(input string, trace bool) MetaResult {
	parts := strings.Fields(input)
	r := MetaResult{Trace: trace}
	if len(parts) == 0 {
		return r
	}
	cmd := strings.ToLower(parts[0])
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		r.system("Goodbye.")
		r.Quit = true

	case "/start", "/restart":
		r.Restarted = true
		r.text(m.Engine.Restart()...)

	case "/chapter":
		r.text(m.Engine.Intro()...)

	case "/items":
		r.text(m.Engine.Items()...)

	case "/language":
		m.language(&r, arg)

	case "/info":
		if info := m.Engine.Bundle.Info; info != "" {
			r.text(info)
		} else {
			r.system(m.Engine.Bundle.Title)
		}

	case "/save":
		m.save(&r, arg)

	case "/load":
		m.load(&r, arg)

	case "/help":
		r.text(helpLines...)
		r.text(m.HelpFooter...)

	case "/state":
		m.state(&r)

	case "/trace":
		r.Trace = !trace
		if r.Trace {
			r.system("Trace output enabled.")
		} else {
			r.system("Trace output disabled.")
		}

	default:
		r.system(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return r
}

var helpLines = []string{
	"System:",
	"  /restart          — Start the story over",
	"  /chapter          — Show the current chapter again",
	"  /items            — List collected items",
	"  /language [code]  — List languages or switch to one",
	"  /info             — About this story",
	"  /save [name]      — Save game (default: quicksave)",
	"  /load [name]      — Load game (default: quicksave)",
	"  /state            — Debug: dump current session",
	"  /trace            — Toggle debug trace output",
	"  /quit             — Exit game",
	"  /help             — Show this help",
	"",
	"Answer each chapter in your own words, for example \"go north\" or",
	"\"open the mailbox\". Close spellings count.",
}

func (m *Meta) language(r *MetaResult, lang string) {
	if lang == "" {
		langs, err := m.Bundles.Languages()
		if err != nil {
			r.system(fmt.Sprintf("Cannot list languages: %v", err))
			return
		}
		current := m.Engine.Session.Language
		for _, l := range langs {
			marker := "  "
			if l == current {
				marker = "* "
			}
			r.text(marker + l)
		}
		r.system("Use /language <code> to switch.")
		return
	}

	b, err := m.Bundles.Bundle(strings.ToLower(lang))
	if err != nil {
		r.system(fmt.Sprintf("Language change failed: %v", err))
		return
	}
	m.Engine.SwitchBundle(b)
	r.system(fmt.Sprintf("Language changed to %s.", b.Language))
	r.text(m.Engine.Intro()...)
}

func (m *Meta) save(r *MetaResult, name string) {
	if _, err := save.WriteFile(m.SaveDir, name, m.Engine.Session, m.Engine.Bundle); err != nil {
		r.system(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if name == "" {
		name = save.DefaultName
	}
	r.system(fmt.Sprintf("Game saved to %s.", name))
}

func (m *Meta) load(r *MetaResult, name string) {
	sd, err := save.ReadFile(m.SaveDir, name)
	if err == nil {
		err = save.Check(sd, m.Engine.Bundle)
	}
	if err != nil {
		r.system(fmt.Sprintf("Load failed: %v", err))
		return
	}

	save.ApplySave(m.Engine.Session, sd)
	r.Loaded = sd
	if name == "" {
		name = save.DefaultName
	}
	r.system(fmt.Sprintf("Game loaded from %s (turn %d).", name, sd.Turn))
	r.text(m.Engine.Intro()...)
}

func (m *Meta) state(r *MetaResult) {
	s := m.Engine.Session
	r.system(fmt.Sprintf("Language: %s", s.Language))
	r.system(fmt.Sprintf("Chapter: %s (%d of %d)", s.Chapter,
		state.ChapterNumber(s, m.Engine.Bundle), len(m.Engine.Bundle.Order)))
	r.system(fmt.Sprintf("Attempts: %d used, %d left", s.Attempts, m.Engine.Remaining()))
	r.system(fmt.Sprintf("Items: %v", s.Items))
	r.system(fmt.Sprintf("Turn: %d", s.Turn))
	if s.Finished {
		r.system("Finished: yes")
	}
}

func (r *MetaResult) text(lines ...string) {
	for _, l := range lines {
		r.Lines = append(r.Lines, Line{Text: l})
	}
}

func (r *MetaResult) system(text string) {
	r.Lines = append(r.Lines, Line{Text: text, System: true})
}

// TraceLines describes how an answer was parsed and matched. hint is the
// canonical answer of the chapter the answer was given in.
func TraceLines(eng *engine.Engine, result types.Result, hint string) []string {
	p := result.Parsed
	lines := []string{
		fmt.Sprintf("[trace] parsed: action=%q direction=%q object=%q", p.Action, p.Direction, p.Object),
	}
	if r := result.Match; r != nil {
		lines = append(lines, fmt.Sprintf("[trace] match: method=%s confidence=%s%% matched=%t (threshold %s%%)",
			r.Method, engine.FormatPercent(r.Confidence), r.Matched, engine.FormatPercent(eng.Threshold())))
	}
	if hint != "" {
		lines = append(lines, fmt.Sprintf("[trace] canonical: %q", hint))
	}
	return lines
}
