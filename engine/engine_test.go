package engine

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/nathoo/questline/engine/matcher"
	"github.com/nathoo/questline/engine/pattern"
	"github.com/nathoo/questline/types"
)

// testBundle builds a three chapter story: a navigation chapter, an action
// chapter and a legacy chapter.
func testBundle() *types.Bundle {
	return &types.Bundle{
		Language: "en",
		Title:    "Test Game",
		Commands: types.Commands{
			Navigation: types.NavigationRule{
				Patterns: []pattern.Pattern{
					pattern.MustCompile(`^(?:go|walk)\s+(?<direction>\w+)$`),
					pattern.MustCompile(`^(?<direction>n|s|e|w|north|south|east|west)$`),
				},
				Synonyms: []types.Synonym{
					{Canonical: "north", Aliases: []string{"n"}},
					{Canonical: "south", Aliases: []string{"s"}},
				},
			},
			Actions: []types.ActionRule{
				{Name: "take", Pattern: pattern.MustCompile(`^(take|get|grab)\b`), Objects: []string{"lamp", "leaflet"}},
				{Name: "open", Pattern: pattern.MustCompile(`^open\b`), Objects: []string{"mailbox"}},
				{Name: "read", Pattern: pattern.MustCompile(`^read\b`), Objects: []string{"leaflet"}},
			},
		},
		Chapters: map[string]types.Chapter{
			"I": {
				ID:           "I",
				Text:         "West of House.",
				Requirement:  &types.Requirement{Kind: types.RequireNavigation, Direction: "north"},
				Interactions: map[string]string{"look": "An open field."},
			},
			"II": {
				ID:          "II",
				Text:        "North of House.",
				Requirement: &types.Requirement{Kind: types.RequireAction, Action: "open", Object: "mailbox"},
			},
			"III": {
				ID:      "III",
				Text:    "The mailbox is open.",
				Answers: []string{"read leaflet"},
			},
		},
		Order: []string{"I", "II", "III"},
		Messages: map[string]string{
			MsgTryAgain: "Wrong (#percent%). #attempts left.",
			MsgTaken:    "You took the #item.",
		},
	}
}

func newTestEngine(t *testing.T, maxAttempts int) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testBundle(), nil, Options{
		Matcher:     matcher.New(matcher.Config{}, logger),
		MaxAttempts: maxAttempts,
		Logger:      logger,
	})
}

func hasLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestNew_Defaults(t *testing.T) {
	e := New(testBundle(), nil, Options{})
	if e.Session.Chapter != "I" {
		t.Errorf("expected first chapter, got %q", e.Session.Chapter)
	}
	if e.MaxAttempts() != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", e.MaxAttempts(), DefaultMaxAttempts)
	}
	if e.Threshold() != matcher.DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", e.Threshold(), matcher.DefaultThreshold)
	}
}

func TestIntro(t *testing.T) {
	e := newTestEngine(t, 0)
	lines := e.Intro()
	if len(lines) != 2 || lines[0] != "West of House." || lines[1] != "What do you do?" {
		t.Errorf("Intro() = %q", lines)
	}
}

func TestStep_Advance(t *testing.T) {
	e := newTestEngine(t, 0)

	r := e.Step("Go North!")
	if !r.Advanced {
		t.Fatalf("expected advance, got %+v", r)
	}
	if r.Match == nil || r.Match.Method != types.MethodExact {
		t.Errorf("expected exact match, got %+v", r.Match)
	}
	if e.Session.Chapter != "II" {
		t.Errorf("expected chapter II, got %q", e.Session.Chapter)
	}
	if !hasLine(r.Output, "North of House.") {
		t.Errorf("expected next chapter text, got %q", r.Output)
	}
}

func TestStep_WrongAnswer(t *testing.T) {
	e := newTestEngine(t, 0)

	r := e.Step("dance")
	if r.Advanced || r.GameOver {
		t.Fatalf("unexpected result %+v", r)
	}
	if e.Session.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", e.Session.Attempts)
	}
	want := "Wrong (" + FormatPercent(r.Match.Confidence) + "%). 4 left."
	if !hasLine(r.Output, want) {
		t.Errorf("expected %q, got %q", want, r.Output)
	}
}

func TestStep_AttemptsResetOnAdvance(t *testing.T) {
	e := newTestEngine(t, 0)
	e.Step("dance")
	e.Step("sing")
	e.Step("go north")
	if e.Session.Attempts != 0 {
		t.Errorf("expected attempts reset, got %d", e.Session.Attempts)
	}
	if e.Remaining() != DefaultMaxAttempts {
		t.Errorf("Remaining = %d", e.Remaining())
	}
}

func TestStep_InteractionCostsNoAttempt(t *testing.T) {
	e := newTestEngine(t, 0)

	r := e.Step("Look")
	if !hasLine(r.Output, "An open field.") {
		t.Errorf("expected interaction reply, got %q", r.Output)
	}
	if e.Session.Attempts != 0 {
		t.Errorf("expected no attempt used, got %d", e.Session.Attempts)
	}
}

func TestStep_TakeAddsItem(t *testing.T) {
	e := newTestEngine(t, 0)

	r := e.Step("take the lamp")
	if !hasLine(r.Output, "You took the lamp.") {
		t.Errorf("expected take message, got %q", r.Output)
	}
	e.Step("take lamp")
	if len(e.Session.Items) != 1 || e.Session.Items[0] != "lamp" {
		t.Errorf("expected inventory [lamp], got %v", e.Session.Items)
	}
}

func TestStep_GameOver(t *testing.T) {
	e := newTestEngine(t, 3)

	e.Step("dance")
	e.Step("sing")
	r := e.Step("cry")
	if !r.GameOver {
		t.Fatalf("expected game over on the third wrong answer, got %+v", r)
	}
	if !e.Session.Finished {
		t.Error("expected session finished")
	}
	if !hasLine(r.Output, "run out of attempts") {
		t.Errorf("expected default game over message, got %q", r.Output)
	}

	r = e.Step("go north")
	if r.Advanced || !hasLine(r.Output, "/restart") {
		t.Errorf("expected finished session to refuse answers, got %+v", r)
	}
}

func TestStep_CompleteStory(t *testing.T) {
	e := newTestEngine(t, 0)

	e.Step("go north")
	e.Step("open the mailbox")
	if e.Session.Chapter != "III" {
		t.Fatalf("expected chapter III, got %q", e.Session.Chapter)
	}
	r := e.Step("read leaflet")
	if !r.Completed {
		t.Fatalf("expected completion, got %+v", r)
	}
	if !e.Session.Finished {
		t.Error("expected session finished")
	}
	if !hasLine(r.Output, "Congratulations") {
		t.Errorf("expected completion message, got %q", r.Output)
	}
}

func TestStep_EmptyInput(t *testing.T) {
	e := newTestEngine(t, 0)
	r := e.Step("  !!  ")
	if r.Match != nil {
		t.Error("expected no matching for empty input")
	}
	if e.Session.Attempts != 0 {
		t.Errorf("expected no attempt used, got %d", e.Session.Attempts)
	}
	if len(e.Session.Log) != 1 || e.Session.Turn != 1 {
		t.Errorf("expected input logged, got log=%v turn=%d", e.Session.Log, e.Session.Turn)
	}
}

func TestStep_MissingChapter(t *testing.T) {
	e := newTestEngine(t, 0)
	e.Session.Chapter = "XV"
	r := e.Step("go north")
	if r.Match != nil || r.Advanced {
		t.Errorf("unexpected result %+v", r)
	}
	if !hasLine(r.Output, "XV") {
		t.Errorf("expected missing chapter message, got %q", r.Output)
	}
}

func TestRestart(t *testing.T) {
	e := newTestEngine(t, 0)
	e.Step("take lamp")
	e.Step("go north")

	lines := e.Restart()
	if e.Session.Chapter != "I" || len(e.Session.Items) != 0 || e.Session.Finished {
		t.Errorf("session not reset: %+v", e.Session)
	}
	if !hasLine(lines, "West of House.") {
		t.Errorf("expected first chapter intro, got %q", lines)
	}
}

func TestItems(t *testing.T) {
	e := newTestEngine(t, 0)
	if lines := e.Items(); len(lines) != 1 || lines[0] != "Your inventory is empty." {
		t.Errorf("Items() = %q", lines)
	}

	e.Step("take lamp")
	e.Step("grab leaflet")
	lines := e.Items()
	want := []string{"Your inventory:", "1. lamp", "2. leaflet"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("Items() = %q, want %q", lines, want)
	}
}

func TestSwitchBundle(t *testing.T) {
	e := newTestEngine(t, 0)
	e.Step("go north")
	e.Step("take lamp")

	pt := testBundle()
	pt.Language = "pt"
	pt.Messages = map[string]string{MsgPrompt: "O que você faz?"}
	e.SwitchBundle(pt)

	if e.Session.Language != "pt" || e.Session.Chapter != "II" {
		t.Errorf("unexpected session after switch: %+v", e.Session)
	}
	if len(e.Session.Items) != 1 {
		t.Errorf("expected items to carry over, got %v", e.Session.Items)
	}
	if got := e.Intro(); got[len(got)-1] != "O que você faz?" {
		t.Errorf("expected translated prompt, got %q", got)
	}
}

func TestSwitchBundle_UnknownChapterRestarts(t *testing.T) {
	e := newTestEngine(t, 0)
	e.Session.Chapter = "III"

	short := testBundle()
	short.Order = []string{"I"}
	short.Chapters = map[string]types.Chapter{"I": short.Chapters["I"]}
	e.SwitchBundle(short)

	if e.Session.Chapter != "I" {
		t.Errorf("expected first chapter, got %q", e.Session.Chapter)
	}
}

func TestHint(t *testing.T) {
	e := newTestEngine(t, 0)
	if got := e.Hint(); got != "go north" {
		t.Errorf("Hint() = %q, want go north", got)
	}
	e.Step("go north")
	if got := e.Hint(); got != "open mailbox" {
		t.Errorf("Hint() = %q, want open mailbox", got)
	}
	e.Step("open mailbox")
	if got := e.Hint(); got != "read leaflet" {
		t.Errorf("Hint() = %q, want read leaflet", got)
	}
}

func TestMessage_Fallbacks(t *testing.T) {
	e := newTestEngine(t, 0)
	if got := e.Message(MsgTaken); got != "You took the #item." {
		t.Errorf("bundle message = %q", got)
	}
	if got := e.Message(MsgGameOver); got != defaultMessages[MsgGameOver] {
		t.Errorf("default message = %q", got)
	}
	if got := e.Message("Unknown Key"); got != "Unknown Key" {
		t.Errorf("unknown key = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{0.75, "75.00"},
		{1.0 / 3.0, "33.33"},
		{1, "100.00"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
