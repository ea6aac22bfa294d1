package loader

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/nathoo/questline/engine/canonical"
	"github.com/nathoo/questline/types"
)

func TestMain(m *testing.M) {
	// regexp2 runs one process-wide clock goroutine for match timeouts.
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/dlclark/regexp2.runClock"))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func actionNames(b *types.Bundle) []string {
	var names []string
	for _, a := range b.Commands.Actions {
		names = append(names, a.Name)
	}
	return names
}

func synonymNames(b *types.Bundle) []string {
	var names []string
	for _, s := range b.Commands.Navigation.Synonyms {
		names = append(names, s.Canonical)
	}
	return names
}

func TestLoad_LuaBundle(t *testing.T) {
	b, err := Load("testdata/lua/en")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if b.Language != "en" {
		t.Errorf("Language = %q, want en", b.Language)
	}
	if b.Title != "Test Adventure" {
		t.Errorf("Title = %q", b.Title)
	}
	if b.Info == "" {
		t.Error("expected info text")
	}
	if diff := cmp.Diff([]string{"I", "II", "III"}, b.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}

	// Commands.
	if len(b.Commands.Navigation.Patterns) != 2 {
		t.Errorf("expected 2 navigation patterns, got %d", len(b.Commands.Navigation.Patterns))
	}
	for _, p := range b.Commands.Navigation.Patterns {
		if !p.Valid() {
			t.Errorf("pattern %q not compiled", p.Source())
		}
	}
	if diff := cmp.Diff([]string{"north", "south"}, synonymNames(b)); diff != "" {
		t.Errorf("synonyms mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"take", "open"}, actionNames(b)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"lamp", "leaflet"}, b.Commands.Actions[0].Objects); diff != "" {
		t.Errorf("take objects mismatch (-want +got):\n%s", diff)
	}

	// Chapters.
	ch1 := b.Chapters["I"]
	if ch1.Text != "You are standing west of a white house." {
		t.Errorf("chapter I text = %q", ch1.Text)
	}
	wantReq := &types.Requirement{Kind: types.RequireNavigation, Direction: "north"}
	if diff := cmp.Diff(wantReq, ch1.Requirement); diff != "" {
		t.Errorf("chapter I requirement mismatch (-want +got):\n%s", diff)
	}
	if ch1.Interactions["look around"] != "An open field." {
		t.Errorf("expected normalized interaction key, got %v", ch1.Interactions)
	}

	wantReq = &types.Requirement{Kind: types.RequireAction, Action: "open", Object: "mailbox"}
	if diff := cmp.Diff(wantReq, b.Chapters["II"].Requirement); diff != "" {
		t.Errorf("chapter II requirement mismatch (-want +got):\n%s", diff)
	}

	ch3 := b.Chapters["III"]
	if ch3.Requirement != nil {
		t.Errorf("chapter III should be legacy, got %+v", ch3.Requirement)
	}
	if diff := cmp.Diff([]string{"read leaflet", "read the leaflet"}, ch3.Answers); diff != "" {
		t.Errorf("chapter III answers mismatch (-want +got):\n%s", diff)
	}

	// Messages.
	if b.Messages["What do you do? "] != "What now?" {
		t.Errorf("prompt message = %q", b.Messages["What do you do? "])
	}
}

func TestLoad_YAMLBundle(t *testing.T) {
	b, err := Load("testdata/pt.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if b.Language != "pt" {
		t.Errorf("Language = %q, want pt from the file name", b.Language)
	}
	if diff := cmp.Diff([]string{"I", "II", "III"}, b.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pegar", "abrir"}, actionNames(b)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"norte", "sul"}, synonymNames(b)); diff != "" {
		t.Errorf("synonyms mismatch (-want +got):\n%s", diff)
	}

	if got := b.Chapters["I"].Text; got != "Você está a oeste de uma casa branca." {
		t.Errorf("chapter I text = %q, want the message entry", got)
	}
	if got := b.Chapters["I"].Interactions["olhe em volta"]; got != "Um campo aberto." {
		t.Errorf("interaction = %q", got)
	}
	wantReq := &types.Requirement{Kind: types.RequireAction, Action: "abrir", Object: "caixa de correio"}
	if diff := cmp.Diff(wantReq, b.Chapters["II"].Requirement); diff != "" {
		t.Errorf("chapter II requirement mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ler folheto"}, b.Chapters["III"].Answers); diff != "" {
		t.Errorf("chapter III answers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_JSONBundle(t *testing.T) {
	b, err := Load("testdata/es.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b.Language != "es" {
		t.Errorf("Language = %q", b.Language)
	}
	// An explicit chapters list overrides the order of the sections.
	if diff := cmp.Diff([]string{"II", "I"}, b.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
	if got := b.Chapters["II"].Text; got != "Hay una lámpara." {
		t.Errorf("chapter II text = %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	sandboxDir := filepath.Join(dir, "sandbox")
	if err := os.Mkdir(sandboxDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sandboxDir, "bundle.lua", `Bundle { language = "en" } dofile("other.lua")`)

	emptyDir := filepath.Join(dir, "empty")
	if err := os.Mkdir(emptyDir, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{
			name:    "missing path",
			path:    filepath.Join(dir, "nope"),
			wantErr: "reading bundle",
		},
		{
			name:    "no Bundle declaration",
			path:    "testdata/lua/nobundle",
			wantErr: "no Bundle{}",
		},
		{
			name:    "no lua files",
			path:    emptyDir,
			wantErr: "no .lua files",
		},
		{
			name:    "sandboxed dofile",
			path:    sandboxDir,
			wantErr: "executing bundle.lua",
		},
		{
			name:    "unsupported extension",
			path:    writeFile(t, dir, "en.toml", "language = 'en'"),
			wantErr: "unsupported bundle format",
		},
		{
			name:    "malformed yaml",
			path:    writeFile(t, dir, "bad.yaml", "commands: [unclosed"),
			wantErr: "parsing",
		},
		{
			name:    "document not a mapping",
			path:    writeFile(t, dir, "list.yaml", "- a\n- b\n"),
			wantErr: "must be a mapping",
		},
		{
			name: "invalid pattern",
			path: writeFile(t, dir, "pattern.yaml", `
commands:
  navigation:
    patterns: ['^go (?<direction>\w+']
availableAnswers:
  I: [wait]
`),
			wantErr: `^go (?<direction>`,
		},
		{
			name: "invalid action pattern",
			path: writeFile(t, dir, "action.yaml", `
commands:
  actions:
    take:
      pattern: '^(take'
availableAnswers:
  I: [wait]
`),
			wantErr: `action "take"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "en.yaml", `
commands:
  actions:
    take:
      pattern: '^take\b'
chapterRequirements:
  I:
    type: action
    action: open
`)
	_, err := Load(path)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	assertContains(t, ve.Errors, `undeclared action "open"`)
}

func TestLoad_WarningsAreNotFatal(t *testing.T) {
	path := writeFile(t, t.TempDir(), "en.yaml", `
commands:
  navigation:
    patterns: ['^head north$']
chapters: [I, II]
availableAnswers:
  I: [wait]
`)
	b, err := Load(path)
	if err != nil {
		t.Fatalf("expected warnings only, got %v", err)
	}
	if len(b.Order) != 2 {
		t.Errorf("expected both chapters, got %v", b.Order)
	}
}

func TestLoad_WarningsGoToInjectedLogger(t *testing.T) {
	path := writeFile(t, t.TempDir(), "en.yaml", `
chapters: [I, II]
availableAnswers:
  I: [wait]
`)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, err := Load(path, WithLogger(logger)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "bundle_warning") || !strings.Contains(out, `chapter \"II\"`) {
		t.Errorf("expected chapter II warning in injected logger, got %q", out)
	}
	if !strings.Contains(out, "bundle_loaded") {
		t.Errorf("expected bundle_loaded event, got %q", out)
	}
}

func TestLoad_SingleStringAnswers(t *testing.T) {
	dir := t.TempDir()
	luaDir := filepath.Join(dir, "en")
	if err := os.Mkdir(luaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, luaDir, "bundle.lua", `
Bundle { language = "en" }
Chapter "I" { answers = "open mailbox" }
`)

	tests := []struct {
		name string
		path string
	}{
		{"lua", luaDir},
		{"yaml", writeFile(t, dir, "pt.yaml", "availableAnswers:\n  I: open mailbox\n")},
		{"json", writeFile(t, dir, "es.json", `{"availableAnswers": {"I": "open mailbox"}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Load(tt.path, WithLogger(slog.New(slog.DiscardHandler)))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			ch := b.Chapters["I"]
			if diff := cmp.Diff([]string{"open mailbox"}, ch.Answers); diff != "" {
				t.Errorf("answers mismatch (-want +got):\n%s", diff)
			}
			if got := canonical.Answer(ch); got != "open mailbox" {
				t.Errorf("canonical.Answer = %q, want %q", got, "open mailbox")
			}
		})
	}
}

func TestLoadLanguage(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		lang     string
		wantLang string
		wantErr  bool
	}{
		{name: "lua directory", dir: "testdata/lua", lang: "en", wantLang: "en"},
		{name: "yaml file", dir: "testdata", lang: "pt", wantLang: "pt"},
		{name: "json file", dir: "testdata", lang: "es", wantLang: "es"},
		{name: "unknown language", dir: "testdata", lang: "fr", wantErr: true},
		{name: "empty code", dir: "testdata", lang: "", wantErr: true},
		{name: "path traversal", dir: "testdata", lang: "../testdata", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := LoadLanguage(tt.dir, tt.lang)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadLanguage failed: %v", err)
			}
			if b.Language != tt.wantLang {
				t.Errorf("Language = %q, want %q", b.Language, tt.wantLang)
			}
		})
	}
}

func TestLanguages(t *testing.T) {
	got, err := Languages("testdata")
	if err != nil {
		t.Fatalf("Languages failed: %v", err)
	}
	if diff := cmp.Diff([]string{"es", "pt"}, got); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}

	got, err = Languages("testdata/lua")
	if err != nil {
		t.Fatalf("Languages failed: %v", err)
	}
	if diff := cmp.Diff([]string{"en", "nobundle"}, got); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}

	if _, err := Languages("testdata/missing"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"rooms.lua", "bundle.lua", "actions.lua", "chapters.lua"})
	want := []string{"bundle.lua", "actions.lua", "chapters.lua", "rooms.lua"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary("testdata", nil)

	first, err := lib.Bundle("pt")
	if err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}
	second, err := lib.Bundle("pt")
	if err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}
	if first != second {
		t.Error("expected the cached bundle on the second call")
	}

	if _, err := lib.Bundle("fr"); err == nil {
		t.Error("expected error for unknown language")
	}

	langs, err := lib.Languages()
	if err != nil {
		t.Fatalf("Languages failed: %v", err)
	}
	if diff := cmp.Diff([]string{"es", "pt"}, langs); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}
}

func TestLibrary_Preload(t *testing.T) {
	lib := NewLibrary("testdata/lua", nil)

	langs, err := lib.Preload(context.Background())
	if diff := cmp.Diff([]string{"en", "nobundle"}, langs); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}
	if err == nil || !strings.Contains(err.Error(), "nobundle:") {
		t.Fatalf("expected nobundle failure, got %v", err)
	}
	if strings.Contains(err.Error(), "en:") {
		t.Errorf("en should load cleanly, got %v", err)
	}

	lib.mu.Lock()
	_, cached := lib.cache["en"]
	lib.mu.Unlock()
	if !cached {
		t.Error("expected en to be cached after preload")
	}
}

func TestLibrary_PreloadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLibrary("testdata", nil).Preload(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
