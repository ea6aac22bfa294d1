// Package engine provides the Step() orchestrator that wires together
// normalization, parsing, requirement matching and chapter progression into
// a single turn.
package engine

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nathoo/questline/engine/canonical"
	"github.com/nathoo/questline/engine/matcher"
	"github.com/nathoo/questline/engine/normalize"
	"github.com/nathoo/questline/engine/parser"
	"github.com/nathoo/questline/engine/state"
	"github.com/nathoo/questline/types"
)

// DefaultMaxAttempts is how many wrong answers end the game.
const DefaultMaxAttempts = 5

// TakeAction is the action whose object is added to the inventory.
const TakeAction = "take"

// Message keys looked up in the bundle.
const (
	MsgPrompt        = "What do you do? "
	MsgTryAgain      = "Try again"
	MsgGameOver      = "Game Over"
	MsgGameCompleted = "Game Completed"
	MsgTaken         = "TAKEN"
	MsgNoItems       = "No Items"
	MsgItemsList     = "Items List"
	MsgPlayAgain     = "Play Again"
)

var defaultMessages = map[string]string{
	MsgPrompt:        "What do you do?",
	MsgTryAgain:      "That doesn't work (#percent% close). Attempts left: #attempts.",
	MsgGameOver:      "You have run out of attempts. Game over.",
	MsgGameCompleted: "Congratulations, you have finished the story!",
	MsgTaken:         "Taken: #item",
	MsgNoItems:       "Your inventory is empty.",
	MsgItemsList:     "Your inventory:",
	MsgPlayAgain:     "The story is over. Use /restart to play again.",
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Matcher     *matcher.Matcher
	MaxAttempts int
	Logger      *slog.Logger
}

// Engine holds the bundle being played and the player's session.
type Engine struct {
	Bundle  *types.Bundle
	Session *types.Session

	matcher     *matcher.Matcher
	maxAttempts int
	logger      *slog.Logger
}

// New creates an engine. A nil session starts a fresh one at the first
// chapter.
func New(b *types.Bundle, s *types.Session, opts Options) *Engine {
	if s == nil {
		s = state.NewSession(b)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Matcher
	if m == nil {
		m = matcher.New(matcher.Config{}, logger)
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Engine{
		Bundle:      b,
		Session:     s,
		matcher:     m,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Step processes one player answer and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 0. Finished stories accept no more answers until restarted.
	if e.Session.Finished {
		result.Output = append(result.Output, e.Message(MsgPlayAgain))
		return result
	}

	// 1. Normalize and log.
	answer := normalize.Normalize(input)
	e.Session.Log = append(e.Session.Log, input)
	e.Session.Turn++

	// 2. Empty input.
	if answer == "" {
		result.Output = append(result.Output, e.Message(MsgPrompt))
		return result
	}

	// 3. Parse; taking an object puts it in the inventory.
	result.Parsed = parser.Parse(answer, e.Bundle.Commands, parser.WithLogger(e.logger))
	if result.Parsed.Action == TakeAction && result.Parsed.Object != "" {
		item := result.Parsed.Object
		if state.AddItem(e.Session, item) {
			e.logger.Info("item_taken",
				slog.String("item", item),
				slog.String("chapter", e.Session.Chapter))
		}
		result.Output = append(result.Output, strings.ReplaceAll(e.Message(MsgTaken), "#item", item))
	}

	// 4. Match against the current chapter.
	ch, ok := state.CurrentChapter(e.Session, e.Bundle)
	if !ok {
		e.logger.Error("chapter_missing", slog.String("chapter", e.Session.Chapter))
		result.Output = append(result.Output, fmt.Sprintf("[Chapter %q is not part of this story.]", e.Session.Chapter))
		return result
	}

	res := e.matcher.Match(answer, ch, e.Bundle.Commands)
	result.Match = &res

	if res.Matched {
		e.advance(&result)
		return result
	}

	// 5. Flavour replies cost no attempt.
	if reply, ok := ch.Interactions[answer]; ok {
		result.Output = append(result.Output, reply)
		return result
	}

	// 6. Out of attempts.
	if e.Remaining() <= 1 {
		e.Session.Finished = true
		result.GameOver = true
		result.Output = append(result.Output, e.Message(MsgGameOver))
		e.logger.Info("game_over",
			slog.String("chapter", ch.ID),
			slog.Int("attempts", e.Session.Attempts))
		return result
	}

	// 7. Wrong answer.
	e.Session.Attempts++
	e.logger.Info("answer_rejected",
		slog.String("chapter", ch.ID),
		slog.String("answer", answer),
		slog.String("method", string(res.Method)),
		slog.Float64("confidence", res.Confidence))

	msg := e.Message(MsgTryAgain)
	msg = strings.ReplaceAll(msg, "#percent", FormatPercent(res.Confidence))
	msg = strings.ReplaceAll(msg, "#attempts", strconv.Itoa(e.Remaining()))
	result.Output = append(result.Output, msg)
	return result
}

// advance moves to the next chapter or completes the story.
func (e *Engine) advance(result *types.Result) {
	e.Session.Attempts = 0

	next, ok := state.NextChapter(e.Bundle, e.Session.Chapter)
	if !ok {
		e.Session.Finished = true
		result.Completed = true
		result.Output = append(result.Output, e.Message(MsgGameCompleted))
		e.logger.Info("game_completed", slog.Int("turns", e.Session.Turn))
		return
	}

	e.logger.Info("chapter_advanced",
		slog.String("from", e.Session.Chapter),
		slog.String("to", next))
	e.Session.Chapter = next
	result.Advanced = true
	result.Output = append(result.Output, e.Intro()...)
}

// Intro returns the current chapter's text followed by the prompt.
func (e *Engine) Intro() []string {
	var lines []string
	if ch, ok := state.CurrentChapter(e.Session, e.Bundle); ok && ch.Text != "" {
		lines = append(lines, ch.Text)
	}
	return append(lines, e.Message(MsgPrompt))
}

// Restart resets the session to the first chapter and returns its intro.
func (e *Engine) Restart() []string {
	state.Reset(e.Session, e.Bundle)
	e.logger.Info("game_restarted", slog.String("language", e.Session.Language))
	return e.Intro()
}

// Items lists the player's inventory.
func (e *Engine) Items() []string {
	if len(e.Session.Items) == 0 {
		return []string{e.Message(MsgNoItems)}
	}
	lines := []string{e.Message(MsgItemsList)}
	for i, item := range e.Session.Items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
	}
	return lines
}

// SwitchBundle changes the language being played. Chapter, attempts and
// items carry over.
func (e *Engine) SwitchBundle(b *types.Bundle) {
	e.Bundle = b
	e.Session.Language = b.Language
	if _, ok := b.Chapters[e.Session.Chapter]; !ok {
		e.Session.Chapter = state.FirstChapter(b)
	}
	e.logger.Info("language_changed", slog.String("language", b.Language))
}

// Hint returns the canonical answer for the current chapter.
func (e *Engine) Hint() string {
	ch, ok := state.CurrentChapter(e.Session, e.Bundle)
	if !ok {
		return ""
	}
	return canonical.Answer(ch)
}

// Remaining returns the attempts left in the current chapter.
func (e *Engine) Remaining() int {
	return state.RemainingAttempts(e.Session, e.maxAttempts)
}

// MaxAttempts returns the configured attempt limit.
func (e *Engine) MaxAttempts() int {
	return e.maxAttempts
}

// Threshold returns the similarity threshold the matcher uses.
func (e *Engine) Threshold() float64 {
	return e.matcher.Threshold()
}

// Message returns a bundle message, falling back to the built-in default
// and finally to the key itself.
func (e *Engine) Message(key string) string {
	if msg, ok := e.Bundle.Messages[key]; ok && msg != "" {
		return msg
	}
	if msg, ok := defaultMessages[key]; ok {
		return msg
	}
	return key
}

// FormatPercent renders a confidence in [0, 1] as a percentage with two
// decimals, e.g. 0.75 → "75.00".
func FormatPercent(confidence float64) string {
	return strconv.FormatFloat(confidence*100, 'f', 2, 64)
}
