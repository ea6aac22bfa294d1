package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/questline/cli"
	"github.com/nathoo/questline/engine"
	"github.com/nathoo/questline/engine/state"
)

const historySize = 100

// transcriptLine is one unstyled line of the scrollback. Lines are kept
// unstyled so the transcript can be re-wrapped when the terminal resizes.
type transcriptLine struct {
	text string
	kind lineKind
}

// Model is the Bubble Tea model for the questline TUI.
type Model struct {
	engine *engine.Engine
	meta   cli.Meta

	viewport viewport.Model
	input    textinput.Model
	history  *History

	transcript []transcriptLine

	width, height int
	ready         bool
	trace         bool
	quitting      bool
}

// openingMsg delivers the title and first chapter once the program starts.
type openingMsg []string

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, bundles cli.BundleSource, saveDir string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.CharLimit = 256
	ti.Focus()

	h := NewHistory(historySize)
	h.Seed(eng.Session.Log)

	return Model{
		engine: eng,
		meta: cli.Meta{
			Engine:     eng,
			Bundles:    bundles,
			SaveDir:    saveDir,
			HelpFooter: []string{"", "Navigation: PgUp/PgDn to scroll, Up/Down for answer history"},
		},
		input:   ti,
		history: h,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, bundles cli.BundleSource, saveDir string, trace bool) error {
	m := New(eng, bundles, saveDir)
	m.trace = trace
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	eng := m.engine
	opening := func() tea.Msg {
		var lines []string
		if title := eng.Bundle.Title; title != "" {
			lines = append(lines, title, "")
		}
		return openingMsg(append(lines, eng.Intro()...))
	}
	return tea.Batch(textinput.Blink, opening)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case openingMsg:
		prompt := m.engine.Message(engine.MsgPrompt)
		for _, line := range msg {
			m.write(line, classifyLine(line, prompt))
		}
		m.endTurn()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// resize fits the viewport above the status bar and input line.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	vh := max(height-2, 1)
	if m.ready {
		m.viewport.Width, m.viewport.Height = width, vh
	} else {
		m.viewport = viewport.New(width, vh)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	}
	m.redraw()
}

// handleKey reports handled=false for keys the text input should see.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "enter":
		next, cmd := m.handleEnter()
		return next, cmd, true
	case "up":
		if prev, ok := m.history.Prev(); ok {
			m.setInput(prev)
		}
		return m, nil, true
	case "down":
		next, ok := m.history.Next()
		if !ok {
			m.history.ResetCursor()
		}
		m.setInput(next)
		return m, nil, true
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// handleEnter submits the input line as an answer or a meta-command.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)
	m.history.ResetCursor()

	if strings.HasPrefix(input, "/") {
		r := m.runMeta(input)
		m.write("> "+input, kindInput)
		prompt := m.engine.Message(engine.MsgPrompt)
		for _, l := range r.Lines {
			kind := kindSystem
			if !l.System {
				kind = classifyLine(l.Text, prompt)
			}
			m.write(l.Text, kind)
		}
		m.endTurn()
		if r.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	hint := m.engine.Hint()
	ch, _ := state.CurrentChapter(m.engine.Session, m.engine.Bundle)
	result := m.engine.Step(input)
	kinds := classifyResult(result, m.engine.Message(engine.MsgPrompt), ch.Interactions[result.Parsed.Raw])

	m.write("> "+input, kindInput)
	for i, line := range result.Output {
		m.write(line, kinds[i])
	}
	if m.trace {
		for _, line := range cli.TraceLines(m.engine, result, hint) {
			m.write(line, kindTrace)
		}
	}
	m.endTurn()
	return m, nil
}

// runMeta runs a meta-command and applies its effects on the TUI state.
func (m *Model) runMeta(input string) cli.MetaResult {
	r := m.meta.Dispatch(input, m.trace)
	m.trace = r.Trace
	if r.Restarted {
		m.transcript = nil
	}
	if r.Loaded != nil {
		m.history = NewHistory(historySize)
		m.history.Seed(r.Loaded.Log)
	}
	return r
}

func (m *Model) write(text string, kind lineKind) {
	m.transcript = append(m.transcript, transcriptLine{text: text, kind: kind})
}

// endTurn separates turns with a blank line and scrolls to the bottom.
func (m *Model) endTurn() {
	m.write("", kindNarrative)
	m.redraw()
}

func (m *Model) redraw() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.transcript, max(m.width, 10)))
	m.viewport.GotoBottom()
}

func renderTranscript(lines []transcriptLine, width int) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case l.text == "":
		case l.kind == kindSystem:
			out[i] = styledSystemMsg(wordWrap(l.text, width-2))
		default:
			out[i] = renderLineKind(wordWrap(l.text, width), l.kind)
		}
	}
	return strings.Join(out, "\n")
}

// wordWrap breaks text at spaces so no line is wider than width terminal
// cells. A word longer than width gets a line of its own.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	var b strings.Builder
	col := 0
	for _, word := range strings.Fields(text) {
		w := lipgloss.Width(word)
		switch {
		case col == 0:
		case col+1+w > width:
			b.WriteByte('\n')
			col = 0
		default:
			b.WriteByte(' ')
			col++
		}
		b.WriteString(word)
		col += w
	}
	return b.String()
}

func (m Model) View() string {
	switch {
	case m.quitting:
		return ""
	case !m.ready:
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.renderStatusBar(), m.input.View())
}

// viewportKeyMap leaves Up and Down to the answer history.
func viewportKeyMap() viewport.KeyMap {
	keys := viewport.DefaultKeyMap()
	keys.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	keys.PageUp = key.NewBinding(key.WithKeys("pgup"))
	keys.Up.SetEnabled(false)
	keys.Down.SetEnabled(false)
	return keys
}
