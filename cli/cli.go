// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the questline engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/questline/engine"
	"github.com/nathoo/questline/types"
)

// BundleSource provides bundles by language code.
type BundleSource interface {
	Bundle(lang string) (*types.Bundle, error)
	Languages() ([]string, error)
}

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Bundles   BundleSource
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, bundles BundleSource, saveDir string) *CLI {
	return &CLI{
		Engine:  eng,
		Bundles: bundles,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
	}
}

// Run starts the game loop. It shows the title and the first chapter, then
// loops: prompt → input → dispatch → output.
func (c *CLI) Run() {
	if title := c.Engine.Bundle.Title; title != "" {
		c.printLine(title)
		c.printLine("")
	}
	c.printLines(c.Engine.Intro())

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		hint := c.Engine.Hint()
		result := c.Engine.Step(input)
		c.printLines(result.Output)

		if c.Trace {
			for _, line := range TraceLines(c.Engine, result, hint) {
				c.printSystem(line)
			}
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	m := Meta{Engine: c.Engine, Bundles: c.Bundles, SaveDir: c.SaveDir}
	r := m.Dispatch(input, c.Trace)
	c.Trace = r.Trace
	for _, l := range r.Lines {
		if l.System {
			c.printSystem(l.Text)
		} else {
			c.printLine(l.Text)
		}
	}
	return r.Quit
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
