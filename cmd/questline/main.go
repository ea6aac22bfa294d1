// Questline plays chapter-based text adventures whose answers are written
// in the player's own words.
// Usage: questline [--version] [--check] [--plain] [--script <file>] [--trace] [--lang <code>] [lang_dir]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nathoo/questline/cli"
	"github.com/nathoo/questline/config"
	"github.com/nathoo/questline/engine"
	"github.com/nathoo/questline/engine/matcher"
	"github.com/nathoo/questline/loader"
	"github.com/nathoo/questline/logging"
	"github.com/nathoo/questline/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: questline [--version] [--check] [--plain] [--script <file>] [--trace] [--lang <code>] [lang_dir]\n"

func main() {
	plain := false
	trace := false
	check := false
	var langDir, lang, scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("questline %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--check":
			check = true
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--lang":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--lang requires a language code\n")
				os.Exit(1)
			}
			i++
			lang = args[i]
		case "-h", "--help":
			fmt.Print(usage)
			return
		default:
			if langDir == "" {
				langDir = args[i]
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		os.Exit(1)
	}
	if langDir != "" {
		cfg.LangDir = langDir
	}
	if lang != "" {
		cfg.Language = lang
	}

	if check || scriptFile != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		plain = true
	}

	// The TUI owns the terminal, so console logs only go out in plain mode.
	var console io.Writer
	if plain {
		console = os.Stderr
	}
	logger, closer, err := logging.New(cfg.Log, console)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	if check {
		if err := checkStories(cfg.LangDir, logger); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			closer.Close()
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logger, plain, trace, scriptFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}

// checkStories loads every language under dir and reports the result.
func checkStories(dir string, logger *slog.Logger) error {
	lib := loader.NewLibrary(dir, logger)
	langs, err := lib.Preload(context.Background())
	if len(langs) == 0 && err == nil {
		return fmt.Errorf("no languages found in %s", dir)
	}
	for _, lang := range langs {
		if b, berr := lib.Bundle(lang); berr == nil {
			fmt.Printf("%s: %d chapters, %d actions\n", lang, len(b.Order), len(b.Commands.Actions))
		}
	}
	return err
}

func run(cfg *config.Config, logger *slog.Logger, plain, trace bool, scriptFile string) error {
	lib := loader.NewLibrary(cfg.LangDir, logger)
	b, err := lib.Bundle(cfg.Language)
	if err != nil {
		return fmt.Errorf("loading story: %w", err)
	}

	eng := engine.New(b, nil, engine.Options{
		Matcher:     matcher.New(matcher.Config{Threshold: cfg.Threshold}, logger),
		MaxAttempts: cfg.MaxAttempts,
		Logger:      logger,
	})
	logger.Info("game_started",
		slog.String("language", b.Language),
		slog.String("lang_dir", cfg.LangDir),
		slog.Int("chapters", len(b.Order)))

	// Script mode: read answers from a file and echo them.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(eng, lib, cfg.SaveDir)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return nil
	}

	if plain {
		c := cli.New(eng, lib, cfg.SaveDir)
		c.Trace = trace
		c.Run()
		return nil
	}

	return tui.Run(eng, lib, cfg.SaveDir, trace)
}
