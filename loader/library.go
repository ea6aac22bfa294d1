package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nathoo/questline/types"
)

// Library serves the bundles of one language directory, loading each
// language at most once.
type Library struct {
	Dir string

	logger *slog.Logger
	mu     sync.Mutex
	cache  map[string]*types.Bundle
}

// NewLibrary creates a library rooted at dir. A nil logger selects
// slog.Default().
func NewLibrary(dir string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{Dir: dir, logger: logger, cache: map[string]*types.Bundle{}}
}

// Bundle returns the bundle for lang, loading it on first use. Failed loads
// are not cached.
func (l *Library) Bundle(lang string) (*types.Bundle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.cache[lang]; ok {
		return b, nil
	}
	b, err := LoadLanguage(l.Dir, lang, WithLogger(l.logger))
	if err != nil {
		return nil, err
	}
	l.cache[lang] = b
	return b, nil
}

// Languages lists the language codes available in the library.
func (l *Library) Languages() ([]string, error) {
	return Languages(l.Dir)
}

// Preload loads every available language in parallel and caches the ones
// that load. It returns the languages found and every load failure joined
// together, so one broken translation does not hide another.
func (l *Library) Preload(ctx context.Context) ([]string, error) {
	langs, err := l.Languages()
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, lang := range langs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := LoadLanguage(l.Dir, lang, WithLogger(l.logger))
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", lang, err))
				mu.Unlock()
				return nil
			}
			l.mu.Lock()
			l.cache[lang] = b
			l.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return langs, fmt.Errorf("preload: %w", err)
	}
	return langs, errors.Join(errs...)
}
