// Package loader reads translation bundles from disk into immutable
// types.Bundle values. Bundles are either a directory of Lua files or a
// single YAML/JSON document. Any Lua VM is discarded after loading.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questline/types"
)

// BundleFile is loaded before the other Lua files of a bundle directory.
const BundleFile = "bundle.lua"

// documentExts are the single-file bundle formats, in lookup order.
var documentExts = []string{".yaml", ".yml", ".json"}

// Option configures a Load call.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sends validation warnings and load events to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Load reads a bundle from path. A directory is loaded as Lua, a file by its
// extension. The bundle is compiled and validated; warnings are logged.
func Load(path string, opts ...Option) (*types.Bundle, error) {
	o := buildOptions(opts)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle %s: %w", path, err)
	}

	var raw *rawBundle
	if info.IsDir() {
		raw, err = loadLua(path)
	} else {
		raw, err = loadDocument(path)
	}
	if err != nil {
		return nil, err
	}

	b, err := compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compiling bundle %s: %w", path, err)
	}

	warnings, err := validate(b)
	for _, w := range warnings {
		o.logger.Warn("bundle_warning", slog.String("path", path), slog.String("warning", w))
	}
	if err != nil {
		return nil, err
	}
	o.logger.Debug("bundle_loaded",
		slog.String("path", path),
		slog.String("language", b.Language),
		slog.Int("chapters", len(b.Order)))
	return b, nil
}

// LoadLanguage finds and loads the bundle for lang under dir: first the Lua
// directory dir/lang, then dir/lang.yaml, dir/lang.yml and dir/lang.json.
func LoadLanguage(dir, lang string, opts ...Option) (*types.Bundle, error) {
	if lang == "" || strings.ContainsAny(lang, `/\`) || lang == "." || lang == ".." {
		return nil, fmt.Errorf("invalid language code %q", lang)
	}

	if info, err := os.Stat(filepath.Join(dir, lang)); err == nil && info.IsDir() {
		return Load(filepath.Join(dir, lang), opts...)
	}
	for _, ext := range documentExts {
		path := filepath.Join(dir, lang+ext)
		if _, err := os.Stat(path); err == nil {
			return Load(path, opts...)
		}
	}
	return nil, fmt.Errorf("no bundle for language %q in %s", lang, dir)
}

// Languages lists the language codes available under dir, sorted.
func Languages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading language directory %s: %w", dir, err)
	}

	seen := map[string]bool{}
	var langs []string
	add := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			langs = append(langs, code)
		}
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if hasLuaFiles(filepath.Join(dir, name)) {
				add(name)
			}
			continue
		}
		ext := filepath.Ext(name)
		for _, de := range documentExts {
			if ext == de {
				add(strings.TrimSuffix(name, ext))
			}
		}
	}
	sort.Strings(langs)
	return langs, nil
}

func hasLuaFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			return true
		}
	}
	return false
}

// loadDocument parses a single YAML or JSON bundle file.
func loadDocument(path string) (*rawBundle, error) {
	ext := filepath.Ext(path)
	known := false
	for _, de := range documentExts {
		if ext == de {
			known = true
		}
	}
	if !known {
		return nil, fmt.Errorf("unsupported bundle format %q: %s", ext, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle %s: %w", path, err)
	}
	raw, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	// Translation documents often carry no language field.
	if raw.language == "" {
		raw.language = strings.TrimSuffix(filepath.Base(path), ext)
	}
	return raw, nil
}

// loadLua executes every .lua file in dir inside a sandboxed VM and collects
// the declarations.
func loadLua(dir string) (*rawBundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading bundle directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	raw := newRawBundle()
	registerAPI(L, raw)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}
	if !raw.declared {
		return nil, fmt.Errorf("no Bundle{} definition found in %s", dir)
	}
	return raw, nil
}

// sortedLuaFiles puts bundle.lua first and the rest in alphabetical order.
func sortedLuaFiles(files []string) []string {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i] == BundleFile {
			return sorted[j] != BundleFile
		}
		if sorted[j] == BundleFile {
			return false
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach the filesystem or compile code at
// runtime.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}
