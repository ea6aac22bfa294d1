// Package pattern wraps the regular expressions that translation bundles use
// to recognise commands. Patterns are case-insensitive and support named
// groups in the (?<name>...) form the bundles are written in.
package pattern

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single evaluation of one pattern.
const MatchTimeout = 100 * time.Millisecond

// ErrInvalid is returned when evaluating a pattern that was never compiled.
var ErrInvalid = errors.New("pattern not compiled")

// Pattern is a compiled bundle pattern. The zero value never matches.
type Pattern struct {
	src string
	re  *regexp2.Regexp
}

// Compile compiles src as a case-insensitive pattern.
func Compile(src string) (Pattern, error) {
	re, err := regexp2.Compile(src, regexp2.IgnoreCase)
	if err != nil {
		return Pattern{src: src}, fmt.Errorf("compiling pattern %q: %w", src, err)
	}
	re.MatchTimeout = MatchTimeout
	return Pattern{src: src, re: re}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// patterns known at build time.
func MustCompile(src string) Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the pattern text as written in the bundle.
func (p Pattern) Source() string {
	return p.src
}

// Valid reports whether the pattern compiled.
func (p Pattern) Valid() bool {
	return p.re != nil
}

// MatchString reports whether the pattern matches anywhere in s.
func (p Pattern) MatchString(s string) (bool, error) {
	if p.re == nil {
		return false, ErrInvalid
	}
	ok, err := p.re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("evaluating pattern %q: %w", p.src, err)
	}
	return ok, nil
}

// Group matches s and returns the text captured by the named group.
// The bool is false when the pattern does not match or the group did not
// take part in the match.
func (p Pattern) Group(s, name string) (string, bool, error) {
	if p.re == nil {
		return "", false, ErrInvalid
	}
	m, err := p.re.FindStringMatch(s)
	if err != nil {
		return "", false, fmt.Errorf("evaluating pattern %q: %w", p.src, err)
	}
	if m == nil {
		return "", false, nil
	}
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return "", false, nil
	}
	return g.String(), true, nil
}

// HasGroup reports whether the pattern declares a group with the given name.
func (p Pattern) HasGroup(name string) bool {
	if p.re == nil {
		return false
	}
	for _, n := range p.re.GetGroupNames() {
		if n == name {
			return true
		}
	}
	return false
}
