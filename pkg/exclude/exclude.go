// Package exclude compiles pathspec-style exclusion patterns and decides
// which session-relative paths are skipped during mutation.
//
// The supported dialect is the doublestar glob syntax: `*` matches within a
// path segment, `?` matches a single character, `**` matches across
// segments, `[...]` character classes and `{a,b}` alternation are available.
// Two conveniences mirror gitignore-style matching: a pattern without a
// separator also matches against the basename of a path (so `*.log`
// excludes logs at any depth), and a pattern matching a directory excludes
// everything below it. A leading `!` negates the pattern: paths NOT
// matching the remainder are excluded.
package exclude

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/glorpus-work/permsim/pkg/errors"
)

// Pattern is a compiled exclusion pattern. The zero value excludes nothing.
type Pattern struct {
	raw     string
	glob    string
	negated bool
}

// Compile validates pattern and returns a matcher. An empty pattern compiles
// to a matcher that excludes no paths. Malformed syntax fails here, not per
// path, wrapping errors.ErrInvalidPattern.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" {
		return &Pattern{}, nil
	}

	glob := pattern
	negated := false
	if strings.HasPrefix(glob, "!") {
		negated = true
		glob = glob[1:]
		if glob == "" {
			return nil, errors.Wrap(errors.ErrInvalidPattern, "bare negation")
		}
	}
	glob = strings.TrimPrefix(glob, "./")

	if !doublestar.ValidatePattern(glob) {
		return nil, errors.Wrapf(errors.ErrInvalidPattern, "pattern %q", pattern)
	}

	return &Pattern{raw: pattern, glob: glob, negated: negated}, nil
}

// IsEmpty reports whether the pattern excludes nothing.
func (p *Pattern) IsEmpty() bool {
	return p == nil || p.glob == ""
}

// Raw returns the original pattern string.
func (p *Pattern) Raw() string {
	if p == nil {
		return ""
	}
	return p.raw
}

// Matches reports whether relPath (relative to the session root, in either
// slash or native form) is excluded.
func (p *Pattern) Matches(relPath string) bool {
	if p.IsEmpty() {
		return false
	}

	rel := filepath.ToSlash(relPath)
	rel = strings.TrimPrefix(rel, "./")
	if rel == "" || rel == "." {
		// The root itself is never excluded; exclusion selects within it.
		return false
	}

	matched := p.matchesPath(rel)
	if p.negated {
		return !matched
	}
	return matched
}

// matchesPath checks the path itself, each ancestor directory (a matched
// directory excludes its subtree) and, for separator-free patterns, the
// basename.
func (p *Pattern) matchesPath(rel string) bool {
	for probe := rel; probe != "." && probe != "/"; probe = path.Dir(probe) {
		if doublestar.MatchUnvalidated(p.glob, probe) {
			return true
		}
	}
	if !strings.Contains(p.glob, "/") && doublestar.MatchUnvalidated(p.glob, path.Base(rel)) {
		return true
	}
	return false
}
