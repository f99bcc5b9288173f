// Package filter decides whether a repository path qualifies for tracking,
// given include and exclude glob patterns with ** recursive semantics.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternError is returned when a glob pattern fails to compile.
// Malformed patterns are rejected up front so they can never panic mid-run.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "invalid pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Filter evaluates include/exclude glob patterns against repository-relative
// paths. Matching is pure and stateless; all patterns are validated at
// construction time.
type Filter struct {
	include []string
	exclude []string
}

// New validates every pattern and returns a Filter.
// The first invalid pattern aborts construction with a *PatternError.
func New(include, exclude []string) (*Filter, error) {
	for _, set := range [][]string{include, exclude} {
		for _, p := range set {
			if !doublestar.ValidatePattern(p) {
				return nil, &PatternError{Pattern: p, Err: doublestar.ErrBadPattern}
			}
		}
	}
	return &Filter{include: include, exclude: exclude}, nil
}

// ShouldTrack reports whether the repository-relative path rel qualifies for
// tracking: it must match at least one include pattern and no exclude
// pattern. Exclusion is checked first and wins ties.
func (f *Filter) ShouldTrack(rel string) bool {
	rel = filepath.ToSlash(rel)

	for _, p := range f.exclude {
		if matchPath(p, rel) {
			return false
		}
	}
	for _, p := range f.include {
		if matchPath(p, rel) {
			return true
		}
	}
	return false
}

// Excluded reports whether rel matches an exclude pattern, regardless of the
// include patterns. Used to prune whole directory trees from watching.
func (f *Filter) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range f.exclude {
		if matchPath(p, rel) {
			return true
		}
	}
	return false
}

// matchPath matches rel against pattern. A pattern of the form "dir/**" also
// excludes the directory itself, not only its descendants, so a path equal
// to an ignored directory never slips through.
func matchPath(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	if base, found := strings.CutSuffix(pattern, "/**"); found {
		if ok, _ := doublestar.Match(base, rel); ok {
			return true
		}
	}
	return false
}
