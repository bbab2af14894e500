package scaner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type MatchMode string

const (
	// MatchGlob treats patterns as globs tested against the relative path
	// and against every path component.
	MatchGlob MatchMode = "glob"
	// MatchSubstring treats patterns literally: a path is excluded when it
	// contains the pattern anywhere.
	MatchSubstring MatchMode = "substring"
)

// Matcher decides which relative paths are excluded from a scan.
type Matcher struct {
	mode     MatchMode
	patterns []string
}

func NewMatcher(mode MatchMode, patterns []string) (*Matcher, error) {
	switch mode {
	case MatchGlob:
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
			}
		}
	case MatchSubstring:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMatchMode, mode)
	}

	return &Matcher{
		mode:     mode,
		patterns: append([]string(nil), patterns...),
	}, nil
}

// ShouldExclude reports whether rel, a path relative to the scan root,
// matches any pattern.
func (m *Matcher) ShouldExclude(rel string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	rel = filepath.ToSlash(rel)

	if m.mode == MatchSubstring {
		for _, p := range m.patterns {
			if strings.Contains(rel, p) {
				return true
			}
		}
		return false
	}

	parts := strings.Split(rel, "/")
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		for _, part := range parts {
			if ok, _ := doublestar.Match(p, part); ok {
				return true
			}
		}
	}
	return false
}
