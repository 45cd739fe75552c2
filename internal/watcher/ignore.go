package watcher

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Matcher decides whether a path is excluded from scanning and watching.
// Rules come from configured glob patterns and from .gitignore files found
// under the roots; later rules override earlier ones, and "!" negates.
type Matcher struct {
	roots    []string
	patterns []string
	rules    []rule
}

type rule struct {
	glob   string
	negate bool
	base   string // directory of the .gitignore that declared the rule
}

// NewMatcher creates a matcher for the given roots and exclude patterns.
// Call Load before Match to pick up .gitignore files.
func NewMatcher(roots, patterns []string) *Matcher {
	m := &Matcher{roots: roots, patterns: patterns}
	m.rules = globalRules(patterns)
	return m
}

func globalRules(patterns []string) []rule {
	rules := make([]rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, newRule(p, ""))
	}
	return rules
}

// Load rebuilds the rule set from the configured patterns and every
// .gitignore file under the roots.
func (m *Matcher) Load() error {
	m.rules = globalRules(m.patterns)

	for _, root := range m.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip inaccessible entries
			}
			if d.IsDir() {
				if path != root && (d.Name() == ".git" || d.Name() == "node_modules") {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Name() != ".gitignore" {
				return nil
			}
			rules, err := readIgnoreFile(path)
			if err != nil {
				return nil // unreadable ignore files are skipped
			}
			m.rules = append(m.rules, rules...)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Match reports whether path is excluded.
func (m *Matcher) Match(path string) bool {
	excluded := false
	for _, r := range m.rules {
		if r.matches(path) {
			excluded = !r.negate
		}
	}
	return excluded
}

func readIgnoreFile(path string) ([]rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := filepath.Dir(path)
	var rules []rule
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, newRule(line, base))
	}
	return rules, scanner.Err()
}

func newRule(pattern, base string) rule {
	r := rule{base: base}
	if strings.HasPrefix(pattern, "!") {
		r.negate = true
		pattern = pattern[1:]
	}
	// A trailing slash marks a directory; any path below it matches the same
	// component test, so the slash is dropped.
	r.glob = strings.TrimSuffix(pattern, "/")
	return r
}

func (r rule) matches(path string) bool {
	rel := path
	if r.base != "" {
		var err error
		rel, err = filepath.Rel(r.base, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false
		}
	}

	if !strings.Contains(r.glob, "/") {
		// Bare names match any path component.
		for _, part := range segments(rel) {
			if ok, _ := filepath.Match(r.glob, part); ok {
				return true
			}
		}
		return false
	}

	if strings.Contains(r.glob, "**") {
		return matchSegments(segments(r.glob), segments(rel))
	}
	ok, _ := filepath.Match(r.glob, filepath.ToSlash(rel))
	return ok
}

// matchSegments matches path components against glob components, where "**"
// spans zero or more components.
func matchSegments(glob, path []string) bool {
	for len(glob) > 0 {
		if glob[0] == "**" {
			for i := 0; i <= len(path); i++ {
				if matchSegments(glob[1:], path[i:]) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 {
			return false
		}
		if ok, _ := filepath.Match(glob[0], path[0]); !ok {
			return false
		}
		glob, path = glob[1:], path[1:]
	}
	return len(path) == 0
}

func segments(path string) []string {
	var out []string
	for _, p := range strings.Split(filepath.ToSlash(path), "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
