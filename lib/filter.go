package lib

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Filter selects mailbox names using shell-style glob patterns.
// Matching is case-sensitive and an exclude pattern always wins over an include pattern.
type Filter struct {
	Include []string
	Exclude []string
}

// Included returns true if name matches any of the patterns
func Included(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if Glob(pattern, name) {
			return true
		}
	}
	return false
}

// Glob reports whether name matches the shell pattern. Unlike path.Match,
// a '*' also matches the hierarchy delimiter so "Archive*" selects "Archive/2020".
func Glob(pattern, name string) bool {
	re, err := globToRegexp(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(name)
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	expr := strings.Builder{}
	expr.WriteString(`(?s)^`)
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			expr.WriteString(`.*`)
		case '?':
			expr.WriteString(`.`)
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				expr.WriteString(`\[`)
				continue
			}
			class := pattern[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			expr.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i += end + 1
		default:
			expr.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	expr.WriteString(`$`)
	return regexp.Compile(expr.String())
}

// Excluded returns true when name matches one of the exclude patterns
func (f Filter) Excluded(name string) bool {
	return Included(name, f.Exclude)
}

// Match returns true if name is not excluded, and matches an include pattern (when there's any)
func (f Filter) Match(name string) bool {
	if f.Excluded(name) {
		return false
	}
	if len(f.Include) == 0 {
		return true
	}
	return Included(name, f.Include)
}

// Select keeps the names matching pattern and not excluded, in their original order
func (f Filter) Select(pattern string, names []string) []string {
	selected := make([]string, 0, len(names))
	for _, name := range names {
		if !Included(name, []string{pattern}) || f.Excluded(name) {
			continue
		}
		selected = append(selected, name)
	}
	return selected
}

// ReadPatterns loads a list of patterns from a file, one per line.
// Trailing spaces are removed and empty lines ignored.
func ReadPatterns(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read patterns: %w", err)
	}
	defer file.Close()

	patterns := make([]string, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read patterns from %q: %w", filename, err)
	}
	return patterns, nil
}
