package analysis

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/blockscan/internal/types"
)

// regexRule reports one issue per block when its pattern matches anywhere
type regexRule struct {
	pattern  *regexp.Regexp
	severity types.Severity
	kind     string
	message  string
	learning *types.Learning
}

// apply reports the rule against source and returns whether it matched.
// The snippet is the line holding the first match.
func (r regexRule) apply(source string, c *collector) bool {
	loc := r.pattern.FindStringIndex(source)
	if loc == nil {
		return false
	}
	if c.issue(r.severity, r.kind, r.message, lineAt(source, loc[0])) && r.learning != nil {
		c.learning(r.learning.Key, r.learning.Text)
	}
	return true
}

// countMatches returns the number of non-overlapping matches and the
// offset of the first, or -1
func countMatches(re *regexp.Regexp, source string) (int, int) {
	locs := re.FindAllStringIndex(source, -1)
	if len(locs) == 0 {
		return 0, -1
	}
	return len(locs), locs[0][0]
}

// lineAt returns the trimmed line containing byte offset off
func lineAt(source string, off int) string {
	if off < 0 || off > len(source) {
		return ""
	}
	start := strings.LastIndexByte(source[:off], '\n') + 1
	end := strings.IndexByte(source[off:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += off
	}
	return strings.TrimSpace(source[start:end])
}
