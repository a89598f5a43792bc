package scanner

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// gitignoreRule is one non-comment .gitignore line
type gitignoreRule struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool
}

// LoadGitignore reads root/.gitignore and returns its rules as doublestar
// exclusion globs. A missing file, or a root that is not a directory,
// yields no globs.
func LoadGitignore(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return parseGitignore(f)
}

func parseGitignore(r io.Reader) ([]string, error) {
	var globs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule := parseRule(line)
		// Negations would need ordered evaluation; they are skipped
		if rule.Negate || rule.Pattern == "" {
			continue
		}
		globs = append(globs, rule.globs()...)
	}
	return globs, sc.Err()
}

// parseRule strips the negation, directory and anchor modifiers
func parseRule(line string) gitignoreRule {
	var rule gitignoreRule
	if strings.HasPrefix(line, "!") {
		rule.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		rule.Absolute = true
		line = line[1:]
	}
	// A slash in the middle anchors the pattern to the root as well
	if strings.Contains(line, "/") {
		rule.Absolute = true
	}
	rule.Pattern = line
	return rule
}

// globs converts the rule into exclusion globs relative to the scan root.
// Non-directory patterns also match directories, so both forms are emitted.
func (r gitignoreRule) globs() []string {
	base := r.Pattern
	if !r.Absolute {
		base = "**/" + base
	}
	if r.Directory {
		return []string{base + "/**"}
	}
	return []string{base, base + "/**"}
}
