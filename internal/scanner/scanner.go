// Package scanner selects transcript files under a directory for analysis.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/debug"
	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/extract"
	"github.com/standardbeagle/blockscan/internal/security"
	"github.com/standardbeagle/blockscan/internal/types"
)

// Scanner walks a root directory and selects files by glob
type Scanner struct {
	root    string
	include []string
	exclude []string
}

// Collection is the outcome of reading every selected file
type Collection struct {
	Files   []string          // Files whose blocks were collected, in scan order
	Blocks  []types.CodeBlock // Blocks of all files, concatenated in file order
	Skipped []error           // Files that were selected but could not be read
}

// New creates a scanner for root. Invalid globs are configuration errors.
func New(root string, cfg config.Scan) (*Scanner, error) {
	s := &Scanner{
		root:    root,
		include: slices.Clone(cfg.Include),
		exclude: slices.Clone(cfg.Exclude),
	}

	if cfg.RespectGitignore {
		globs, err := LoadGitignore(root)
		if err != nil {
			return nil, bserrors.NewFileError("read", filepath.Join(root, ".gitignore"), err)
		}
		debug.LogScan("loaded %d gitignore exclusions\n", len(globs))
		s.exclude = append(s.exclude, globs...)
	}

	for _, group := range [][]string{s.include, s.exclude} {
		for _, pattern := range group {
			if !doublestar.ValidatePattern(pattern) {
				return nil, bserrors.NewConfigError("scan", pattern, fmt.Errorf("invalid glob pattern"))
			}
		}
	}
	return s, nil
}

// Files returns the selected files under the root, relative to it with
// forward slashes, in sorted order
func (s *Scanner) Files(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, bserrors.NewFileError("stat", s.root, err)
	}
	if !info.IsDir() {
		return nil, bserrors.NewFileError("scan", s.root, fmt.Errorf("%s is not a directory", s.root))
	}

	var files []string
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			// The root itself was checked above; unreadable subtrees are skipped
			debug.LogScan("skipping %s: %v\n", rel, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if rel != "." && s.excludesDir(rel) {
				debug.LogScan("pruning %s\n", rel)
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if s.selects(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

// Collect reads every selected file and extracts its blocks. A file that
// fails validation is skipped and reported in Skipped.
func (s *Scanner) Collect(ctx context.Context) (*Collection, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}

	c := &Collection{}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := security.ReadInput(filepath.Join(s.root, filepath.FromSlash(rel)))
		if err != nil {
			debug.LogScan("skipping %s: %v\n", rel, err)
			c.Skipped = append(c.Skipped, err)
			continue
		}
		c.Files = append(c.Files, rel)
		for block := range extract.Blocks(text) {
			c.Blocks = append(c.Blocks, block)
		}
	}
	return c, nil
}

func (s *Scanner) selects(rel string) bool {
	if matchAny(s.exclude, rel) {
		return false
	}
	if len(s.include) == 0 {
		return true
	}
	return matchAny(s.include, rel)
}

// excludesDir reports whether an exclusion of the form "<glob>/**" covers dir
func (s *Scanner) excludesDir(dir string) bool {
	for _, pattern := range s.exclude {
		base, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		if matched, _ := doublestar.Match(base, dir); matched {
			return true
		}
	}
	return false
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
