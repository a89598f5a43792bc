// Package pathutil converts paths for user-facing output.
//
// Files are read through absolute or root-joined paths, but diagnostics
// should name them relative to the directory the user pointed at.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/notes/day1.md", "/home/user/notes") → "day1.md"
//   - ToRelative("/other/location/file.md", "/home/user/notes") → "/other/location/file.md" (outside root)
//   - ToRelative("day1.md", "/home/user/notes") → "day1.md" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Different volumes on Windows
		return absPath
	}

	// Outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}

	return filepath.ToSlash(relPath)
}

// ToRelativeFrom resolves path against the working directory and makes it
// relative to rootDir, which may itself be relative
func ToRelativeFrom(path, rootDir string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return path
	}
	return ToRelative(absPath, absRoot)
}
