package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestToRelative(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("table uses POSIX paths")
	}

	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{"simple relative path", "/home/user/notes/day1.md", "/home/user/notes", "day1.md"},
		{"nested relative path", "/home/user/notes/2024/june/day1.md", "/home/user/notes", "2024/june/day1.md"},
		{"same directory", "/home/user/notes", "/home/user/notes", "."},
		{"already relative path", "day1.md", "/home/user/notes", "day1.md"},
		{"path outside root", "/other/location/file.md", "/home/user/notes", "/other/location/file.md"},
		{"sibling with shared prefix", "/home/user/notes-old/a.md", "/home/user/notes", "/home/user/notes-old/a.md"},
		{"dot-dot prefixed name inside root", "/home/user/notes/..hidden.md", "/home/user/notes", "..hidden.md"},
		{"empty root directory", "/home/user/notes/a.md", "", "/home/user/notes/a.md"},
		{"empty absolute path", "", "/home/user/notes", ""},
		{"unclean paths", "/home/user/notes/./sub/../a.md", "/home/user/notes/", "a.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToRelative(tt.absPath, tt.rootDir); got != tt.expected {
				t.Errorf("ToRelative(%q, %q) = %q, want %q", tt.absPath, tt.rootDir, got, tt.expected)
			}
		})
	}
}

func TestToRelativeFrom(t *testing.T) {
	root := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	relRoot, err := filepath.Rel(wd, root)
	if err != nil {
		t.Skip("temp dir is not reachable from the working directory")
	}

	got := ToRelativeFrom(filepath.Join(relRoot, "sub", "a.md"), relRoot)
	if got != "sub/a.md" {
		t.Errorf("ToRelativeFrom() = %q, want %q", got, "sub/a.md")
	}
}
