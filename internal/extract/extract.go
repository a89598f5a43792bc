// Package extract finds fenced code regions in free-form text.
package extract

import (
	"iter"
	"regexp"
	"strings"

	"github.com/standardbeagle/blockscan/internal/types"
)

// UnknownLanguage is the tag given to fences without one
const UnknownLanguage = "unknown"

// fencePattern matches ```tag\n body ``` with a non-greedy body
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// newlines maps CRLF and bare CR line endings to LF
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines converts Windows and classic Mac line endings to "\n"
func NormalizeNewlines(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	return newlines.Replace(text)
}

// Blocks yields the fenced code blocks of text in document order. Line
// endings are normalized first, so CRLF documents yield the same blocks.
// The sequence can be ranged over any number of times.
func Blocks(text string) iter.Seq[types.CodeBlock] {
	text = NormalizeNewlines(text)
	return func(yield func(types.CodeBlock) bool) {
		rest := text
		for {
			loc := fencePattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				return
			}
			block := types.CodeBlock{
				Language: normalizeTag(rest[loc[2]:loc[3]]),
				Source:   strings.TrimSpace(rest[loc[4]:loc[5]]),
			}
			if !yield(block) {
				return
			}
			rest = rest[loc[1]:]
		}
	}
}

// Collect materializes Blocks(text)
func Collect(text string) []types.CodeBlock {
	var blocks []types.CodeBlock
	for b := range Blocks(text) {
		blocks = append(blocks, b)
	}
	return blocks
}

func normalizeTag(tag string) string {
	if tag == "" {
		return UnknownLanguage
	}
	return strings.ToLower(tag)
}
