package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Severity grades an issue or pattern. Critical > Important > Minor.
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityImportant Severity = "important"
	SeverityMinor     Severity = "minor"
)

// Rank returns the ordering weight of a severity; unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityImportant:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the three known severities.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// ParseSeverity converts a case-insensitive name into a Severity
func ParseSeverity(name string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q", name)
	}
	return s, nil
}

// MaxSnippetLength bounds the snippet carried by an issue.
const MaxSnippetLength = 200

// Issue is a single finding against a code block
type Issue struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"type"`    // Rule kind, e.g. "dangerous_eval"
	Message  string   `json:"message"` // Human readable description
	Snippet  string   `json:"snippet"` // Offending source, at most MaxSnippetLength runes
}

// NewIssue builds an issue, truncating the snippet to MaxSnippetLength runes
func NewIssue(severity Severity, kind, message, snippet string) Issue {
	return Issue{
		Severity: severity,
		Kind:     kind,
		Message:  message,
		Snippet:  Truncate(snippet, MaxSnippetLength),
	}
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Pattern is a run-level observation derived from the full issue list
type Pattern struct {
	Kind        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Learning is a remediation hint attached to a rule hit
type Learning struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Metrics counts what was seen during a run
type Metrics struct {
	TotalCodeBlocks  int `json:"total_code_blocks"`
	PythonBlocks     int `json:"python_blocks"`
	JavaScriptBlocks int `json:"javascript_blocks"`
	ShellBlocks      int `json:"shell_blocks"`
	SQLBlocks        int `json:"sql_blocks"`
	OtherBlocks      int `json:"other_blocks"`
	TotalFunctions   int `json:"total_functions"`
	TotalClasses     int `json:"total_classes"`
	TotalLines       int `json:"total_lines"`
	ComplexityScore  int `json:"complexity_score"` // Sum of complexities above the high threshold
}

// Add accumulates other into m
func (m *Metrics) Add(other Metrics) {
	m.TotalCodeBlocks += other.TotalCodeBlocks
	m.PythonBlocks += other.PythonBlocks
	m.JavaScriptBlocks += other.JavaScriptBlocks
	m.ShellBlocks += other.ShellBlocks
	m.SQLBlocks += other.SQLBlocks
	m.OtherBlocks += other.OtherBlocks
	m.TotalFunctions += other.TotalFunctions
	m.TotalClasses += other.TotalClasses
	m.TotalLines += other.TotalLines
	m.ComplexityScore += other.ComplexityScore
}

// ClassTotal returns the sum of the per-language block counters
func (m Metrics) ClassTotal() int {
	return m.PythonBlocks + m.JavaScriptBlocks + m.ShellBlocks + m.SQLBlocks + m.OtherBlocks
}

// AnalysisResult is the report for one run
type AnalysisResult struct {
	Issues    []Issue    `json:"issues"`
	Metrics   Metrics    `json:"metrics"`
	Patterns  []Pattern  `json:"patterns"`
	Learnings []Learning `json:"learnings"`
}

// NewAnalysisResult returns an empty result whose lists encode as [] rather than null
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Issues:    []Issue{},
		Patterns:  []Pattern{},
		Learnings: []Learning{},
	}
}

// CountBySeverity returns the number of issues with the given severity
func (r *AnalysisResult) CountBySeverity(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// CountByKind returns the number of issues of the given kind
func (r *AnalysisResult) CountByKind(kind string) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

// normalize replaces nil slices so the encoded report always carries arrays
func (r *AnalysisResult) normalize() {
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
	if r.Patterns == nil {
		r.Patterns = []Pattern{}
	}
	if r.Learnings == nil {
		r.Learnings = []Learning{}
	}
}

// EncodeReport renders the result as two-space indented JSON with a trailing newline
func EncodeReport(r *AnalysisResult) ([]byte, error) {
	if r == nil {
		r = NewAnalysisResult()
	}
	r.normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeReport parses a report. Malformed input yields an empty report rather
// than an error, matching how downstream consumers treat saved reports.
func DecodeReport(data []byte) *AnalysisResult {
	r := NewAnalysisResult()
	if err := json.Unmarshal(data, r); err != nil {
		return NewAnalysisResult()
	}
	r.normalize()
	return r
}
