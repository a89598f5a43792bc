package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrder(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityImportant.Rank())
	assert.Greater(t, SeverityImportant.Rank(), SeverityMinor.Rank())
	assert.False(t, Severity("fatal").Valid())

	s, err := ParseSeverity(" Critical ")
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, s)

	_, err = ParseSeverity("high")
	assert.Error(t, err)
}

func TestNewIssue_TruncatesSnippet(t *testing.T) {
	long := strings.Repeat("é", MaxSnippetLength+50)
	issue := NewIssue(SeverityMinor, "select_star", "msg", long)
	assert.Equal(t, MaxSnippetLength, len([]rune(issue.Snippet)))

	short := NewIssue(SeverityMinor, "select_star", "msg", "SELECT *")
	assert.Equal(t, "SELECT *", short.Snippet)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
}

func TestEncodeReport_EmptyListsAreArrays(t *testing.T) {
	data, err := EncodeReport(&AnalysisResult{})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"issues": []`)
	assert.Contains(t, out, `"patterns": []`)
	assert.Contains(t, out, `"learnings": []`)
	assert.Contains(t, out, `"total_code_blocks": 0`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestEncodeReport_WireKeys(t *testing.T) {
	r := NewAnalysisResult()
	r.Issues = append(r.Issues, NewIssue(SeverityCritical, "dangerous_eval", "Use of eval()", "eval(x)"))
	r.Patterns = append(r.Patterns, Pattern{Kind: "security_vulnerabilities", Description: "Found 1 security issues in code", Severity: SeverityCritical})
	r.Learnings = append(r.Learnings, Learning{Key: "avoid_eval_exec", Text: "Avoid eval()"})

	data, err := EncodeReport(r)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"type": "dangerous_eval"`)
	assert.Contains(t, out, `"severity": "critical"`)
	assert.Contains(t, out, `"key": "avoid_eval_exec"`)
	assert.Contains(t, out, `"description": "Found 1 security issues in code"`)
}

func TestReportRoundTrip(t *testing.T) {
	r := NewAnalysisResult()
	r.Metrics.CountBlock(ClassPython, 4)
	r.Metrics.CountBlock(ClassShell, 1)
	r.Metrics.TotalFunctions = 2
	r.Metrics.ComplexityScore = 12
	r.Issues = append(r.Issues,
		NewIssue(SeverityImportant, "bare_except", "Bare except clause in function 'f'", "def f(): <html> & more"),
		NewIssue(SeverityMinor, "missing_docstring", "Function 'g' lacks a docstring", "def g():"),
	)
	r.Learnings = append(r.Learnings, Learning{Key: "quote_shell_vars", Text: `Always quote shell variables: use "$var" instead of $var`})

	data, err := EncodeReport(r)
	require.NoError(t, err)

	decoded := DecodeReport(data)
	assert.Equal(t, r, decoded)
}

func TestDecodeReport_Malformed(t *testing.T) {
	for _, input := range []string{"", "{", "[1,2]", "not json", `{"issues": 5}`} {
		r := DecodeReport([]byte(input))
		require.NotNil(t, r, input)
		assert.Empty(t, r.Issues, input)
		assert.NotNil(t, r.Issues, input)
		assert.Equal(t, Metrics{}, r.Metrics, input)
	}
}

func TestMetrics_CountBlockAndAdd(t *testing.T) {
	var m Metrics
	m.CountBlock(ClassPython, 3)
	m.CountBlock(ClassScript, 1)
	m.CountBlock(ClassQuery, 2)
	m.CountBlock(ClassOther, 1)

	assert.Equal(t, 4, m.TotalCodeBlocks)
	assert.Equal(t, m.TotalCodeBlocks, m.ClassTotal())
	assert.Equal(t, 7, m.TotalLines)

	var total Metrics
	total.Add(m)
	total.Add(m)
	assert.Equal(t, 8, total.TotalCodeBlocks)
	assert.Equal(t, 2, total.SQLBlocks)
	assert.Equal(t, total.TotalCodeBlocks, total.ClassTotal())
}

func TestLanguageClassNames(t *testing.T) {
	for _, c := range []LanguageClass{ClassOther, ClassPython, ClassScript, ClassShell, ClassQuery} {
		parsed, ok := ParseLanguageClass(c.String())
		require.True(t, ok)
		assert.Equal(t, c, parsed)
	}
	_, ok := ParseLanguageClass("cobol")
	assert.False(t, ok)
}
