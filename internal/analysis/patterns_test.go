package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/blockscan/internal/types"
)

func patternKinds(patterns []types.Pattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.Kind)
	}
	return out
}

func resultWith(issues ...types.Issue) *types.AnalysisResult {
	r := types.NewAnalysisResult()
	r.Issues = append(r.Issues, issues...)
	return r
}

func repeatIssue(n int, severity types.Severity, kind string) []types.Issue {
	out := make([]types.Issue, n)
	for i := range out {
		out[i] = types.NewIssue(severity, kind, "m", "s")
	}
	return out
}

func TestSynthesizePatterns_Empty(t *testing.T) {
	r := resultWith()
	SynthesizePatterns(r, testConfig(t).Patterns)
	assert.Empty(t, r.Patterns)
}

func TestSynthesizePatterns_CriticalTakesPrecedence(t *testing.T) {
	issues := repeatIssue(3, types.SeverityCritical, types.KindSelectStar)
	issues = append(issues, repeatIssue(6, types.SeverityImportant, types.KindUnquotedVariable)...)
	r := resultWith(issues...)

	SynthesizePatterns(r, testConfig(t).Patterns)
	require.Equal(t, []string{types.PatternCriticalIssues}, patternKinds(r.Patterns))
	assert.Equal(t, "Code has 3 critical issues requiring immediate attention", r.Patterns[0].Description)
	assert.Equal(t, types.SeverityCritical, r.Patterns[0].Severity)
}

func TestSynthesizePatterns_QualityConcerns(t *testing.T) {
	r := resultWith(repeatIssue(6, types.SeverityImportant, types.KindUnquotedVariable)...)

	SynthesizePatterns(r, testConfig(t).Patterns)
	require.Equal(t, []string{types.PatternQualityConcerns}, patternKinds(r.Patterns))
	assert.Equal(t, "Code has 6 important issues to address", r.Patterns[0].Description)

	r = resultWith(repeatIssue(4, types.SeverityImportant, types.KindUnquotedVariable)...)
	SynthesizePatterns(r, testConfig(t).Patterns)
	assert.Empty(t, r.Patterns)
}

func TestSynthesizePatterns_Security(t *testing.T) {
	r := resultWith(
		types.NewIssue(types.SeverityCritical, types.KindDangerousEval, "m", "s"),
		types.NewIssue(types.SeverityCritical, types.KindDangerousRm, "m", "s"),
		types.NewIssue(types.SeverityMinor, types.KindSelectStar, "m", "s"),
	)

	SynthesizePatterns(r, testConfig(t).Patterns)
	require.Equal(t, []string{types.PatternSecurity}, patternKinds(r.Patterns))
	assert.Equal(t, "Found 2 security issues in code", r.Patterns[0].Description)
}

func TestSynthesizePatterns_ComplexityThreshold(t *testing.T) {
	r := resultWith()
	r.Metrics.ComplexityScore = 20
	SynthesizePatterns(r, testConfig(t).Patterns)
	assert.Empty(t, r.Patterns, "the threshold is exclusive")

	r = resultWith()
	r.Metrics.ComplexityScore = 21
	SynthesizePatterns(r, testConfig(t).Patterns)
	require.Equal(t, []string{types.PatternHighComplexity}, patternKinds(r.Patterns))
	assert.Equal(t, "Code has high complexity score of 21", r.Patterns[0].Description)
}

func TestSynthesizePatterns_BareExcepts(t *testing.T) {
	r := resultWith(repeatIssue(2, types.SeverityImportant, types.KindBareExcept)...)

	SynthesizePatterns(r, testConfig(t).Patterns)
	require.Equal(t, []string{types.PatternPoorErrorHandling}, patternKinds(r.Patterns))
	assert.Equal(t, "Found 2 bare except clauses", r.Patterns[0].Description)
}

func TestSynthesizePatterns_ConfiguredThresholds(t *testing.T) {
	thresholds := testConfig(t).Patterns
	thresholds.CriticalIssueCount = 1

	r := resultWith(types.NewIssue(types.SeverityCritical, types.KindSQLInjection, "m", "s"))
	SynthesizePatterns(r, thresholds)
	assert.Equal(t, []string{types.PatternSecurity, types.PatternCriticalIssues}, patternKinds(r.Patterns))
}
