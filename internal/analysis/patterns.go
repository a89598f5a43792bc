package analysis

import (
	"fmt"

	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/types"
)

// SynthesizePatterns derives run-level patterns from the merged issues and
// metrics. It must run once, after every block has been merged.
func SynthesizePatterns(result *types.AnalysisResult, thresholds config.Patterns) {
	add := func(kind, description string, severity types.Severity) {
		result.Patterns = append(result.Patterns, types.Pattern{
			Kind:        kind,
			Description: description,
			Severity:    severity,
		})
	}

	security, bareExcepts := 0, 0
	for _, issue := range result.Issues {
		if types.IsSecurityKind(issue.Kind) {
			security++
		}
		if issue.Kind == types.KindBareExcept {
			bareExcepts++
		}
	}

	if security > 0 {
		add(types.PatternSecurity, fmt.Sprintf("Found %d security issues in code", security), types.SeverityCritical)
	}

	if score := result.Metrics.ComplexityScore; score > thresholds.HighComplexityScore {
		add(types.PatternHighComplexity, fmt.Sprintf("Code has high complexity score of %d", score), types.SeverityImportant)
	}

	if bareExcepts > 0 {
		add(types.PatternPoorErrorHandling, fmt.Sprintf("Found %d bare except clauses", bareExcepts), types.SeverityImportant)
	}

	critical := result.CountBySeverity(types.SeverityCritical)
	important := result.CountBySeverity(types.SeverityImportant)
	switch {
	case critical >= thresholds.CriticalIssueCount:
		add(types.PatternCriticalIssues,
			fmt.Sprintf("Code has %d critical issues requiring immediate attention", critical), types.SeverityCritical)
	case important >= thresholds.ImportantIssueCount:
		add(types.PatternQualityConcerns,
			fmt.Sprintf("Code has %d important issues to address", important), types.SeverityImportant)
	}
}
