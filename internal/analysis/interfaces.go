// Package analysis evaluates fenced code blocks and aggregates the findings
// into a report.
package analysis

import (
	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/types"
)

// BlockAnalyzer defines the interface for language-specific block analysis
type BlockAnalyzer interface {
	// Analyze inspects one block's source. It never fails: problems with the
	// block itself are reported as issues.
	Analyze(source string) *BlockResult

	// Class returns the language class this analyzer handles
	Class() types.LanguageClass
}

// BlockResult holds the findings for one or more blocks. Results combine
// with Merge, which is associative, so blocks can be analyzed independently
// and reduced in block order.
type BlockResult struct {
	Issues    []types.Issue
	Learnings []types.Learning
	Metrics   types.Metrics
}

// Merge appends other's findings after r's and sums the metrics
func (r *BlockResult) Merge(other *BlockResult) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.Learnings = append(r.Learnings, other.Learnings...)
	r.Metrics.Add(other.Metrics)
}

// collector records findings for one block, dropping disabled rule kinds
type collector struct {
	res *BlockResult
	cfg *config.Config
}

func newCollector(cfg *config.Config) *collector {
	return &collector{res: &BlockResult{}, cfg: cfg}
}

// issue records an issue and reports whether it was kept. Callers attach
// learnings and metric contributions only to kept issues.
func (c *collector) issue(severity types.Severity, kind, message, snippet string) bool {
	if c.cfg.IsDisabled(kind) {
		return false
	}
	c.res.Issues = append(c.res.Issues, types.NewIssue(severity, kind, message, snippet))
	return true
}

func (c *collector) learning(key, text string) {
	c.res.Learnings = append(c.res.Learnings, types.Learning{Key: key, Text: text})
}
