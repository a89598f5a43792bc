// Package display renders analysis reports for terminals.
package display

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/blockscan/internal/types"
)

// TreeFormatter formats analysis reports as trees for display
type TreeFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls report formatting
type FormatterOptions struct {
	Format       string // "text", "json", "compact"
	ShowSnippets bool   // Show the first line of each issue's snippet
	AgentMode    bool   // Prefix severities with markers
	MaxIssues    int    // Issues listed per severity, 0 for all
	Indent       string // Indentation for snippet lines
}

// treeNode is one line of the rendered tree
type treeNode struct {
	label    string
	children []*treeNode
}

func (n *treeNode) add(label string) *treeNode {
	child := &treeNode{label: label}
	n.children = append(n.children, child)
	return child
}

// severityOrder is the display order of issue groups
var severityOrder = []types.Severity{types.SeverityCritical, types.SeverityImportant, types.SeverityMinor}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &TreeFormatter{options: options}
}

// Format renders a report
func (tf *TreeFormatter) Format(report *types.AnalysisResult) string {
	if report == nil {
		return "No report data available"
	}

	switch tf.options.Format {
	case "json":
		return tf.formatJSON(report)
	case "compact":
		return tf.formatCompact(report)
	default:
		return tf.formatText(report)
	}
}

// formatText renders the header followed by the issue, pattern and
// learning trees
func (tf *TreeFormatter) formatText(report *types.AnalysisResult) string {
	var sb strings.Builder
	m := report.Metrics

	sb.WriteString("Code block analysis\n")
	sb.WriteString(fmt.Sprintf("Blocks: %d (python %d, javascript %d, shell %d, sql %d, other %d) | Lines: %d\n",
		m.TotalCodeBlocks, m.PythonBlocks, m.JavaScriptBlocks, m.ShellBlocks, m.SQLBlocks, m.OtherBlocks, m.TotalLines))
	sb.WriteString(fmt.Sprintf("Functions: %d | Classes: %d | Complexity score: %d\n",
		m.TotalFunctions, m.TotalClasses, m.ComplexityScore))

	for _, root := range []*treeNode{tf.issueTree(report), tf.patternTree(report), tf.learningTree(report)} {
		sb.WriteString("\n")
		tf.formatNode(&sb, root, "", true, true)
	}
	return sb.String()
}

func (tf *TreeFormatter) issueTree(report *types.AnalysisResult) *treeNode {
	root := &treeNode{label: fmt.Sprintf("Issues (%d)", len(report.Issues))}
	for _, severity := range severityOrder {
		var group []types.Issue
		for _, issue := range report.Issues {
			if issue.Severity == severity {
				group = append(group, issue)
			}
		}
		if len(group) == 0 {
			continue
		}

		node := root.add(fmt.Sprintf("%s (%d)", tf.severityLabel(severity), len(group)))
		shown := group
		if tf.options.MaxIssues > 0 && len(shown) > tf.options.MaxIssues {
			shown = shown[:tf.options.MaxIssues]
		}
		for _, issue := range shown {
			label := fmt.Sprintf("%s: %s", issue.Kind, issue.Message)
			if snippet := firstLine(issue.Snippet); tf.options.ShowSnippets && snippet != "" {
				label += "\n" + tf.options.Indent + snippet
			}
			node.add(label)
		}
		if hidden := len(group) - len(shown); hidden > 0 {
			node.add(fmt.Sprintf("(+%d more)", hidden))
		}
	}
	return root
}

func (tf *TreeFormatter) patternTree(report *types.AnalysisResult) *treeNode {
	root := &treeNode{label: fmt.Sprintf("Patterns (%d)", len(report.Patterns))}
	for _, p := range report.Patterns {
		root.add(fmt.Sprintf("[%s] %s: %s", tf.severityLabel(p.Severity), p.Kind, p.Description))
	}
	return root
}

func (tf *TreeFormatter) learningTree(report *types.AnalysisResult) *treeNode {
	root := &treeNode{label: fmt.Sprintf("Learnings (%d)", len(report.Learnings))}
	for _, l := range report.Learnings {
		root.add(fmt.Sprintf("%s: %s", l.Key, l.Text))
	}
	return root
}

// formatNode recursively formats a tree node. Continuation lines of a
// multi-line label are aligned under the label.
func (tf *TreeFormatter) formatNode(sb *strings.Builder, node *treeNode, prefix string, isLast bool, isRoot bool) {
	var branch string
	if isRoot {
		branch = "→ "
	} else if isLast {
		branch = "└─→ "
	} else {
		branch = "├─→ "
	}

	var childPrefix string
	if isRoot || isLast {
		childPrefix = prefix + "  "
	} else {
		childPrefix = prefix + "│ "
	}

	lines := strings.Split(node.label, "\n")
	sb.WriteString(prefix)
	sb.WriteString(branch)
	sb.WriteString(lines[0])
	sb.WriteString("\n")
	for _, line := range lines[1:] {
		sb.WriteString(childPrefix)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	for i, child := range node.children {
		tf.formatNode(sb, child, childPrefix, i == len(node.children)-1, false)
	}
}

func (tf *TreeFormatter) severityLabel(s types.Severity) string {
	if !tf.options.AgentMode {
		return string(s)
	}
	switch s {
	case types.SeverityCritical:
		return "🔴 " + string(s)
	case types.SeverityImportant:
		return "🟡 " + string(s)
	default:
		return "🟢 " + string(s)
	}
}

// formatCompact renders a single summary line
func (tf *TreeFormatter) formatCompact(report *types.AnalysisResult) string {
	parts := []string{fmt.Sprintf("%d blocks", report.Metrics.TotalCodeBlocks)}

	counts := make([]string, 0, len(severityOrder))
	for _, s := range severityOrder {
		counts = append(counts, fmt.Sprintf("%d %s", report.CountBySeverity(s), s))
	}
	parts = append(parts, strings.Join(counts, ", "))

	if len(report.Patterns) > 0 {
		kinds := make([]string, 0, len(report.Patterns))
		for _, p := range report.Patterns {
			kinds = append(kinds, p.Kind)
		}
		parts = append(parts, "patterns: "+strings.Join(kinds, ", "))
	}
	return strings.Join(parts, " | ")
}

// formatJSON renders the report in its wire form
func (tf *TreeFormatter) formatJSON(report *types.AnalysisResult) string {
	data, err := types.EncodeReport(report)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
