package types

// CodeBlock is one fenced region extracted from an input document
type CodeBlock struct {
	Language string // Normalized lowercase tag, "unknown" when absent
	Source   string // Body with surrounding whitespace trimmed
}

// LanguageClass is the analyzer family a block is routed to
type LanguageClass int

const (
	ClassOther LanguageClass = iota
	ClassPython
	ClassScript // JavaScript and TypeScript dialects
	ClassShell
	ClassQuery // SQL dialects
)

// String returns the class name used in logs and metrics
func (c LanguageClass) String() string {
	switch c {
	case ClassPython:
		return "python"
	case ClassScript:
		return "javascript"
	case ClassShell:
		return "shell"
	case ClassQuery:
		return "sql"
	default:
		return "other"
	}
}

// ParseLanguageClass maps a class name back to its value
func ParseLanguageClass(name string) (LanguageClass, bool) {
	switch name {
	case "python":
		return ClassPython, true
	case "javascript":
		return ClassScript, true
	case "shell":
		return ClassShell, true
	case "sql":
		return ClassQuery, true
	case "other":
		return ClassOther, true
	}
	return ClassOther, false
}

// CountBlock records one block of class c in m
func (m *Metrics) CountBlock(c LanguageClass, lines int) {
	m.TotalCodeBlocks++
	m.TotalLines += lines
	switch c {
	case ClassPython:
		m.PythonBlocks++
	case ClassScript:
		m.JavaScriptBlocks++
	case ClassShell:
		m.ShellBlocks++
	case ClassQuery:
		m.SQLBlocks++
	default:
		m.OtherBlocks++
	}
}
