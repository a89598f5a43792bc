package analysis

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/standardbeagle/blockscan/internal/pyast"
	"github.com/standardbeagle/blockscan/internal/types"
)

// callRule flags calls to a fixed set of dotted names
type callRule struct {
	names    []string
	severity types.Severity
	kind     string
	message  func(name string) string
	when     func(*pyast.Call) bool // extra condition, nil matches every call
	learning *types.Learning
}

// securityCallRules is the catalog of dangerous Python calls
var securityCallRules = []callRule{
	{
		names:    []string{"eval", "exec"},
		severity: types.SeverityCritical,
		kind:     types.KindDangerousEval,
		message: func(name string) string {
			return fmt.Sprintf("Use of %s() is dangerous - can execute arbitrary code", name)
		},
		learning: &types.Learning{
			Key:  "avoid_eval_exec",
			Text: "Avoid eval() and exec() - use ast.literal_eval() for data parsing or explicit parsing",
		},
	},
	{
		names:    []string{"pickle.loads", "pickle.load"},
		severity: types.SeverityCritical,
		kind:     types.KindDeserialization,
		message: func(string) string {
			return "pickle.load() can execute arbitrary code - don't use with untrusted data"
		},
	},
	{
		names:    []string{"subprocess.call", "subprocess.run", "subprocess.Popen"},
		severity: types.SeverityImportant,
		kind:     types.KindShellInjection,
		message: func(string) string {
			return "subprocess with shell=True can lead to command injection"
		},
		when: hasLiteralShellTrue,
		learning: &types.Learning{
			Key:  "subprocess_shell_false",
			Text: "Use subprocess with shell=False and pass arguments as a list",
		},
	},
	{
		names:    []string{"os.system"},
		severity: types.SeverityImportant,
		kind:     types.KindShellInjection,
		message: func(string) string {
			return "os.system() is vulnerable to command injection - use subprocess instead"
		},
	},
}

var secretLearning = types.Learning{
	Key:  "use_env_vars_for_secrets",
	Text: "Store secrets in environment variables or secure vaults, not in code",
}

// checkSecurity walks the module once, applying the call catalog to every
// call and the secret check to every plain assignment
func (pa *PythonAnalyzer) checkSecurity(mod *pyast.Module, lines []string, c *collector) {
	pyast.Inspect(mod, func(n pyast.Node) bool {
		switch n := n.(type) {
		case *pyast.Call:
			pa.checkCall(n, lines, c)
		case *pyast.Assign:
			pa.checkSecret(n, c)
		}
		return true
	})
}

func (pa *PythonAnalyzer) checkCall(call *pyast.Call, lines []string, c *collector) {
	name := callName(call)
	if name == "" {
		return
	}
	for _, rule := range securityCallRules {
		if !slices.Contains(rule.names, name) {
			continue
		}
		if rule.when != nil && !rule.when(call) {
			continue
		}
		if c.issue(rule.severity, rule.kind, rule.message(name), sourceLines(lines, call.Pos())) && rule.learning != nil {
			c.learning(rule.learning.Key, rule.learning.Text)
		}
	}
}

// checkSecret flags string literals bound to names that look like credentials
func (pa *PythonAnalyzer) checkSecret(assign *pyast.Assign, c *collector) {
	value, ok := assign.Value.(*pyast.Constant)
	if !ok || value.Kind != pyast.ConstStr {
		return
	}
	if utf8.RuneCountInString(value.Value) <= pa.cfg.Analysis.MinSecretLength {
		return
	}
	for _, target := range assign.Targets {
		name, ok := target.(*pyast.Name)
		if !ok || !pa.looksSecret(name.ID) {
			continue
		}
		msg := fmt.Sprintf("Potential hardcoded secret in variable '%s'", name.ID)
		if c.issue(types.SeverityCritical, types.KindHardcodedSecret, msg, name.ID+" = <redacted>") {
			c.learning(secretLearning.Key, secretLearning.Text)
		}
	}
}

func (pa *PythonAnalyzer) looksSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range pa.cfg.Analysis.SecretKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func hasLiteralShellTrue(call *pyast.Call) bool {
	for _, kw := range call.Keywords {
		if kw.Arg != "shell" {
			continue
		}
		if c, ok := kw.Value.(*pyast.Constant); ok && c.Kind == pyast.ConstTrue {
			return true
		}
	}
	return false
}

// callName returns the dotted name of the called function ("os.path.join").
// An attribute chain rooted in something other than a name keeps only the
// attribute parts, and any other callee yields "".
func callName(call *pyast.Call) string {
	switch fn := call.Func.(type) {
	case *pyast.Name:
		return fn.ID
	case *pyast.Attribute:
		var parts []string
		var cur pyast.Expr = fn
		for {
			attr, ok := cur.(*pyast.Attribute)
			if !ok {
				break
			}
			parts = append(parts, attr.Attr)
			cur = attr.Value
		}
		if root, ok := cur.(*pyast.Name); ok {
			parts = append(parts, root.ID)
		}
		slices.Reverse(parts)
		return strings.Join(parts, ".")
	}
	return ""
}

// sourceLines returns the source lines a node spans
func sourceLines(lines []string, span pyast.Span) string {
	start, end := span.Line-1, span.EndLine
	if start < 0 || start >= len(lines) {
		return ""
	}
	end = min(max(end, start+1), len(lines))
	return strings.Join(lines[start:end], "\n")
}
