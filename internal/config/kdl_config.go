package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	bserrors "github.com/standardbeagle/blockscan/internal/errors"
)

// LoadKDL attempts to load configuration from the .blockscan.kdl file in dir
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, KDLFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil // No KDL config found, use defaults
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", KDLFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	cfg.Source = kdlPath
	return cfg, nil
}

// parseKDL overlays the document onto the defaults. Unknown nodes are ignored.
//
//	analysis { max_complexity 12; secret_keywords "password" "token" }
//	languages { python "pyi" "ipython" }
//	disable "select_star" "use_let_const"
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, bserrors.NewConfigError("kdl", "", fmt.Errorf("failed to parse KDL config: %w", err))
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_complexity":
					assignInt(cn, &cfg.Analysis.MaxComplexity)
				case "max_arguments":
					assignInt(cn, &cfg.Analysis.MaxArguments)
				case "docstring_min_lines":
					assignInt(cn, &cfg.Analysis.DocstringMinLines)
				case "type_hint_min_lines":
					assignInt(cn, &cfg.Analysis.TypeHintMinLines)
				case "min_secret_length":
					assignInt(cn, &cfg.Analysis.MinSecretLength)
				case "secret_keywords":
					if kws := collectStringArgs(cn); len(kws) > 0 {
						cfg.Analysis.SecretKeywords = kws
					}
				}
			}
		case "script":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_console_logs":
					assignInt(cn, &cfg.Script.MaxConsoleLogs)
				case "max_var_declarations":
					assignInt(cn, &cfg.Script.MaxVarDeclarations)
				}
			}
		case "patterns":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "high_complexity_score":
					assignInt(cn, &cfg.Patterns.HighComplexityScore)
				case "critical_issue_count":
					assignInt(cn, &cfg.Patterns.CriticalIssueCount)
				case "important_issue_count":
					assignInt(cn, &cfg.Patterns.ImportantIssueCount)
				}
			}
		case "languages":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "python":
					cfg.Languages.Python = append(cfg.Languages.Python, collectStringArgs(cn)...)
				case "javascript":
					cfg.Languages.JavaScript = append(cfg.Languages.JavaScript, collectStringArgs(cn)...)
				case "shell":
					cfg.Languages.Shell = append(cfg.Languages.Shell, collectStringArgs(cn)...)
				case "sql":
					cfg.Languages.SQL = append(cfg.Languages.SQL, collectStringArgs(cn)...)
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					assignInt(cn, &cfg.Performance.Workers)
				case "cache_entries":
					assignInt(cn, &cfg.Performance.CacheEntries)
				}
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = v })
			}
		case "scan":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					cfg.Scan.Include = collectStringArgs(cn)
				case "exclude":
					cfg.Scan.Exclude = append(cfg.Scan.Exclude, collectStringArgs(cn)...)
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Scan.RespectGitignore = b
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					assignInt(cn, &cfg.Watch.DebounceMs)
				}
			}
		case "disable":
			cfg.Disabled = append(cfg.Disabled, collectStringArgs(n)...)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both inline (`exclude "a" "b"`) and block
// (`exclude { "a"; "b" }`) forms.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// In block form the node name itself carries the string
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func assignInt(n *document.Node, target *int) {
	if v, ok := firstIntArg(n); ok {
		*target = v
	}
}
