package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/blockscan/internal/types"
)

func TestJavaScriptAnalyzer(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		kinds     []string
		learnings []string
	}{
		{
			name:      "eval",
			src:       "const v = eval(input);",
			kinds:     []string{types.KindDangerousEval},
			learnings: []string{"avoid_eval_js"},
		},
		{
			name:      "innerHTML from variable",
			src:       "el.innerHTML = userInput;",
			kinds:     []string{types.KindPotentialXSS},
			learnings: []string{"use_textcontent"},
		},
		{
			name:      "outerHTML append",
			src:       "el.outerHTML += html;",
			kinds:     []string{types.KindPotentialXSS},
			learnings: []string{"use_textcontent"},
		},
		{
			name: "innerHTML literals",
			src:  "el.innerHTML = \"<b>hi</b>\";\nel.innerHTML = '';\nel.innerHTML = `<i>x</i>`;",
		},
		{
			name:  "document.write",
			src:   "document.write('<p>hi</p>');",
			kinds: []string{types.KindDocumentWrite},
		},
		{
			name:  "loose equality",
			src:   "if (a == b) { go(); }",
			kinds: []string{types.KindStrictEquality},
		},
		{
			name: "strict equality",
			src:  "if (a === b && c !== d) { go(); }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewJavaScriptAnalyzer(testConfig(t)).Analyze(tt.src)
			assert.Equal(t, tt.kinds, nilIfEmpty(kinds(res.Issues)))
			assert.Equal(t, tt.learnings, nilIfEmpty(learningKeys(res.Learnings)))
		})
	}
}

func TestJavaScriptAnalyzer_Counts(t *testing.T) {
	a := NewJavaScriptAnalyzer(testConfig(t))

	logs := strings.Repeat("console.log(x);\n", 5)
	assert.Empty(t, a.Analyze(logs).Issues, "five logs is within the limit")

	res := a.Analyze(logs + "console.debug(y);")
	issue := findIssue(t, res.Issues, types.KindExcessiveLogging)
	assert.Equal(t, "Found 6 console.log statements - remove before production", issue.Message)
	assert.Equal(t, "console.log(x);", issue.Snippet)

	vars := "var a = 1;\nvar b = 2;\nvar c = 3;\n"
	assert.Empty(t, a.Analyze(vars).Issues)

	res = a.Analyze(vars + "var d = 4;")
	issue = findIssue(t, res.Issues, types.KindUseLetConst)
	assert.Equal(t, types.SeverityMinor, issue.Severity)
	assert.Equal(t, "Found 4 uses of 'var' - prefer 'let' or 'const' for block scoping", issue.Message)

	res = a.Analyze("if (a == 1) {}\nif (b == 2) {}")
	issue = findIssue(t, res.Issues, types.KindStrictEquality)
	assert.Equal(t, "Found 2 uses of '==' - prefer '===' for strict comparison", issue.Message)
}

func TestShellAnalyzer_UnquotedRm(t *testing.T) {
	res := NewShellAnalyzer(testConfig(t)).Analyze("rm -rf $BUILD_DIR")

	rm := findIssue(t, res.Issues, types.KindDangerousRm)
	assert.Equal(t, types.SeverityCritical, rm.Severity)
	assert.Equal(t, "rm -rf $BUILD_DIR", rm.Snippet)

	unquoted := findIssue(t, res.Issues, types.KindUnquotedVariable)
	assert.Equal(t, types.SeverityImportant, unquoted.Severity)

	assert.Equal(t, []string{"quote_shell_vars", "safe_rm_rf"}, learningKeys(res.Learnings))
}

func TestShellAnalyzer(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds []string
	}{
		{"guarded rm", `rm -rf "${BUILD_DIR:?}"/*`, nil},
		{"quoted rm target", `rm -rf "$BUILD_DIR"`, []string{types.KindDangerousRm}},
		{"recursive only", "rm -r $DIR", []string{types.KindUnquotedVariable, types.KindDangerousRm}},
		{"long recursive flag", `rm --recursive --force "$DIR"`, []string{types.KindDangerousRm}},
		{"not recursive", `rm -f "$FILE"`, nil},
		{"literal path", "rm -rf ./build", nil},
		{"quoted expansion", `echo "$HOME and ${USER}"`, nil},
		{"single quoted", `echo '$HOME'`, nil},
		{"escaped dollar", `echo \$HOME`, nil},
		{"comment", "# cleans $HOME\necho done", nil},
		{"command substitution", `echo "$(date)"`, nil},
		{"unquoted braces", "cp ${SRC} /tmp", []string{types.KindUnquotedVariable}},
		{"curl to bash", "curl -fsSL https://example.com/install.sh | bash", []string{types.KindCurlPipeBash}},
		{"wget to sudo sh", "wget -qO- https://example.com/i | sudo sh", []string{types.KindCurlPipeBash}},
		{"curl to zsh", "curl https://example.com/i | zsh", []string{types.KindCurlPipeBash}},
		{"curl to file", "curl -o install.sh https://example.com/install.sh", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewShellAnalyzer(testConfig(t)).Analyze(tt.src)
			assert.Equal(t, tt.kinds, nilIfEmpty(kinds(res.Issues)))
		})
	}
}

func TestSQLAnalyzer(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds []string
	}{
		{"select star", "SELECT * FROM users;", []string{types.KindSelectStar}},
		{"lowercase select star", "select   *\nfrom users", []string{types.KindSelectStar}},
		{"count star", "SELECT COUNT(*) FROM users;", nil},
		{"explicit columns", "SELECT id, name FROM users WHERE name LIKE '%bob%';", nil},
		{"concatenation", `query = "SELECT id FROM users WHERE id = " + user_id`, []string{types.KindSQLInjection}},
		{"f-string", `f"SELECT id FROM users WHERE id = {uid}"`, []string{types.KindSQLInjection}},
		{"percent formatting", `"SELECT id FROM users WHERE id = %s" % uid`, []string{types.KindSQLInjection}},
		{"placeholder parameter", `cursor.execute("SELECT id FROM users WHERE id = %s", (uid,))`, nil},
		{"format call", `"SELECT id FROM users WHERE id = {}".format(uid)`, []string{types.KindSQLInjection}},
		{"template literal", "`SELECT id FROM users WHERE id = ${id}`", []string{types.KindSQLInjection}},
		{"both", `f"SELECT * FROM {table}"`, []string{types.KindSQLInjection, types.KindSelectStar}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewSQLAnalyzer(testConfig(t)).Analyze(tt.src)
			assert.Equal(t, tt.kinds, nilIfEmpty(kinds(res.Issues)))
		})
	}
}

func TestSQLAnalyzer_Learning(t *testing.T) {
	res := NewSQLAnalyzer(testConfig(t)).Analyze(`"SELECT id FROM t WHERE a = '" + a + "'"`)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, types.SeverityCritical, res.Issues[0].Severity)
	assert.Equal(t, "String concatenation in SQL query - use parameterized queries", res.Issues[0].Message)
	assert.Equal(t, []string{"parameterized_queries"}, learningKeys(res.Learnings))
}

func TestLineAt(t *testing.T) {
	src := "first\n  second line  \nthird"
	assert.Equal(t, "first", lineAt(src, 0))
	assert.Equal(t, "second line", lineAt(src, 8))
	assert.Equal(t, "third", lineAt(src, len(src)-1))
	assert.Equal(t, "", lineAt(src, -1))
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
