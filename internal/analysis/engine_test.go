package analysis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/blockscan/internal/types"
)

func fence(tag, body string) string {
	return "```" + tag + "\n" + body + "\n```\n"
}

// sampleDocument mixes every analyzer class with prose between the fences
func sampleDocument() string {
	var b strings.Builder
	b.WriteString("Intro text.\n")
	b.WriteString(fence("python", "import pickle\n\ndef load(blob):\n    try:\n        return pickle.loads(blob)\n    except:\n        return None"))
	b.WriteString("Then some shell:\n")
	b.WriteString(fence("bash", "rm -rf $BUILD_DIR"))
	b.WriteString(fence("js", "el.innerHTML = data;\nif (a == b) {}"))
	b.WriteString(fence("sql", "SELECT * FROM users"))
	b.WriteString(fence("", "plain text"))
	b.WriteString(fence("python", "def broken(:\n    pass"))
	return b.String()
}

func TestEngine_NoFences(t *testing.T) {
	res, err := NewEngine(testConfig(t)).AnalyzeText(context.Background(), "just prose, no code")
	require.NoError(t, err)

	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Patterns)
	assert.Empty(t, res.Learnings)
	assert.Equal(t, types.Metrics{}, res.Metrics)

	data, err := types.EncodeReport(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"issues": []`)
}

func TestEngine_NilConfigUsesDefaults(t *testing.T) {
	e := NewEngine(nil)
	require.NotNil(t, e.Config())
	assert.Equal(t, 10, e.Config().Analysis.MaxComplexity)
	assert.GreaterOrEqual(t, e.Config().Performance.Workers, 1)
}

func TestEngine_MixedDocument(t *testing.T) {
	res, err := NewEngine(testConfig(t)).AnalyzeText(context.Background(), sampleDocument())
	require.NoError(t, err)

	m := res.Metrics
	assert.Equal(t, 6, m.TotalCodeBlocks)
	assert.Equal(t, m.TotalCodeBlocks, m.ClassTotal())
	assert.Equal(t, 2, m.PythonBlocks)
	assert.Equal(t, 1, m.ShellBlocks)
	assert.Equal(t, 1, m.JavaScriptBlocks)
	assert.Equal(t, 1, m.SQLBlocks)
	assert.Equal(t, 1, m.OtherBlocks)
	assert.Equal(t, 1, m.TotalFunctions, "the broken block contributes no functions")

	rm := findIssue(t, res.Issues, types.KindDangerousRm)
	assert.Equal(t, types.SeverityCritical, rm.Severity)
	unquoted := findIssue(t, res.Issues, types.KindUnquotedVariable)
	assert.Equal(t, types.SeverityImportant, unquoted.Severity)

	syntax := findIssue(t, res.Issues, types.KindSyntaxError)
	assert.Contains(t, syntax.Snippet, "def broken(")

	assert.Equal(t, 1, res.CountByKind(types.KindBareExcept))
	assert.Contains(t, patternKinds(res.Patterns), types.PatternSecurity)
	assert.Contains(t, patternKinds(res.Patterns), types.PatternPoorErrorHandling)
}

func TestEngine_IssueOrderFollowsBlocks(t *testing.T) {
	doc := fence("sql", "SELECT * FROM a") + fence("python", "x = eval(y)") + fence("sql", "SELECT * FROM b")

	res, err := NewEngine(testConfig(t), WithWorkers(4)).AnalyzeText(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, []string{types.KindSelectStar, types.KindDangerousEval, types.KindSelectStar}, kinds(res.Issues))
	assert.Equal(t, "SELECT * FROM a", res.Issues[0].Snippet)
	assert.Equal(t, "SELECT * FROM b", res.Issues[2].Snippet)
}

func TestEngine_DeterministicAcrossWorkerCounts(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString(sampleDocument())
		fmt.Fprintf(&b, "%s", fence("python", fmt.Sprintf("x%d = eval(y)", i)))
	}
	doc := b.String()

	serial, err := NewEngine(testConfig(t), WithWorkers(1), WithoutCache()).AnalyzeText(context.Background(), doc)
	require.NoError(t, err)

	for _, workers := range []int{2, 8, 32} {
		parallel, err := NewEngine(testConfig(t), WithWorkers(workers)).AnalyzeText(context.Background(), doc)
		require.NoError(t, err)
		assert.Equal(t, serial, parallel, "workers=%d", workers)
	}
}

func TestEngine_CacheParity(t *testing.T) {
	e := NewEngine(testConfig(t))
	doc := sampleDocument()

	first, err := e.AnalyzeText(context.Background(), doc)
	require.NoError(t, err)
	second, err := e.AnalyzeText(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats, ok := e.CacheStats()
	require.True(t, ok)
	assert.Equal(t, int64(6), stats.Hits)

	_, ok = NewEngine(testConfig(t), WithoutCache()).CacheStats()
	assert.False(t, ok)
}

func TestEngine_LearningsNotDeduplicated(t *testing.T) {
	doc := fence("python", "a = eval(x)") + fence("python", "b = eval(y)")

	res, err := NewEngine(testConfig(t)).AnalyzeText(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"avoid_eval_exec", "avoid_eval_exec"}, learningKeys(res.Learnings))
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(string) *BlockResult { panic("boom") }
func (panickingAnalyzer) Class() types.LanguageClass  { return types.ClassShell }

func TestEngine_PanicIsContainedToBlock(t *testing.T) {
	e := NewEngine(testConfig(t), WithoutCache())
	e.router.analyzers[types.ClassShell] = panickingAnalyzer{}

	doc := fence("sh", "echo hi") + fence("sql", "SELECT * FROM t")
	res, err := e.AnalyzeText(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, []string{types.KindAnalysisError, types.KindSelectStar}, kinds(res.Issues))
	assert.Equal(t, "shell analyzer failed on block 0: panic: boom", res.Issues[0].Message)
	assert.Equal(t, "echo hi", res.Issues[0].Snippet)
	assert.Equal(t, 2, res.Metrics.TotalCodeBlocks)
	assert.Equal(t, 1, res.Metrics.ShellBlocks)
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(testConfig(t)).AnalyzeText(ctx, sampleDocument())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_DisabledKindsLeavePatternsAlone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Disabled = []string{types.KindDangerousRm, types.KindUnquotedVariable}

	res, err := NewEngine(cfg).AnalyzeText(context.Background(), fence("bash", "rm -rf $DIR"))
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Patterns)
	assert.Equal(t, 1, res.Metrics.ShellBlocks)
}

func TestEngine_ReportRoundTrip(t *testing.T) {
	res, err := NewEngine(testConfig(t)).AnalyzeText(context.Background(), sampleDocument())
	require.NoError(t, err)

	data, err := types.EncodeReport(res)
	require.NoError(t, err)
	assert.Equal(t, res, types.DecodeReport(data))
}
