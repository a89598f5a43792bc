package analysis

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/blockscan/internal/cache"
	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/debug"
	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/extract"
	"github.com/standardbeagle/blockscan/internal/types"
)

// panicSnippetLength bounds the snippet attached to an analysis_error
const panicSnippetLength = 100

// Engine runs the block analyzers over a document and builds the report.
// An Engine is safe for concurrent use; its cache is shared between runs.
type Engine struct {
	cfg     *config.Config
	router  *Router
	cache   *cache.BlockCache[*BlockResult]
	workers int
}

// Option configures an Engine
type Option func(*Engine)

// WithWorkers overrides the configured worker count
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithoutCache disables block result memoization
func WithoutCache() Option {
	return func(e *Engine) { e.cache = nil }
}

// NewEngine creates an engine. A nil cfg uses the validated defaults.
func NewEngine(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
		if err := config.ValidateConfig(cfg); err != nil {
			panic(fmt.Sprintf("default configuration is invalid: %v", err))
		}
	}

	e := &Engine{
		cfg:     cfg,
		router:  NewRouter(cfg),
		workers: cfg.Performance.Workers,
	}
	if cfg.Performance.CacheEntries > 0 {
		e.cache = cache.New[*BlockResult](cfg.Performance.CacheEntries)
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// AnalyzeText extracts the fenced blocks from text and analyzes them
func (e *Engine) AnalyzeText(ctx context.Context, text string) (*types.AnalysisResult, error) {
	return e.AnalyzeBlocks(ctx, slices.Collect(extract.Blocks(text)))
}

// AnalyzeBlocks analyzes blocks concurrently, merges their results in block
// order and synthesizes patterns once over the merged result. The only
// error is cancellation of ctx.
func (e *Engine) AnalyzeBlocks(ctx context.Context, blocks []types.CodeBlock) (*types.AnalysisResult, error) {
	defer debug.Since("ANALYZE", fmt.Sprintf("%d blocks", len(blocks)), time.Now())
	results := make([]*BlockResult, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, block := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.analyzeBlock(i, block)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	debug.LogAnalysis("analyzed %d blocks with %d workers\n", len(blocks), e.workers)
	return e.finalize(results), nil
}

// finalize reduces per-block results and runs pattern synthesis
func (e *Engine) finalize(results []*BlockResult) *types.AnalysisResult {
	total := &BlockResult{}
	for _, r := range results {
		total.Merge(r)
	}

	out := types.NewAnalysisResult()
	out.Issues = append(out.Issues, total.Issues...)
	out.Learnings = append(out.Learnings, total.Learnings...)
	out.Metrics = total.Metrics
	SynthesizePatterns(out, e.cfg.Patterns)
	return out
}

// analyzeBlock routes one block. A panicking analyzer is contained to its
// block and reported as an analysis_error issue.
func (e *Engine) analyzeBlock(index int, block types.CodeBlock) (res *BlockResult) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(block.Language, block.Source); ok {
			return cached
		}
	}

	defer func() {
		if r := recover(); r != nil {
			class := e.router.Classify(block.Language)
			err := bserrors.NewAnalysisError(class.String(), index, fmt.Errorf("panic: %v", r))
			debug.LogAnalysis("%v\n", err)

			res = &BlockResult{Issues: []types.Issue{
				types.NewIssue(types.SeverityImportant, types.KindAnalysisError, err.Error(),
					types.Truncate(block.Source, panicSnippetLength)),
			}}
			res.Metrics.CountBlock(class, LineCount(block.Source))
		}
	}()

	res = e.router.Route(block)
	if e.cache != nil {
		e.cache.Put(block.Language, block.Source, res)
	}
	return res
}

// CacheStats reports block cache counters; ok is false when caching is off
func (e *Engine) CacheStats() (stats cache.Stats, ok bool) {
	if e.cache == nil {
		return cache.Stats{}, false
	}
	return e.cache.Stats(), true
}

// Config returns the engine configuration
func (e *Engine) Config() *config.Config {
	return e.cfg
}
