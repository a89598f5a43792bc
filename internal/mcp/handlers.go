package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/blockscan/internal/debug"
	"github.com/standardbeagle/blockscan/internal/security"
	"github.com/standardbeagle/blockscan/internal/types"
	"github.com/standardbeagle/blockscan/internal/version"
)

// AnalyzeTextParams are the arguments of analyze_text
type AnalyzeTextParams struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

// AnalyzeFileParams are the arguments of analyze_file
type AnalyzeFileParams struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
}

// decodeParams fills v from raw tool arguments. Malformed arguments leave v
// at its zero value rather than failing the call.
func decodeParams(operation string, raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		debug.LogMCP("%s: ignoring malformed arguments: %v\n", operation, err)
	}
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return createJSONResponse(map[string]interface{}{
		"server_name":    ServerName,
		"server_version": version.FullInfo(),
		"build_id":       version.BuildID(),
		"go_version":     runtime.Version(),
		"languages":      []string{"python", "javascript", "shell", "sql"},
		"rule_kinds":     types.RuleKinds(),
		"disabled":       s.engine.Config().Disabled,
	})
}

func (s *Server) handleAnalyzeText(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("analyze_text", func() (*mcp.CallToolResult, error) {
		var params AnalyzeTextParams
		decodeParams("analyze_text", rawArguments(req), &params)

		report, err := s.engine.AnalyzeText(ctx, params.Text)
		if err != nil {
			return nil, err
		}
		return createReportResponse(report, params.Format)
	})
}

func (s *Server) handleAnalyzeFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("analyze_file", func() (*mcp.CallToolResult, error) {
		var params AnalyzeFileParams
		decodeParams("analyze_file", rawArguments(req), &params)

		path := strings.TrimSpace(params.Path)
		if path == "" {
			return nil, errors.New("path is required")
		}

		text, err := security.ReadInput(path)
		if err != nil {
			return nil, fmt.Errorf("cannot analyze %s: %w", path, err)
		}

		report, err := s.engine.AnalyzeText(ctx, text)
		if err != nil {
			return nil, err
		}
		return createReportResponse(report, params.Format)
	})
}

func rawArguments(req *mcp.CallToolRequest) json.RawMessage {
	if req == nil || req.Params == nil {
		return nil
	}
	return req.Params.Arguments
}
