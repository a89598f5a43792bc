// Package mcp exposes the analyzer as a Model Context Protocol server.
package mcp

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/blockscan/internal/analysis"
	bsdebug "github.com/standardbeagle/blockscan/internal/debug"
	"github.com/standardbeagle/blockscan/internal/version"
)

// ServerName identifies the server during MCP initialization
const ServerName = "blockscan-mcp-server"

// Server serves analysis tools over stdio
type Server struct {
	server *mcp.Server
	engine *analysis.Engine
}

// NewServer creates a server backed by engine. A nil engine uses the
// default configuration.
func NewServer(engine *analysis.Engine) *Server {
	if engine == nil {
		engine = analysis.NewEngine(nil)
	}

	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		}, nil),
		engine: engine,
	}
	s.registerTools()
	return s
}

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	formatSchema := &jsonschema.Schema{
		Type:        "string",
		Description: "Report format: json (default), text or compact",
		Enum:        []any{"json", "text", "compact"},
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Describe the analyzer: version, supported languages and rule kinds.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_text",
		Description: "Analyze the fenced code blocks in a piece of text and return the report.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"text": {
					Type:        "string",
					Description: "Text containing ``` fenced code blocks",
				},
				"format": formatSchema,
			},
		},
	}, s.handleAnalyzeText)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_file",
		Description: "Read a transcript or markdown file and analyze its fenced code blocks.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Path of the file to analyze",
				},
				"format": formatSchema,
			},
			Required: []string{"path"},
		},
	}, s.handleAnalyzeFile)
}

// recoverFromPanic turns a panicking handler into an error result
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			bsdebug.LogMCP("panic in %s: %v\n%s\n", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		bsdebug.LogMCP("error in %s: %v\n", operation, err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}

// Start serves over stdio until ctx is done or the client disconnects.
// Debug output to stdio is suppressed while serving.
func (s *Server) Start(ctx context.Context) error {
	bsdebug.SetMCPMode(true)
	defer bsdebug.SetMCPMode(false)

	bsdebug.LogMCP("starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the handler for a tool, or nil when no such tool exists
func (s *Server) Handler(toolName string) mcp.ToolHandler {
	switch toolName {
	case "info":
		return s.handleInfo
	case "analyze_text":
		return s.handleAnalyzeText
	case "analyze_file":
		return s.handleAnalyzeFile
	default:
		return nil
	}
}
