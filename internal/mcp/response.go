package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/blockscan/internal/display"
	"github.com/standardbeagle/blockscan/internal/types"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}
	return textResult(string(content)), nil
}

// createReportResponse renders a report in the requested format; anything
// other than text or compact yields the JSON report
func createReportResponse(report *types.AnalysisResult, format string) (*mcp.CallToolResult, error) {
	switch format {
	case "text", "compact":
		formatter := display.NewTreeFormatter(display.FormatterOptions{Format: format, ShowSnippets: true})
		return textResult(formatter.Format(report)), nil
	default:
		data, err := types.EncodeReport(report)
		if err != nil {
			return nil, err
		}
		return textResult(string(data)), nil
	}
}

// createErrorResponse creates an error result. Tool errors are reported in
// the result with IsError set so the client can see and correct them.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	response, marshalErr := createJSONResponse(map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
