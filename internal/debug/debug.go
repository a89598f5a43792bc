// Package debug writes component-tagged diagnostics for blockscan. Output is
// off unless debug mode is enabled and a writer is configured, and it is
// always suppressed while serving MCP over stdio.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EnableDebug can be set at build time:
// go build -ldflags "-X github.com/standardbeagle/blockscan/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set by main while the MCP server owns stdout
var MCPMode = false

// envVars enable debug mode at runtime when set to "1" or "true"
var envVars = []string{"BLOCKSCAN_DEBUG", "DEBUG"}

// sink is the destination shared by every logger call
type sink struct {
	mu      sync.Mutex
	out     io.Writer
	file    *os.File
	started time.Time
}

var output = &sink{started: time.Now()}

// SetMCPMode toggles MCP mode
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets the writer for debug output. nil disables output.
func SetDebugOutput(w io.Writer) {
	output.mu.Lock()
	defer output.mu.Unlock()
	output.out = w
}

// InitDebugLogFile sends debug output to a new timestamped file under the
// system temp directory and returns its path. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	logDir := filepath.Join(os.TempDir(), "blockscan-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	name := fmt.Sprintf("blockscan-%s-%d.log", time.Now().Format("20060102-150405"), os.Getpid())
	logPath := filepath.Join(logDir, name)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	output.mu.Lock()
	defer output.mu.Unlock()
	if output.file != nil {
		output.file.Close()
	}
	output.file = file
	output.out = file
	return logPath, nil
}

// CloseDebugLog closes the log file opened by InitDebugLogFile, if any
func CloseDebugLog() error {
	output.mu.Lock()
	defer output.mu.Unlock()

	if output.file == nil {
		return nil
	}
	err := output.file.Close()
	output.file = nil
	output.out = nil
	return err
}

// IsDebugEnabled reports whether debug output is on. MCP mode always wins.
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	for _, name := range envVars {
		switch strings.ToLower(os.Getenv(name)) {
		case "1", "true":
			return true
		}
	}
	return false
}

// write emits one entry under the sink lock so concurrent entries never
// interleave
func write(tag, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}

	output.mu.Lock()
	defer output.mu.Unlock()
	if output.out == nil {
		return
	}
	elapsed := time.Since(output.started).Round(time.Millisecond)
	fmt.Fprintf(output.out, "[%s +%s] %s", tag, elapsed, fmt.Sprintf(format, args...))
}

// Printf logs an untagged debug message
func Printf(format string, args ...interface{}) {
	write("DEBUG", format, args...)
}

// Log logs a message tagged with a component name
func Log(component, format string, args ...interface{}) {
	write("DEBUG:"+component, format, args...)
}

// Since logs how long an operation took. Use as
// defer debug.Since("ANALYZE", "document", time.Now()).
func Since(component, operation string, start time.Time) {
	Log(component, "%s took %s\n", operation, time.Since(start))
}

// LogAnalysis logs block analysis and engine events
func LogAnalysis(format string, args ...interface{}) {
	Log("ANALYZE", format, args...)
}

// LogParse logs fragment parsing events
func LogParse(format string, args ...interface{}) {
	Log("PARSE", format, args...)
}

// LogConfig logs configuration loading
func LogConfig(format string, args ...interface{}) {
	Log("CONFIG", format, args...)
}

// LogMCP logs MCP tool calls
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// LogScan logs directory scan decisions
func LogScan(format string, args ...interface{}) {
	Log("SCAN", format, args...)
}

// LogWatch logs file watch events
func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}
