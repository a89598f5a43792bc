package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the blockscan analyzer
type ErrorType string

const (
	// Analysis errors
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeAnalysis ErrorType = "analysis"

	// File errors
	ErrorTypeFileNotFound   ErrorType = "file_not_found"
	ErrorTypePermission     ErrorType = "permission"
	ErrorTypeInvalidContent ErrorType = "invalid_content"
	ErrorTypeFileRead       ErrorType = "file_read"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// ErrInvalidContent marks input that is not analyzable text
var ErrInvalidContent = errors.New("input is not valid UTF-8 text")

// ParseError represents a fragment that failed to parse
type ParseError struct {
	Type       ErrorType
	Language   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(language string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		Language:   language,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Message returns the underlying reason without position information
func (e *ParseError) Message() string {
	if e.Underlying == nil {
		return "invalid syntax"
	}
	return e.Underlying.Error()
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s parse error at %d:%d (near token %q): %s",
			e.Language, e.Line, e.Column, e.Token, e.Message())
	}
	return fmt.Sprintf("%s parse error at %d:%d: %s", e.Language, e.Line, e.Column, e.Message())
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// AnalysisError represents an analyzer failure on a single block
type AnalysisError struct {
	Type       ErrorType
	Analyzer   string
	Block      int
	Underlying error
	Timestamp  time.Time
}

// NewAnalysisError creates a new analysis error
func NewAnalysisError(analyzer string, block int, err error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeAnalysis,
		Analyzer:   analyzer,
		Block:      block,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s analyzer failed on block %d: %v", e.Analyzer, e.Block, e.Underlying)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error, classifying the underlying cause
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       classifyFileError(err),
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func classifyFileError(err error) ErrorType {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrorTypeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrorTypePermission
	case errors.Is(err, ErrInvalidContent):
		return ErrorTypeInvalidContent
	default:
		return ErrorTypeFileRead
	}
}

// NotFound reports whether the file does not exist
func (e *FileError) NotFound() bool {
	return e.Type == ErrorTypeFileNotFound
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
