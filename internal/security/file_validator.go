// Package security checks analysis inputs before they are loaded.
package security

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/extract"
)

const (
	// DefaultHeaderSize is how much of a file is sniffed for binary content
	DefaultHeaderSize = 64 * 1024

	// DefaultMaxSize bounds the inputs we are willing to load
	DefaultMaxSize = 256 * 1024 * 1024

	// binaryRatio is the share of control bytes above which a header is binary
	binaryRatio = 0.3
)

// magicBytes are signatures of formats that are never transcript text.
// Each holds at least one byte that cannot start a text file, so prose
// beginning with "GIF8" or "%PDF-" is not mistaken for an image or PDF.
var magicBytes = map[string][]byte{
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"jpeg": {0xFF, 0xD8, 0xFF},
	"zip":  {0x50, 0x4B, 0x03, 0x04},
	"gzip": {0x1F, 0x8B},
	"pe":   {0x4D, 0x5A, 0x90, 0x00},
	"elf":  {0x7F, 0x45, 0x4C, 0x46},
}

// FileValidator validates input files before their content is analyzed.
// Rejections are returned as *errors.FileError so callers can tell a
// missing file from an unreadable or non-text one.
type FileValidator struct {
	HeaderSize int64 // Bytes sniffed for signatures and control characters
	MaxSize    int64 // Larger inputs are rejected; 0 disables the limit
}

// NewFileValidator returns a validator with the default limits
func NewFileValidator() *FileValidator {
	return &FileValidator{
		HeaderSize: DefaultHeaderSize,
		MaxSize:    DefaultMaxSize,
	}
}

// ReadInput validates path and returns its content as text
func ReadInput(path string) (string, error) {
	return NewFileValidator().ReadFile(path)
}

// ReadFile stats, sniffs and reads path. Line endings are normalized to
// "\n" the way a text-mode read would.
func (fv *FileValidator) ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", bserrors.NewFileError("stat", path, err)
	}
	if info.IsDir() {
		return "", bserrors.NewFileError("read", path, fmt.Errorf("%s is a directory", path))
	}
	if fv.MaxSize > 0 && info.Size() > fv.MaxSize {
		return "", bserrors.NewFileError("validate", path,
			fmt.Errorf("%w: %d bytes exceeds the %d byte limit", bserrors.ErrInvalidContent, info.Size(), fv.MaxSize))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", bserrors.NewFileError("open", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", bserrors.NewFileError("read", path, err)
	}
	if err := fv.Validate(data); err != nil {
		return "", bserrors.NewFileError("validate", path, err)
	}
	return extract.NormalizeNewlines(string(data)), nil
}

// Validate reports why data is not analyzable text, or nil when it is
func (fv *FileValidator) Validate(data []byte) error {
	header := data
	if fv.HeaderSize > 0 && int64(len(header)) > fv.HeaderSize {
		header = header[:fv.HeaderSize]
	}

	if format, ok := detectSignature(header); ok {
		return fmt.Errorf("%w: content is a %s file", bserrors.ErrInvalidContent, format)
	}
	if isBinaryData(header) {
		return fmt.Errorf("%w: content appears to be binary", bserrors.ErrInvalidContent)
	}
	if !utf8.Valid(data) {
		return bserrors.ErrInvalidContent
	}
	return nil
}

func detectSignature(header []byte) (string, bool) {
	for format, magic := range magicBytes {
		if bytes.HasPrefix(header, magic) {
			return format, true
		}
	}
	return "", false
}

// isBinaryData reports whether control characters other than tab, LF, VT,
// FF and CR (NUL included) make up more than binaryRatio of data
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > binaryRatio
}
