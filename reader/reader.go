// Package reader extracts plain text from uploaded document files.
package reader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no extractor
// handles. Callers should skip the file rather than fail the upload.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedExtensions lists the file extensions ExtractText handles.
var SupportedExtensions = []string{".pdf", ".docx", ".csv", ".xlsx", ".xlsm", ".txt", ".md"}

// ExtractText extracts the text content of an uploaded file. The
// format is chosen by the filename's extension; uploads arrive as
// in-memory byte slices, never paths.
func ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	case ".csv":
		return extractCSV(data)
	case ".xlsx", ".xlsm":
		return extractExcel(data)
	case ".txt", ".md":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// Supported reports whether ExtractText can handle the filename.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
