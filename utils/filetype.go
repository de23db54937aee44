package utils

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DetectFileContentType sniffs the MIME type of the file found at path
// from its first 512 bytes.
func DetectFileContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// IsTextFile reports whether the file found at path looks like text,
// which every dataset and pipeline file is.
func IsTextFile(path string) (bool, error) {
	ct, err := DetectFileContentType(path)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(ct, "text/"), nil
}

// InSlice checks if the item exists in the slice.
func InSlice(item string, slice []string) bool {
	for _, it := range slice {
		if it == item {
			return true
		}
	}
	return false
}

// Ext returns the lower cased extension of path.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
