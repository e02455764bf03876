package constants

import "strings"

// AllowedExtensions holds the allowed file extensions for order ingestion.
// Order documents arrive as PDFs only; scanned variants are rasterized
// from the same files.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// MaxUploadBytes caps the size of a single ingested document.
const MaxUploadBytes = 10 << 20 // 10 MB

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether a normalized extension may be ingested.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[ext]
	return ok
}
