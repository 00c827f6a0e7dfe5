package constants

import "strings"

// Format families the extraction pipeline knows how to route.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// imageExtensions holds the allowed image extensions for comprobante uploads.
var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tiff": {},
	"bmp":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its format family.
// Returns "" for anything outside the allow-list.
func MapExtToFormat(ext string) string {
	if ext == "pdf" {
		return PDF
	}
	if _, ok := imageExtensions[ext]; ok {
		return IMAGE
	}
	return ""
}

// AllowedExtensions returns the full allow-list, for error messages.
func AllowedExtensions() []string {
	return []string{"pdf", "jpg", "jpeg", "png", "tiff", "bmp"}
}
