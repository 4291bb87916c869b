package util

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey returns a fresh blob key for an upload: a random UUID followed by
// the original file's lowercased extension.
func ObjectKey(fileName string) string {
	return uuid.NewString() + strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
}

// PDFName returns the download name for a report built from key. Image
// extensions are swapped for ".pdf"; other keys are returned unchanged.
func PDFName(key string) string {
	ext := path.Ext(key)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
		return strings.TrimSuffix(key, ext) + ".pdf"
	}
	return key
}

// AttachmentName makes name safe for a Content-Disposition header: path
// separators become "_", quotes and control characters are dropped, and
// traversal attempts or empty results fall back to fallback.
func AttachmentName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return fallback
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r == '"' || r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, name)
	if name == "" {
		return fallback
	}
	return name
}
