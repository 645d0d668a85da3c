package constants

import (
	"path/filepath"
	"strings"
)

// FileFormat identifies the extraction strategy for an uploaded file.
type FileFormat string

const (
	PDF  FileFormat = "PDF"
	DOCX FileFormat = "DOCX"
	TEXT FileFormat = "TEXT"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a format; "" if unsupported.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "txt", "md":
		return TEXT
	default:
		return ""
	}
}

// MapMIMEToFormat maps a declared media type to a format; "" if unknown.
func MapMIMEToFormat(mime string) FileFormat {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case mime == "application/pdf":
		return PDF
	case mime == docxMIME:
		return DOCX
	case strings.HasPrefix(mime, "text/"):
		return TEXT
	default:
		return ""
	}
}

// DetectFormat picks a format from the declared media type, falling back to
// the filename extension when the media type is absent or unrecognized.
func DetectFormat(mime, filename string) FileFormat {
	if f := MapMIMEToFormat(mime); f != "" {
		return f
	}
	return MapExtToFormat(filepath.Ext(filename))
}
