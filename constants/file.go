package constants

import (
	"mime"
	"strings"
)

// MaxFileSizeBytes is the upper bound for a single uploaded file (50 MiB).
const MaxFileSizeBytes int64 = 50 << 20

// Format is the extraction strategy for a media type.
type Format string

const (
	FormatPDF  Format = "PDF"
	FormatDOC  Format = "DOC"
	FormatDOCX Format = "DOCX"
	FormatXLS  Format = "XLS"
	FormatXLSX Format = "XLSX"
	FormatTXT  Format = "TXT"
	FormatCSV  Format = "CSV"
)

// Canonical MIME types for supported uploads.
const (
	MediaPDF  = "application/pdf"
	MediaDOC  = "application/msword"
	MediaDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaXLS  = "application/vnd.ms-excel"
	MediaXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTXT  = "text/plain"
	MediaCSV  = "text/csv"
)

// AllowedExtensions maps lowercased extensions (sans '.') to canonical MIME types.
var AllowedExtensions = map[string]string{
	"pdf":  MediaPDF,
	"doc":  MediaDOC,
	"docx": MediaDOCX,
	"xls":  MediaXLS,
	"xlsx": MediaXLSX,
	"txt":  MediaTXT,
	"csv":  MediaCSV,
}

var mediaAliases = map[string]string{
	"application/csv":             MediaCSV,
	"text/comma-separated-values": MediaCSV,
	"application/x-pdf":           MediaPDF,
}

var formats = map[string]Format{
	MediaPDF:  FormatPDF,
	MediaDOC:  FormatDOC,
	MediaDOCX: FormatDOCX,
	MediaXLS:  FormatXLS,
	MediaXLSX: FormatXLSX,
	MediaTXT:  FormatTXT,
	MediaCSV:  FormatCSV,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// CanonicalMediaType resolves a MIME type (parameters allowed) or a bare
// extension to the canonical MIME type of a supported format.
func CanonicalMediaType(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if !strings.Contains(s, "/") {
		mt, ok := AllowedExtensions[NormalizeExt(s)]
		return mt, ok
	}
	mt, _, err := mime.ParseMediaType(s)
	if err != nil {
		return "", false
	}
	if alias, ok := mediaAliases[mt]; ok {
		mt = alias
	}
	_, ok := formats[mt]
	return mt, ok
}

// FormatForMediaType maps a canonical MIME type to its extraction format.
func FormatForMediaType(mediaType string) (Format, bool) {
	f, ok := formats[mediaType]
	return f, ok
}
