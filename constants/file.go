package constants

import "strings"

const (
	FormatPDF   = "PDF"
	FormatImage = "IMAGE"
	FormatText  = "TXT"
)

// FileTypes holds the allowed values for the format column in extract_jobs.
var FileTypes = []string{FormatPDF, FormatImage, FormatText}

// AllowedExtensions holds the default allowed file extensions for invoice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its job format.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return FormatPDF
	case "txt":
		return FormatText
	default:
		return FormatImage
	}
}

// ImageConfidenceThreshold is the mean tesseract confidence under which OCR
// output is flagged as low quality.
const ImageConfidenceThreshold = 0.55
