package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-assets/constants"
)

// IsInvoiceExt reports whether ext (with or without the dot, any case) names
// a format the text sources can read.
func IsInvoiceExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden reports dot files and dot directories.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
