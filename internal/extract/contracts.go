// Package extract turns a stored document into plain text for the invoice
// parser. Several sources can be chained; the first to yield text wins.
package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
)

// TextSource is stage one of the pipeline: file -> text.
type TextSource interface {
	ExtractText(ctx context.Context, path string) (Result, error)
}

type Result struct {
	Text       string
	Pages      int
	SourceType string // constants.FormatPDF | FormatImage | FormatText
	Method     string
	Source     string // name of the TextSource that produced the text
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32

	// Tables recovered by layout-aware sources, header row first.
	Tables []invoice.Table
}

// Empty reports whether the result carries nothing the parser can use.
func (r Result) Empty() bool {
	return len(r.Tables) == 0 && !hasText(r.Text)
}
