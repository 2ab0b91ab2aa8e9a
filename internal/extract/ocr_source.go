package extract

import (
	"context"

	"github.com/joseph-ayodele/invoice-assets/internal/ocr"
)

// OCRSource runs the local text-layer and tesseract strategies.
type OCRSource struct {
	extractor *ocr.Extractor
}

func NewOCRSource(e *ocr.Extractor) *OCRSource {
	return &OCRSource{extractor: e}
}

func (s *OCRSource) Name() string { return "ocr" }

func (s *OCRSource) ExtractText(ctx context.Context, path string) (Result, error) {
	r, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Source:     s.Name(),
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, nil
}
