package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
)

// Extraction methods, recorded on extract_jobs.
const (
	MethodPDFTextLayer = "pdf-text-layer"
	MethodPDFText      = "pdf-text"
	MethodPDFOCR       = "pdf-ocr"
	MethodImageOCR     = "image-ocr"
	MethodPlainText    = "plain-text"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages string // tesseract -l value, default "eng"
	DPI       int    // rasterization DPI for scanned PDFs, default 300
	MaxPages  int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // 6 suits invoice tables
	OEM int

	// MinTextChars is the number of letters and digits a PDF text layer
	// needs before rasterized OCR is skipped.
	MinTextChars int
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.FormatPDF | FormatImage | FormatText
	Method     string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// TextLayerFunc returns the embedded text of every page of a PDF.
type TextLayerFunc func(path string) ([]string, error)

type Extractor struct {
	cfg       Config
	runner    Runner
	textLayer TextLayerFunc
	logger    *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithTextLayer replaces the PDF text-layer reader.
func WithTextLayer(f TextLayerFunc) Option {
	return func(e *Extractor) { e.textLayer = f }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 20
	}
	e := &Extractor{cfg: cfg, runner: toolRunner{logger: logger}, textLayer: fitzTextLayer, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		e.logger.Error("unsupported ocr extension", "extension", ext, "path", path)
		return ExtractionResult{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.FormatPDF:
		res, err = e.extractPDF(ctx, path)
	case constants.FormatText:
		res, err = e.extractPlain(path)
	default:
		res, err = e.extractImage(ctx, path)
	}
	res.Duration = time.Since(start)
	if err == nil {
		e.logger.Info("text extracted",
			"path", path,
			"method", res.Method,
			"pages", res.Pages,
			"chars", len(res.Text),
			"confidence", res.Confidence,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
	return res, err
}

func (e *Extractor) extractPlain(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.FormatText}, fmt.Errorf("read text file: %w", err)
	}
	return ExtractionResult{
		Text:       Normalize(string(b)),
		Pages:      1,
		SourceType: constants.FormatText,
		Method:     MethodPlainText,
		Confidence: 1,
	}, nil
}
