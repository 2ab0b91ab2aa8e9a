package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/invoice-assets/constants"
)

func fitzTextLayer(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		txt, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", i+1, err)
		}
		pages = append(pages, txt)
	}
	return pages, nil
}

// extractPDF tries the embedded text layer, then pdftotext, then rasterized
// OCR. The first that yields enough text wins.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.FormatPDF, Language: e.cfg.Languages}

	if pages, err := e.textLayer(path); err != nil {
		res.Warnings = append(res.Warnings, "text layer: "+err.Error())
	} else if e.usable(pages) {
		e.fill(&res, pages, MethodPDFTextLayer, 1)
		return res, nil
	}

	if pages, warns, err := e.pdfToText(ctx, path); err != nil {
		res.Warnings = append(res.Warnings, warns...)
		e.logger.Warn("pdftotext failed, falling back to ocr", "path", path, "error", err)
	} else if e.usable(pages) {
		e.fill(&res, pages, MethodPDFText, 0.95)
		return res, nil
	}

	pages, warns, err := e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		return res, fmt.Errorf("pdf ocr: %w", err)
	}
	text := JoinPages(pages)
	e.fill(&res, pages, MethodPDFOCR, heuristicConfidence(text))
	return res, nil
}

func (e *Extractor) fill(res *ExtractionResult, pages []string, method string, conf float32) {
	res.Text = JoinPages(pages)
	res.Pages = len(pages)
	res.Method = method
	res.Confidence = conf
}

func (e *Extractor) usable(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += countAlnum(p)
		if n >= e.cfg.MinTextChars {
			return true
		}
	}
	return false
}

func (e *Extractor) pdfToText(ctx context.Context, path string) ([]string, []string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, []string{string(errb)}, err
	}
	// form feed separates pages; the last one is followed by a trailing \f
	pages := strings.Split(string(out), "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) ([]string, []string, error) {
	tmpDir, err := os.MkdirTemp("", "ia-pp-*")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, []string{string(errb)}, err
	}

	// prefix-1.png, prefix-2.png, ...
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, []string{"pdftoppm produced no images"}, errors.New("no pages rendered")
	}

	pages := make([]string, 0, len(matches))
	var warns []string
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	return pages, warns, nil
}
