package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
)

// Named is implemented by sources that want a readable name in logs.
type Named interface {
	Name() string
}

// Chain tries each source in order and returns the first non-empty result.
// Unsupported formats stop the chain; any other failure moves on.
type Chain struct {
	sources []TextSource
	logger  *slog.Logger
}

func NewChain(logger *slog.Logger, sources ...TextSource) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{sources: sources, logger: logger}
}

func (c *Chain) ExtractText(ctx context.Context, path string) (Result, error) {
	var errs []error
	for i, src := range c.sources {
		name := sourceName(src, i)
		res, err := src.ExtractText(ctx, path)
		switch {
		case errors.Is(err, common.ErrUnsupportedFormat):
			return Result{}, err
		case err != nil:
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			c.logger.Warn("extract.source.failed", "source", name, "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		case res.Empty():
			c.logger.Info("extract.source.empty", "source", name, "path", path, "method", res.Method)
			continue
		}
		if res.Source == "" {
			res.Source = name
		}
		c.logger.Debug("extract.source.ok", "source", name, "path", path, "chars", len(res.Text))
		return res, nil
	}
	if len(errs) > 0 {
		return Result{}, fmt.Errorf("%w: %w", common.ErrNoText, errors.Join(errs...))
	}
	return Result{}, common.ErrNoText
}

func sourceName(src TextSource, i int) string {
	if n, ok := src.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("source-%d", i)
}

func hasText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
