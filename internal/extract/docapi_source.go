package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/docapi"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
)

// MethodDocAPI marks text produced by the remote document service.
const MethodDocAPI = "docapi-layout"

// DocumentClient is the subset of docapi.Client used here.
type DocumentClient interface {
	ExtractFile(ctx context.Context, path string) (docapi.Result, error)
}

// DocAPISource sends documents to the remote layout-preserving service.
type DocAPISource struct {
	client DocumentClient
}

func NewDocAPISource(c DocumentClient) *DocAPISource {
	return &DocAPISource{client: c}
}

func (s *DocAPISource) Name() string { return "docapi" }

func (s *DocAPISource) ExtractText(ctx context.Context, path string) (Result, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return Result{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	r, err := s.client.ExtractFile(ctx, path)
	if err != nil {
		return Result{}, err
	}
	tables := make([]invoice.Table, 0, len(r.Tables))
	for _, t := range r.Tables {
		tables = append(tables, invoice.Table(t))
	}
	pages := r.Pages
	if pages == 0 {
		pages = 1
	}
	return Result{
		Text:       r.Text,
		Pages:      pages,
		SourceType: constants.MapExtToFormat(ext),
		Method:     MethodDocAPI,
		Source:     s.Name(),
		Duration:   r.Duration,
		Confidence: r.Confidence,
		Tables:     tables,
	}, nil
}
