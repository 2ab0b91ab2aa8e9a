package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/docapi"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
	"github.com/joseph-ayodele/invoice-assets/internal/ocr"
)

type stubSource struct {
	name  string
	res   Result
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) ExtractText(context.Context, string) (Result, error) {
	s.calls++
	return s.res, s.err
}

func TestChain_FirstNonEmptyWins(t *testing.T) {
	failing := &stubSource{name: "remote", err: errors.New("boom")}
	blank := &stubSource{name: "blank", res: Result{Text: " \n--\n"}}
	good := &stubSource{name: "local", res: Result{Text: "Invoice No: 7", Method: "pdf-text"}}
	never := &stubSource{name: "never", res: Result{Text: "x"}}

	res, err := NewChain(nil, failing, blank, good, never).ExtractText(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Invoice No: 7", res.Text)
	assert.Equal(t, "local", res.Source)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, blank.calls)
	assert.Equal(t, 0, never.calls)
}

func TestChain_TablesCountAsContent(t *testing.T) {
	src := &stubSource{name: "tables", res: Result{Tables: []invoice.Table{{{"Description"}, {"Laptop"}}}}}
	res, err := NewChain(nil, src).ExtractText(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Len(t, res.Tables, 1)
}

func TestChain_AllEmpty(t *testing.T) {
	_, err := NewChain(nil, &stubSource{name: "a"}).ExtractText(context.Background(), "a.pdf")
	assert.ErrorIs(t, err, common.ErrNoText)
}

func TestChain_AllFailed(t *testing.T) {
	cause := errors.New("tesseract missing")
	_, err := NewChain(nil, &stubSource{name: "a", err: cause}).ExtractText(context.Background(), "a.pdf")
	assert.ErrorIs(t, err, common.ErrNoText)
	assert.ErrorIs(t, err, cause)
}

func TestChain_UnsupportedStops(t *testing.T) {
	first := &stubSource{name: "a", err: common.ErrUnsupportedFormat}
	second := &stubSource{name: "b", res: Result{Text: "text"}}
	_, err := NewChain(nil, first, second).ExtractText(context.Background(), "a.docx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	assert.Equal(t, 0, second.calls)
}

type stubClient struct {
	res docapi.Result
	err error
}

func (c stubClient) ExtractFile(context.Context, string) (docapi.Result, error) {
	return c.res, c.err
}

func TestDocAPISource_MapsTables(t *testing.T) {
	src := NewDocAPISource(stubClient{res: docapi.Result{
		Text:   "TAX INVOICE",
		Tables: [][][]string{{{"Particulars", "Qty"}, {"Dell Monitor", "1"}}},
	}})
	res, err := src.ExtractText(context.Background(), "bill.PDF")
	require.NoError(t, err)
	assert.Equal(t, MethodDocAPI, res.Method)
	assert.Equal(t, "PDF", res.SourceType)
	assert.Equal(t, 1, res.Pages)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, "Dell Monitor", res.Tables[0][1][0])
}

func TestDocAPISource_RejectsUnknownExtension(t *testing.T) {
	_, err := NewDocAPISource(stubClient{}).ExtractText(context.Background(), "bill.docx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestOCRSource_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bill.txt")
	require.NoError(t, os.WriteFile(path, []byte("Invoice No: INV-1\nTotal 500.00\n"), 0o644))

	src := NewOCRSource(ocr.NewExtractor(ocr.Config{}, nil))
	res, err := src.ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "ocr", res.Source)
	assert.Equal(t, ocr.MethodPlainText, res.Method)
	assert.Contains(t, res.Text, "INV-1")
}
