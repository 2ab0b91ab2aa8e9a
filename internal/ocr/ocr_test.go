package ocr

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
)

// fakeRunner answers commands by binary name and records the calls.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	// pages rendered by a fake pdftoppm
	renderPages int
	calls       []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	if err := f.errs[name]; err != nil {
		return nil, []byte(name + " failed"), err
	}
	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		for i := 1; i <= f.renderPages; i++ {
			if err := os.WriteFile(prefix+"-"+string(rune('0'+i))+".png", []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}
	if name == "tesseract" && args[len(args)-1] == "tsv" {
		return []byte(f.outputs["tesseract-tsv"]), nil, nil
	}
	return []byte(f.outputs[name]), nil, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func emptyTextLayer(string) ([]string, error) { return []string{"", ""}, nil }

func TestExtractPDFTextLayer(t *testing.T) {
	runner := &fakeRunner{}
	e := NewExtractor(Config{}, nil,
		WithRunner(runner),
		WithTextLayer(func(string) ([]string, error) {
			return []string{"Tech Solutions LLP\nInvoice No: INV-1", "Total ₹ 1,25,000.00"}, nil
		}),
	)

	res, err := e.Extract(context.Background(), writeFile(t, "bill.pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, MethodPDFTextLayer, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "--- Page 1 ---\nTech Solutions LLP\nInvoice No: INV-1\n--- Page 2 ---\nTotal ₹ 1,25,000.00", res.Text)
	assert.Empty(t, runner.calls)
}

func TestExtractPDFFallsBackToPdftotext(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"pdftotext": "Kumar Infotech Pvt Ltd    GSTIN 27ABCDE1234F1Z5\fPage two of the invoice\f",
	}}
	e := NewExtractor(Config{}, nil, WithRunner(runner), WithTextLayer(emptyTextLayer))

	res, err := e.Extract(context.Background(), writeFile(t, "bill.pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Kumar Infotech Pvt Ltd GSTIN 27ABCDE1234F1Z5")
	assert.Contains(t, res.Text, "--- Page 2 ---\nPage two of the invoice")
	assert.Equal(t, []string{"pdftotext"}, runner.calls)
}

func TestExtractPDFFallsBackToOCR(t *testing.T) {
	runner := &fakeRunner{
		outputs:     map[string]string{"tesseract": "Dell Laptop Inspiron 45,000.00\n-----\n"},
		errs:        map[string]error{"pdftotext": errors.New("exit status 1")},
		renderPages: 2,
	}
	e := NewExtractor(Config{}, nil,
		WithRunner(runner),
		WithTextLayer(func(string) ([]string, error) { return nil, errors.New("broken xref") }),
	)

	res, err := e.Extract(context.Background(), writeFile(t, "scan.pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "--- Page 1 ---\nDell Laptop Inspiron 45,000.00\n--- Page 2 ---\nDell Laptop Inspiron 45,000.00", res.Text)
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract"}, runner.calls)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtractPDFNothingRendered(t *testing.T) {
	runner := &fakeRunner{}
	e := NewExtractor(Config{}, nil, WithRunner(runner), WithTextLayer(emptyTextLayer))

	_, err := e.Extract(context.Background(), writeFile(t, "blank.pdf", "%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pages rendered")
}

func TestExtractImageConfidence(t *testing.T) {
	tsv := strings.Join([]string{
		"level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext",
		"5\t1\t1\t1\t1\t1\t10\t10\t50\t20\t90\tInvoice",
		"5\t1\t1\t1\t1\t2\t70\t10\t50\t20\t70\tTotal",
		"4\t1\t1\t1\t1\t0\t10\t10\t110\t20\t-1\t",
	}, "\n")
	runner := &fakeRunner{outputs: map[string]string{
		"tesseract":     "Invoice Date 15-03-2024\nTotal Rs. 1,200.00",
		"tesseract-tsv": tsv,
	}}
	e := NewExtractor(Config{EnableTSVConfidence: true, PSM: 6}, nil, WithRunner(runner))

	res, err := e.Extract(context.Background(), writeFile(t, "photo.jpg", "jpg"))
	require.NoError(t, err)
	assert.Equal(t, MethodImageOCR, res.Method)
	assert.Equal(t, "Invoice Date 15-03-2024\nTotal Rs. 1,200.00", res.Text)
	// tesseract mean 0.8, heuristic 0.7
	assert.InDelta(t, 0.77, res.Confidence, 0.001)
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{}))

	res, err := e.Extract(context.Background(), writeFile(t, "bill.txt", "GSTIN:\t27ABCDE1234F1Z5\r\n\r\n\r\n\r\nTotal"))
	require.NoError(t, err)
	assert.Equal(t, MethodPlainText, res.Method)
	assert.Equal(t, "GSTIN: 27ABCDE1234F1Z5\n\nTotal", res.Text)
}

func TestExtractRejectsUnknownExtension(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{}))

	_, err := e.Extract(context.Background(), "bill.docx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestNormalizeKeepsLeadingZeros(t *testing.T) {
	assert.Equal(t, "Dated 01/04/2024", Normalize("Dated   01/04/2024  "))
}

func TestToolRunner_MissingBinary(t *testing.T) {
	_, _, err := toolRunner{logger: slog.Default()}.Run(context.Background(), "no-such-ocr-tool-xyz")
	assert.Error(t, err)
	assert.Equal(t, "abc...(truncated)", clip("abcdef", 3))
	assert.Equal(t, "abc", clip("abc", 3))
}
