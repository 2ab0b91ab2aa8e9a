package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/assets"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/entity"
	"github.com/joseph-ayodele/invoice-assets/internal/extract"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

const invoiceText = `Tech Solutions LLP
Plot 12, MIDC Industrial Area
GSTIN/UIN: 27ABCDE1234F1Z5
| Invoice No.      | Dated        |
| TTS/22-23/0499   | 15-Mar-2024  |
| Sl | Description of Goods | HSN/SAC | Quantity | Rate | per | Amount |
| 1 | Computer System Branded-HP | 847150 | 2.00 Pcs | 40,000.00 | Pcs | 80,000.00 |
| Batch : 4CE212C3F6 |
| Batch : 4CE212C3F7 |
| 2 | Dell Monitor E2422H | 852852 | 1.00 Pcs | 9,500.00 | Pcs | 9,500.00 |
| Total | | 3.00 Pcs | | ₹ 89,500.00 |`

type fakeSource struct {
	text  string
	err   error
	calls int
}

func (f *fakeSource) ExtractText(context.Context, string) (extract.Result, error) {
	f.calls++
	if f.err != nil {
		return extract.Result{}, f.err
	}
	return extract.Result{Text: f.text, Method: "plain-text", Source: "fake", Confidence: 1}, nil
}

type env struct {
	db   *repository.DB
	proc *Processor
	src  *fakeSource
	dir  string
}

func newEnv(t *testing.T, text string) *env {
	t.Helper()
	dir := t.TempDir()
	db, err := repository.OpenSQLite(context.Background(), filepath.Join(dir, "p.db"), nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, repository.Migrate(db, filepath.Join("..", "..", "db", "migrations"), nil))

	src := &fakeSource{text: text}
	proc := NewProcessor(nil, src,
		repository.NewSourceFileRepository(db, nil),
		repository.NewExtractJobRepository(db, nil),
		assets.NewRegistrar(db, nil),
		WithCache(NewResultCache(0)),
	)
	return &env{db: db, proc: proc, src: src, dir: dir}
}

func (e *env) storeFile(t *testing.T, name string, content []byte) *entity.SourceFile {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	row, _, err := repository.NewSourceFileRepository(e.db, nil).UpsertByHash(context.Background(), &entity.SourceFile{
		SourcePath:  path,
		Filename:    name,
		FileExt:     constants.NormalizeExt(filepath.Ext(name)),
		FileSize:    int64(len(content)),
		ContentHash: content,
	})
	require.NoError(t, err)
	return row
}

func (e *env) job(t *testing.T, res Result) *entity.ExtractJob {
	t.Helper()
	j, err := repository.NewExtractJobRepository(e.db, nil).Get(context.Background(), res.JobID)
	require.NoError(t, err)
	return j
}

func TestProcessFile_Succeeds(t *testing.T) {
	e := newEnv(t, invoiceText)
	f := e.storeFile(t, "bill.txt", []byte("one"))

	res, err := e.proc.ProcessFile(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Assets)
	assert.False(t, res.Cached)

	j := e.job(t, res)
	assert.Equal(t, string(constants.JobStatusSucceeded), j.Status)
	require.NotNil(t, j.BillID)
	assert.Equal(t, res.BillID, *j.BillID)
	assert.Equal(t, "fake", *j.Source)

	rows, err := repository.NewAssetRepository(e.db, nil).ListByBill(context.Background(), res.BillID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "COMP001", rows[0].AssetID)
	assert.Equal(t, "4CE212C3F6", *rows[0].SerialNumber)
	assert.Equal(t, "COMP002", rows[1].AssetID)
	assert.Equal(t, "4CE212C3F7", *rows[1].SerialNumber)
	assert.Equal(t, "MON001", rows[2].AssetID)

	bill, err := repository.NewBillRepository(e.db, nil).Get(context.Background(), res.BillID)
	require.NoError(t, err)
	assert.Equal(t, invoiceText, bill.RawText)
	require.NotNil(t, bill.FileID)
	assert.Equal(t, f.ID, *bill.FileID)
}

func TestProcessFile_CachedByContentHash(t *testing.T) {
	e := newEnv(t, invoiceText)
	f := e.storeFile(t, "bill.txt", []byte("same"))

	_, err := e.proc.ProcessFile(context.Background(), f.ID)
	require.NoError(t, err)
	res, err := e.proc.ProcessFile(context.Background(), f.ID)
	require.NoError(t, err)

	assert.True(t, res.Cached)
	assert.Equal(t, 1, e.src.calls)
	assert.Equal(t, 1, e.proc.cache.Len())
}

func TestProcessFile_RejectsDegradedBill(t *testing.T) {
	e := newEnv(t, "GSTIN: 27ABCDE1234F1Z5\n")
	f := e.storeFile(t, "scan.png", []byte("png"))

	res, err := e.proc.ProcessFile(context.Background(), f.ID)
	require.ErrorIs(t, err, common.ErrDegradedBill)

	j := e.job(t, res)
	assert.Equal(t, string(constants.JobStatusRejected), j.Status)
	assert.Equal(t, constants.FormatImage, j.Format)
	require.NotNil(t, j.ErrorMessage)
	assert.Contains(t, *j.ErrorMessage, "degraded")
}

func TestProcessFile_TextFailure(t *testing.T) {
	e := newEnv(t, "")
	e.src.err = errors.New("tesseract: not found")
	f := e.storeFile(t, "scan.pdf", []byte("pdf"))

	res, err := e.proc.ProcessFile(context.Background(), f.ID)
	require.Error(t, err)

	j := e.job(t, res)
	assert.Equal(t, string(constants.JobStatusFailed), j.Status)
	assert.Equal(t, "tesseract: not found", *j.ErrorMessage)
	assert.Equal(t, 0, e.proc.cache.Len())
}

func TestScan_DoesNotStore(t *testing.T) {
	e := newEnv(t, invoiceText)
	path := filepath.Join(e.dir, "upload.txt")
	require.NoError(t, os.WriteFile(path, []byte("upload"), 0o644))

	out, err := e.proc.Scan(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "TTS/22-23/0499", *out.Bill.BillNumber)
	assert.Len(t, out.Bill.Assets, 2)
	assert.Len(t, out.Hash, 64)

	again, err := e.proc.Scan(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, again.Cached)

	bills, err := repository.NewBillRepository(e.db, nil).List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, bills)
}
