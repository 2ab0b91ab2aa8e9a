package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-assets/internal/assets"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

func strp(s string) *string { return &s }

func TestExportAssetsXLSX(t *testing.T) {
	ctx := context.Background()
	db, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "x.db"), nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, repository.Migrate(db, filepath.Join("..", "..", "db", "migrations"), nil))

	out := assets.NewRegistrar(db, nil).Register(ctx, invoice.BillInfo{
		VendorName: strp("Acme Traders"),
		BillNumber: strp("AC-7"),
		BillDate:   strp("2024-05-02"),
		Assets: []invoice.ExtractedAsset{{
			Name: "HP LaserJet M1005 Printer", Category: "printer", DeviceType: "Printer",
			Brand: strp("Hp"), Quantity: 2, UnitPrice: 12000, TotalPrice: 24000,
		}},
	}, "raw")
	_, ok := out.(assets.Persisted)
	require.True(t, ok)

	svc := NewService(repository.NewAssetRepository(db, nil), repository.NewBillRepository(db, nil), nil)
	b, err := svc.ExportAssetsXLSX(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Assets", "Bills"}, f.GetSheetList())

	rows, err := f.GetRows("Assets")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Asset ID", rows[0][0])
	assert.Equal(t, "PRT001", rows[1][0])
	assert.Equal(t, "PRT002", rows[2][0])
	assert.Equal(t, "Hp", rows[1][4])
	assert.Equal(t, "12000", rows[1][7])
	assert.Equal(t, "active", rows[1][9])
	assert.Equal(t, "AC-7", rows[1][10])
	assert.Equal(t, "Acme Traders", rows[1][11])
	assert.Equal(t, "2024-05-02", rows[1][12])

	billRows, err := f.GetRows("Bills")
	require.NoError(t, err)
	require.Len(t, billRows, 2)
	assert.Equal(t, "AC-7", billRows[1][0])
	assert.Equal(t, "2", billRows[1][11])

	path, err := svc.WriteFile(ctx, t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, path)
}
