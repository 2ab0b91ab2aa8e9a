package assets

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

func strp(s string) *string { return &s }

func laptops(qty int, serial *string) invoice.ExtractedAsset {
	return invoice.ExtractedAsset{
		Name:         "Dell Latitude 5440 Laptop",
		Description:  "Dell Latitude 5440 Laptop",
		Category:     "laptop",
		DeviceType:   "Laptop",
		Brand:        strp("Dell"),
		SerialNumber: serial,
		Quantity:     qty,
		UnitPrice:    45000,
		TotalPrice:   45000 * float64(qty),
	}
}

func TestExpand(t *testing.T) {
	t.Run("splits matching serials", func(t *testing.T) {
		units := Expand([]invoice.ExtractedAsset{laptops(3, strp("SN1, SN2,SN3"))})
		require.Len(t, units, 3)
		for i, want := range []string{"SN1", "SN2", "SN3"} {
			assert.Equal(t, 1, units[i].Quantity)
			assert.Equal(t, 45000.0, units[i].UnitPrice)
			assert.Equal(t, 45000.0, units[i].TotalPrice)
			assert.Equal(t, want, *units[i].SerialNumber)
		}
	})

	t.Run("keeps joined serials on count mismatch", func(t *testing.T) {
		units := Expand([]invoice.ExtractedAsset{laptops(2, strp("SN1,SN2,SN3"))})
		require.Len(t, units, 2)
		assert.Equal(t, "SN1,SN2,SN3", *units[0].SerialNumber)
		assert.Equal(t, "SN1,SN2,SN3", *units[1].SerialNumber)
	})

	t.Run("single unit untouched", func(t *testing.T) {
		units := Expand([]invoice.ExtractedAsset{laptops(1, strp("A,B"))})
		require.Len(t, units, 1)
		assert.Equal(t, "A,B", *units[0].SerialNumber)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Expand(nil))
	})
}

func TestAssetID(t *testing.T) {
	assert.Equal(t, "LAP001", AssetID("laptop", 1))
	assert.Equal(t, "PROJ012", AssetID("projector", 12))
	assert.Equal(t, "CAB003", AssetID("cable", 3))
	assert.Equal(t, "OTH1000", AssetID("other", 1000))
}

func TestQRPayload_Compact(t *testing.T) {
	s, err := QRPayload{AssetID: "LAP001", Name: "Laptop", Category: "laptop", DeviceType: "Laptop", Vendor: "Acme"}.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"asset_id":"LAP001","name":"Laptop","category":"laptop","device_type":"Laptop","vendor":"Acme"}`, s)

	p, err := DecodeQR(s)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Vendor)
}

func newStore(t *testing.T) *repository.DB {
	t.Helper()
	db, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "a.db"), nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, repository.Migrate(db, filepath.Join("..", "..", "db", "migrations"), nil))
	return db
}

func bill(items ...invoice.ExtractedAsset) invoice.BillInfo {
	return invoice.BillInfo{
		VendorName:   strp("Tech Solutions LLP"),
		BillNumber:   strp("TS-42"),
		WarrantyInfo: strp("1 year onsite"),
		TotalAmount:  90000,
		Assets:       items,
	}
}

func TestRegister_PersistsAndContinuesSequence(t *testing.T) {
	ctx := context.Background()
	db := newStore(t)
	r := NewRegistrar(db, nil)

	first, ok := r.Register(ctx, bill(laptops(2, nil)), "raw one").(Persisted)
	require.True(t, ok)
	require.Len(t, first.Assets, 2)
	assert.Equal(t, "LAP001", first.Assets[0].AssetID)
	assert.Equal(t, "LAP002", first.Assets[1].AssetID)
	assert.Equal(t, "1 year onsite", *first.Assets[0].WarrantyPeriod)

	p, err := DecodeQR(first.Assets[1].QRPayload)
	require.NoError(t, err)
	assert.Equal(t, "LAP002", p.AssetID)
	assert.Equal(t, "TS-42", p.BillNumber)
	assert.Equal(t, "Dell", p.Brand)

	second, ok := r.Register(ctx, bill(laptops(1, nil)), "raw two").(Persisted)
	require.True(t, ok)
	assert.Equal(t, "LAP003", second.Assets[0].AssetID)

	stored, err := repository.NewBillRepository(db, nil).Get(ctx, first.BillID)
	require.NoError(t, err)
	assert.Equal(t, "raw one", stored.RawText)

	rows, err := repository.NewAssetRepository(db, nil).ListByBill(ctx, first.BillID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRegister_NoStore(t *testing.T) {
	out := NewRegistrar(nil, nil).Register(context.Background(), bill(laptops(2, nil)), "")
	u, ok := out.(Unpersisted)
	require.True(t, ok)
	assert.ErrorIs(t, u.Err, ErrNoStore)
	require.Len(t, u.Preview, 2)
	assert.Equal(t, "LAP002", u.Preview[1].AssetID)
}

type failingStore struct{ err error }

func (f failingStore) InTx(context.Context, func(repository.Conn) error) error { return f.err }

func TestRegister_StorageFailureIsUnpersisted(t *testing.T) {
	boom := errors.New("disk full")
	out := NewRegistrar(failingStore{err: boom}, nil).Register(context.Background(), bill(laptops(1, nil)), "")
	u, ok := out.(Unpersisted)
	require.True(t, ok)
	assert.ErrorIs(t, u.Err, boom)
	assert.Len(t, u.Preview, 1)
}

func TestRegister_RejectsOversizedBill(t *testing.T) {
	out := NewRegistrar(failingStore{err: errors.New("store must not be reached")}, nil).
		Register(context.Background(), bill(laptops(100000000, nil)), "")
	u, ok := out.(Unpersisted)
	require.True(t, ok)
	assert.ErrorIs(t, u.Err, common.ErrInvalidInput)
	assert.Empty(t, u.Preview)

	u, ok = NewRegistrar(nil, nil).Register(context.Background(), bill(laptops(MaxUnitsPerBill, nil)), "").(Unpersisted)
	require.True(t, ok)
	assert.ErrorIs(t, u.Err, ErrNoStore)
	assert.Len(t, u.Preview, MaxUnitsPerBill)
}

func TestRegister_ConcurrentBillsGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	r := NewRegistrar(newStore(t), nil)

	const bills = 8
	outcomes := make([]Outcome, bills)
	var wg sync.WaitGroup
	for i := range bills {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = r.Register(ctx, bill(laptops(2, nil)), "concurrent")
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, out := range outcomes {
		p, ok := out.(Persisted)
		require.True(t, ok, "outcome %#v", out)
		for _, a := range p.Assets {
			assert.False(t, seen[a.AssetID], "duplicate %s", a.AssetID)
			seen[a.AssetID] = true
		}
	}
	assert.Len(t, seen, 2*bills)
	assert.True(t, seen["LAP016"])
}

func TestUnitPrefixes_SortedAndDistinct(t *testing.T) {
	units := []invoice.ExtractedAsset{{Category: "mouse"}, {Category: "laptop"}, {Category: "mouse"}, {Category: "cable"}}
	got := unitPrefixes(units)
	assert.Equal(t, []string{"CAB", "LAP", "MOU"}, got)
}
