package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/entity"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

// ErrNoStore is the Unpersisted error when the registrar has no database.
var ErrNoStore = errors.New("asset store not configured")

// Store opens the transaction registration runs in.
type Store interface {
	InTx(ctx context.Context, fn func(repository.Conn) error) error
}

// Outcome is either Persisted or Unpersisted.
type Outcome interface {
	outcome()
}

// Persisted reports a bill and its units stored under BillID.
type Persisted struct {
	BillID uuid.UUID
	Bill   *entity.Bill
	Assets []*entity.Asset
}

// Unpersisted carries the units that would have been stored, with ids
// numbered from 001, and the storage error.
type Unpersisted struct {
	Preview []*entity.Asset
	Err     error
}

func (Persisted) outcome()   {}
func (Unpersisted) outcome() {}

type Registrar struct {
	store  Store
	logger *slog.Logger
}

func NewRegistrar(store Store, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{store: store, logger: logger}
}

type registerOptions struct {
	fileID *uuid.UUID
}

type RegisterOption func(*registerOptions)

// WithFileID links the stored bill to its source file.
func WithFileID(id uuid.UUID) RegisterOption {
	return func(o *registerOptions) { o.fileID = &id }
}

// Register stores bill with raw as its source text and one asset row per
// unit. Storage failures come back as Unpersisted, never as a panic or a
// partially stored bill.
func (r *Registrar) Register(ctx context.Context, bill invoice.BillInfo, raw string, opts ...RegisterOption) Outcome {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	if n := unitCount(bill.Assets); n > MaxUnitsPerBill {
		return Unpersisted{Err: fmt.Errorf("%w: bill expands to more than %d units", common.ErrInvalidInput, MaxUnitsPerBill)}
	}

	header := billEntity(bill, raw, o.fileID)
	units := Expand(bill.Assets)

	preview, err := buildUnits(units, header, localSequence())
	if err != nil {
		return Unpersisted{Err: err}
	}
	if r.store == nil {
		return Unpersisted{Preview: preview, Err: ErrNoStore}
	}

	var (
		stored *entity.Bill
		rows   []*entity.Asset
	)
	err = r.store.InTx(ctx, func(c repository.Conn) error {
		var err error
		stored, err = repository.NewBillRepository(c, r.logger).Create(ctx, header)
		if err != nil {
			return err
		}
		assetRepo := repository.NewAssetRepository(c, r.logger)
		for _, prefix := range unitPrefixes(units) {
			if err := assetRepo.LockSequence(ctx, prefix); err != nil {
				return err
			}
		}
		rows, err = buildUnits(units, stored, storedSequence(ctx, assetRepo))
		if err != nil {
			return err
		}
		return assetRepo.CreateMany(ctx, rows)
	})
	if err != nil {
		r.logger.Error("assets.register.failed", "bill_number", header.BillNumber, "units", len(units), "error", err)
		return Unpersisted{Preview: preview, Err: err}
	}

	r.logger.Info("assets.register.ok", "bill_id", stored.ID, "units", len(rows))
	return Persisted{BillID: stored.ID, Bill: stored, Assets: rows}
}

// sequencer yields the next number for an id prefix.
type sequencer func(prefix string) (int, error)

func localSequence() sequencer {
	next := map[string]int{}
	return func(prefix string) (int, error) {
		next[prefix]++
		return next[prefix], nil
	}
}

// unitPrefixes returns the distinct id prefixes of units in sorted order, so
// concurrent registrations take sequence locks in the same order.
func unitPrefixes(units []invoice.ExtractedAsset) []string {
	seen := map[string]bool{}
	var out []string
	for _, u := range units {
		p := constants.AssetIDPrefix(u.Category)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// storedSequence asks the repository once per prefix, then counts locally.
func storedSequence(ctx context.Context, repo repository.AssetRepository) sequencer {
	next := map[string]int{}
	return func(prefix string) (int, error) {
		n, ok := next[prefix]
		if !ok {
			var err error
			if n, err = repo.NextSequence(ctx, prefix); err != nil {
				return 0, err
			}
		}
		next[prefix] = n + 1
		return n, nil
	}
}

// AssetID formats a per-unit identifier such as LAP001.
func AssetID(category string, seq int) string {
	return fmt.Sprintf("%s%03d", constants.AssetIDPrefix(category), seq)
}

func buildUnits(units []invoice.ExtractedAsset, bill *entity.Bill, seq sequencer) ([]*entity.Asset, error) {
	out := make([]*entity.Asset, 0, len(units))
	for _, u := range units {
		n, err := seq(constants.AssetIDPrefix(u.Category))
		if err != nil {
			return nil, err
		}
		a := &entity.Asset{
			AssetID:        AssetID(u.Category, n),
			BillID:         bill.ID,
			Name:           u.Name,
			Description:    u.Description,
			Category:       u.Category,
			DeviceType:     u.DeviceType,
			Brand:          u.Brand,
			Model:          u.Model,
			SerialNumber:   u.SerialNumber,
			Quantity:       u.Quantity,
			UnitPrice:      u.UnitPrice,
			TotalPrice:     u.TotalPrice,
			WarrantyPeriod: u.WarrantyPeriod,
			HSNCode:        u.HSNCode,
			Status:         string(constants.AssetStatusActive),
		}
		if a.WarrantyPeriod == nil {
			a.WarrantyPeriod = bill.WarrantyInfo
		}
		qr, err := payloadFor(a, bill).Encode()
		if err != nil {
			return nil, err
		}
		a.QRPayload = qr
		out = append(out, a)
	}
	return out, nil
}

func payloadFor(a *entity.Asset, bill *entity.Bill) QRPayload {
	return QRPayload{
		AssetID:    a.AssetID,
		Name:       a.Name,
		Category:   a.Category,
		DeviceType: a.DeviceType,
		Brand:      deref(a.Brand),
		Model:      deref(a.Model),
		Serial:     deref(a.SerialNumber),
		BillNumber: deref(bill.BillNumber),
		Vendor:     deref(bill.VendorName),
	}
}

func billEntity(b invoice.BillInfo, raw string, fileID *uuid.UUID) *entity.Bill {
	return &entity.Bill{
		ID:            uuid.New(),
		FileID:        fileID,
		VendorName:    b.VendorName,
		VendorGSTIN:   b.VendorGSTIN,
		VendorAddress: b.VendorAddress,
		VendorPhone:   b.VendorPhone,
		VendorEmail:   b.VendorEmail,
		BillNumber:    b.BillNumber,
		BillDate:      b.BillDate,
		DueDate:       b.DueDate,
		TotalAmount:   b.TotalAmount,
		TaxAmount:     b.TaxAmount,
		Discount:      b.Discount,
		WarrantyInfo:  b.WarrantyInfo,
		RawText:       raw,
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
