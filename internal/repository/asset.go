package repository

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/constants"
	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/entity"
)

const assetsTable = "assets"

var assetColumns = []string{
	"id", "asset_id", "bill_id", "name", "description", "category", "device_type",
	"brand", "model", "serial_number", "quantity", "unit_price", "total_price",
	"warranty_period", "hsn_code", "status", "qr_payload", "created_at",
}

type AssetRepository interface {
	CreateMany(ctx context.Context, assets []*entity.Asset) error
	// NextSequence returns one past the highest numeric suffix stored under
	// prefix, or 1 when none exists.
	NextSequence(ctx context.Context, prefix string) (int, error)
	// LockSequence holds id allocation for prefix until the surrounding
	// transaction ends. Call it before NextSequence.
	LockSequence(ctx context.Context, prefix string) error
	GetByAssetID(ctx context.Context, assetID string) (*entity.AssetWithBill, error)
	ListByBill(ctx context.Context, billID uuid.UUID) ([]*entity.Asset, error)
	ListWithBills(ctx context.Context) ([]*entity.AssetWithBill, error)
	UpdateStatus(ctx context.Context, assetID string, status constants.AssetStatus) error
}

type assetRepository struct {
	conn   Conn
	logger *slog.Logger
}

func NewAssetRepository(conn Conn, logger *slog.Logger) AssetRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &assetRepository{conn: conn, logger: logger}
}

func (r *assetRepository) CreateMany(ctx context.Context, assets []*entity.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	ins := entsql.Dialect(r.conn.Dialect()).Insert(assetsTable).Columns(assetColumns...)
	now := time.Now().UTC()
	for _, a := range assets {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.Status == "" {
			a.Status = string(constants.AssetStatusActive)
		}
		ins = ins.Values(
			a.ID.String(), a.AssetID, a.BillID.String(), a.Name, a.Description, a.Category, a.DeviceType,
			strArg(a.Brand), strArg(a.Model), strArg(a.SerialNumber), a.Quantity, a.UnitPrice, a.TotalPrice,
			strArg(a.WarrantyPeriod), strArg(a.HSNCode), a.Status, a.QRPayload, a.CreatedAt,
		)
	}
	if _, err := execStmt(ctx, r.conn, ins); err != nil {
		r.logger.Error("failed to create assets", "count", len(assets), "bill_id", assets[0].BillID, "error", err)
		return err
	}
	return nil
}

func (r *assetRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	d := entsql.Dialect(r.conn.Dialect())
	q := d.Select("asset_id").From(d.Table(assetsTable)).Where(entsql.HasPrefix("asset_id", prefix))
	highest := 0
	err := queryRows(ctx, r.conn, q, func(rows *entsql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		// COMP001 also matches prefix COM; a non-numeric rest is skipped.
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err == nil && n > highest {
			highest = n
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to read asset sequence", "prefix", prefix, "error", err)
		return 0, err
	}
	return highest + 1, nil
}

// SQLite needs no lock: its single connection already serialises writers.
func (r *assetRepository) LockSequence(ctx context.Context, prefix string) error {
	if r.conn.Dialect() != dialect.Postgres {
		return nil
	}
	var res stdsql.Result
	if err := r.conn.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", []any{assetsTable + ":" + prefix}, &res); err != nil {
		r.logger.Error("failed to lock asset sequence", "prefix", prefix, "error", err)
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return nil
}

func scanAsset(rows *entsql.Rows, extra ...any) (*entity.Asset, error) {
	var (
		a                                    entity.Asset
		brand, model, serial, warranty, hsn stdsql.NullString
	)
	dest := []any{
		&a.ID, &a.AssetID, &a.BillID, &a.Name, &a.Description, &a.Category, &a.DeviceType,
		&brand, &model, &serial, &a.Quantity, &a.UnitPrice, &a.TotalPrice,
		&warranty, &hsn, &a.Status, &a.QRPayload, &a.CreatedAt,
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.Brand = nullString(brand)
	a.Model = nullString(model)
	a.SerialNumber = nullString(serial)
	a.WarrantyPeriod = nullString(warranty)
	a.HSNCode = nullString(hsn)
	return &a, nil
}

// joinedSelect selects every asset column plus the bill header fields. The
// returned table qualifies asset columns in predicates.
func (r *assetRepository) joinedSelect() (*entsql.Selector, *entsql.SelectTable) {
	d := entsql.Dialect(r.conn.Dialect())
	a := d.Table(assetsTable).As("a")
	b := d.Table(billsTable).As("b")
	cols := make([]string, 0, len(assetColumns)+3)
	for _, c := range assetColumns {
		cols = append(cols, a.C(c))
	}
	cols = append(cols, b.C("bill_number"), b.C("vendor_name"), b.C("bill_date"))
	return d.Select(cols...).From(a).Join(b).On(a.C("bill_id"), b.C("id")), a
}

func scanAssetWithBill(rows *entsql.Rows) (*entity.AssetWithBill, error) {
	var num, vendor, date stdsql.NullString
	a, err := scanAsset(rows, &num, &vendor, &date)
	if err != nil {
		return nil, err
	}
	return &entity.AssetWithBill{
		Asset:      *a,
		BillNumber: nullString(num),
		VendorName: nullString(vendor),
		BillDate:   nullString(date),
	}, nil
}

func (r *assetRepository) GetByAssetID(ctx context.Context, assetID string) (*entity.AssetWithBill, error) {
	sel, a := r.joinedSelect()
	q := sel.Where(entsql.EQ(a.C("asset_id"), assetID))
	var out *entity.AssetWithBill
	err := queryOne(ctx, r.conn, q, func(rows *entsql.Rows) error {
		row, err := scanAssetWithBill(rows)
		out = row
		return err
	})
	if err != nil && !isNotFound(err) {
		r.logger.Error("failed to get asset", "asset_id", assetID, "error", err)
	}
	return out, err
}

func (r *assetRepository) ListByBill(ctx context.Context, billID uuid.UUID) ([]*entity.Asset, error) {
	d := entsql.Dialect(r.conn.Dialect())
	q := d.Select(assetColumns...).
		From(d.Table(assetsTable)).
		Where(entsql.EQ("bill_id", billID.String())).
		OrderBy("asset_id")
	out := make([]*entity.Asset, 0)
	err := queryRows(ctx, r.conn, q, func(rows *entsql.Rows) error {
		a, err := scanAsset(rows)
		if err == nil {
			out = append(out, a)
		}
		return err
	})
	if err != nil {
		r.logger.Error("failed to list assets by bill", "bill_id", billID, "error", err)
		return nil, err
	}
	return out, nil
}

func (r *assetRepository) ListWithBills(ctx context.Context) ([]*entity.AssetWithBill, error) {
	sel, a := r.joinedSelect()
	q := sel.OrderBy(a.C("asset_id"))
	out := make([]*entity.AssetWithBill, 0)
	err := queryRows(ctx, r.conn, q, func(rows *entsql.Rows) error {
		row, err := scanAssetWithBill(rows)
		if err == nil {
			out = append(out, row)
		}
		return err
	})
	if err != nil {
		r.logger.Error("failed to list assets", "error", err)
		return nil, err
	}
	return out, nil
}

func (r *assetRepository) UpdateStatus(ctx context.Context, assetID string, status constants.AssetStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: asset status %q", common.ErrInvalidInput, status)
	}
	u := entsql.Dialect(r.conn.Dialect()).
		Update(assetsTable).
		Set("status", string(status)).
		Where(entsql.EQ("asset_id", assetID))
	n, err := execStmt(ctx, r.conn, u)
	if err != nil {
		r.logger.Error("failed to update asset status", "asset_id", assetID, "status", status, "error", err)
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
