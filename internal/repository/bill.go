package repository

import (
	"context"
	stdsql "database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/internal/entity"
)

const billsTable = "bills"

var billColumns = []string{
	"id", "file_id", "vendor_name", "vendor_gstin", "vendor_address", "vendor_phone", "vendor_email",
	"bill_number", "bill_date", "due_date", "total_amount", "tax_amount", "discount",
	"warranty_info", "raw_text", "created_at",
}

type BillRepository interface {
	Create(ctx context.Context, b *entity.Bill) (*entity.Bill, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	List(ctx context.Context, limit int) ([]*entity.Bill, error)
}

type billRepository struct {
	conn   Conn
	logger *slog.Logger
}

func NewBillRepository(conn Conn, logger *slog.Logger) BillRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &billRepository{conn: conn, logger: logger}
}

func (r *billRepository) Create(ctx context.Context, b *entity.Bill) (*entity.Bill, error) {
	row := *b
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	q := entsql.Dialect(r.conn.Dialect()).
		Insert(billsTable).
		Columns(billColumns...).
		Values(
			row.ID.String(), uuidArg(row.FileID),
			strArg(row.VendorName), strArg(row.VendorGSTIN), strArg(row.VendorAddress), strArg(row.VendorPhone), strArg(row.VendorEmail),
			strArg(row.BillNumber), strArg(row.BillDate), strArg(row.DueDate),
			row.TotalAmount, row.TaxAmount, row.Discount,
			strArg(row.WarrantyInfo), row.RawText, row.CreatedAt,
		)
	if _, err := execStmt(ctx, r.conn, q); err != nil {
		r.logger.Error("failed to create bill", "bill_number", row.BillNumber, "error", err)
		return nil, err
	}
	return &row, nil
}

func scanBill(rows *entsql.Rows) (*entity.Bill, error) {
	var (
		b                                          entity.Bill
		fileID                                     uuid.NullUUID
		name, gstin, addr, phone, email, num, date stdsql.NullString
		due, warranty                              stdsql.NullString
	)
	err := rows.Scan(&b.ID, &fileID, &name, &gstin, &addr, &phone, &email,
		&num, &date, &due, &b.TotalAmount, &b.TaxAmount, &b.Discount,
		&warranty, &b.RawText, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.FileID = nullUUID(fileID)
	b.VendorName = nullString(name)
	b.VendorGSTIN = nullString(gstin)
	b.VendorAddress = nullString(addr)
	b.VendorPhone = nullString(phone)
	b.VendorEmail = nullString(email)
	b.BillNumber = nullString(num)
	b.BillDate = nullString(date)
	b.DueDate = nullString(due)
	b.WarrantyInfo = nullString(warranty)
	return &b, nil
}

func (r *billRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	d := entsql.Dialect(r.conn.Dialect())
	q := d.Select(billColumns...).From(d.Table(billsTable)).Where(entsql.EQ("id", id.String()))
	var out *entity.Bill
	err := queryOne(ctx, r.conn, q, func(rows *entsql.Rows) error {
		b, err := scanBill(rows)
		out = b
		return err
	})
	if err != nil && !isNotFound(err) {
		r.logger.Error("failed to get bill", "bill_id", id, "error", err)
	}
	return out, err
}

// List returns the most recent bills first. limit <= 0 means all.
func (r *billRepository) List(ctx context.Context, limit int) ([]*entity.Bill, error) {
	d := entsql.Dialect(r.conn.Dialect())
	q := d.Select(billColumns...).From(d.Table(billsTable)).OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		q = q.Limit(limit)
	}
	out := make([]*entity.Bill, 0)
	err := queryRows(ctx, r.conn, q, func(rows *entsql.Rows) error {
		b, err := scanBill(rows)
		if err == nil {
			out = append(out, b)
		}
		return err
	})
	if err != nil {
		r.logger.Error("failed to list bills", "error", err)
		return nil, err
	}
	return out, nil
}
