package entity

import (
	"time"

	"github.com/google/uuid"
)

// Bill is a stored invoice header. Dates are kept as extracted: ISO when
// they parsed, the raw text otherwise.
type Bill struct {
	ID            uuid.UUID  `json:"id"`
	FileID        *uuid.UUID `json:"file_id,omitempty"`
	VendorName    *string    `json:"vendor_name"`
	VendorGSTIN   *string    `json:"vendor_gstin"`
	VendorAddress *string    `json:"vendor_address"`
	VendorPhone   *string    `json:"vendor_phone"`
	VendorEmail   *string    `json:"vendor_email"`
	BillNumber    *string    `json:"bill_number"`
	BillDate      *string    `json:"bill_date"`
	DueDate       *string    `json:"due_date"`
	TotalAmount   float64    `json:"total_amount"`
	TaxAmount     float64    `json:"tax_amount"`
	Discount      float64    `json:"discount"`
	WarrantyInfo  *string    `json:"warranty_info"`
	RawText       string     `json:"raw_text,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
