package entity

import (
	"time"

	"github.com/google/uuid"
)

// Asset is one physical unit registered from a bill line item.
type Asset struct {
	ID             uuid.UUID `json:"id"`
	AssetID        string    `json:"asset_id"`
	BillID         uuid.UUID `json:"bill_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	DeviceType     string    `json:"device_type"`
	Brand          *string   `json:"brand"`
	Model          *string   `json:"model"`
	SerialNumber   *string   `json:"serial_number"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	TotalPrice     float64   `json:"total_price"`
	WarrantyPeriod *string   `json:"warranty_period"`
	HSNCode        *string   `json:"hsn_code"`
	Status         string    `json:"status"`
	QRPayload      string    `json:"qr_payload"`
	CreatedAt      time.Time `json:"created_at"`
}

// AssetWithBill joins an asset to the header fields of its bill, the shape
// used by lookups and the workbook export.
type AssetWithBill struct {
	Asset
	BillNumber *string `json:"bill_number"`
	VendorName *string `json:"vendor_name"`
	BillDate   *string `json:"bill_date"`
}
