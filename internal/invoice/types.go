package invoice

// ExtractedAsset is one line item recognized in an invoice.
type ExtractedAsset struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	DeviceType     string  `json:"device_type"`
	Brand          *string `json:"brand"`
	Model          *string `json:"model"`
	SerialNumber   *string `json:"serial_number"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	TotalPrice     float64 `json:"total_price"`
	WarrantyPeriod *string `json:"warranty_period"`
	HSNCode        *string `json:"hsn_code"`
}

// BillInfo is the assembled result for one document. Assets is never nil.
type BillInfo struct {
	VendorName    *string `json:"vendor_name"`
	VendorGSTIN   *string `json:"vendor_gstin"`
	VendorAddress *string `json:"vendor_address"`
	VendorPhone   *string `json:"vendor_phone"`
	VendorEmail   *string `json:"vendor_email"`

	BillNumber *string `json:"bill_number"`
	BillDate   *string `json:"bill_date"`
	DueDate    *string `json:"due_date"`

	TotalAmount float64 `json:"total_amount"`
	TaxAmount   float64 `json:"tax_amount"`
	Discount    float64 `json:"discount"`

	WarrantyInfo *string `json:"warranty_info"`

	Assets []ExtractedAsset `json:"assets"`
}

// Degraded reports whether the bill carries neither a bill number nor a vendor
// name. Callers use it to reject unusable scans.
func (b BillInfo) Degraded() bool {
	return b.BillNumber == nil && b.VendorName == nil
}

// Table is a structured table supplied by a text source. The first row holds
// the column headers.
type Table [][]string

func strPtr(s string) *string {
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
