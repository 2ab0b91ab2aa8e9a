package server

import (
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
)

type vendorInfo struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	GSTIN   *string `json:"gstin"`
}

type billDetails struct {
	BillNumber *string `json:"bill_number"`
	BillDate   *string `json:"bill_date"`
	DueDate    *string `json:"due_date"`
}

type amounts struct {
	TotalAmount float64 `json:"total_amount"`
	TaxAmount   float64 `json:"tax_amount"`
	Discount    float64 `json:"discount"`
}

// extractedInfo is the grouped view of a BillInfo returned by scans.
type extractedInfo struct {
	Vendor       vendorInfo               `json:"vendor"`
	BillDetails  billDetails              `json:"bill_details"`
	Items        []invoice.ExtractedAsset `json:"items"`
	Amounts      amounts                  `json:"amounts"`
	WarrantyInfo *string                  `json:"warranty_info"`
}

type scanResponse struct {
	RawText       string        `json:"raw_text"`
	ExtractedInfo extractedInfo `json:"extracted_info"`
	Method        string        `json:"method,omitempty"`
	Pages         int           `json:"pages,omitempty"`
	Cached        bool          `json:"cached"`
}

func groupBill(b invoice.BillInfo) extractedInfo {
	items := b.Assets
	if items == nil {
		items = []invoice.ExtractedAsset{}
	}
	return extractedInfo{
		Vendor: vendorInfo{
			Name:    b.VendorName,
			Address: b.VendorAddress,
			Phone:   b.VendorPhone,
			Email:   b.VendorEmail,
			GSTIN:   b.VendorGSTIN,
		},
		BillDetails: billDetails{
			BillNumber: b.BillNumber,
			BillDate:   b.BillDate,
			DueDate:    b.DueDate,
		},
		Items: items,
		Amounts: amounts{
			TotalAmount: b.TotalAmount,
			TaxAmount:   b.TaxAmount,
			Discount:    b.Discount,
		},
		WarrantyInfo: b.WarrantyInfo,
	}
}

// extractRequest is the body of POST /extract and the gRPC Extract payload.
type extractRequest struct {
	Text   string          `json:"text"`
	Tables []invoice.Table `json:"tables"`
}

// registerRequest is a BillInfo plus the text it was parsed from.
type registerRequest struct {
	invoice.BillInfo
	RawText string `json:"raw_text"`
}

type statusRequest struct {
	Status string `json:"status"`
}
