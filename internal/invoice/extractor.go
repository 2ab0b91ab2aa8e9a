// Package invoice turns the plain text of a purchase invoice into a BillInfo.
//
// Every function here is pure: no I/O, no shared mutable state, and the same
// text always yields the same result. Missing fields come back nil or zero,
// never as errors.
package invoice

import "strings"

// Extract parses one document's text.
func Extract(text string) BillInfo {
	return ExtractWithTables(text, nil)
}

// ExtractWithTables parses text, taking line items from tables when the text
// source already recovered them. Header fields always come from text.
func ExtractWithTables(text string, tables []Table) BillInfo {
	if strings.TrimSpace(text) == "" && len(tables) == 0 {
		return BillInfo{Assets: []ExtractedAsset{}}
	}
	lines := splitLines(text)

	v := extractVendor(text, lines)
	d := extractBillDetails(text)
	amt := extractAmounts(text, lines)

	assets := assetsFromTables(tables)
	if len(assets) == 0 {
		assets = ExtractAssets(text)
	}

	return BillInfo{
		VendorName:    v.name,
		VendorGSTIN:   v.gstin,
		VendorAddress: v.address,
		VendorPhone:   v.phone,
		VendorEmail:   v.email,
		BillNumber:    d.number,
		BillDate:      d.date,
		DueDate:       d.dueDate,
		TotalAmount:   amt.total,
		TaxAmount:     amt.tax,
		Discount:      amt.discount,
		WarrantyInfo:  extractWarranty(text),
		Assets:        assets,
	}
}
