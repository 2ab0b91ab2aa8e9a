// Package assets turns extracted bills into stored per-unit assets.
package assets

import (
	"strings"

	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
)

// MaxUnitsPerBill caps how many per-unit rows one bill may expand into.
const MaxUnitsPerBill = 10000

// unitCount is the number of rows Expand would produce.
func unitCount(items []invoice.ExtractedAsset) int {
	total := 0
	for _, it := range items {
		if it.Quantity > 1 {
			total += it.Quantity
		} else {
			total++
		}
		if total > MaxUnitsPerBill {
			return total
		}
	}
	return total
}

// Expand returns one quantity-1 item per physical unit. Each unit carries the
// line's unit price as both unit and total price.
func Expand(items []invoice.ExtractedAsset) []invoice.ExtractedAsset {
	out := make([]invoice.ExtractedAsset, 0, len(items))
	for _, it := range items {
		n := it.Quantity
		if n < 1 {
			n = 1
		}
		serials := splitSerials(it.SerialNumber, n)
		for i := 0; i < n; i++ {
			u := it
			u.Quantity = 1
			u.TotalPrice = it.UnitPrice
			if serials != nil {
				s := serials[i]
				u.SerialNumber = &s
			}
			out = append(out, u)
		}
	}
	return out
}

// splitSerials returns one serial per unit when the joined list holds exactly
// n entries, nil otherwise (the joined string is then kept on every unit).
func splitSerials(joined *string, n int) []string {
	if joined == nil || n < 2 {
		return nil
	}
	parts := strings.Split(*joined, ",")
	if len(parts) != n {
		return nil
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil
		}
	}
	return parts
}
