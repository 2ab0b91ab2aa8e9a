package invoice

import (
	"regexp"
	"strings"
)

type column int

const (
	colDescription column = iota
	colQuantity
	colRate
	colAmount
	colHSN
)

// header synonyms, matched by substring against lower-cased header text
var columnSynonyms = []struct {
	col   column
	names []string
}{
	{colDescription, []string{"description", "item", "product", "details", "particulars"}},
	{colQuantity, []string{"qty", "quantity", "nos", "pcs", "units"}},
	{colRate, []string{"rate", "price", "unit price", "cost"}},
	{colAmount, []string{"amount", "total", "value", "total amount"}},
	{colHSN, []string{"hsn", "sac"}},
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// mapColumns assigns each target field to the first header that names one of
// its synonyms. A header claimed by an earlier field is not reused.
func mapColumns(header []string) map[column]int {
	mapped := make(map[column]int)
	claimed := make(map[int]bool)
	for _, syn := range columnSynonyms {
		for i, h := range header {
			if claimed[i] {
				continue
			}
			h = strings.ToLower(strings.TrimSpace(h))
			if containsAny(h, syn.names) {
				mapped[syn.col] = i
				claimed[i] = true
				break
			}
		}
	}
	return mapped
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// assetsFromTables maps structured tables onto assets using the same price
// derivation and classification as text rows.
func assetsFromTables(tables []Table) []ExtractedAsset {
	out := make([]ExtractedAsset, 0)
	for _, t := range tables {
		if len(t) < 2 {
			continue
		}
		cols := mapColumns(t[0])
		for _, row := range t[1:] {
			if a, ok := tableRow(row, cols); ok {
				out = append(out, a)
			}
		}
	}
	return out
}

func tableRow(row []string, cols map[column]int) (ExtractedAsset, bool) {
	cell := func(c column) string {
		i, ok := cols[c]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	desc := cell(colDescription)
	if _, ok := cols[colDescription]; !ok && len(row) > 0 {
		desc = strings.TrimSpace(row[0])
	}
	switch strings.ToLower(desc) {
	case "", "nan", "none", "null":
		return ExtractedAsset{}, false
	}
	if strings.HasPrefix(strings.ToLower(desc), "total") {
		return ExtractedAsset{}, false
	}

	qty := parseQuantity(nonNumeric.ReplaceAllString(cell(colQuantity), ""))
	unit, haveUnit := parsePrice(nonNumeric.ReplaceAllString(cell(colRate), ""))
	total, haveTotal := parsePrice(nonNumeric.ReplaceAllString(cell(colAmount), ""))
	unit, total = derivePrices(qty, unit, total, haveUnit, haveTotal)

	a := newAsset(desc, qty, unit, total)
	if hsn := cell(colHSN); hsn != "" {
		a.HSNCode = strPtr(hsn)
	}
	return a, true
}
