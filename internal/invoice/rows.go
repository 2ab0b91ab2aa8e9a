package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	unitWord = `(?i:Pcs|Pc|Nos|No|Units?|Ea|Set|Sets)\.?`
	qtyNum   = `([0-9]+(?:\.[0-9]+)?)`
	money    = `([0-9][0-9,]*(?:\.[0-9]+)?)`
	descCell = `([^|]*[A-Za-z][^|]*?)`
	hsnCell  = `([0-9]{4,8})`
)

// rowShape is one registered table-row layout. Collecting shapes belong to
// invoice families that print batch and spec lines under each row.
type rowShape struct {
	name       string
	re         *regexp.Regexp
	collecting bool
	build      func(m []string) (ExtractedAsset, bool)
}

// Priority order matters: later shapes are looser and exist to catch rows the
// stricter ones miss.
var rowShapes = []rowShape{
	{
		name:       "indexed-hsn-first",
		re:         regexp.MustCompile(`^\s*\|?\s*([0-9]{1,3})\s*\|\s*` + hsnCell + `\s*\|\s*` + descCell + `\s*\|\s*` + qtyNum + `\s*(?:` + unitWord + `)?\s*\|\s*` + money + `\s*\|\s*` + money + `\s*\|`),
		collecting: true,
		build: func(m []string) (ExtractedAsset, bool) {
			return newRowAsset(m[3], m[2], m[4], m[5], m[6])
		},
	},
	{
		name:       "sl-desc-hsn-qty-unit-rate-unit-amount",
		re:         regexp.MustCompile(`\|\s*([0-9]+)\s*\|\s*([^|]+?)\s*\|\s*` + hsnCell + `\s*\|\s*` + qtyNum + `\s*` + unitWord + `\s*\|\s*` + money + `\s*\|\s*` + unitWord + `\s*\|\s*` + money + `\s*\|`),
		collecting: true,
		build: func(m []string) (ExtractedAsset, bool) {
			return newRowAsset(m[2], m[3], m[4], m[5], m[6])
		},
	},
	{
		name:       "sl-desc-hsn-qty-rate-tax-amount",
		re:         regexp.MustCompile(`^\s*\|?\s*([0-9]{1,3})\s*\|\s*` + descCell + `\s*\|\s*(?:` + hsnCell + `\s*\|\s*)?` + qtyNum + `\s*(?:` + unitWord + `)?\s*\|\s*` + money + `\s*\|\s*[0-9]+(?:\.[0-9]+)?\s*%\s*\|\s*` + money + `\s*\|`),
		collecting: true,
		build: func(m []string) (ExtractedAsset, bool) {
			return newRowAsset(m[2], m[3], m[4], m[5], m[6])
		},
	},
	{
		name:       "sl-desc-hsn-qty-rate-amount",
		re:         regexp.MustCompile(`^\s*\|?\s*([0-9]{1,3})\s*\|\s*` + descCell + `\s*\|\s*` + hsnCell + `\s*\|\s*` + qtyNum + `\s*(?:` + unitWord + `)?\s*\|\s*` + money + `\s*\|\s*` + money + `\s*\|\s*$`),
		collecting: true,
		build: func(m []string) (ExtractedAsset, bool) {
			if !pricesAgree(m[4], m[5], m[6]) {
				return ExtractedAsset{}, false
			}
			return newRowAsset(m[2], m[3], m[4], m[5], m[6])
		},
	},
	{
		name: "sl-desc-qty-rate-amount",
		re:   regexp.MustCompile(`^\s*\|?\s*([0-9]{1,3})\s*\|\s*` + descCell + `\s*\|\s*` + qtyNum + `\s*(?:` + unitWord + `)?\s*\|\s*` + money + `\s*\|\s*` + money + `\s*\|\s*$`),
		build: func(m []string) (ExtractedAsset, bool) {
			if !pricesAgree(m[3], m[4], m[5]) {
				return ExtractedAsset{}, false
			}
			return newRowAsset(m[2], "", m[3], m[4], m[5])
		},
	},
	{
		name: "free-text-product",
		re:   freeTextRow,
		build: func(m []string) (ExtractedAsset, bool) {
			if strings.Contains(m[0], "|") || !hasCategoryKeyword(m[2]) {
				return ExtractedAsset{}, false
			}
			return newRowAsset(m[2], "", m[3], m[4], m[5])
		},
	},
}

var freeTextRow = regexp.MustCompile(`^\s*(?:([0-9]{1,3})[.)]?\s+)?(.+?)\s+` + qtyNum + `\s+(?:` + unitWord + `\s+)?` + money + `\s+` + money + `\s*$`)

func matchRow(line string) (ExtractedAsset, rowShape, bool) {
	for _, shape := range rowShapes {
		m := shape.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if a, ok := shape.build(m); ok {
			return a, shape, true
		}
	}
	return ExtractedAsset{}, rowShape{}, false
}

// newRowAsset builds an asset from raw row captures. Missing unit or total
// prices are derived from the other one and the quantity.
func newRowAsset(desc, hsn, qty, rate, amount string) (ExtractedAsset, bool) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ExtractedAsset{}, false
	}
	q := parseQuantity(qty)
	unit, haveUnit := parsePrice(rate)
	total, haveTotal := parsePrice(amount)
	if !haveUnit && !haveTotal {
		return ExtractedAsset{}, false
	}
	unit, total = derivePrices(q, unit, total, haveUnit, haveTotal)
	a := newAsset(desc, q, unit, total)
	if hsn = strings.TrimSpace(hsn); hsn != "" {
		a.HSNCode = strPtr(hsn)
	}
	return a, true
}

// pricesAgree reports whether rate times quantity lands on the amount within
// rounding. Shapes without a tax or unit column use it to reject rows whose
// cells were shifted into the wrong captures.
func pricesAgree(qty, rate, amount string) bool {
	q, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
	if err != nil || q <= 0 {
		return false
	}
	unit, okUnit := parsePrice(rate)
	total, okTotal := parsePrice(amount)
	if !okUnit || !okTotal {
		return true
	}
	return math.Abs(unit*q-total) <= math.Max(1, total*0.01)
}

func newAsset(desc string, qty int, unit, total float64) ExtractedAsset {
	brand, model := ExtractBrandModel(desc)
	return ExtractedAsset{
		Name:        desc,
		Description: desc,
		Category:    Classify(desc),
		DeviceType:  DetectDeviceType(desc),
		Brand:       brand,
		Model:       model,
		Quantity:    qty,
		UnitPrice:   unit,
		TotalPrice:  total,
	}
}

func derivePrices(qty int, unit, total float64, haveUnit, haveTotal bool) (float64, float64) {
	switch {
	case haveUnit && haveTotal:
		return unit, total
	case haveTotal:
		return total / float64(qty), total
	case haveUnit:
		return unit, unit * float64(qty)
	default:
		return 0, 0
	}
}

func parseQuantity(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 1 {
		return 1
	}
	return int(f)
}

func parsePrice(s string) (float64, bool) {
	v, ok := parseAmount(s)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
