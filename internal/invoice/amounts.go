package invoice

import (
	"regexp"
	"strings"
)

const (
	currency     = `(?:₹|(?i:Rs\.?|INR))`
	amountNumber = `([0-9][0-9,]*(?:\.[0-9]+)?)`

	// bare numbers under this are treated as noise by the largest-number rule
	totalNoiseFloor = 100.0
)

var totalChain = []pattern{
	p(`(?i:Grand\s*Total|Amount\s*Payable|Net\s*Payable|Total\s*Amount)\s*[:\-]?\s*\|?\s*` + currency + `\s*` + amountNumber),
	pAccept(`((?i:\bTotal\b)[^\n₹]{0,40}?`+currency+`\s*[0-9][0-9,]*(?:\.[0-9]+)?)`, func(s string) bool {
		return !strings.Contains(strings.ToLower(s), "tax")
	}),
}

var (
	numberToken   = regexp.MustCompile(`[0-9][0-9,.]*[0-9]`)
	currencyShape = regexp.MustCompile(`^(?:[0-9]{1,3}(?:,[0-9]{2,3})+(?:\.[0-9]{2})?|[0-9]+\.[0-9]{2})$`)
)

var trailingAmount = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)\s*$`)

var (
	totalTaxAmount = regexp.MustCompile(`(?i:Total\s*Tax\s*Amount)[^\n]*?([0-9][0-9,]*\.[0-9]{2})`)
	hsnSummaryHead = regexp.MustCompile(`(?i)HSN\s*/?\s*SAC[^\n]*Taxable|Taxable\s*Value[^\n]*(?:Central|CGST|Integrated|IGST)`)
	totalRowHead   = regexp.MustCompile(`(?i)^\s*\|?\s*Total\s*(?:\||$)`)
	numericCell    = regexp.MustCompile(`^[0-9][0-9,]*(?:\.[0-9]+)?$`)
	cgstAmount     = regexp.MustCompile(`(?i:\bCGST\b)(?:[^\n]*?%)?[^\n0-9]*([0-9][0-9,]*\.[0-9]{1,2})`)
	sgstAmount     = regexp.MustCompile(`(?i:\bSGST\b|\bUTGST\b)(?:[^\n]*?%)?[^\n0-9]*([0-9][0-9,]*\.[0-9]{1,2})`)
	igstAmount     = regexp.MustCompile(`(?i:\bIGST\b)(?:[^\n]*?%)?[^\n0-9]*([0-9][0-9,]*\.[0-9]{1,2})`)
)

const (
	// an optional "10%" or "(10 %):" ahead of the discount amount
	percentLead = `(?:[0-9]+(?:\.[0-9]+)?\s*%[^\n0-9]*)?`
	// the amount must not itself be a percentage
	notPercent = `\s*(?:[^%0-9.,\s]|\n|$)`
)

var discountChain = []pattern{
	p(`(?i:\bDiscount\b)[^\n0-9%]*` + percentLead + currency + `?\s*` + amountNumber + notPercent),
	p(`(?i:\bLess\b|\bRebate\b)\s*[:\-]?[^\n0-9%]*` + percentLead + currency + `?\s*` + amountNumber + notPercent),
}

type amounts struct {
	total, tax, discount float64
}

func extractAmounts(text string, lines []string) amounts {
	return amounts{
		total:    extractTotal(text),
		tax:      extractTax(text, lines),
		discount: extractDiscount(text),
	}
}

// extractTotal prefers a labeled total. Without one it takes the largest
// currency-looking number in the document, a heuristic that can pick a line
// amount over the real total.
func extractTotal(text string) float64 {
	if v, ok := firstMatch(totalChain, text); ok {
		if m := trailingAmount.FindStringSubmatch(v); m != nil {
			v = m[1]
		}
		if n, ok := parseAmount(v); ok {
			return n
		}
	}
	var best float64
	for _, loc := range numberToken.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isASCIILetter(text[loc[0]-1]) {
			continue
		}
		tok := text[loc[0]:loc[1]]
		if !currencyShape.MatchString(tok) {
			continue
		}
		if n, ok := parseAmount(tok); ok && n > totalNoiseFloor && n > best {
			best = n
		}
	}
	return best
}

// extractTax walks four tiers: the labeled total tax, the last column of the
// HSN summary Total row, CGST plus SGST, then IGST alone.
func extractTax(text string, lines []string) float64 {
	if m := totalTaxAmount.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return v
		}
	}
	if v, ok := hsnTotalTax(lines); ok {
		return v
	}
	cg := cgstAmount.FindStringSubmatch(text)
	sg := sgstAmount.FindStringSubmatch(text)
	if cg != nil && sg != nil {
		c, okC := parseAmount(cg[1])
		s, okS := parseAmount(sg[1])
		if okC && okS {
			return c + s
		}
	}
	if m := igstAmount.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return v
		}
	}
	return 0
}

func hsnTotalTax(lines []string) (float64, bool) {
	start := -1
	for i, line := range lines {
		if hsnSummaryHead.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	for _, line := range lines[start+1:] {
		if !totalRowHead.MatchString(line) {
			continue
		}
		var nums []string
		for _, c := range splitCells(line) {
			if numericCell.MatchString(c) {
				nums = append(nums, c)
			}
		}
		if len(nums) < 3 {
			continue
		}
		return parseAmount(nums[len(nums)-1])
	}
	return 0, false
}

func extractDiscount(text string) float64 {
	if v, ok := firstMatch(discountChain, text); ok {
		return ParseAmount(v)
	}
	return 0
}

var warrantyChain = []pattern{
	pAccept(`(?i:\b(?:Warranty|Guarantee)\b)\s*(?i:Period)?\s*[:\-]\s*([^.\n|]+)`, hasWord),
	p(`(?i)\b([0-9]+\s*(?:years?|yrs?|months?|days?)\s*(?:onsite\s+|comprehensive\s+|carry[- ]in\s+)?(?:warranty|guarantee))`),
	p(`(?i)\b(?:Warranty|Guarantee)\b[^\n]*?([0-9]+\s*(?:years?|yrs?|months?))`),
}

func isASCIILetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func hasWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
	}) >= 0
}

func extractWarranty(text string) *string {
	return firstMatchPtr(warrantyChain, text)
}
