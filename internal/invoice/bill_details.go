package invoice

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Invoice numbers outrank bill and receipt numbers, and an e-way bill number
// is a transport permit rather than the bill's own number.
var billNumberChain = []pattern{
	pAccept(`(?i:\bInvoice\s*(?:No\.?|Number|#))\s*[:\-]?\s*\|?\s*([A-Z0-9][A-Z0-9/\-]*)`, validBillNumber),
	{
		re:       regexp.MustCompile(`(?i:\b(?:Bill|Receipt)\s*(?:No\.?|Number|#))\s*[:\-]?\s*\|?\s*([A-Z0-9][A-Z0-9/\-]*)`),
		accept:   validBillNumber,
		notAfter: wayBillLead,
	},
	pAccept(`\b([A-Z]{2,6}[/\-]\d{2}-\d{2}[/\-]\d{1,6})\b`, validBillNumber),
	pAccept(`\b((?:INV|BILL|TTS)[/\-]?[0-9][0-9A-Z/\-]*)`, validBillNumber),
}

var wayBillLead = regexp.MustCompile(`(?i)\bWay[\s\-]*$`)

func validBillNumber(s string) bool {
	return len(s) >= 2 && hasDigit(s)
}

const (
	monthsShort = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)`
	monthsLong  = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`
	dateLabel   = `\b(?i:Invoice\s*Date|Bill\s*Date|Dated|Date)\s*[:\-]?\s*\|?\s*`
	dueLabel    = `\b(?i:Due\s*Date|Payment\s*Due(?:\s*Date)?|Due\s*On)\s*[:\-]?\s*\|?\s*`

	numericDate  = `\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}`
	shortMonDate = `\d{1,2}[-/. ](?i:` + monthsShort + `)[-/., ]+\d{2,4}`
	longMonDate  = `\d{1,2}\s+(?i:` + monthsLong + `),?\s+\d{4}`
	monFirstDate = `(?i:` + monthsLong + `)\s+\d{1,2},?\s+\d{4}`
)

var (
	numericLayouts = []string{"2-1-2006", "2/1/2006", "2.1.2006", "2-1-06", "2/1/06", "2.1.06"}
	shortLayouts   = []string{"2-Jan-2006", "2 Jan 2006", "2/Jan/2006", "2.Jan.2006", "2-Jan-06", "2 Jan, 2006", "2-Jan, 2006"}
	longLayouts    = []string{"2 January 2006", "2 January, 2006", "January 2, 2006", "January 2 2006"}
	allLayouts     = append(append(append([]string{}, shortLayouts...), longLayouts...), numericLayouts...)
)

type datePattern struct {
	re      *regexp.Regexp
	layouts []string
}

func dp(expr string, layouts []string) datePattern {
	return datePattern{re: regexp.MustCompile(expr), layouts: layouts}
}

// labeled before bare; abbreviated and full month names before numeric forms
var billDateChain = []datePattern{
	dp(dateLabel+`(`+shortMonDate+`)`, shortLayouts),
	dp(dateLabel+`(`+longMonDate+`|`+monFirstDate+`)`, longLayouts),
	dp(dateLabel+`(`+numericDate+`)`, numericLayouts),
	dp(`\b(`+shortMonDate+`)\b`, shortLayouts),
	dp(`\b(`+longMonDate+`|`+monFirstDate+`)\b`, longLayouts),
	dp(`\b(`+numericDate+`)\b`, numericLayouts),
}

var dueDateLabeled = regexp.MustCompile(dueLabel + `(` + shortMonDate + `|` + longMonDate + `|` + monFirstDate + `|` + numericDate + `)`)

var paymentTerms = regexp.MustCompile(`(?i)\b(\d{1,3})\s+Days?\b`)

var spaces = regexp.MustCompile(`\s+`)

type billDetails struct {
	number, date, dueDate *string
}

func extractBillDetails(text string) billDetails {
	d := billDetails{number: firstMatchPtr(billNumberChain, text)}

	// keep an explicit due date from being read as the bill date
	masked := dueDateLabeled.ReplaceAllStringFunc(text, func(s string) string {
		return strings.Repeat(" ", len(s))
	})
	if raw, layouts, ok := findDate(billDateChain, masked); ok {
		d.date = strPtr(normalizeDate(raw, layouts))
	}

	if m := dueDateLabeled.FindStringSubmatch(text); m != nil {
		d.dueDate = strPtr(normalizeDate(m[1], allLayouts))
	} else if d.date != nil {
		if due, ok := dueFromTerms(text, *d.date); ok {
			d.dueDate = strPtr(due)
		}
	}
	return d
}

func findDate(chain []datePattern, text string) (string, []string, bool) {
	for _, dpt := range chain {
		if m := dpt.re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), dpt.layouts, true
		}
	}
	return "", nil, false
}

// normalizeDate returns the ISO form of raw, or raw itself when no layout
// parses it.
func normalizeDate(raw string, layouts []string) string {
	clean := spaces.ReplaceAllString(strings.TrimSpace(raw), " ")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t.Format(isoDate)
		}
	}
	return raw
}

// dueFromTerms adds an "N Days" payment term to an ISO bill date.
func dueFromTerms(text, billDate string) (string, bool) {
	m := paymentTerms.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	t, err := time.Parse(isoDate, billDate)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, days).Format(isoDate), true
}
