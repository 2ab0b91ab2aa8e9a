package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reDate   = regexp.MustCompile(`(?i)\b\d{1,2}[-/.](?:\d{1,2}|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[-/.]\d{2,4}\b`)
	reCurr   = regexp.MustCompile(`(?i)₹|\brs\.?|\binr\b`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(,\d{2,3})+(\.\d{2})?\b|\b\d+\.\d{2}\b`)
	reGSTIN  = regexp.MustCompile(`\b\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]\b`)
)

// heuristicConfidence scores decoded text by the invoice artifacts it
// carries: dates, currency, amounts, a GSTIN and enough content.
func heuristicConfidence(txt string) float32 {
	score := float32(0.2)
	if reDate.MatchString(txt) {
		score += 0.2
	}
	if reCurr.MatchString(txt) {
		score += 0.15
	}
	if reAmount.MatchString(txt) {
		score += 0.15
	}
	if reGSTIN.MatchString(strings.ToUpper(txt)) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func countAlnum(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
