package invoice

import (
	"regexp"
	"strings"
)

const (
	vendorHeaderLines = 25
	vendorMinLen      = 4
	vendorMaxLen      = 90
	addressMaxLines   = 3
	addressScanLines  = 10
)

var (
	legalEntityMarker = regexp.MustCompile(`(?i)\b(?:LLP|Ltd|Limited|Pvt|Private\s+Limited|Solutions|Technologies|Enterprises|Corporation|Traders|Infotech|Systems|Inc)\b`)
	vendorBoilerplate = regexp.MustCompile(`(?i)(?:invoice\s*no|e-?way\s*bill|bill\s*to|ship\s*to|buyer|consignee|\bpage\b|tax\s*invoice|gstin|\bdated\b|delivery\s*note|original\s*for|duplicate\s*for|reference\s*no|state\s*name|terms\s*of|mode/terms)`)
	separatorLine     = regexp.MustCompile(`^[\s|+\-=_:.~*#]*$`)
	pageMarker        = regexp.MustCompile(`(?i)^\s*-{2,}\s*page\s+\d+\s*-{2,}\s*$`)
	leadingDigits     = regexp.MustCompile(`^\d`)
	addressStop       = regexp.MustCompile(`(?i)(?:gstin|\binvoice\b|bill\s*to|buyer|consignee|state\s*name|e-?mail|\bph(?:one)?\b|\bmob(?:ile)?\b|\btel\b)`)
	addressSkip       = regexp.MustCompile(`(?i)(?:\btax\b|\bpage\b|e-?way|dated|delivery\s*note)`)
)

const gstinCore = `[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]`

var gstinChain = []pattern{
	p(`(?i:GSTIN\s*/\s*UIN|UIN)\s*(?:No\.?)?\s*[:\-]?\s*\|?\s*(` + gstinCore + `)`),
	p(`(?i:GSTIN)\s*(?:No\.?)?\s*[:\-]?\s*\|?\s*(` + gstinCore + `)`),
	p(`\b(?i:GST)\s*(?i:No\.?|Number)?\s*[:\-]?\s*(` + gstinCore + `)`),
	p(`\b(` + gstinCore + `)\b`),
	// digits masked by the scanner
	pAccept(`\b([0-9X*]{2}[A-Z]{5}[0-9X*]{4}[A-Z][1-9A-Z*]Z[0-9A-Z*])`, func(s string) bool {
		return strings.ContainsAny(s, "X*")
	}),
}

var phoneChain = []pattern{
	p(`(?i:\b(?:Ph|Phone|Tel|Mobile|Mob|Contact)\.?\s*(?:No\.?)?)\s*[:\-]?\s*(\+?91[-\s]?[6-9]\d{9})\b`),
	p(`(?i:\b(?:Ph|Phone|Tel|Mobile|Mob|Contact)\.?\s*(?:No\.?)?)\s*[:\-]?\s*([6-9]\d{9})\b`),
	p(`(\+?91[-\s]?[6-9]\d{9})\b`),
	p(`\b([6-9]\d{9})\b`),
}

const emailCore = `[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`

var emailChain = []pattern{
	p(`(?i:E-?mail|Mail)\s*(?:ID)?\s*[:\-]?\s*(` + emailCore + `)`),
	p(`(` + emailCore + `)`),
}

type vendorInfo struct {
	name, gstin, address, phone, email *string
}

func extractVendor(text string, lines []string) vendorInfo {
	v := vendorInfo{
		gstin: firstMatchPtr(gstinChain, text),
		phone: firstMatchPtr(phoneChain, text),
		email: firstMatchPtr(emailChain, text),
	}
	name, idx := vendorName(lines)
	if name != "" {
		v.name = strPtr(name)
		if addr := vendorAddress(lines, idx); addr != "" {
			v.address = strPtr(addr)
		}
	}
	return v
}

// vendorName returns the vendor line and its index. A cell carrying a
// legal-entity marker wins; otherwise the first substantial header line.
func vendorName(lines []string) (string, int) {
	head := lines
	if len(head) > vendorHeaderLines {
		head = head[:vendorHeaderLines]
	}
	for i, line := range head {
		for _, cell := range splitCells(line) {
			if vendorCandidate(cell) && legalEntityMarker.MatchString(cell) {
				return cell, i
			}
		}
	}
	for i, line := range head {
		for _, cell := range splitCells(line) {
			if vendorCandidate(cell) && len(cell) > 5 && !leadingDigits.MatchString(cell) {
				return cell, i
			}
		}
	}
	return "", -1
}

func vendorCandidate(cell string) bool {
	if len(cell) < vendorMinLen || len(cell) > vendorMaxLen {
		return false
	}
	if separatorLine.MatchString(cell) || pageMarker.MatchString(cell) || strings.HasPrefix(cell, "---") {
		return false
	}
	return !vendorBoilerplate.MatchString(cell)
}

// vendorAddress collects up to three lines following the vendor line until a
// stop keyword shows up.
func vendorAddress(lines []string, vendorIdx int) string {
	if vendorIdx < 0 {
		return ""
	}
	end := vendorIdx + 1 + addressScanLines
	if end > len(lines) {
		end = len(lines)
	}
	var parts []string
	for _, line := range lines[vendorIdx+1 : end] {
		cells := splitCells(line)
		if len(cells) == 0 {
			continue
		}
		first := cells[0]
		if addressStop.MatchString(first) {
			break
		}
		if separatorLine.MatchString(first) || pageMarker.MatchString(first) || addressSkip.MatchString(first) {
			continue
		}
		if len(first) < 3 {
			continue
		}
		parts = append(parts, strings.TrimRight(first, ","))
		if len(parts) == addressMaxLines {
			break
		}
	}
	return strings.Join(parts, ", ")
}
