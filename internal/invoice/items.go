package invoice

import (
	"regexp"
	"strings"
)

const (
	minLineLen      = 4
	minDetailLen    = 4
	warrantySep     = " | "
	descriptionSep  = "\n"
	serialSeparator = ","
)

var (
	headerLine  = regexp.MustCompile(`(?i)(?:\bS(?:l|r)?\.?\s*No\b|Description\s+of\s+Goods|\bParticulars\b|\bHSN\s*/\s*SAC\b|\bQty\b.*\bRate\b|\bQuantity\b.*\bAmount\b)`)
	endOfTable  = regexp.MustCompile(`(?i)(?:^\s*\|?\s*(?:Grand\s+|Sub\s*)?Total\b|\bCGST\b|\bSGST\b|\bIGST\b|\bUTGST\b|Amount\s*(?:Chargeable\s*)?\(?\s*in\s*words|Bank\s*Details|Bank\s*Name|Company'?s\s*Bank|Round(?:ed)?\s*Off|Taxable\s*Value|Total\s*Tax)`)
	batchMarker = regexp.MustCompile(`(?i:\b(?:Batch(?:\s*No\.?)?|Serial(?:\s*No\.?)?|S\s*/\s*N(?:o\.?)?|SN))\s*[:#\-]\s*([A-Z0-9][A-Z0-9\-/]{2,})`)
	specLabel   = regexp.MustCompile(`(?i)^(?:Model|Part\s*no|Warranty|Brand|Serial|with)\b`)
	financialKw = regexp.MustCompile(`(?i)CGST|SGST|IGST|Total`)
	pureNumeric = regexp.MustCompile(`^[0-9.,\s%]+$`)
	partOrModel = regexp.MustCompile(`(?i:Part\s*no|Model)\.?\s*(?i:No\.?)?\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]+)`)
	specVocab   = regexp.MustCompile(`(?i)(?:\d+\s*(?:GB|TB|MB|GHz|inch|in\b|")|\bCORE\b|\bi[3579]\b|RYZEN|\bSSD\b|\bHDD\b|\bRAM\b|DDR\d?|\bWIN(?:DOWS)?\b|\bLINUX\b|\bDOS\b|\bLED\b|\bLCD\b|\bFHD\b|\bHDMI\b|\bVGA\b|\bUSB\b|TYPE-?C|\bKEYBOARD\b|\bMOUSE\b|\bCHARGER\b|\bADAPTER\b|\bBAG\b|\bCABLE\b)`)
)

// pendingItem is an opened row still accepting detail lines.
type pendingItem struct {
	asset   ExtractedAsset
	batches []string
	details []string
	seen    map[string]struct{}
}

type scanMode int

const (
	modeScanning scanMode = iota
	modeCollecting
)

// scanState is threaded through the line loop. In modeScanning, pending may
// still hold an item whose table ended; it is finalized on the next row or at
// the end of the document.
type scanState struct {
	mode    scanMode
	pending *pendingItem
}

// ExtractAssets runs the line scanner over text, falling back to a looser
// free-text pass when no row layout matched anywhere.
func ExtractAssets(text string) []ExtractedAsset {
	lines := splitLines(text)
	assets := scanLines(lines)
	if len(assets) == 0 {
		assets = fallbackAssets(lines)
	}
	return assets
}

func scanLines(lines []string) []ExtractedAsset {
	out := make([]ExtractedAsset, 0)
	st := scanState{mode: modeScanning}
	for _, line := range lines {
		st, out = st.step(line, out)
	}
	return st.flush(out)
}

func (s scanState) step(line string, out []ExtractedAsset) (scanState, []ExtractedAsset) {
	trimmed := strings.TrimSpace(line)
	if skipLine(trimmed) {
		return s, out
	}

	if a, shape, ok := matchRow(trimmed); ok {
		out = s.flush(out)
		if !shape.collecting {
			return scanState{mode: modeScanning}, append(out, a)
		}
		return scanState{
			mode:    modeCollecting,
			pending: &pendingItem{asset: a, seen: map[string]struct{}{}},
		}, out
	}

	if s.mode != modeCollecting {
		return s, out
	}
	if endOfTable.MatchString(trimmed) {
		return scanState{mode: modeScanning, pending: s.pending}, out
	}
	s.pending.collect(trimmed)
	return s, out
}

// flush finalizes any pending item into out.
func (s scanState) flush(out []ExtractedAsset) []ExtractedAsset {
	if s.pending == nil {
		return out
	}
	return append(out, s.pending.finalize())
}

func skipLine(trimmed string) bool {
	if len(trimmed) < minLineLen {
		return true
	}
	if separatorLine.MatchString(trimmed) || pageMarker.MatchString(trimmed) {
		return true
	}
	return headerLine.MatchString(trimmed)
}

func (p *pendingItem) collect(line string) {
	if _, dup := p.seen[line]; dup {
		return
	}
	p.seen[line] = struct{}{}

	if ms := batchMarker.FindAllStringSubmatch(line, -1); len(ms) > 0 {
		for _, m := range ms {
			p.batches = append(p.batches, m[1])
		}
		return
	}
	if !strings.Contains(line, "|") {
		return
	}
	cells := splitCells(line)
	if len(cells) == 0 {
		return
	}
	frag := cells[0]
	if len(frag) < minDetailLen || strings.HasPrefix(frag, "+") || strings.HasPrefix(frag, "-") {
		return
	}
	if separatorLine.MatchString(frag) || pureNumeric.MatchString(frag) {
		return
	}
	for _, d := range p.details {
		if d == frag {
			return
		}
	}
	if specLabel.MatchString(frag) || !financialKw.MatchString(frag) {
		p.details = append(p.details, frag)
	}
}

// finalize folds batches and detail fragments into the asset.
func (p *pendingItem) finalize() ExtractedAsset {
	a := p.asset
	if len(p.batches) > 0 {
		a.SerialNumber = strPtr(strings.Join(p.batches, serialSeparator))
	}
	for _, d := range p.details {
		lower := strings.ToLower(d)
		if strings.Contains(lower, "part no") || strings.Contains(lower, "model") {
			if m := partOrModel.FindStringSubmatch(d); m != nil && a.Model == nil {
				a.Model = strPtr(m[1])
			}
		}
		if strings.Contains(lower, "warranty") {
			a.WarrantyPeriod = appendOnce(a.WarrantyPeriod, d, warrantySep)
		}
		if specVocab.MatchString(d) && !strings.Contains(a.Description, d) {
			a.Description += descriptionSep + d
		}
	}
	return a
}

func appendOnce(cur *string, frag, sep string) *string {
	if cur == nil {
		return strPtr(frag)
	}
	if strings.Contains(*cur, frag) {
		return cur
	}
	return strPtr(*cur + sep + frag)
}
