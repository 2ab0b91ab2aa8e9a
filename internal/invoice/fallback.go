package invoice

import (
	"regexp"
	"strings"
)

var (
	looseTriplet = regexp.MustCompile(`^(.+?)\s+` + qtyNum + `\s+(?:` + unitWord + `\s+)?` + money + `\s+` + money + `\s*$`)
	singlePrice  = regexp.MustCompile(`(?:₹|(?i:Rs\.?|INR))?\s*([0-9]{1,3}(?:,[0-9]{2,3})+(?:\.[0-9]{1,2})?|[0-9]+\.[0-9]{1,2})`)
)

// fallbackAssets is the second pass for documents whose table borders did not
// survive OCR: any line naming a product category yields an asset when a
// price can be read from it.
func fallbackAssets(lines []string) []ExtractedAsset {
	out := make([]ExtractedAsset, 0)
	for _, line := range lines {
		flat := strings.TrimSpace(strings.Join(splitCells(line), " "))
		if len(flat) < minLineLen || pageMarker.MatchString(line) || separatorLine.MatchString(flat) {
			continue
		}
		if !hasCategoryKeyword(flat) {
			continue
		}
		if a, ok := looseRow(flat); ok {
			out = append(out, a)
		}
	}
	return out
}

func looseRow(line string) (ExtractedAsset, bool) {
	if m := looseTriplet.FindStringSubmatch(line); m != nil {
		if a, ok := newRowAsset(m[1], "", m[2], m[3], m[4]); ok {
			return a, true
		}
	}
	loc := singlePrice.FindStringSubmatchIndex(line)
	if loc == nil {
		return ExtractedAsset{}, false
	}
	price, ok := parsePrice(line[loc[2]:loc[3]])
	if !ok {
		return ExtractedAsset{}, false
	}
	desc := strings.TrimSpace(line[:loc[0]] + " " + line[loc[1]:])
	desc = strings.Trim(spaces.ReplaceAllString(desc, " "), " :-")
	if desc == "" {
		return ExtractedAsset{}, false
	}
	return newAsset(desc, 1, price, price), true
}
