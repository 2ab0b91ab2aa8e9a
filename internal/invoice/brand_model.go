package invoice

import (
	"regexp"
	"strings"
	"unicode"
)

var brandGazetteer = []string{
	"hp", "dell", "lenovo", "asus", "acer", "apple", "microsoft", "samsung",
	"lg", "canon", "epson", "brother", "cisco", "d-link", "tp-link",
	"intel", "amd", "nvidia", "western digital", "seagate", "corsair",
	"logitech", "benq", "viewsonic", "apc", "zebronics",
}

var brandMatchers = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(brandGazetteer))
	for i, b := range brandGazetteer {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(b) + `\b`)
	}
	return out
}()

var brandedMarker = regexp.MustCompile(`(?i)\bBranded[-\s]+([A-Za-z][A-Za-z0-9&]*)`)

var unitSuffix = regexp.MustCompile(`^[0-9.]+(?:GB|TB|MB|GHZ|MHZ|W|KVA|VA|MM|CM|HZ|MP|PCS|NOS)$`)

func upperCode(s string) bool {
	return hasDigit(s) && strings.ToUpper(s) == s && !unitSuffix.MatchString(s)
}

// most to least specific
var modelChain = []pattern{
	p(`(?i)\bModel(?:\s*No\.?)?\s*[:#]\s*([A-Za-z0-9][A-Za-z0-9\-_/.]*[A-Za-z0-9])`),
	pAccept(`\b([A-Z0-9]+(?:[-_][A-Z0-9]+)+)\b`, upperCode),
	p(`\b([A-Z]{1,4}[0-9]+[A-Z0-9]*)\b`),
	pAccept(`\b([0-9]{2,}[A-Z]+[A-Z0-9]*)\b`, upperCode),
}

// ExtractBrandModel pulls a known brand and a model token out of an item
// description. Either may be nil.
func ExtractBrandModel(description string) (brand, model *string) {
	for i, re := range brandMatchers {
		if re.MatchString(description) {
			brand = strPtr(titleCase(brandGazetteer[i]))
			break
		}
	}
	if brand == nil {
		if m := brandedMarker.FindStringSubmatch(description); m != nil {
			brand = strPtr(titleCase(m[1]))
		}
	}
	model = firstMatchPtr(modelChain, description)
	return brand, model
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	start := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			start = false
			continue
		}
		b.WriteRune(r)
		start = true
	}
	return b.String()
}
