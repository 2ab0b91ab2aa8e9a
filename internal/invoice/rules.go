package invoice

import (
	"regexp"
	"strconv"
	"strings"
)

// pattern is one entry of an ordered rule chain. The first pattern yielding an
// accepted capture wins.
type pattern struct {
	re     *regexp.Regexp
	accept func(capture string) bool
	// notAfter drops matches whose immediately preceding text matches it
	notAfter *regexp.Regexp
}

// lookbehindSpan bounds how much text before a match notAfter inspects.
const lookbehindSpan = 16

func p(expr string) pattern {
	return pattern{re: regexp.MustCompile(expr)}
}

func pAccept(expr string, accept func(string) bool) pattern {
	return pattern{re: regexp.MustCompile(expr), accept: accept}
}

// firstMatch walks the chain in order and returns the first accepted capture
// (group 1, or the whole match when the pattern has no groups).
func firstMatch(chain []pattern, text string) (string, bool) {
	for _, pt := range chain {
		for _, loc := range pt.re.FindAllStringSubmatchIndex(text, -1) {
			if pt.notAfter != nil && pt.notAfter.MatchString(text[max(0, loc[0]-lookbehindSpan):loc[0]]) {
				continue
			}
			c := text[loc[0]:loc[1]]
			if len(loc) > 2 {
				if loc[2] < 0 {
					continue
				}
				c = text[loc[2]:loc[3]]
			}
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if pt.accept != nil && !pt.accept(c) {
				continue
			}
			return c, true
		}
	}
	return "", false
}

func firstMatchPtr(chain []pattern, text string) *string {
	if v, ok := firstMatch(chain, text); ok {
		return strPtr(v)
	}
	return nil
}

var amountNoise = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount converts currency text such as "₹ 1,25,000.00" to a number.
// Unparseable input yields 0.
func ParseAmount(s string) float64 {
	v, ok := parseAmount(s)
	if !ok {
		return 0
	}
	return v
}

func parseAmount(s string) (float64, bool) {
	s = amountNoise.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.Trim(s, ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// splitCells returns the trimmed non-empty cells of a pipe-delimited line.
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	out := make([]string, 0, len(parts))
	for _, c := range parts {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
