package constants

import (
	"strings"
)

// Category is the financial asset category assigned to an invoice line.
type Category string

const (
	Computer  Category = "computer"
	Laptop    Category = "laptop"
	Printer   Category = "printer"
	Monitor   Category = "monitor"
	Keyboard  Category = "keyboard"
	Mouse     Category = "mouse"
	Tablet    Category = "tablet"
	Phone     Category = "phone"
	Camera    Category = "camera"
	Projector Category = "projector"
	Scanner   Category = "scanner"
	Server    Category = "server"
	Router    Category = "router"
	Switch    Category = "switch"
	UPS       Category = "ups"
	Cable     Category = "cable"
	Adapter   Category = "adapter"
	Storage   Category = "storage"
	Memory    Category = "memory"
	Other     Category = "other"
)

var allCategories = []Category{
	Computer,
	Laptop,
	Printer,
	Monitor,
	Keyboard,
	Mouse,
	Tablet,
	Phone,
	Camera,
	Projector,
	Scanner,
	Server,
	Router,
	Switch,
	UPS,
	Cable,
	Adapter,
	Storage,
	Memory,
	Other,
}

// asset id prefixes; categories missing here use their first three letters.
var categoryPrefixes = map[Category]string{
	Computer:  "COMP",
	Laptop:    "LAP",
	Printer:   "PRT",
	Monitor:   "MON",
	Keyboard:  "KEY",
	Mouse:     "MOU",
	Tablet:    "TAB",
	Phone:     "PHN",
	Camera:    "CAM",
	Projector: "PROJ",
	Scanner:   "SCN",
	Server:    "SRV",
	Router:    "RTR",
	Switch:    "SWT",
	UPS:       "UPS",
	Other:     "OTH",
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free text onto a known category.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"desktop":  Computer,
		"pc":       Computer,
		"notebook": Laptop,
		"display":  Monitor,
		"hdd":      Storage,
		"ssd":      Storage,
		"ram":      Memory,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return Other, false
}

// AssetIDPrefix returns the prefix used for per-unit asset identifiers.
func AssetIDPrefix(category string) string {
	c := Category(strings.ToLower(strings.TrimSpace(category)))
	if p, ok := categoryPrefixes[c]; ok {
		return p
	}
	if c == "" {
		return categoryPrefixes[Other]
	}
	s := strings.ToUpper(string(c))
	if len(s) > 3 {
		s = s[:3]
	}
	return s
}
