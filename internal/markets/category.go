package markets

import "strings"

// Platform category labels vary ("Politics", "US-current-affairs",
// "Crypto", ...); collapse them onto the shared taxonomy. Unrecognized
// labels map to nil rather than CategoryOther so the scorer treats them as
// unknown instead of asserting a mismatch.
var categoryAliases = map[string]Category{
	"politics":               CategoryPolitics,
	"us-current-affairs":     CategoryPolitics,
	"elections":              CategoryPolitics,
	"world":                  CategoryPolitics,
	"crypto":                 CategoryCrypto,
	"cryptocurrency":         CategoryCrypto,
	"sports":                 CategorySports,
	"esports":                CategorySports,
	"finance":                CategoryFinance,
	"economics":              CategoryFinance,
	"financials":             CategoryFinance,
	"companies":              CategoryFinance,
	"science":                CategoryScience,
	"climate":                CategoryScience,
	"science and technology": CategoryScience,
	"tech":                   CategoryScience,
	"entertainment":          CategoryOther,
	"culture":                CategoryOther,
	"pop-culture":            CategoryOther,
}

// ParseCategory normalizes a platform-reported category label, returning nil
// when the label is empty or unrecognized.
func ParseCategory(raw string) *Category {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return nil
	}
	if c, ok := categoryAliases[key]; ok {
		return &c
	}
	return nil
}
