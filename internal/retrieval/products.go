package retrieval

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// 2-4 letters, 3-5 digits, optional "-N" or ".N" suffix (KNX1234, FX3000.2)
	productIDRe = regexp.MustCompile(`[A-Z]{2,4}\d{3,5}(?:[-.]\d+)?`)
	// digit-prefixed order numbers with alphanumeric groups (6ES7214-1AG40-0XB0)
	orderNumberRe = regexp.MustCompile(`\d[A-Z]{2,4}\d{3,5}(?:-[0-9A-Z]+)+`)

	nameStripper = strings.NewReplacer(" ", "", ".", "", "-", "")
)

// ExtractProductIDs returns the distinct product identifiers found in the
// upper-cased text, sorted.
func ExtractProductIDs(text string) []string {
	upper := strings.ToUpper(text)

	seen := make(map[string]struct{})
	for _, re := range []*regexp.Regexp{productIDRe, orderNumberRe} {
		for _, m := range re.FindAllString(upper, -1) {
			seen[m] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NormalizeName lower-cases s and strips spaces, dots and dashes so that
// "KNX 1234.pdf" and "knx-1234" compare equal on their identifier part.
func NormalizeName(s string) string {
	return nameStripper.Replace(strings.ToLower(s))
}

// MatchesProduct reports whether the normalized filename contains the
// normalized form of any of the product identifiers.
func MatchesProduct(filename string, productIDs []string) bool {
	name := NormalizeName(filename)
	for _, id := range productIDs {
		needle := NormalizeName(id)
		if needle != "" && strings.Contains(name, needle) {
			return true
		}
	}
	return false
}

// AppendUnique appends the values of add that are not yet in dst,
// preserving order.
func AppendUnique(dst []string, add ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(add))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}
