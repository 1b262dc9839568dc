package usecase

import (
	"regexp"
	"strings"
)

// skuPattern matches catalog identifier tokens: one to eight uppercase
// letters followed by one to eight hyphen-joined groups of up to ten
// uppercase alphanumerics, e.g. UC-M50-T or UC-BX30-Z.
var skuPattern = regexp.MustCompile(`\b[A-Z]{1,8}(?:-[A-Z0-9]{1,10}){1,8}\b`)

// ExtractSKU derives a catalog identifier token from a free-text product
// name, or "" when the name carries none. Matching runs over the upper-cased
// name; when several tokens match, the longest wins and earlier position
// breaks ties. The token is a proxy identifier, not guaranteed to exist in
// the real catalog.
func ExtractSKU(name string) string {
	matches := skuPattern.FindAllString(strings.ToUpper(name), -1)
	if len(matches) == 0 {
		return ""
	}

	best := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(best) {
			best = m
		}
	}
	return best
}
