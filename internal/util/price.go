package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var priceNoise = regexp.MustCompile(`[^0-9.,]`)

// NormalizePrice turns free-text price such as "R$ 1.500,00" or
// "2.713.791,77 kz" into a number. It returns nil when raw is nil or nothing
// numeric survives.
func NormalizePrice(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	cleaned := priceNoise.ReplaceAllString(*raw, "")
	if cleaned == "" {
		return nil
	}

	value, err := strconv.ParseFloat(canonicalDecimal(cleaned), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

// canonicalDecimal rewrites a string of digits, dots and commas so that the
// only remaining separator, if any, is a "." decimal point.
func canonicalDecimal(token string) string {
	hasComma := strings.Contains(token, ",")
	hasDot := strings.Contains(token, ".")

	switch {
	case hasComma && hasDot:
		// The rightmost separator is the decimal point.
		if strings.LastIndex(token, ",") > strings.LastIndex(token, ".") {
			return strings.ReplaceAll(strings.ReplaceAll(token, ".", ""), ",", ".")
		}
		return strings.ReplaceAll(token, ",", "")
	case hasComma:
		if strings.Count(token, ",") > 1 {
			return strings.ReplaceAll(token, ",", "")
		}
		return strings.Replace(token, ",", ".", 1)
	case hasDot:
		groups := strings.Split(token, ".")
		if len(groups) > 2 || (len(groups) == 2 && len(groups[1]) == 3) {
			return strings.ReplaceAll(token, ".", "")
		}
		return token
	default:
		return token
	}
}
