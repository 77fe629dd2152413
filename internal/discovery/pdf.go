package discovery

import (
	"bytes"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

// priceLine matches "<name> <price>" where the price may carry a currency
// marker on either side.
var priceLine = regexp.MustCompile(`(?i)^(.*[\p{L}].*?)\s+((?:aoa|kz|usd|eur|€|\$)?\s?\d(?:[\d.,]*\d)?(?:\s?(?:aoa|kz|usd|eur|€))?)$`)

func parsePDF(content []byte) ([]internal.DiscoveredProduct, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return productsFromLines(text.String()), nil
}

// productsFromLines keeps the lines that end in a price token.
func productsFromLines(text string) []internal.DiscoveredProduct {
	out := []internal.DiscoveredProduct{}
	for _, line := range splitLines(text) {
		m := priceLine.FindStringSubmatch(util.NormalizeSpaces(line))
		if m == nil {
			continue
		}
		out = append(out, internal.DiscoveredProduct{
			Name:  strings.TrimSpace(m[1]),
			Price: util.StringPtr(m[2]),
		})
	}
	return out
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
