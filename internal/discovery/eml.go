package discovery

import (
	"bytes"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

// parseEML reads a supplier price e-mail: tables in the HTML body plus
// spreadsheet and PDF attachments. Unreadable attachments are skipped.
func parseEML(raw []byte) ([]internal.DiscoveredProduct, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	items := []internal.DiscoveredProduct{}
	if env.HTML != "" {
		extra, err := parseHTML(env.HTML)
		if err == nil {
			items = append(items, extra...)
		}
	}

	for _, att := range env.Attachments {
		lower := strings.ToLower(strings.TrimSpace(att.FileName))
		var (
			extra []internal.DiscoveredProduct
			err   error
		)
		switch {
		case strings.HasSuffix(lower, ".xlsx"):
			extra, err = parseXLSX(att.Content)
		case strings.HasSuffix(lower, ".pdf"):
			extra, err = parsePDF(att.Content)
		default:
			continue
		}
		if err != nil {
			continue
		}
		items = append(items, extra...)
	}
	return items, nil
}
