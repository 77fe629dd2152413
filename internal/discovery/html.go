package discovery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

// parseHTML reads every table with a recognisable header row. Links and
// images inside the name cell fill in missing product and image URLs.
func parseHTML(html string) ([]internal.DiscoveredProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	out := []internal.DiscoveredProduct{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, cell.Text())
		})
		cols := inferColumns(headers)
		if !cols.found() {
			return
		}

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cellSel := row.Find("th,td")
			cells := []string{}
			cellSel.Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			if blankRow(cells) {
				return
			}

			item := cols.product(cells)
			nameCell := cellSel.Eq(cols.name)
			if item.ProductURL == nil {
				if href, ok := nameCell.Find("a[href]").First().Attr("href"); ok {
					item.ProductURL = util.OptionalString(href)
				}
			}
			if item.ImageURL == nil {
				if src, ok := row.Find("img[src]").First().Attr("src"); ok {
					item.ImageURL = util.OptionalString(src)
				}
			}
			out = append(out, item)
		})
	})
	return out, nil
}
