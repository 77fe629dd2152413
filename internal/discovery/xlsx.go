package discovery

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

// headerScanRows is how many leading rows may hold the header.
const headerScanRows = 3

func parseXLSX(content []byte) ([]internal.DiscoveredProduct, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []internal.DiscoveredProduct{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		cols := defaultColumns()
		start := 0
		for i := 0; i < len(rows) && i < headerScanRows; i++ {
			if c := inferColumns(rows[i]); c.found() {
				cols, start = c, i+1
				break
			}
		}

		for _, row := range rows[start:] {
			cells := normalizeCells(row)
			if blankRow(cells) {
				continue
			}
			out = append(out, cols.product(cells))
		}
	}
	return out, nil
}
