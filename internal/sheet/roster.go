package sheet

import (
	"io"
	"strings"

	"github.com/stemsi/dictant-backend/internal/textnorm"
)

var rosterHeaders = map[string]struct{}{
	"фио":       {},
	"ф.и.о.":    {},
	"студент":   {},
	"name":      {},
	"full_name": {},
	"full name": {},
}

// RosterNames returns the first-column values of rows, skipping a header
// cell and blank rows.
func RosterNames(rows [][]string) []string {
	names := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if i == 0 {
			if _, isHeader := rosterHeaders[textnorm.NameKey(name)]; isHeader {
				continue
			}
		}
		names = append(names, name)
	}
	return names
}

// ReadRoster reads student names from the first column of a workbook.
func ReadRoster(r io.Reader) ([]string, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return RosterNames(rows), nil
}
