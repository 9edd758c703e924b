// Package sheet reads uploaded spreadsheets into tables and writes the
// Roster/GradeBook workbook.
//
// Three formats are read: .csv, .xlsx and legacy .xls. Every loader returns
// a table whose column labels are normalized and unique, and whose cells are
// either a string or nil for an empty cell.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

var (
	// ErrUnsupportedFormat indicates a file extension saiten cannot read.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

	// ErrSheetNotFound indicates the requested sheet is not in the workbook.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEmpty indicates a file or sheet without a header row.
	ErrEmpty = errors.New("sheet is empty")
)

// Format identifies a spreadsheet file type.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", fmt.Errorf("%w: %q (want .csv, .xlsx or .xls)", ErrUnsupportedFormat, ext)
	}
}

// SheetNames lists the sheets of a workbook in file order. A CSV file has
// no sheets and returns nil.
func SheetNames(path string) ([]string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return xlsxSheetNames(path)
	case FormatXLS:
		return xlsSheetNames(path)
	}
	return nil, nil
}

// Load reads one sheet of path into a table. An empty sheet name selects
// the first sheet; it is ignored for CSV.
func Load(path, sheet string) (*table.Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = readCSV(path)
	case FormatXLSX:
		rows, err = readXLSX(path, sheet)
	case FormatXLS:
		rows, err = readXLS(path, sheet)
	}
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

// fromRows turns raw string rows into a table: the first non-blank row is
// the header, fully blank rows are dropped, and empty cells become nil.
func fromRows(rows [][]string) (*table.Table, error) {
	rows = dropBlank(rows)
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	header := Header(rows[0])
	records := make([][]any, 0, len(rows)-1)
	for _, r := range rows[1:] {
		rec := make([]any, len(header))
		for i := range header {
			if i < len(r) && strings.TrimSpace(r[i]) != "" {
				rec[i] = r[i]
			}
		}
		records = append(records, rec)
	}
	return table.FromRecords(header, records), nil
}

// Header normalizes raw header labels. Blank labels become "Unnamed: N" and
// repeated labels get ".1", ".2" suffixes so every column is addressable.
func Header(raw []string) []string {
	cols := textnorm.Columns(raw)
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		if c == "" {
			c = fmt.Sprintf("Unnamed: %d", i)
		}
		name := c
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s.%d", c, n)
		}
		seen[name] = true
		cols[i] = name
	}
	return cols
}

func dropBlank(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, r := range rows {
		for _, cell := range r {
			if strings.TrimSpace(cell) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
