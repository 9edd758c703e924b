package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
)

// maxXLSRows bounds the rows read from a legacy sheet.
const maxXLSRows = 100000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV reads a CSV export. Excel on Japanese Windows saves CSV as
// Shift_JIS, so input that is not valid UTF-8 is decoded from Shift_JIS.
func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s as Shift_JIS: %w", path, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

func xlsxSheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

// readXLSX returns raw cell values: dates stay Excel serials and numbers
// keep full precision, leaving interpretation to the caller.
func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("%w: %s has no worksheets", ErrEmpty, path)
		}
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func xlsSheetNames(path string) ([]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if ws := wb.GetSheet(i); ws != nil {
			names = append(names, ws.Name)
		}
	}
	return names, nil
}

func readXLS(path, sheet string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: %s has no worksheets", ErrEmpty, path)
	}

	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		s := wb.GetSheet(i)
		if s == nil {
			continue
		}
		if sheet == "" || s.Name == sheet {
			ws = s
			break
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, path)
	}

	var rows [][]string
	for i := 0; i <= int(ws.MaxRow) && i < maxXLSRows; i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
