package sheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

// Column width bounds, in character cells.
const (
	minColWidth = 10
	maxColWidth = 45
)

// lockTimeout bounds how long WriteWorkbook waits for another saiten
// process writing the same workbook.
const lockTimeout = 10 * time.Second

// Named is a table destined for one worksheet.
type Named struct {
	Name  string
	Table *table.Table
}

// WriteWorkbook writes sheets, in order, into a fresh .xlsx at path. Each
// sheet gets a frozen header row and columns sized to their content.
//
// The workbook is written to a temporary file and renamed into place while
// holding an exclusive lock on path + ".lock", so a reader never sees a
// partial file and two runs cannot interleave.
func WriteWorkbook(ctx context.Context, path string, sheets ...Named) error {
	if len(sheets) == 0 {
		return fmt.Errorf("writing %s: no sheets", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	lock, err := acquireLock(ctx, path+".lock")
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("adding sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s.Name, s.Table); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	tmp, err := os.CreateTemp(dir, ".saiten-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := f.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func acquireLock(ctx context.Context, lockPath string) (*flock.Flock, error) {
	lock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("lock acquisition failed: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("workbook is being written by another process (lock held: %s)", lockPath)
	}
	return lock, nil
}

func writeSheet(f *excelize.File, name string, t *table.Table) error {
	widths := make([]int, len(t.Columns))
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
		widths[i] = runewidth.StringWidth(c)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %q: %w", name, err)
	}

	for r, rec := range t.Records() {
		for i, v := range rec {
			rec[i] = cellValue(v)
			if w := runewidth.StringWidth(textnorm.Text(v)); w > widths[i] {
				widths[i] = w
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &rec); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", r+2, name, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := max(minColWidth, min(maxColWidth, w+2))
		if err := f.SetColWidth(name, col, col, float64(width)); err != nil {
			return fmt.Errorf("sizing column %s of %q: %w", col, name, err)
		}
	}

	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue keeps numbers numeric so the operator can keep calculating in
// the sheet.
func cellValue(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case int, int64, float64, float32:
		return n
	case string:
		return n
	}
	return textnorm.Text(v)
}
