package snapshot

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// cellValue converts a typed cell to what excelize writes natively.
func cellValue(c Cell) any {
	if d, ok := c.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return c
}

// WriteXLSX writes the snapshot as a workbook with one worksheet per sheet.
func WriteXLSX(w io.Writer, s Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range s.Tables() {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", t.Name, err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", t.Name, err)
		}

		for col, header := range t.Header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(t.Name, cell, header); err != nil {
				return err
			}
		}
		for r, row := range t.Rows {
			values := make([]any, len(row))
			for i, c := range row {
				values[i] = cellValue(c)
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
				return fmt.Errorf("writing %s row %d: %w", t.Name, r+2, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// ReadXLSX reads a workbook written by WriteXLSX, or edited by hand, into a snapshot.
func ReadXLSX(r io.Reader) (Snapshot, []RowIssue, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	tables := map[string][][]string{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return Snapshot{}, nil, fmt.Errorf("reading sheet %s: %w", name, err)
		}
		tables[name] = rows
	}
	s, issues := FromTables(tables)
	return s, issues, nil
}
