package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	"solardash/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used for XLSX exports
const DefaultSheet = "Filtered"

// WriteCSV writes the view's rows with every original column, header first.
// Cells are written as their original text, separated by the source file's
// delimiter so decimal commas stay readable.
func WriteCSV(w io.Writer, view *dataset.FilteredView) error {
	cw := csv.NewWriter(w)
	if d := view.Dataset.Delimiter; d != 0 {
		cw.Comma = d
	}
	if err := cw.Write(view.Columns()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(view.Columns()))
	for i := 0; i < view.Len(); i++ {
		for j, cell := range view.Record(i) {
			row[j] = cell.Raw
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the view as a single-sheet workbook. Valid numeric cells are
// stored as numbers, everything else as text.
func WriteXLSX(w io.Writer, view *dataset.FilteredView, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	columns := view.Dataset.Schema.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	values := make([]interface{}, len(columns))
	for i := 0; i < view.Len(); i++ {
		rec := view.Record(i)
		for j, c := range columns {
			cell := rec[c.Index]
			if c.IsNumeric() && cell.Valid() {
				values[j] = cell.Num
			} else {
				values[j] = cell.Raw
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	return f.Write(w)
}
