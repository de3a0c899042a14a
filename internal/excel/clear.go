package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ClearRow blanks every cell of the row up to the last populated column.
// Formatting is left untouched.
func (e *Editor) ClearRow(row int) error {
	maxCol, err := e.MaxColumn()
	if err != nil {
		return err
	}
	if maxCol == 0 {
		return nil
	}
	return e.ClearRange(Range{Start: Cell{Col: 1, Row: row}, End: Cell{Col: maxCol, Row: row}})
}

// ClearRange blanks every cell of the rectangle. Formatting is left untouched.
func (e *Editor) ClearRange(r Range) error {
	r = r.normalized()
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			name, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if err := e.clearCell(name); err != nil {
				return fmt.Errorf("failed to clear %s: %w", name, err)
			}
		}
	}
	return nil
}

// DeleteRow removes the row and shifts everything below it up by one.
// The engine adjusts merged regions, formulas and hyperlinks on its own.
func (e *Editor) DeleteRow(row int) error {
	if err := e.file.RemoveRow(e.sheet, row); err != nil {
		return fmt.Errorf("failed to delete row %d: %w", row, err)
	}
	return nil
}
