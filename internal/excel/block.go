package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// MoveBlock cuts the src rectangle and pastes it with its top-left corner at
// dst, then blanks every source cell. With copyStyle the cell style travels
// along with the value; otherwise destination cells keep their own style.
// Source cells that fall inside the destination keep their pasted value.
func (e *Editor) MoveBlock(src Range, dst Cell, copyStyle bool) error {
	src = src.normalized()
	rows, cols := src.Rows(), src.Cols()

	block := make([][]cellContent, rows)
	for r := 0; r < rows; r++ {
		block[r] = make([]cellContent, cols)
		for c := 0; c < cols; c++ {
			name, err := excelize.CoordinatesToCellName(src.Start.Col+c, src.Start.Row+r)
			if err != nil {
				return err
			}
			if block[r][c], err = e.readCell(name); err != nil {
				return err
			}
		}
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			name, err := excelize.CoordinatesToCellName(dst.Col+c, dst.Row+r)
			if err != nil {
				return fmt.Errorf("destination %s does not fit %s: %w", dst, src, err)
			}
			if err := e.writeCell(name, block[r][c], copyStyle); err != nil {
				return err
			}
		}
	}

	target := Range{Start: dst, End: Cell{Col: dst.Col + cols - 1, Row: dst.Row + rows - 1}}
	for row := src.Start.Row; row <= src.End.Row; row++ {
		for col := src.Start.Col; col <= src.End.Col; col++ {
			if target.Contains(Cell{Col: col, Row: row}) {
				continue
			}
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
