package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// NumFmtTwoDecimals is the built-in "0.00" number format.
const NumFmtTwoDecimals = 2

// ApplyNumberStyle replaces the style of every cell in r with one carrying
// only the given number format and font. Alignment, borders and fills
// previously set on those cells are dropped.
func (e *Editor) ApplyNumberStyle(r Range, numFmt int, font *excelize.Font) error {
	r = r.normalized()

	styleID, err := e.file.NewStyle(&excelize.Style{
		NumFmt: numFmt,
		Font:   font,
	})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	if err := e.file.SetCellStyle(e.sheet, r.Start.String(), r.End.String(), styleID); err != nil {
		return fmt.Errorf("failed to apply number style to %s: %w", r, err)
	}
	return nil
}

// ApplyFont changes only the font of every cell in r; number format,
// alignment and the rest of each cell's style are kept.
func (e *Editor) ApplyFont(r Range, font excelize.Font) error {
	r = r.normalized()

	// base style id -> derived style id
	derived := make(map[int]int)

	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			name, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}

			baseID, err := e.file.GetCellStyle(e.sheet, name)
			if err != nil {
				return fmt.Errorf("failed to read style of %s: %w", name, err)
			}

			styleID, ok := derived[baseID]
			if !ok {
				style, err := e.styleByID(baseID)
				if err != nil {
					return err
				}
				f := font
				style.Font = &f
				if styleID, err = e.file.NewStyle(style); err != nil {
					return fmt.Errorf("failed to create font style: %w", err)
				}
				derived[baseID] = styleID
			}

			if err := e.file.SetCellStyle(e.sheet, name, name, styleID); err != nil {
				return fmt.Errorf("failed to apply font to %s: %w", name, err)
			}
		}
	}
	return nil
}
