package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// MergeRange merges r into one logical cell. Values of every cell but the
// top-left one are blanked. A non-empty label is written to the top-left
// cell and centred both ways.
//
// Merging over an existing merged region is refused with a
// *MergeConflictError; the engine would otherwise drop the old region.
func (e *Editor) MergeRange(r Range, label string) error {
	r = r.normalized()

	merged, err := e.file.GetMergeCells(e.sheet)
	if err != nil {
		return fmt.Errorf("failed to list merged cells: %w", err)
	}
	for _, mc := range merged {
		existing, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return err
		}
		if r.Overlaps(existing.normalized()) {
			return &MergeConflictError{Range: r.String(), Existing: existing.String()}
		}
	}

	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			if col == r.Start.Col && row == r.Start.Row {
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

	topLeft, bottomRight := r.Start.String(), r.End.String()
	if err := e.file.MergeCell(e.sheet, topLeft, bottomRight); err != nil {
		return fmt.Errorf("failed to merge %s: %w", r, err)
	}

	if label == "" {
		return nil
	}
	if err := e.file.SetCellValue(e.sheet, topLeft, label); err != nil {
		return fmt.Errorf("failed to write label to %s: %w", topLeft, err)
	}
	return e.centre(topLeft)
}

// centre sets horizontal and vertical centre alignment on a cell, keeping
// the rest of its style.
func (e *Editor) centre(cell string) error {
	style, err := e.baseStyle(cell)
	if err != nil {
		return err
	}
	style.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	styleID, err := e.file.NewStyle(style)
	if err != nil {
		return fmt.Errorf("failed to create alignment style: %w", err)
	}
	return e.file.SetCellStyle(e.sheet, cell, cell, styleID)
}

// baseStyle returns a copy of the style currently applied to cell.
func (e *Editor) baseStyle(cell string) (*excelize.Style, error) {
	styleID, err := e.file.GetCellStyle(e.sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to read style of %s: %w", cell, err)
	}
	return e.styleByID(styleID)
}

func (e *Editor) styleByID(styleID int) (*excelize.Style, error) {
	if styleID == 0 {
		return &excelize.Style{}, nil
	}
	style, err := e.file.GetStyle(styleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load style %d: %w", styleID, err)
	}
	return style, nil
}
